package config

import (
	"flag"
	"fmt"
	"os"
	"strconv"

	"gallerylog/version"

	"github.com/joho/godotenv"
)

// Config holds the error log engine's runtime configuration.
type Config struct {
	LogLevel    string
	LogFilePath string
	Port        int
	DatabaseURL string

	// SQLite tuning
	SQLitePragmasEnabled bool
	SQLiteBusyTimeoutMS  int
	SQLiteJournalMode    string
	SQLiteMaxOpenConns   int
	SQLiteMaxIdleConns   int
	SQLiteConnMaxIdleSec int
	SQLiteConnMaxLifeSec int

	// Retention: maximum records kept in the error log. Zero disables
	// trimming. Overridable at runtime through the persisted settings
	// table.
	MaxNumberErrorItems int

	// Interval of the background retention sweep, in minutes. Zero
	// disables the sweep; explicit trims still work.
	TrimSweepIntervalMinutes int

	// SMTP transport defaults. Per-gallery settings override the host
	// and port; the timeout bounds every send so one slow recipient
	// cannot stall a dispatch.
	SMTPHost           string
	SMTPPort           int
	SMTPUsername       string
	SMTPPassword       string
	SMTPTimeoutSeconds int
}

// Settings is the global configuration instance populated from
// environment variables (optionally via .env) and flag overrides.
var Settings *Config

func init() {
	// Best-effort .env load so local runs behave like deployed ones.
	_ = godotenv.Load()

	Settings = &Config{
		LogLevel:    getEnv("LOG_LEVEL", "INFO"),
		LogFilePath: getEnv("LOG_FILE", "./gallerylog.log"),
		Port:        getEnvInt("PORT", 7799),
		DatabaseURL: getEnv("DATABASE_URL", "gallerylog.db"),

		SQLitePragmasEnabled: getEnvBool("SQLITE_PRAGMAS_ENABLED", true),
		SQLiteBusyTimeoutMS:  getEnvInt("SQLITE_BUSY_TIMEOUT_MS", 5000),
		SQLiteJournalMode:    getEnv("SQLITE_JOURNAL_MODE", "WAL"),
		SQLiteMaxOpenConns:   getEnvInt("SQLITE_MAX_OPEN_CONNS", 1),
		SQLiteMaxIdleConns:   getEnvInt("SQLITE_MAX_IDLE_CONNS", 1),
		SQLiteConnMaxIdleSec: getEnvInt("SQLITE_CONN_MAX_IDLE_SECONDS", 300),
		SQLiteConnMaxLifeSec: getEnvInt("SQLITE_CONN_MAX_LIFETIME_SECONDS", 0),

		MaxNumberErrorItems:      getEnvInt("MAX_NUMBER_ERROR_ITEMS", 200),
		TrimSweepIntervalMinutes: getEnvInt("TRIM_SWEEP_INTERVAL_MINUTES", 60),

		SMTPHost:           getEnv("SMTP_HOST", "localhost"),
		SMTPPort:           getEnvInt("SMTP_PORT", 25),
		SMTPUsername:       getEnv("SMTP_USERNAME", ""),
		SMTPPassword:       getEnv("SMTP_PASSWORD", ""),
		SMTPTimeoutSeconds: getEnvInt("SMTP_TIMEOUT_SECONDS", 30),
	}
}

// ParseFlags parses command-line flags and applies overrides to the
// package-level Settings. It handles --help and --version directly.
func ParseFlags() {
	flag.Usage = func() {
		out := flag.CommandLine.Output()
		fmt.Fprintf(out, "Gallerylog - gallery error log and notification engine\n\n")
		fmt.Fprintf(out, "Usage: %s [options]\n\n", os.Args[0])
		fmt.Fprintln(out, "Options:")
		flag.PrintDefaults()
		fmt.Fprintln(out, "\nEnvironment variables:")
		fmt.Fprintln(out, "  LOG_LEVEL                        Log level (DEBUG, INFO, WARN, ERROR)")
		fmt.Fprintln(out, "  LOG_FILE                         Log file path (default ./gallerylog.log)")
		fmt.Fprintln(out, "  PORT                             HTTP server port (default 7799)")
		fmt.Fprintln(out, "  DATABASE_URL                     SQLite database path (default gallerylog.db)")
		fmt.Fprintln(out, "  SQLITE_PRAGMAS_ENABLED           Enable SQLite PRAGMAs (true/false, default true)")
		fmt.Fprintln(out, "  SQLITE_BUSY_TIMEOUT_MS           SQLite busy_timeout in milliseconds (default 5000)")
		fmt.Fprintln(out, "  SQLITE_JOURNAL_MODE              SQLite journal_mode (default WAL)")
		fmt.Fprintln(out, "  SQLITE_MAX_OPEN_CONNS            SQLite MaxOpenConns (default 1)")
		fmt.Fprintln(out, "  SQLITE_MAX_IDLE_CONNS            SQLite MaxIdleConns (default 1)")
		fmt.Fprintln(out, "  MAX_NUMBER_ERROR_ITEMS           Retention cap for the error log, 0 disables trimming (default 200)")
		fmt.Fprintln(out, "  TRIM_SWEEP_INTERVAL_MINUTES      Background trim interval, 0 disables the sweep (default 60)")
		fmt.Fprintln(out, "  SMTP_HOST                        Default SMTP host (default localhost)")
		fmt.Fprintln(out, "  SMTP_PORT                        Default SMTP port (default 25)")
		fmt.Fprintln(out, "  SMTP_USERNAME                    SMTP auth username (optional)")
		fmt.Fprintln(out, "  SMTP_PASSWORD                    SMTP auth password (optional)")
		fmt.Fprintln(out, "  SMTP_TIMEOUT_SECONDS             Per-send SMTP timeout (default 30)")
	}

	port := flag.Int("port", Settings.Port, "HTTP server port (overrides PORT)")
	db := flag.String("db", Settings.DatabaseURL, "SQLite database path (overrides DATABASE_URL)")
	logLevel := flag.String("log-level", Settings.LogLevel, "Log level: DEBUG, INFO, WARN, ERROR (overrides LOG_LEVEL)")
	logFile := flag.String("log-file", Settings.LogFilePath, "Log file path (overrides LOG_FILE)")
	maxErrorItems := flag.Int("max-error-items", Settings.MaxNumberErrorItems, "Retention cap for the error log (overrides MAX_NUMBER_ERROR_ITEMS)")
	trimInterval := flag.Int("trim-interval-minutes", Settings.TrimSweepIntervalMinutes, "Background trim interval in minutes (overrides TRIM_SWEEP_INTERVAL_MINUTES)")
	smtpHost := flag.String("smtp-host", Settings.SMTPHost, "Default SMTP host (overrides SMTP_HOST)")
	smtpPort := flag.Int("smtp-port", Settings.SMTPPort, "Default SMTP port (overrides SMTP_PORT)")

	showHelp := flag.Bool("help", false, "Show help and exit")
	showVersion := flag.Bool("version", false, "Show version and exit")

	flag.Parse()

	if *showVersion {
		fmt.Println(version.GetBuildInfo())
		os.Exit(0)
	}

	if *showHelp {
		flag.Usage()
		os.Exit(0)
	}

	Settings.Port = *port
	Settings.DatabaseURL = *db
	Settings.LogLevel = *logLevel
	Settings.LogFilePath = *logFile
	Settings.MaxNumberErrorItems = *maxErrorItems
	Settings.TrimSweepIntervalMinutes = *trimInterval
	Settings.SMTPHost = *smtpHost
	Settings.SMTPPort = *smtpPort
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}
