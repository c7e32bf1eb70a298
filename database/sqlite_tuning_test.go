package database

import (
	"strings"
	"testing"

	"gallerylog/config"
)

func TestSanitizeSQLitePoolConfig(t *testing.T) {
	got := sanitizeSQLitePoolConfig(sqlitePoolConfig{
		maxOpenConns: 0,
		maxIdleConns: 5,
		maxIdleSec:   -1,
		maxLifeSec:   -1,
	})

	if got.maxOpenConns != 1 {
		t.Errorf("maxOpenConns = %d, want clamped to 1", got.maxOpenConns)
	}
	if got.maxIdleConns != got.maxOpenConns {
		t.Errorf("maxIdleConns = %d, want clamped to open conns", got.maxIdleConns)
	}
	if got.maxIdleSec != 0 || got.maxLifeSec != 0 {
		t.Errorf("negative lifetimes not clamped: %+v", got)
	}
}

func TestBuildSQLiteDSN(t *testing.T) {
	settings := &config.Config{
		SQLitePragmasEnabled: true,
		SQLiteBusyTimeoutMS:  5000,
		SQLiteJournalMode:    "wal",
	}

	dsn := buildSQLiteDSN("gallerylog.db", settings)
	if !strings.HasPrefix(dsn, "gallerylog.db?") {
		t.Fatalf("dsn = %q, want path plus parameters", dsn)
	}
	if !strings.Contains(dsn, "busy_timeout%285000%29") {
		t.Errorf("dsn = %q, missing busy_timeout pragma", dsn)
	}
	if !strings.Contains(dsn, "journal_mode%28WAL%29") {
		t.Errorf("dsn = %q, missing journal_mode pragma", dsn)
	}

	settings.SQLitePragmasEnabled = false
	if dsn := buildSQLiteDSN("gallerylog.db", settings); dsn != "gallerylog.db" {
		t.Errorf("dsn with pragmas disabled = %q, want bare path", dsn)
	}
}

func TestBuildSQLiteDSNKeepsExistingParams(t *testing.T) {
	settings := &config.Config{SQLitePragmasEnabled: false}
	dsn := buildSQLiteDSN("gallerylog.db?cache=shared", settings)
	if !strings.Contains(dsn, "cache=shared") {
		t.Errorf("dsn = %q, dropped existing parameter", dsn)
	}
}

func TestBusyTimeoutPragma(t *testing.T) {
	if got := busyTimeoutPragma(5000); got != "PRAGMA busy_timeout = 5000" {
		t.Errorf("busyTimeoutPragma(5000) = %q", got)
	}
}

func TestNormalizeSQLiteJournalMode(t *testing.T) {
	cases := map[string]string{
		" wal ":    "WAL",
		"delete":   "DELETE",
		"TRUNCATE": "TRUNCATE",
		"bogus":    "",
		"":         "",
	}
	for in, want := range cases {
		if got := normalizeSQLiteJournalMode(in); got != want {
			t.Errorf("normalizeSQLiteJournalMode(%q) = %q, want %q", in, got, want)
		}
	}
}
