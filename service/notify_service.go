package service

import (
	"errors"
	"fmt"
	"net/mail"
	"regexp"
	"strconv"
	"strings"
	"time"

	"gallerylog/config"
	"gallerylog/core"
	"gallerylog/models"

	gomail "github.com/wneessen/go-mail"
	"go.uber.org/zap"
)

// defaultSMTPPort is the port assumed when a gallery's configured port
// is blank, unparsable or equal to the default.
const defaultSMTPPort = 25

const fallbackSubject = "Application error report"

// emailPattern is the syntactic gate for recipient addresses; a
// candidate must additionally parse with net/mail to be eligible.
var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// NotifyService dispatches deduplicated error emails to the recipients
// configured per gallery.
type NotifyService struct {
	settings *SettingsService
	errors   *ErrorService
	log      *zap.Logger

	// send performs one delivery; injectable for tests. The default
	// dials SMTP with the gallery's transport options.
	send func(gs *models.GallerySetting, rcpt models.EmailRecipient, subject, body string) error
}

// NewNotifyService constructs a notification dispatcher
func NewNotifyService(settingsSvc *SettingsService, errorSvc *ErrorService, logger *zap.Logger) *NotifyService {
	s := &NotifyService{
		settings: settingsSvc,
		errors:   errorSvc,
		log:      logger,
	}
	s.send = s.sendSMTP
	return s
}

// Notify emails the record's report to the configured recipients and
// returns the usernames notified during this call.
//
// Informational records are skipped outright. A gallery-scoped record
// goes to its own gallery's recipients; a system-wide record fans out
// across every gallery with notification enabled, with a single dedup
// set spanning the whole dispatch so a user listed in several
// galleries gets exactly one email.
//
// Per-recipient failures are isolated: each is appended to the
// record's exception data as a diagnostic and the dispatch continues.
// Notify never returns an error.
func (s *NotifyService) Notify(rec *models.ErrorRecord) []string {
	if rec == nil || rec.IsInformational() {
		return nil
	}

	seen := make(map[string]bool)

	if !rec.IsSystemWide() {
		gs, err := s.settings.ForGallery(rec.GalleryID)
		if err != nil {
			if !errors.Is(err, core.ErrSettingsNotFound) {
				s.log.Warn("failed to load gallery settings for notification",
					zap.Int("gallery_id", rec.GalleryID), zap.Error(err))
			}
			return nil
		}
		if !gs.SendEmailOnError {
			return nil
		}
		return s.dispatch(rec, gs, seen)
	}

	all, err := s.settings.All()
	if err != nil {
		s.log.Warn("failed to load gallery settings for notification", zap.Error(err))
		return nil
	}

	var notified []string
	for i := range all {
		gs := &all[i]
		if !gs.SendEmailOnError {
			continue
		}
		// Each gallery's own sender identity applies to its sends;
		// the dedup set is shared across the whole dispatch.
		notified = append(notified, s.dispatch(rec, gs, seen)...)
	}
	return notified
}

// dispatch sends the report to one gallery's recipients, skipping
// usernames already notified and addresses that fail validation.
func (s *NotifyService) dispatch(rec *models.ErrorRecord, gs *models.GallerySetting, seen map[string]bool) []string {
	subject := rec.ExceptionType
	if strings.TrimSpace(subject) == "" {
		subject = fallbackSubject
	}
	body := core.RenderReport(rec)

	var sent []string
	for _, rcpt := range gs.GetNotifyList() {
		if seen[rcpt.UserName] {
			continue
		}
		if !validEmail(rcpt.Email) {
			continue
		}

		if err := s.send(gs, rcpt, subject, body); err != nil {
			s.recordSendFailure(rec, rcpt, err)
			continue
		}

		seen[rcpt.UserName] = true
		sent = append(sent, rcpt.UserName)
	}
	return sent
}

// recordSendFailure appends the failure to the record's exception data
// (the one sanctioned post-save mutation) and persists it best-effort.
func (s *NotifyService) recordSendFailure(rec *models.ErrorRecord, rcpt models.EmailRecipient, sendErr error) {
	detail := fmt.Sprintf("%T: %s", sendErr, sendErr.Error())
	if cause := errors.Unwrap(sendErr); cause != nil {
		detail += fmt.Sprintf("; %T: %s", cause, cause.Error())
	}

	rec.AddExceptionDataPair("Cannot send email to "+rcpt.Email, detail)
	if err := s.errors.PersistExceptionData(rec); err != nil {
		s.log.Warn("failed to persist notification diagnostic", zap.Error(err))
	}

	s.log.Warn("failed to send error notification",
		zap.String("email", rcpt.Email),
		zap.Error(sendErr))
}

// validEmail requires both a syntactic match and acceptance by the
// address parser. Failing addresses are skipped silently.
func validEmail(addr string) bool {
	if !emailPattern.MatchString(addr) {
		return false
	}
	parsed, err := mail.ParseAddress(addr)
	return err == nil && parsed.Address == addr
}

func (s *NotifyService) sendSMTP(gs *models.GallerySetting, rcpt models.EmailRecipient, subject, body string) error {
	host := config.Settings.SMTPHost
	if server := strings.TrimSpace(gs.SmtpServer); server != "" {
		host = server
	}

	opts := []gomail.Option{
		gomail.WithPort(config.Settings.SMTPPort),
		gomail.WithTimeout(time.Duration(config.Settings.SMTPTimeoutSeconds) * time.Second),
	}
	if port, err := strconv.Atoi(strings.TrimSpace(gs.SmtpServerPort)); err == nil && port > 0 && port != defaultSMTPPort {
		opts = append(opts, gomail.WithPort(port))
	}
	if gs.SendEmailUsingSsl {
		opts = append(opts, gomail.WithSSL())
	}
	if config.Settings.SMTPUsername != "" {
		opts = append(opts,
			gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
			gomail.WithUsername(config.Settings.SMTPUsername),
			gomail.WithPassword(config.Settings.SMTPPassword))
	}

	client, err := gomail.NewClient(host, opts...)
	if err != nil {
		return fmt.Errorf("failed to create smtp client: %w", err)
	}

	msg := gomail.NewMsg()
	if err := msg.FromFormat(gs.EmailFromName, gs.EmailFromAddress); err != nil {
		return fmt.Errorf("invalid sender address %q: %w", gs.EmailFromAddress, err)
	}
	if err := msg.AddToFormat(rcpt.UserName, rcpt.Email); err != nil {
		return fmt.Errorf("invalid recipient address %q: %w", rcpt.Email, err)
	}
	msg.Subject(subject)
	msg.SetBodyString(gomail.TypeTextHTML, body)

	return client.DialAndSend(msg)
}
