package service

import (
	"gallerylog/core"
	"gallerylog/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// sentinelError attaches a sentinel to a descriptive message so callers
// can branch with errors.Is while users see the full context.
type sentinelError struct {
	msg      string
	sentinel error
}

func (e sentinelError) Error() string {
	return e.msg
}

func (e sentinelError) Unwrap() error {
	return e.sentinel
}

func wrapSentinel(msg string, sentinel error) error {
	return sentinelError{msg: msg, sentinel: sentinel}
}

// Services is the global service container
type Services struct {
	Errors    *ErrorService
	Settings  *SettingsService
	Retention *RetentionService
	Notify    *NotifyService
}

// GlobalServices is the global service instance
var GlobalServices *Services

// InitServices initializes all services
func InitServices(db *gorm.DB, logger *zap.Logger) *Services {
	errorSvc := NewErrorService(db, logger)
	settingsSvc := NewSettingsService(db, logger)
	retentionSvc := NewRetentionService(db, errorSvc, logger)
	notifySvc := NewNotifyService(settingsSvc, errorSvc, logger)

	GlobalServices = &Services{
		Errors:    errorSvc,
		Settings:  settingsSvc,
		Retention: retentionSvc,
		Notify:    notifySvc,
	}
	return GlobalServices
}

// RecordError runs the full pipeline for a raised error: capture,
// persist, trim the log to the retention cap, then notify recipients.
// Capture, persistence and retention failures propagate; notification
// is best-effort and never fails the pipeline.
func (s *Services) RecordError(err error, galleryID int, snap *core.RequestSnapshot) (*models.ErrorRecord, error) {
	rec, capErr := core.Capture(err, galleryID, snap)
	if capErr != nil {
		return nil, capErr
	}

	if _, saveErr := s.Errors.Save(rec); saveErr != nil {
		return nil, saveErr
	}

	if _, trimErr := s.Retention.Trim(s.Settings.MaxErrorItems()); trimErr != nil {
		return rec, trimErr
	}

	s.Notify.Notify(rec)
	return rec, nil
}
