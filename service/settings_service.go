package service

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"gallerylog/config"
	"gallerylog/core"
	"gallerylog/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// SettingMaxErrorItems is the key of the persisted runtime override
// for the error log retention cap.
const SettingMaxErrorItems = "max_number_error_items"

// SettingsService provides per-gallery notification settings and the
// small application-wide key/value settings.
type SettingsService struct {
	db  *gorm.DB
	log *zap.Logger
}

// NewSettingsService constructs a settings service
func NewSettingsService(db *gorm.DB, logger *zap.Logger) *SettingsService {
	return &SettingsService{db: db, log: logger}
}

// ForGallery returns one gallery's settings.
func (s *SettingsService) ForGallery(galleryID int) (*models.GallerySetting, error) {
	var gs models.GallerySetting
	if err := s.db.First(&gs, "gallery_id = ?", galleryID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, wrapSentinel(
				fmt.Sprintf("no settings for gallery %d", galleryID),
				core.ErrSettingsNotFound)
		}
		return nil, fmt.Errorf("failed to load settings for gallery %d: %w", galleryID, err)
	}
	return &gs, nil
}

// All returns every gallery's settings ordered by gallery id. This is
// the iteration order for system-wide notification dispatch.
func (s *SettingsService) All() ([]models.GallerySetting, error) {
	var list []models.GallerySetting
	if err := s.db.Order("gallery_id").Find(&list).Error; err != nil {
		return nil, fmt.Errorf("failed to list gallery settings: %w", err)
	}
	return list, nil
}

// Upsert creates or replaces a gallery's settings.
func (s *SettingsService) Upsert(galleryID int, req models.GallerySettingUpdate) (*models.GallerySetting, error) {
	req.Normalize()

	gs := models.GallerySetting{
		GalleryID:         galleryID,
		SendEmailOnError:  req.SendEmailOnError,
		EmailFromName:     req.EmailFromName,
		EmailFromAddress:  req.EmailFromAddress,
		SmtpServer:        req.SmtpServer,
		SmtpServerPort:    req.SmtpServerPort,
		SendEmailUsingSsl: req.SendEmailUsingSsl,
	}
	gs.SetNotifyList(req.NotifyList)

	if err := s.db.Save(&gs).Error; err != nil {
		return nil, fmt.Errorf("failed to save settings for gallery %d: %w", galleryID, err)
	}
	return &gs, nil
}

// MaxErrorItems returns the effective retention cap: the persisted
// override when present and valid, else the configured default.
func (s *SettingsService) MaxErrorItems() int {
	def := config.Settings.MaxNumberErrorItems

	value, ok, err := s.GetAppSetting(SettingMaxErrorItems)
	if err != nil {
		s.log.Warn("failed to read retention cap override", zap.Error(err))
		return def
	}
	if !ok {
		return def
	}

	n, parseErr := strconv.Atoi(value)
	if parseErr != nil || n < 0 {
		return def
	}
	return n
}

// GetAppSetting returns a persisted key/value setting.
// ok is false when the key does not exist.
func (s *SettingsService) GetAppSetting(key string) (value string, ok bool, err error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return "", false, errors.New("empty setting key")
	}

	var setting models.AppSetting
	if err := s.db.First(&setting, "key = ?", key).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", false, nil
		}
		return "", false, err
	}
	return setting.Value, true, nil
}

// SetAppSetting persists a key/value setting.
func (s *SettingsService) SetAppSetting(key, value string) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return errors.New("empty setting key")
	}

	return s.db.Save(&models.AppSetting{Key: key, Value: strings.TrimSpace(value)}).Error
}
