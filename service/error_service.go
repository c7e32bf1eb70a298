package service

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"gallerylog/core"
	"gallerylog/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ErrorService owns the persisted error log: ordering, lookup,
// deletion and gallery-scoped queries.
type ErrorService struct {
	db  *gorm.DB
	log *zap.Logger
}

// NewErrorService constructs an error log service
func NewErrorService(db *gorm.DB, logger *zap.Logger) *ErrorService {
	return &ErrorService{db: db, log: logger}
}

// GetAll returns every record, most recent first. The sort is stable,
// so records sharing a timestamp keep their insertion order.
func (s *ErrorService) GetAll() ([]models.ErrorRecord, error) {
	var recs []models.ErrorRecord
	if err := s.db.Order("id").Find(&recs).Error; err != nil {
		return nil, fmt.Errorf("failed to list error records: %w", err)
	}

	sortByTimestampDesc(recs)
	return recs, nil
}

func sortByTimestampDesc(recs []models.ErrorRecord) {
	sort.SliceStable(recs, func(i, j int) bool {
		return recs[i].Timestamp.After(recs[j].Timestamp)
	})
}

// Save persists a new record and assigns its id exactly once. Record
// content is immutable afterwards, apart from notification
// diagnostics appended to the exception data.
func (s *ErrorService) Save(rec *models.ErrorRecord) (int, error) {
	if rec == nil {
		return 0, errors.New("cannot save a nil error record")
	}
	if rec.ID != 0 {
		return 0, fmt.Errorf("error record %d is already persisted", rec.ID)
	}
	if rec.Timestamp.IsZero() {
		rec.Timestamp = time.Now()
	}

	if err := s.db.Create(rec).Error; err != nil {
		return 0, fmt.Errorf("failed to save error record: %w", err)
	}

	s.log.Debug("saved error record",
		zap.Int("id", rec.ID),
		zap.Int("gallery_id", rec.GalleryID),
		zap.String("exception_type", rec.ExceptionType))
	return rec.ID, nil
}

// Delete removes a record. Deleting an id that does not exist is not
// an error.
func (s *ErrorService) Delete(id int) error {
	if err := s.db.Delete(&models.ErrorRecord{}, "id = ?", id).Error; err != nil {
		return fmt.Errorf("failed to delete error record %d: %w", id, err)
	}
	return nil
}

// ClearLog removes every record belonging to the gallery, along with
// all system-wide records.
func (s *ErrorService) ClearLog(galleryID int) error {
	err := s.db.
		Where("gallery_id = ? OR gallery_id = ?", galleryID, models.SystemWideGalleryID).
		Delete(&models.ErrorRecord{}).Error
	if err != nil {
		return fmt.Errorf("failed to clear error log for gallery %d: %w", galleryID, err)
	}
	return nil
}

// FindByID fetches one record.
func (s *ErrorService) FindByID(id int) (*models.ErrorRecord, error) {
	var rec models.ErrorRecord
	if err := s.db.First(&rec, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, wrapSentinel(fmt.Sprintf("error record not found: %d", id), core.ErrRecordNotFound)
		}
		return nil, fmt.Errorf("failed to get error record %d: %w", id, err)
	}
	return &rec, nil
}

// FindAllForGallery returns the gallery's records, most recent first.
// When includeSystemWide is set, system-wide records are included.
func (s *ErrorService) FindAllForGallery(galleryID int, includeSystemWide bool) ([]models.ErrorRecord, error) {
	query := s.db.Order("id")
	if includeSystemWide {
		query = query.Where("gallery_id = ? OR gallery_id = ?", galleryID, models.SystemWideGalleryID)
	} else {
		query = query.Where("gallery_id = ?", galleryID)
	}

	var recs []models.ErrorRecord
	if err := query.Find(&recs).Error; err != nil {
		return nil, fmt.Errorf("failed to list error records for gallery %d: %w", galleryID, err)
	}

	sortByTimestampDesc(recs)
	return recs, nil
}

// PersistExceptionData writes back the record's exception data column.
// Used by the notification dispatcher to keep send-failure diagnostics
// visible after the fact; no other field is ever updated.
func (s *ErrorService) PersistExceptionData(rec *models.ErrorRecord) error {
	if rec == nil || rec.ID == 0 {
		return nil
	}

	err := s.db.Model(&models.ErrorRecord{}).
		Where("id = ?", rec.ID).
		Update("exception_data", rec.ExceptionData).Error
	if err != nil {
		return fmt.Errorf("failed to update exception data for record %d: %w", rec.ID, err)
	}
	return nil
}
