package service

import (
	"fmt"

	"gallerylog/core"
	"gallerylog/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// RetentionService enforces the bounded size of the error log by
// evicting the oldest records.
type RetentionService struct {
	db     *gorm.DB
	errors *ErrorService
	log    *zap.Logger
}

// NewRetentionService constructs a retention service
func NewRetentionService(db *gorm.DB, errorSvc *ErrorService, logger *zap.Logger) *RetentionService {
	return &RetentionService{db: db, errors: errorSvc, log: logger}
}

// Trim deletes the oldest records until at most maxItems remain and
// returns the number deleted. A cap of zero disables trimming and
// performs no I/O; a negative cap is rejected before any I/O.
//
// All deletions of one call run in a single transaction: if any delete
// fails the whole trim rolls back and the error propagates.
func (s *RetentionService) Trim(maxItems int) (int, error) {
	if maxItems < 0 {
		return 0, wrapSentinel(
			fmt.Sprintf("invalid retention cap %d", maxItems),
			core.ErrNegativeRetentionCap)
	}
	if maxItems == 0 {
		return 0, nil
	}

	recs, err := s.errors.GetAll()
	if err != nil {
		return 0, err
	}
	if len(recs) <= maxItems {
		return 0, nil
	}

	// recs is newest-first, so eviction walks backwards from the tail.
	err = s.db.Transaction(func(tx *gorm.DB) error {
		for i := len(recs) - 1; i >= maxItems; i-- {
			if err := tx.Delete(&models.ErrorRecord{}, "id = ?", recs[i].ID).Error; err != nil {
				return fmt.Errorf("failed to delete error record %d: %w", recs[i].ID, err)
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	deleted := len(recs) - maxItems
	s.log.Info("trimmed error log",
		zap.Int("deleted", deleted),
		zap.Int("cap", maxItems))
	return deleted, nil
}
