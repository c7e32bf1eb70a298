package service

import (
	"errors"
	"testing"
	"time"

	"gallerylog/core"
	"gallerylog/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

func seedRecords(t *testing.T, svcs *Services, n int) []int {
	t.Helper()
	base := time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)
	ids := make([]int, 0, n)
	for i := 0; i < n; i++ {
		id := mustSave(t, svcs.Errors, &models.ErrorRecord{
			GalleryID: 1,
			Message:   "boom",
			Timestamp: base.Add(time.Duration(i) * time.Minute),
		})
		ids = append(ids, id)
	}
	return ids
}

func TestTrimDeletesOldestBeyondCap(t *testing.T) {
	svcs := newTestServices(t)
	ids := seedRecords(t, svcs, 8)

	deleted, err := svcs.Retention.Trim(5)
	if err != nil {
		t.Fatalf("Trim: %v", err)
	}
	if deleted != 3 {
		t.Errorf("Trim deleted %d records, want 3", deleted)
	}

	recs, err := svcs.Errors.GetAll()
	if err != nil {
		t.Fatalf("GetAll: %v", err)
	}
	if len(recs) != 5 {
		t.Fatalf("%d records remain, want 5", len(recs))
	}

	// The three oldest are gone, the five newest survive.
	remaining := make(map[int]bool, len(recs))
	for _, rec := range recs {
		remaining[rec.ID] = true
	}
	for _, id := range ids[:3] {
		if remaining[id] {
			t.Errorf("oldest record %d survived the trim", id)
		}
	}
	for _, id := range ids[3:] {
		if !remaining[id] {
			t.Errorf("newest record %d was evicted", id)
		}
	}
}

func TestTrimUnderCapIsNoOp(t *testing.T) {
	svcs := newTestServices(t)
	seedRecords(t, svcs, 3)

	deleted, err := svcs.Retention.Trim(5)
	if err != nil {
		t.Fatalf("Trim: %v", err)
	}
	if deleted != 0 {
		t.Errorf("Trim deleted %d records under the cap", deleted)
	}
}

func TestTrimZeroCapDisablesTrimming(t *testing.T) {
	svcs := newTestServices(t)
	seedRecords(t, svcs, 4)

	deleted, err := svcs.Retention.Trim(0)
	if err != nil {
		t.Fatalf("Trim: %v", err)
	}
	if deleted != 0 {
		t.Errorf("Trim(0) deleted %d records, want none", deleted)
	}

	recs, err := svcs.Errors.GetAll()
	if err != nil {
		t.Fatalf("GetAll: %v", err)
	}
	if len(recs) != 4 {
		t.Errorf("Trim(0) left %d records, want all 4", len(recs))
	}
}

func TestTrimRollsBackWhenDeleteFails(t *testing.T) {
	db := newTestDB(t)
	svcs := InitServices(db, zap.NewNop())
	seedRecords(t, svcs, 6)

	// Fail the second delete of the trim so the transaction has already
	// removed one record when the error hits.
	var deletes int
	err := db.Callback().Delete().Before("gorm:delete").Register("fail_second_delete", func(tx *gorm.DB) {
		deletes++
		if deletes > 1 {
			tx.AddError(errors.New("disk I/O error"))
		}
	})
	if err != nil {
		t.Fatalf("register callback: %v", err)
	}

	if _, err := svcs.Retention.Trim(3); err == nil {
		t.Fatal("Trim did not surface the delete failure")
	}
	if deletes < 2 {
		t.Fatalf("only %d deletes attempted, failure path not reached", deletes)
	}

	if err := db.Callback().Delete().Remove("fail_second_delete"); err != nil {
		t.Fatalf("remove callback: %v", err)
	}

	// The whole trim rolls back: no partial deletions persist.
	recs, err := svcs.Errors.GetAll()
	if err != nil {
		t.Fatalf("GetAll: %v", err)
	}
	if len(recs) != 6 {
		t.Errorf("%d records remain after failed trim, want all 6", len(recs))
	}
}

func TestTrimNegativeCapRejected(t *testing.T) {
	svcs := newTestServices(t)
	seedRecords(t, svcs, 2)

	if _, err := svcs.Retention.Trim(-1); !errors.Is(err, core.ErrNegativeRetentionCap) {
		t.Errorf("Trim(-1) error = %v, want ErrNegativeRetentionCap", err)
	}

	recs, err := svcs.Errors.GetAll()
	if err != nil {
		t.Fatalf("GetAll: %v", err)
	}
	if len(recs) != 2 {
		t.Errorf("negative cap removed records: %d remain, want 2", len(recs))
	}
}
