package service

import (
	"errors"
	"path/filepath"
	"strconv"
	"testing"

	"gallerylog/models"

	"github.com/glebarez/sqlite"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{
		Logger: logger.Discard,
	})
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}

	if err := db.AutoMigrate(&models.ErrorRecord{}, &models.GallerySetting{}, &models.AppSetting{}); err != nil {
		t.Fatalf("migrate test database: %v", err)
	}
	return db
}

func newTestServices(t *testing.T) *Services {
	t.Helper()
	return InitServices(newTestDB(t), zap.NewNop())
}

func TestRecordErrorPipeline(t *testing.T) {
	svcs := newTestServices(t)
	sent := recordSends(svcs)
	setConfiguredCap(t, 3)

	upsertNotifySettings(t, svcs, 1, true,
		models.EmailRecipient{UserName: "alice", Email: "alice@example.com"})

	// Fill the log up to the cap, then record one more error; the
	// pipeline must persist the new record, evict the oldest and send
	// the notification.
	seedRecords(t, svcs, 3)

	rec, err := svcs.RecordError(errors.New("boom"), 1, nil)
	if err != nil {
		t.Fatalf("RecordError: %v", err)
	}
	if rec.ID == 0 {
		t.Error("record not persisted")
	}

	recs, err := svcs.Errors.GetAll()
	if err != nil {
		t.Fatalf("GetAll: %v", err)
	}
	if len(recs) != 3 {
		t.Errorf("%d records after pipeline, want 3 (trimmed to cap)", len(recs))
	}
	if recs[0].ID != rec.ID {
		t.Errorf("newest record id = %d, want the just-recorded %d", recs[0].ID, rec.ID)
	}

	if len(*sent) != 1 || (*sent)[0].email != "alice@example.com" {
		t.Errorf("sent = %+v, want one notification to alice", *sent)
	}
}

func TestRecordErrorRespectsRuntimeCapOverride(t *testing.T) {
	svcs := newTestServices(t)
	recordSends(svcs)
	setConfiguredCap(t, 100)

	if err := svcs.Settings.SetAppSetting(SettingMaxErrorItems, strconv.Itoa(2)); err != nil {
		t.Fatalf("SetAppSetting: %v", err)
	}

	seedRecords(t, svcs, 4)
	if _, err := svcs.RecordError(errors.New("boom"), 1, nil); err != nil {
		t.Fatalf("RecordError: %v", err)
	}

	recs, err := svcs.Errors.GetAll()
	if err != nil {
		t.Fatalf("GetAll: %v", err)
	}
	if len(recs) != 2 {
		t.Errorf("%d records remain, want override cap of 2", len(recs))
	}
}

func TestRecordErrorNilError(t *testing.T) {
	svcs := newTestServices(t)
	if _, err := svcs.RecordError(nil, 1, nil); err == nil {
		t.Error("recording nil did not fail")
	}
}
