package service

import (
	"errors"
	"strconv"
	"testing"

	"gallerylog/config"
	"gallerylog/core"
	"gallerylog/models"
)

func setConfiguredCap(t *testing.T, cap int) {
	t.Helper()
	prev := config.Settings.MaxNumberErrorItems
	config.Settings.MaxNumberErrorItems = cap
	t.Cleanup(func() {
		config.Settings.MaxNumberErrorItems = prev
	})
}

func TestForGalleryNotFound(t *testing.T) {
	svcs := newTestServices(t)
	if _, err := svcs.Settings.ForGallery(42); !errors.Is(err, core.ErrSettingsNotFound) {
		t.Errorf("ForGallery error = %v, want ErrSettingsNotFound", err)
	}
}

func TestUpsertRoundTrip(t *testing.T) {
	svcs := newTestServices(t)

	_, err := svcs.Settings.Upsert(3, models.GallerySettingUpdate{
		SendEmailOnError: true,
		EmailFromName:    "  Gallery Admin  ",
		EmailFromAddress: " admin@example.com ",
		SmtpServer:       "mail.example.com",
		SmtpServerPort:   "587",
		NotifyList: []models.EmailRecipient{
			{UserName: " alice ", Email: " alice@example.com "},
		},
	})
	if err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	gs, err := svcs.Settings.ForGallery(3)
	if err != nil {
		t.Fatalf("ForGallery: %v", err)
	}
	if gs.EmailFromName != "Gallery Admin" || gs.EmailFromAddress != "admin@example.com" {
		t.Errorf("sender fields not normalized: %q / %q", gs.EmailFromName, gs.EmailFromAddress)
	}

	list := gs.GetNotifyList()
	if len(list) != 1 || list[0].UserName != "alice" || list[0].Email != "alice@example.com" {
		t.Errorf("notify list = %v, want normalized alice", list)
	}
}

func TestUpsertReplacesExistingSettings(t *testing.T) {
	svcs := newTestServices(t)

	upsertNotifySettings(t, svcs, 1, true,
		models.EmailRecipient{UserName: "alice", Email: "alice@example.com"})
	upsertNotifySettings(t, svcs, 1, false)

	gs, err := svcs.Settings.ForGallery(1)
	if err != nil {
		t.Fatalf("ForGallery: %v", err)
	}
	if gs.SendEmailOnError {
		t.Error("SendEmailOnError not replaced by the second upsert")
	}
	if len(gs.GetNotifyList()) != 0 {
		t.Errorf("notify list = %v, want empty after replacement", gs.GetNotifyList())
	}
}

func TestAllOrderedByGalleryID(t *testing.T) {
	svcs := newTestServices(t)

	upsertNotifySettings(t, svcs, 7, true)
	upsertNotifySettings(t, svcs, 2, true)
	upsertNotifySettings(t, svcs, 5, true)

	all, err := svcs.Settings.All()
	if err != nil {
		t.Fatalf("All: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("All returned %d settings, want 3", len(all))
	}
	for i, want := range []int{2, 5, 7} {
		if all[i].GalleryID != want {
			t.Errorf("settings %d has gallery id %d, want %d", i, all[i].GalleryID, want)
		}
	}
}

func TestMaxErrorItemsDefault(t *testing.T) {
	svcs := newTestServices(t)
	setConfiguredCap(t, 150)

	if got := svcs.Settings.MaxErrorItems(); got != 150 {
		t.Errorf("MaxErrorItems() = %d, want configured default 150", got)
	}
}

func TestMaxErrorItemsOverride(t *testing.T) {
	svcs := newTestServices(t)
	setConfiguredCap(t, 150)

	if err := svcs.Settings.SetAppSetting(SettingMaxErrorItems, strconv.Itoa(75)); err != nil {
		t.Fatalf("SetAppSetting: %v", err)
	}
	if got := svcs.Settings.MaxErrorItems(); got != 75 {
		t.Errorf("MaxErrorItems() = %d, want override 75", got)
	}
}

func TestMaxErrorItemsIgnoresInvalidOverride(t *testing.T) {
	svcs := newTestServices(t)
	setConfiguredCap(t, 150)

	for _, bad := range []string{"not-a-number", "-5"} {
		if err := svcs.Settings.SetAppSetting(SettingMaxErrorItems, bad); err != nil {
			t.Fatalf("SetAppSetting(%q): %v", bad, err)
		}
		if got := svcs.Settings.MaxErrorItems(); got != 150 {
			t.Errorf("MaxErrorItems() with override %q = %d, want default", bad, got)
		}
	}
}

func TestAppSettingRoundTrip(t *testing.T) {
	svcs := newTestServices(t)

	if _, ok, err := svcs.Settings.GetAppSetting("missing"); err != nil || ok {
		t.Errorf("GetAppSetting(missing) = ok %v, err %v", ok, err)
	}

	if err := svcs.Settings.SetAppSetting("greeting", " hello "); err != nil {
		t.Fatalf("SetAppSetting: %v", err)
	}
	value, ok, err := svcs.Settings.GetAppSetting("greeting")
	if err != nil || !ok {
		t.Fatalf("GetAppSetting = ok %v, err %v", ok, err)
	}
	if value != "hello" {
		t.Errorf("value = %q, want trimmed", value)
	}

	if err := svcs.Settings.SetAppSetting("  ", "x"); err == nil {
		t.Error("blank key accepted")
	}
}
