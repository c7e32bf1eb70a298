package core

import (
	"strings"
	"testing"
	"time"

	"gallerylog/models"
)

func TestWrapLongLines(t *testing.T) {
	short := "short value"
	if got := wrapLongLines(short); got != short {
		t.Errorf("short value altered: %q", got)
	}

	long := strings.Repeat("x", 150)
	got := wrapLongLines(long)
	if !strings.Contains(got, " ") {
		t.Error("long unbroken value not wrapped")
	}
	if strings.ReplaceAll(got, " ", "") != long {
		t.Error("wrapping altered non-space characters")
	}
	// First break lands after 70 characters.
	if got[:71] != long[:70]+" " {
		t.Errorf("first break misplaced: %q", got[:72])
	}

	// Existing whitespace resets the counter, so values with
	// regular spacing are untouched.
	spaced := strings.Repeat(strings.Repeat("y", 30)+" ", 5)
	if got := wrapLongLines(spaced); got != spaced {
		t.Errorf("spaced value altered: %q", got)
	}
}

func TestRenderReportSubstitutesSentinels(t *testing.T) {
	rec := &models.ErrorRecord{
		GalleryID: 3,
		Timestamp: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
	}

	page := RenderReport(rec)
	if !strings.Contains(page, models.MissingData) {
		t.Error("report does not substitute the missing-data text for empty fields")
	}
	if !strings.Contains(page, "Error summary") {
		t.Error("report missing summary section")
	}
}

func TestRenderReportEscapesHTML(t *testing.T) {
	rec := &models.ErrorRecord{
		Timestamp: time.Now(),
		Message:   `<script>alert("x")</script>`,
	}
	rec.SetFormVariables(models.PairList{{Key: "<b>", Value: "1 & 2"}})

	page := RenderReport(rec)
	if strings.Contains(page, "<script>") {
		t.Error("report does not escape the message")
	}
	if !strings.Contains(page, "&lt;script&gt;") {
		t.Error("escaped message missing from report")
	}
	if strings.Contains(page, "<b>") {
		t.Error("report does not escape pair keys")
	}
}

func TestRenderReportIncludesPairTables(t *testing.T) {
	rec := &models.ErrorRecord{Timestamp: time.Now(), Message: "boom"}
	rec.SetCookies(models.PairList{
		{Key: "session", Value: "abc"},
		{Key: "session", Value: "def"},
	})

	page := RenderReport(rec)
	if strings.Count(page, "<td>session</td>") != 2 {
		t.Error("duplicate cookie entries not both rendered")
	}
	for _, section := range []string{"Form variables", "Cookies", "Session variables", "Server variables"} {
		if !strings.Contains(page, section) {
			t.Errorf("report missing %s section", section)
		}
	}
}

func TestRenderReportDeterministic(t *testing.T) {
	rec := &models.ErrorRecord{
		Timestamp:     time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
		Message:       "boom",
		ExceptionType: "SyncException",
	}
	rec.SetServerVariables(models.PairList{{Key: "HTTP_USER_AGENT", Value: "T/1.0"}})

	if RenderReport(rec) != RenderReport(rec) {
		t.Error("report rendering is not deterministic")
	}
}

func TestGalleryLabel(t *testing.T) {
	if got := galleryLabel(&models.ErrorRecord{GalleryID: models.SystemWideGalleryID}); got != "all galleries" {
		t.Errorf("system-wide label = %q", got)
	}
	if got := galleryLabel(&models.ErrorRecord{GalleryID: 9}); got != "9" {
		t.Errorf("gallery label = %q, want 9", got)
	}
}
