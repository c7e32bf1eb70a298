package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"gallerylog/core"
	"gallerylog/database"
	"gallerylog/models"
	"gallerylog/service"
	"gallerylog/version"

	"github.com/gin-gonic/gin"
)

// ListErrors lists error records, most recent first. With a gallery_id
// query parameter the result is scoped to that gallery;
// include_system=false excludes system-wide records from a scoped list.
func ListErrors(c *gin.Context) {
	galleryParam := c.Query("gallery_id")
	if galleryParam == "" {
		recs, err := service.GlobalServices.Errors.GetAll()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"detail": err.Error()})
			return
		}
		c.JSON(http.StatusOK, recs)
		return
	}

	galleryID, err := strconv.Atoi(galleryParam)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Invalid gallery ID"})
		return
	}

	includeSystem := c.DefaultQuery("include_system", "true") != "false"
	recs, err := service.GlobalServices.Errors.FindAllForGallery(galleryID, includeSystem)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": err.Error()})
		return
	}
	c.JSON(http.StatusOK, recs)
}

// GetError fetches one error record
func GetError(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Invalid error record ID"})
		return
	}

	rec, err := service.GlobalServices.Errors.FindByID(id)
	if err != nil {
		if errors.Is(err, core.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"detail": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"detail": err.Error()})
		return
	}
	c.JSON(http.StatusOK, rec)
}

// GetErrorReport renders one record as an HTML report page
func GetErrorReport(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Invalid error record ID"})
		return
	}

	rec, err := service.GlobalServices.Errors.FindByID(id)
	if err != nil {
		if errors.Is(err, core.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"detail": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"detail": err.Error()})
		return
	}

	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(core.RenderReport(rec)))
}

// RecordError captures an error reported by the web layer and runs the
// full pipeline: persist, trim, notify. The request itself supplies
// the context snapshot.
func RecordError(c *gin.Context) {
	var req models.ErrorRecordCreate
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}
	req.Normalize()

	galleryID := models.SystemWideGalleryID
	if req.GalleryID != nil {
		galleryID = *req.GalleryID
	}

	snap := core.SnapshotFromRequest(c.Request, req.SessionVariables)
	rec, err := service.GlobalServices.RecordError(reportedError(req), galleryID, snap)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true, "id": rec.ID})
}

// reportedError rebuilds the reported exception chain as a nested
// error so capture sees the original frames.
func reportedError(req models.ErrorRecordCreate) error {
	var cause error
	for i := len(req.Inner) - 1; i >= 0; i-- {
		frame := req.Inner[i]
		cause = &core.GalleryError{
			ExType:  frame.ExceptionType,
			Message: frame.Message,
			Src:     frame.Source,
			Site:    frame.TargetSite,
			Stack:   frame.StackTrace,
			Pairs:   frame.Data,
			Cause:   cause,
		}
	}

	return &core.GalleryError{
		ExType:  req.ExceptionType,
		Message: req.Message,
		Src:     req.Source,
		Site:    req.TargetSite,
		Stack:   req.StackTrace,
		Pairs:   req.Data,
		Cause:   cause,
	}
}

// DeleteError removes one error record; unknown ids are a no-op
func DeleteError(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Invalid error record ID"})
		return
	}

	if err := service.GlobalServices.Errors.Delete(id); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// ClearErrors deletes a gallery's records plus all system-wide records
func ClearErrors(c *gin.Context) {
	galleryID, err := strconv.Atoi(c.Query("gallery_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Invalid gallery ID"})
		return
	}

	if err := service.GlobalServices.Errors.ClearLog(galleryID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// TrimErrors trims the log to the effective retention cap
func TrimErrors(c *gin.Context) {
	deleted, err := service.GlobalServices.Retention.Trim(service.GlobalServices.Settings.MaxErrorItems())
	if err != nil {
		if errors.Is(err, core.ErrNegativeRetentionCap) {
			c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"detail": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "deleted": deleted})
}

// GetGallerySettings fetches one gallery's notification settings
func GetGallerySettings(c *gin.Context) {
	galleryID, err := strconv.Atoi(c.Param("galleryId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Invalid gallery ID"})
		return
	}

	gs, err := service.GlobalServices.Settings.ForGallery(galleryID)
	if err != nil {
		if errors.Is(err, core.ErrSettingsNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"detail": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"detail": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gs)
}

// UpdateGallerySettings creates or replaces a gallery's settings
func UpdateGallerySettings(c *gin.Context) {
	galleryID, err := strconv.Atoi(c.Param("galleryId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Invalid gallery ID"})
		return
	}

	var req models.GallerySettingUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}

	gs, err := service.GlobalServices.Settings.Upsert(galleryID, req)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gs)
}

// UpdateRetentionCap persists the runtime override for the retention cap
func UpdateRetentionCap(c *gin.Context) {
	var req struct {
		MaxNumberErrorItems int `json:"max_number_error_items"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}
	if req.MaxNumberErrorItems < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "retention cap must not be negative"})
		return
	}

	err := service.GlobalServices.Settings.SetAppSetting(
		service.SettingMaxErrorItems, strconv.Itoa(req.MaxNumberErrorItems))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// HealthCheck reports service and database liveness
func HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":               "ok",
		"version":              version.GetFullVersion(),
		"database_up":          database.SQLiteUp(c.Request.Context()),
		"sqlite_busy_errors":   database.SQLiteBusyErrorsTotal(),
		"sqlite_locked_errors": database.SQLiteLockedErrorsTotal(),
	})
}
