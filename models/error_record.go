package models

import (
	"strings"
	"time"
)

const (
	// SystemWideGalleryID marks a record that is not tied to any
	// gallery. Trimming and clear-log treat these as belonging to
	// every gallery; notification fans out across all of them.
	SystemWideGalleryID = -2147483648

	// MissingData substitutes for any exception field that was absent
	// at capture time, so persisted records never carry empty scalars
	// where a value was expected.
	MissingData = "<not available>"

	// InfoMessagePrefix marks informational entries that travel the
	// error pipeline but must never trigger email notification.
	InfoMessagePrefix = "INFO (not an error):"
)

// ErrorRecord is one captured failure: the primary exception frame, a
// single merged frame for the whole inner-exception chain, and a
// snapshot of the request context taken at capture time.
//
// Pair-list fields are stored as serialized text columns; use the
// accessor methods, which return fresh copies.
type ErrorRecord struct {
	ID        int       `gorm:"primaryKey" json:"id"`
	GalleryID int       `gorm:"index" json:"gallery_id"`
	Timestamp time.Time `gorm:"index" json:"timestamp"`

	// Primary exception frame
	ExceptionType string `gorm:"type:text" json:"exception_type"`
	Message       string `gorm:"type:text" json:"message"`
	Source        string `gorm:"type:text" json:"source"`
	TargetSite    string `gorm:"type:text" json:"target_site"`
	StackTrace    string `gorm:"type:text" json:"stack_trace"`
	ExceptionData string `gorm:"type:text" json:"-"`

	// Merged inner-exception frame. The first inner exception fills
	// these fields; each deeper one is appended with an
	// "Inner ex #N" delimiter rather than getting a frame of its own.
	InnerExType       string `gorm:"type:text" json:"inner_ex_type"`
	InnerExMessage    string `gorm:"type:text" json:"inner_ex_message"`
	InnerExSource     string `gorm:"type:text" json:"inner_ex_source"`
	InnerExTargetSite string `gorm:"type:text" json:"inner_ex_target_site"`
	InnerExStackTrace string `gorm:"type:text" json:"inner_ex_stack_trace"`
	InnerExData       string `gorm:"type:text" json:"-"`

	// Request context snapshot
	URL              string `gorm:"type:text" json:"url"`
	FormVariables    string `gorm:"type:text" json:"-"`
	Cookies          string `gorm:"type:text" json:"-"`
	SessionVariables string `gorm:"type:text" json:"-"`
	ServerVariables  string `gorm:"type:text" json:"-"`
}

// IsSystemWide reports whether the record belongs to no particular gallery.
func (r *ErrorRecord) IsSystemWide() bool {
	return r.GalleryID == SystemWideGalleryID
}

// IsInformational reports whether the record is an informational entry
// rather than a real error. The check is case-insensitive.
func (r *ErrorRecord) IsInformational() bool {
	return len(r.Message) >= len(InfoMessagePrefix) &&
		strings.EqualFold(r.Message[:len(InfoMessagePrefix)], InfoMessagePrefix)
}

// URLDisplay returns the captured URL for presentation, substituting
// the missing-data text when nothing was captured. The stored value
// stays empty; the default applies only at display time.
func (r *ErrorRecord) URLDisplay() string {
	if r.URL == "" {
		return MissingData
	}
	return r.URL
}

// UserAgent derives the user agent by case-insensitive lookup of
// HTTP_USER_AGENT among the captured server variables.
func (r *ErrorRecord) UserAgent() string {
	for _, p := range r.GetServerVariables() {
		if strings.EqualFold(p.Key, "HTTP_USER_AGENT") {
			return p.Value
		}
	}
	return ""
}

// GetExceptionData returns the primary frame's key/value data pairs.
func (r *ErrorRecord) GetExceptionData() PairList {
	return DeserializePairs(r.ExceptionData)
}

// SetExceptionData stores the primary frame's data pairs.
func (r *ErrorRecord) SetExceptionData(pairs PairList) {
	r.ExceptionData = pairs.Serialize()
}

// AddExceptionDataPair appends one entry to the primary frame's data.
// This is the only sanctioned mutation after a record is persisted: the
// notification dispatcher uses it to attach per-recipient send
// failures.
func (r *ErrorRecord) AddExceptionDataPair(key, value string) {
	pairs := r.GetExceptionData()
	pairs = append(pairs, KVPair{Key: key, Value: value})
	r.ExceptionData = pairs.Serialize()
}

// GetInnerExData returns the merged inner frame's data pairs.
func (r *ErrorRecord) GetInnerExData() PairList {
	return DeserializePairs(r.InnerExData)
}

// SetInnerExData stores the merged inner frame's data pairs.
func (r *ErrorRecord) SetInnerExData(pairs PairList) {
	r.InnerExData = pairs.Serialize()
}

// GetFormVariables returns the captured form fields in request order.
func (r *ErrorRecord) GetFormVariables() PairList {
	return DeserializePairs(r.FormVariables)
}

// SetFormVariables stores the captured form fields.
func (r *ErrorRecord) SetFormVariables(pairs PairList) {
	r.FormVariables = pairs.Serialize()
}

// GetCookies returns the captured cookies in request order.
func (r *ErrorRecord) GetCookies() PairList {
	return DeserializePairs(r.Cookies)
}

// SetCookies stores the captured cookies.
func (r *ErrorRecord) SetCookies(pairs PairList) {
	r.Cookies = pairs.Serialize()
}

// GetSessionVariables returns the captured session variables.
func (r *ErrorRecord) GetSessionVariables() PairList {
	return DeserializePairs(r.SessionVariables)
}

// SetSessionVariables stores the captured session variables.
func (r *ErrorRecord) SetSessionVariables(pairs PairList) {
	r.SessionVariables = pairs.Serialize()
}

// GetServerVariables returns the captured server variables.
func (r *ErrorRecord) GetServerVariables() PairList {
	return DeserializePairs(r.ServerVariables)
}

// SetServerVariables stores the captured server variables.
func (r *ErrorRecord) SetServerVariables(pairs PairList) {
	r.ServerVariables = pairs.Serialize()
}
