package models

import "strings"

// ErrorFrameReport is one exception frame submitted by the web layer
// when it re-reports a failure it already caught.
type ErrorFrameReport struct {
	ExceptionType string   `json:"exception_type"`
	Message       string   `json:"message"`
	Source        string   `json:"source"`
	TargetSite    string   `json:"target_site"`
	StackTrace    string   `json:"stack_trace"`
	Data          PairList `json:"data"`
}

// ErrorRecordCreate is the request payload for recording an error via
// the HTTP surface. GalleryID nil means system-wide. Inner frames are
// ordered outermost-cause first, matching how exception chains are
// walked.
type ErrorRecordCreate struct {
	GalleryID        *int               `json:"gallery_id"`
	ExceptionType    string             `json:"exception_type"`
	Message          string             `json:"message" binding:"required"`
	Source           string             `json:"source"`
	TargetSite       string             `json:"target_site"`
	StackTrace       string             `json:"stack_trace"`
	Data             PairList           `json:"data"`
	Inner            []ErrorFrameReport `json:"inner"`
	SessionVariables PairList           `json:"session_variables"`
}

// Normalize trims whitespace from input fields
func (r *ErrorRecordCreate) Normalize() {
	r.ExceptionType = strings.TrimSpace(r.ExceptionType)
	r.Message = strings.TrimSpace(r.Message)
	r.Source = strings.TrimSpace(r.Source)
	r.TargetSite = strings.TrimSpace(r.TargetSite)

	for i := range r.Inner {
		r.Inner[i].ExceptionType = strings.TrimSpace(r.Inner[i].ExceptionType)
		r.Inner[i].Message = strings.TrimSpace(r.Inner[i].Message)
		r.Inner[i].Source = strings.TrimSpace(r.Inner[i].Source)
		r.Inner[i].TargetSite = strings.TrimSpace(r.Inner[i].TargetSite)
	}
}
