package core

import (
	"errors"
	"fmt"
	"runtime"
	"strings"
	"time"

	"gallerylog/models"
)

// Optional interfaces an error may implement to enrich its captured
// frame. Errors that implement none of these still capture fully; the
// missing pieces come from the runtime stack or the missing-data text.
type (
	sourcer     interface{ Source() string }
	targetSiter interface{ TargetSite() string }
	stackTracer interface{ StackTrace() string }
	dataCarrier interface{ ErrorData() models.PairList }
	typeNamer   interface{ TypeName() string }
)

// GalleryError is a rich error for callers that need their original
// type name, source, target site, stack trace or data pairs to survive
// capture intact (for example the web layer re-reporting an upstream
// failure).
type GalleryError struct {
	ExType  string
	Message string
	Src     string
	Site    string
	Stack   string
	Pairs   models.PairList
	Cause   error
}

func (e *GalleryError) Error() string              { return e.Message }
func (e *GalleryError) Unwrap() error              { return e.Cause }
func (e *GalleryError) TypeName() string           { return e.ExType }
func (e *GalleryError) Source() string             { return e.Src }
func (e *GalleryError) TargetSite() string         { return e.Site }
func (e *GalleryError) StackTrace() string         { return e.Stack }
func (e *GalleryError) ErrorData() models.PairList { return e.Pairs.Clone() }

// CaptureSystemWide records an error that is not tied to any gallery.
func CaptureSystemWide(err error, snap *RequestSnapshot) (*models.ErrorRecord, error) {
	return Capture(err, models.SystemWideGalleryID, snap)
}

// Capture builds an immutable ErrorRecord from err and an optional
// request snapshot. The snapshot is copied into the record here, once,
// so later mutation of the live request state cannot corrupt it.
//
// The whole unwrap chain below err is merged into a single inner frame:
// the first cause fills the inner fields directly and each deeper cause
// is appended to them with an "Inner ex #N" delimiter, its data pairs
// keyed with the matching prefix.
func Capture(err error, galleryID int, snap *RequestSnapshot) (*models.ErrorRecord, error) {
	if err == nil {
		return nil, fmt.Errorf("capture: %w", ErrNilError)
	}

	rec := &models.ErrorRecord{
		GalleryID: galleryID,
		Timestamp: time.Now(),
	}

	stack := captureStack(2)
	rec.ExceptionType = typeName(err)
	rec.Message = orMissing(err.Error())
	rec.Source = orMissing(firstOf(sourceOf(err), stack.source))
	rec.TargetSite = orMissing(firstOf(targetSiteOf(err), stack.targetSite))
	rec.StackTrace = orMissing(firstOf(stackTraceOf(err), stack.trace))
	rec.SetExceptionData(flattenData(err, ""))

	var innerData models.PairList
	n := 0
	for cause := errors.Unwrap(err); cause != nil; cause = errors.Unwrap(cause) {
		n++
		if n == 1 {
			rec.InnerExType = orMissing(typeName(cause))
			rec.InnerExMessage = orMissing(cause.Error())
			rec.InnerExSource = orMissing(sourceOf(cause))
			rec.InnerExTargetSite = orMissing(targetSiteOf(cause))
			rec.InnerExStackTrace = orMissing(stackTraceOf(cause))
			innerData = append(innerData, flattenData(cause, "")...)
			continue
		}

		sep := fmt.Sprintf("; \n Inner ex #%d: ", n)
		rec.InnerExType += sep + orMissing(typeName(cause))
		rec.InnerExMessage += sep + orMissing(cause.Error())
		rec.InnerExSource += sep + orMissing(sourceOf(cause))
		rec.InnerExTargetSite += sep + orMissing(targetSiteOf(cause))
		rec.InnerExStackTrace += sep + orMissing(stackTraceOf(cause))
		innerData = append(innerData, flattenData(cause, fmt.Sprintf("Inner ex #%d data: ", n))...)
	}
	rec.SetInnerExData(innerData)

	if snap != nil {
		rec.URL = snap.URL
		rec.SetFormVariables(snap.FormVariables)
		rec.SetCookies(snap.Cookies)
		rec.SetSessionVariables(snap.SessionVariables)
		rec.SetServerVariables(snap.ServerVariables)
	}

	return rec, nil
}

// typeName returns the error's declared type name when it carries one,
// else its Go type.
func typeName(err error) string {
	if tn, ok := err.(typeNamer); ok {
		if name := strings.TrimSpace(tn.TypeName()); name != "" {
			return name
		}
	}
	return fmt.Sprintf("%T", err)
}

func sourceOf(err error) string {
	if s, ok := err.(sourcer); ok {
		return s.Source()
	}
	return ""
}

func targetSiteOf(err error) string {
	if s, ok := err.(targetSiter); ok {
		return s.TargetSite()
	}
	return ""
}

func stackTraceOf(err error) string {
	if s, ok := err.(stackTracer); ok {
		return s.StackTrace()
	}
	return ""
}

// flattenData stringifies an error's data pairs, prefixing every key.
func flattenData(err error, keyPrefix string) models.PairList {
	dc, ok := err.(dataCarrier)
	if !ok {
		return nil
	}

	pairs := dc.ErrorData()
	out := make(models.PairList, 0, len(pairs))
	for _, p := range pairs {
		out = append(out, models.KVPair{Key: keyPrefix + p.Key, Value: p.Value})
	}
	return out
}

func orMissing(value string) string {
	if strings.TrimSpace(value) == "" {
		return models.MissingData
	}
	return value
}

func firstOf(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

type stackInfo struct {
	source     string
	targetSite string
	trace      string
}

// captureStack walks the caller stack, reporting the immediate call
// site as source/target site and the formatted frames as the trace.
func captureStack(skip int) stackInfo {
	const maxDepth = 16

	var info stackInfo
	var trace strings.Builder

	for i := skip + 1; i < skip+1+maxDepth; i++ {
		pc, file, line, ok := runtime.Caller(i)
		if !ok {
			break
		}

		funcName := "unknown"
		if fn := runtime.FuncForPC(pc); fn != nil {
			funcName = fn.Name()
		}

		if info.source == "" {
			info.source = fmt.Sprintf("%s:%d", file, line)
			info.targetSite = funcName
		}
		fmt.Fprintf(&trace, "%s:%d %s\n", file, line, funcName)
	}

	info.trace = trace.String()
	return info
}
