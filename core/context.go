package core

import (
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"

	"gallerylog/models"
)

// RequestSnapshot is a point-in-time copy of the request context
// supplied to Capture. All collections are ordered pair lists, never
// maps, so duplicate form fields and cookies survive intact.
type RequestSnapshot struct {
	URL              string
	FormVariables    models.PairList
	Cookies          models.PairList
	SessionVariables models.PairList
	ServerVariables  models.PairList
}

// SnapshotFromRequest builds a RequestSnapshot from an HTTP request.
// Session variables are owned by the caller's session layer and passed
// in directly. The body is only consumed when the request exposes
// GetBody, so capturing never starves the actual handler.
func SnapshotFromRequest(r *http.Request, session models.PairList) *RequestSnapshot {
	if r == nil {
		return &RequestSnapshot{SessionVariables: session.Clone()}
	}

	snap := &RequestSnapshot{
		URL:              requestURL(r),
		FormVariables:    orderedFormPairs(r),
		Cookies:          cookiePairs(r),
		SessionVariables: session.Clone(),
		ServerVariables:  serverVariablePairs(r),
	}
	return snap
}

func requestURL(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s%s", scheme, r.Host, r.URL.RequestURI())
}

// orderedFormPairs collects query-string pairs followed by body form
// pairs, both decoded in wire order.
func orderedFormPairs(r *http.Request) models.PairList {
	pairs := parseOrderedQuery(r.URL.RawQuery)

	contentType := r.Header.Get("Content-Type")
	if r.GetBody != nil && strings.HasPrefix(contentType, "application/x-www-form-urlencoded") {
		if body, err := r.GetBody(); err == nil {
			raw, readErr := io.ReadAll(body)
			body.Close()
			if readErr == nil {
				pairs = append(pairs, parseOrderedQuery(string(raw))...)
			}
		}
	}
	return pairs
}

// parseOrderedQuery decodes form-encoded text without losing pair
// order. Undecodable segments are kept raw rather than dropped: a
// snapshot is diagnostic data, not input validation.
func parseOrderedQuery(raw string) models.PairList {
	if raw == "" {
		return nil
	}

	var pairs models.PairList
	for _, seg := range strings.Split(raw, "&") {
		if seg == "" {
			continue
		}
		key, value, _ := strings.Cut(seg, "=")
		pairs = append(pairs, models.KVPair{
			Key:   unescapeOrRaw(key),
			Value: unescapeOrRaw(value),
		})
	}
	return pairs
}

func unescapeOrRaw(s string) string {
	if decoded, err := url.QueryUnescape(s); err == nil {
		return decoded
	}
	return s
}

func cookiePairs(r *http.Request) models.PairList {
	cookies := r.Cookies()
	if len(cookies) == 0 {
		return nil
	}

	pairs := make(models.PairList, 0, len(cookies))
	for _, c := range cookies {
		pairs = append(pairs, models.KVPair{Key: c.Name, Value: c.Value})
	}
	return pairs
}

// serverVariablePairs renders the request metadata in the classic
// CGI-style server-variable vocabulary, including the HTTP_USER_AGENT
// entry the record's UserAgent accessor looks up.
func serverVariablePairs(r *http.Request) models.PairList {
	pairs := models.PairList{
		{Key: "REQUEST_METHOD", Value: r.Method},
		{Key: "SERVER_PROTOCOL", Value: r.Proto},
		{Key: "HTTP_HOST", Value: r.Host},
		{Key: "QUERY_STRING", Value: r.URL.RawQuery},
		{Key: "REMOTE_ADDR", Value: r.RemoteAddr},
	}

	// Header map order is randomized; sort names for a deterministic
	// snapshot. Multiple values under one name keep their wire order.
	names := make([]string, 0, len(r.Header))
	for name := range r.Header {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		key := "HTTP_" + strings.ToUpper(strings.ReplaceAll(name, "-", "_"))
		for _, value := range r.Header[name] {
			pairs = append(pairs, models.KVPair{Key: key, Value: value})
		}
	}
	return pairs
}
