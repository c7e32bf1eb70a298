package core

import (
	"fmt"
	"html"
	"strings"
	"time"
	"unicode"

	"gallerylog/models"
)

// summaryFields drives the report's scalar summary table. A table of
// (label, accessor) pairs instead of a field-enum switch: adding a
// field here cannot silently miss a render case.
var summaryFields = []struct {
	label string
	value func(*models.ErrorRecord) string
}{
	{"URL", (*models.ErrorRecord).URLDisplay},
	{"Timestamp", func(r *models.ErrorRecord) string { return r.Timestamp.Format(time.RFC1123) }},
	{"Gallery ID", galleryLabel},
	{"User agent", func(r *models.ErrorRecord) string { return displayValue(r.UserAgent()) }},
	{"Exception type", func(r *models.ErrorRecord) string { return displayValue(r.ExceptionType) }},
	{"Message", func(r *models.ErrorRecord) string { return displayValue(r.Message) }},
	{"Source", func(r *models.ErrorRecord) string { return displayValue(r.Source) }},
	{"Target site", func(r *models.ErrorRecord) string { return displayValue(r.TargetSite) }},
	{"Stack trace", func(r *models.ErrorRecord) string { return displayValue(r.StackTrace) }},
	{"Inner exception type", func(r *models.ErrorRecord) string { return displayValue(r.InnerExType) }},
	{"Inner exception message", func(r *models.ErrorRecord) string { return displayValue(r.InnerExMessage) }},
	{"Inner exception source", func(r *models.ErrorRecord) string { return displayValue(r.InnerExSource) }},
	{"Inner exception target site", func(r *models.ErrorRecord) string { return displayValue(r.InnerExTargetSite) }},
	{"Inner exception stack trace", func(r *models.ErrorRecord) string { return displayValue(r.InnerExStackTrace) }},
}

func galleryLabel(r *models.ErrorRecord) string {
	if r.IsSystemWide() {
		return "all galleries"
	}
	return fmt.Sprintf("%d", r.GalleryID)
}

func displayValue(value string) string {
	if value == "" {
		return models.MissingData
	}
	return value
}

// RenderReport produces a deterministic, self-contained HTML page for
// one record: a labeled summary table followed by tabular renderings of
// the data pair lists and the four context collections. The same
// markup serves the admin UI and the notification email body.
func RenderReport(rec *models.ErrorRecord) string {
	var b strings.Builder

	b.WriteString("<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n")
	b.WriteString("<title>Error report</title>\n")
	b.WriteString("<style>\n")
	b.WriteString("body{font-family:Verdana,Arial,sans-serif;font-size:12px}\n")
	b.WriteString("table{border-collapse:collapse;margin-bottom:1em}\n")
	b.WriteString("th,td{border:1px solid #999;padding:3px 8px;text-align:left;vertical-align:top}\n")
	b.WriteString("th{background:#dde4ec}\n")
	b.WriteString("h2{font-size:14px;margin:1em 0 0.3em}\n")
	b.WriteString("</style>\n</head>\n<body>\n")

	b.WriteString("<h2>Error summary</h2>\n<table>\n")
	for _, field := range summaryFields {
		writeRow(&b, field.label, field.value(rec))
	}
	b.WriteString("</table>\n")

	writePairTable(&b, "Exception data", rec.GetExceptionData())
	writePairTable(&b, "Inner exception data", rec.GetInnerExData())
	writePairTable(&b, "Form variables", rec.GetFormVariables())
	writePairTable(&b, "Cookies", rec.GetCookies())
	writePairTable(&b, "Session variables", rec.GetSessionVariables())
	writePairTable(&b, "Server variables", rec.GetServerVariables())

	b.WriteString("</body>\n</html>\n")
	return b.String()
}

func writeRow(b *strings.Builder, label, value string) {
	b.WriteString("<tr><th>")
	b.WriteString(html.EscapeString(label))
	b.WriteString("</th><td>")
	b.WriteString(html.EscapeString(wrapLongLines(value)))
	b.WriteString("</td></tr>\n")
}

func writePairTable(b *strings.Builder, title string, pairs models.PairList) {
	b.WriteString("<h2>")
	b.WriteString(html.EscapeString(title))
	b.WriteString("</h2>\n")

	if len(pairs) == 0 {
		b.WriteString("<p>")
		b.WriteString(html.EscapeString(models.MissingData))
		b.WriteString("</p>\n")
		return
	}

	b.WriteString("<table>\n<tr><th>Key</th><th>Value</th></tr>\n")
	for _, p := range pairs {
		b.WriteString("<tr><td>")
		b.WriteString(html.EscapeString(wrapLongLines(p.Key)))
		b.WriteString("</td><td>")
		b.WriteString(html.EscapeString(wrapLongLines(p.Value)))
		b.WriteString("</td></tr>\n")
	}
	b.WriteString("</table>\n")
}

// wrapLongLines inserts a single space after every 70 consecutive
// non-whitespace characters so the browser can word-wrap long opaque
// values. Existing whitespace runs are left untouched, and the stored
// value is never modified; only the rendered copy changes.
func wrapLongLines(s string) string {
	const limit = 70

	var b strings.Builder
	b.Grow(len(s))

	run := 0
	for _, r := range s {
		if unicode.IsSpace(r) {
			run = 0
		} else {
			run++
		}
		b.WriteRune(r)
		if run >= limit {
			b.WriteByte(' ')
			run = 0
		}
	}
	return b.String()
}
