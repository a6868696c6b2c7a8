package post

import (
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/goodsign/monday"
)

// Display layouts. ListLayout is "dd MMM yyyy"; DetailLayout drops the
// leading zero from the day.
const (
	ListLayout   = "02 Jan 2006"
	DetailLayout = "2 Jan 2006"
)

// prismicLayout is the timestamp format of first_publication_date.
const prismicLayout = "2006-01-02T15:04:05-0700"

// DefaultLocale is the locale the site was written for.
const DefaultLocale = monday.LocalePtBR

// ParseTimestamp parses a CMS timestamp. It returns nil for empty or
// unparseable input so callers can treat the date as unknown.
func ParseTimestamp(raw string) *time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	t, err := time.Parse(prismicLayout, raw)
	if err != nil {
		t, err = dateparse.ParseStrict(raw)
		if err != nil {
			return nil
		}
	}
	return &t
}

// DateFormatter renders publication dates for display.
type DateFormatter struct {
	Layout   string
	Locale   monday.Locale
	Location *time.Location
}

// NewDateFormatter returns a formatter for layout in locale, rendering in UTC.
// An empty locale falls back to DefaultLocale.
func NewDateFormatter(layout string, locale string) DateFormatter {
	l := monday.Locale(locale)
	if locale == "" {
		l = DefaultLocale
	}
	return DateFormatter{Layout: layout, Locale: l, Location: time.UTC}
}

// Format renders t, or returns "" when t is nil.
func (f DateFormatter) Format(t *time.Time) string {
	if t == nil {
		return ""
	}
	loc := f.Location
	if loc == nil {
		loc = time.UTC
	}
	layout := f.Layout
	if layout == "" {
		layout = ListLayout
	}
	locale := f.Locale
	if locale == "" {
		locale = DefaultLocale
	}
	return monday.Format(t.In(loc), layout, locale)
}

// FormatString parses raw and formats it; unknown dates yield "".
func (f DateFormatter) FormatString(raw string) string {
	return f.Format(ParseTimestamp(raw))
}

// FormatPage fills in the display date of every summary in results.
func (f DateFormatter) FormatPage(results []Summary) {
	for i := range results {
		results[i].Date = f.Format(results[i].FirstPublicationDate)
	}
}
