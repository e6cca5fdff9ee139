// Package postname parses post filenames of the form
// YYYY-MM-DD-title-words.ext into a publication date and a title.
package postname

import (
	"strings"
	"time"
)

// InvalidDate is the formatted form of a date that could not be parsed.
const InvalidDate = "Invalid Date"

var dateLayouts = []string{"2006-01-02", "2006-1-2"}

// Meta is the metadata carried by a post filename.
type Meta struct {
	Title string
	Date  time.Time
	// DateValid is false when the filename had date segments that did not
	// parse. Date is the zero time in that case.
	DateValid bool
}

// Parse extracts the date and title from filename. Filenames with fewer than
// four dash separated segments get now as their date and the whole stem as
// their title. Parse never fails.
func Parse(filename string, now time.Time) Meta {
	stem := Stem(filename)
	parts := strings.Split(stem, "-")

	if len(parts) < 4 {
		return Meta{
			Title:     strings.ReplaceAll(stem, "-", " "),
			Date:      now,
			DateValid: true,
		}
	}

	title := strings.ReplaceAll(strings.Join(parts[3:], " "), "-", " ")
	date, ok := parseDate(strings.Join(parts[:3], "-"))
	return Meta{Title: title, Date: date, DateValid: ok}
}

func parseDate(s string) (time.Time, bool) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// Stem returns filename without its last extension. A trailing dot or a dot
// that belongs to a directory component is left alone.
func Stem(filename string) string {
	i := strings.LastIndex(filename, ".")
	if i < 0 || i == len(filename)-1 || strings.Contains(filename[i+1:], "/") {
		return filename
	}
	return filename[:i]
}

// Extension returns the lower-cased text after the last dot. A name without a
// dot is returned whole, which never matches a known extension.
func Extension(filename string) string {
	i := strings.LastIndex(filename, ".")
	return strings.ToLower(filename[i+1:])
}

// FormatDate renders t as an English long date, e.g. "March 15, 2024".
func FormatDate(t time.Time, valid bool) string {
	if !valid {
		return InvalidDate
	}
	return t.Format("January 2, 2006")
}
