package scrape

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"time"
)

// DateLayout is the MM-DD-YYYY form dates are given in on the command line.
const DateLayout = "01-02-2006"

// ErrNoTranscripts is returned by ResumeDate for a directory without
// transcript files.
var ErrNoTranscripts = errors.New("no transcript files")

var transcriptName = regexp.MustCompile(`^([SH])(\d{4}-\d{2}-\d{2})\.txt$`)

// ParseDate parses an MM-DD-YYYY date.
func ParseDate(s string) (time.Time, error) {
	d, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date %q (want MM-DD-YYYY): %w", s, err)
	}
	return d, nil
}

// DateRange lists every day from start through end inclusive. It is empty
// when end is before start.
func DateRange(start, end time.Time) []time.Time {
	start = truncateDay(start)
	end = truncateDay(end)
	var days []time.Time
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		days = append(days, d)
	}
	return days
}

// DayURL is the congress.gov index page of one chamber-day.
func DayURL(base string, c Chamber, day time.Time) string {
	return fmt.Sprintf("%s/congressional-record/%s/%s", base, day.Format("2006/01/02"), c.Section())
}

// Filename is where the transcript of one chamber-day is saved:
// <dir>/<S|H><YYYY-MM-DD>.txt.
func Filename(dir string, c Chamber, day time.Time) string {
	return filepath.Join(dir, c.Prefix()+day.Format("2006-01-02")+".txt")
}

// ParseFilename recovers chamber and date from a transcript file name.
func ParseFilename(path string) (Chamber, time.Time, error) {
	m := transcriptName.FindStringSubmatch(filepath.Base(path))
	if m == nil {
		return "", time.Time{}, fmt.Errorf("%s is not a transcript file name", filepath.Base(path))
	}
	day, err := time.Parse("2006-01-02", m[2])
	if err != nil {
		return "", time.Time{}, fmt.Errorf("parse date in %s: %w", path, err)
	}
	c, _ := ParseChamber(m[1])
	return c, day, nil
}

// ResumeDate returns the day after the newest transcript in dir, across both
// chambers.
func ResumeDate(dir string) (time.Time, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return time.Time{}, fmt.Errorf("read %s: %w", dir, err)
	}

	var latest time.Time
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		_, day, err := ParseFilename(e.Name())
		if err != nil {
			continue
		}
		if day.After(latest) {
			latest = day
		}
	}
	if latest.IsZero() {
		return time.Time{}, fmt.Errorf("%w in %s", ErrNoTranscripts, dir)
	}
	return latest.AddDate(0, 0, 1), nil
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
