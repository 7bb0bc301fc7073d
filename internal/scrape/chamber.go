package scrape

import (
	"fmt"
	"strings"
)

// Chamber is a house of Congress, identified by its one-letter code.
type Chamber string

const (
	Senate Chamber = "s"
	House  Chamber = "h"
)

// ParseChamber accepts "s", "h", "senate" or "house" in any case.
func ParseChamber(s string) (Chamber, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "s", "senate":
		return Senate, nil
	case "h", "house":
		return House, nil
	}
	return "", fmt.Errorf("unknown chamber %q: want s or h", s)
}

// Name is the lower-case chamber name used in congress.gov paths.
func (c Chamber) Name() string {
	if c == House {
		return "house"
	}
	return "senate"
}

// Section is the day-index path segment, e.g. "senate-section".
func (c Chamber) Section() string {
	return c.Name() + "-section"
}

// Prefix is the upper-case letter transcript file names start with.
func (c Chamber) Prefix() string {
	return strings.ToUpper(string(c))
}
