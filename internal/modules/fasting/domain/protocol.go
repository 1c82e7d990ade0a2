package domain

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	apperrors "fastrack/internal/platform/errors"
)

// Protocol is a named goal duration for a fast.
type Protocol struct {
	Label string
	Hours float64
}

var catalog = []Protocol{
	{Label: "16:8 (Lean Gains)", Hours: 16},
	{Label: "18:6 (Warrior)", Hours: 18},
	{Label: "20:4 (OMAD)", Hours: 20},
	{Label: "12:12 (Beginner)", Hours: 12},
	{Label: "Custom Test (1 min)", Hours: 0.017},
}

// Catalog returns a copy of the preset protocols; the first entry is the default.
func Catalog() []Protocol {
	out := make([]Protocol, len(catalog))
	copy(out, catalog)
	return out
}

func DefaultProtocol() Protocol {
	return catalog[0]
}

func (p Protocol) Validate() error {
	if strings.TrimSpace(p.Label) == "" {
		return fmt.Errorf("%w: protocol label is required", apperrors.ErrInvalidInput)
	}
	if math.IsNaN(p.Hours) || math.IsInf(p.Hours, 0) || p.Hours <= 0 {
		return fmt.Errorf("%w: protocol hours must be positive, got %v", apperrors.ErrInvalidInput, p.Hours)
	}
	return nil
}

func (p Protocol) InCatalog() bool {
	for _, c := range catalog {
		if c == p {
			return true
		}
	}
	return false
}

// EatingWindow is the rest of the day once the fasting goal is met.
func (p Protocol) EatingWindow() float64 {
	return math.Max(24-p.Hours, 0)
}

// Ratio renders the protocol as fasting:eating hours, e.g. "16:8".
func (p Protocol) Ratio() string {
	return formatHours(p.Hours) + ":" + formatHours(p.EatingWindow())
}

// LookupProtocol resolves a 1-based catalog index or a case-insensitive
// label prefix.
func LookupProtocol(query string) (Protocol, bool) {
	query = strings.TrimSpace(query)
	if query == "" {
		return Protocol{}, false
	}
	if n, err := strconv.Atoi(query); err == nil {
		if n >= 1 && n <= len(catalog) {
			return catalog[n-1], true
		}
		return Protocol{}, false
	}
	lower := strings.ToLower(query)
	for _, c := range catalog {
		if strings.HasPrefix(strings.ToLower(c.Label), lower) {
			return c, true
		}
	}
	return Protocol{}, false
}

// LabelForGoal names a recorded goal: the catalog label when one matches,
// otherwise "<hours>h".
func LabelForGoal(hours float64) string {
	for _, c := range catalog {
		if c.Hours == hours {
			return c.Label
		}
	}
	return formatHours(hours) + "h"
}

func formatHours(h float64) string {
	return strconv.FormatFloat(h, 'f', -1, 64)
}
