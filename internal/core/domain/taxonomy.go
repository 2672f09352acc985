package domain

import (
	"errors"
	"strings"
)

var (
	ErrNoAxes           = errors.New("taxonomy must define at least one axis")
	ErrFallbackRequired = errors.New("taxonomy fallback category is required")
)

// Taxonomy holds the category axes used for sections and the default
// category options offered to operators.
type Taxonomy struct {
	Axes             []string `yaml:"axes"`
	Categories       []string `yaml:"categories"`
	FallbackCategory string   `yaml:"fallbackCategory"`
}

// DefaultTaxonomy returns the built-in taxonomy.
func DefaultTaxonomy() Taxonomy {
	return Taxonomy{
		Axes:             append([]string(nil), Defaults.Axes...),
		Categories:       append([]string(nil), Defaults.CategoryOptions...),
		FallbackCategory: Defaults.FallbackCategory,
	}
}

// Validate checks the taxonomy and trims its entries in place.
func (t *Taxonomy) Validate() error {
	t.Axes = CleanCategories(t.Axes, true)
	t.Categories = CleanCategories(t.Categories, true)
	t.FallbackCategory = strings.TrimSpace(t.FallbackCategory)

	var errs []error
	if len(t.Axes) == 0 {
		errs = append(errs, ErrNoAxes)
	}
	if t.FallbackCategory == "" {
		errs = append(errs, ErrFallbackRequired)
	}
	return errors.Join(errs...)
}

// HasAxis reports whether axis is one of the known axes.
func (t Taxonomy) HasAxis(axis string) bool {
	for _, a := range t.Axes {
		if a == axis {
			return true
		}
	}
	return false
}

// CategoryOptions returns the default options followed by every category seen
// in tickets, in first-seen order.
func (t Taxonomy) CategoryOptions(tickets []*Ticket) []string {
	all := append([]string(nil), t.Categories...)
	for _, tk := range tickets {
		all = append(all, tk.Categories...)
	}
	return CleanCategories(all, false)
}
