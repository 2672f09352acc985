package domain

import (
	"regexp"
	"sort"
)

// SortKey selects the list order.
type SortKey string

const (
	SortDateAsc  SortKey = "date_asc"
	SortDateDesc SortKey = "date_desc"
	SortIDAsc    SortKey = "id_asc"
	SortIDDesc   SortKey = "id_desc"
)

// SortKeys lists the supported sort keys.
func SortKeys() []SortKey {
	return []SortKey{SortDateDesc, SortDateAsc, SortIDAsc, SortIDDesc}
}

func (k SortKey) IsValid() bool {
	switch k {
	case SortDateAsc, SortDateDesc, SortIDAsc, SortIDDesc:
		return true
	}
	return false
}

var monthKeyPattern = regexp.MustCompile(`^\d{4}-\d{2}$`)

// IsMonthKey reports whether s looks like YYYY-MM.
func IsMonthKey(s string) bool {
	return monthKeyPattern.MatchString(s)
}

// CategorySet is the set of selected categories of a filter.
type CategorySet map[string]struct{}

// NewCategorySet builds a set from a list.
func NewCategorySet(categories ...string) CategorySet {
	set := make(CategorySet, len(categories))
	for _, c := range categories {
		set[c] = struct{}{}
	}
	return set
}

func (s CategorySet) Contains(category string) bool {
	_, ok := s[category]
	return ok
}

// Sorted returns the members in ascending order.
func (s CategorySet) Sorted() []string {
	out := make([]string, 0, len(s))
	for c := range s {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

// FilterConfiguration describes what the list view currently shows.
type FilterConfiguration struct {
	Query      string
	Month      string // YYYY-MM or the wildcard
	Categories CategorySet
	Routing    string // routing value or the wildcard
	Status     string // status value or the wildcard
	Sort       SortKey
	ActiveAxis string
}

// DefaultFilters returns the "show everything" configuration for the given
// category options and taxonomy.
func DefaultFilters(tax Taxonomy, categoryOptions []string) FilterConfiguration {
	active := ""
	if len(tax.Axes) > 0 {
		active = tax.Axes[0]
	}
	return FilterConfiguration{
		Query:      "",
		Month:      Defaults.Wildcard,
		Categories: NewCategorySet(categoryOptions...),
		Routing:    Defaults.Wildcard,
		Status:     Defaults.Wildcard,
		Sort:       Defaults.SortKey,
		ActiveAxis: active,
	}
}

// Clone returns a copy that shares no state with f.
func (f FilterConfiguration) Clone() FilterConfiguration {
	c := f
	c.Categories = make(CategorySet, len(f.Categories))
	for k := range f.Categories {
		c.Categories[k] = struct{}{}
	}
	return c
}

// FilterPatch carries a partial filter update; nil fields are left unchanged.
type FilterPatch struct {
	Query      *string
	Month      *string
	Categories []string
	Routing    *string
	Status     *string
	Sort       *SortKey
	ActiveAxis *string
}

// Apply returns f with the patch applied. Categories replace the selection
// when non-nil.
func (p FilterPatch) Apply(f FilterConfiguration) FilterConfiguration {
	out := f.Clone()
	if p.Query != nil {
		out.Query = *p.Query
	}
	if p.Month != nil {
		out.Month = *p.Month
	}
	if p.Categories != nil {
		out.Categories = NewCategorySet(p.Categories...)
	}
	if p.Routing != nil {
		out.Routing = *p.Routing
	}
	if p.Status != nil {
		out.Status = *p.Status
	}
	if p.Sort != nil {
		out.Sort = *p.Sort
	}
	if p.ActiveAxis != nil {
		out.ActiveAxis = *p.ActiveAxis
	}
	return out
}
