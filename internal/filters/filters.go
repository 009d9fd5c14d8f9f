// Package filters holds the facet catalogs and the user's filter selection.
// Every function is a pure transition: it returns a new State and never
// mutates its argument.
package filters

import (
	"cmp"
	"slices"
	"strings"

	"github.com/drstein77/storefront/internal/models"
)

// MaxRating is the highest rating floor a product can have.
const MaxRating = 5

// DefaultPriceBounds is used until the facet sample has been loaded.
var DefaultPriceBounds = models.PriceRange{Min: 0, Max: 1000}

// Catalog is the set of values the user can pick from.
type Catalog struct {
	Categories  []models.Category `json:"categories"`
	Brands      []string          `json:"brands"`
	Ratings     []int             `json:"ratings"`
	PriceBounds models.PriceRange `json:"priceBounds"`
}

// State is the filter slice of the application state.
type State struct {
	Catalog  Catalog               `json:"catalog"`
	Selected models.FilterCriteria `json:"selected"`
	Status   models.Status         `json:"status"`
	Error    string                `json:"error,omitempty"`
}

// NewState returns the session-start defaults.
func NewState() State {
	return State{
		Catalog: Catalog{
			Categories:  []models.Category{},
			Brands:      []string{},
			Ratings:     []int{5, 4, 3, 2, 1},
			PriceBounds: DefaultPriceBounds,
		},
		Selected: models.FilterCriteria{
			Categories: []string{},
			Brands:     []string{},
			Ratings:    []int{},
		},
		Status: models.StatusIdle,
	}
}

// Clone deep-copies s.
func (s State) Clone() State {
	out := s
	out.Catalog.Categories = slices.Clone(s.Catalog.Categories)
	out.Catalog.Brands = slices.Clone(s.Catalog.Brands)
	out.Catalog.Ratings = slices.Clone(s.Catalog.Ratings)
	out.Selected = s.Selected.Clone()
	return out
}

func ToggleCategory(s State, category string) State {
	category = strings.TrimSpace(category)
	if category == "" {
		return s
	}
	out := s.Clone()
	out.Selected.Categories = toggle(out.Selected.Categories, category)
	return out
}

func ToggleBrand(s State, brand string) State {
	brand = strings.TrimSpace(brand)
	if brand == "" {
		return s
	}
	out := s.Clone()
	out.Selected.Brands = toggle(out.Selected.Brands, brand)
	return out
}

// ToggleRating flips a rating floor in the selection. Values outside 0..MaxRating are ignored.
func ToggleRating(s State, rating int) State {
	if rating < 0 || rating > MaxRating {
		return s
	}
	out := s.Clone()
	out.Selected.Ratings = toggle(out.Selected.Ratings, rating)
	return out
}

// SetPriceRange replaces the selected range. Reversed bounds are swapped.
func SetPriceRange(s State, lo, hi float64) State {
	if lo > hi {
		lo, hi = hi, lo
	}
	out := s.Clone()
	out.Selected.PriceRange = &models.PriceRange{Min: lo, Max: hi}
	return out
}

// ClearPriceRange drops the price constraint.
func ClearPriceRange(s State) State {
	out := s.Clone()
	out.Selected.PriceRange = nil
	return out
}

func ToggleNextDayDelivery(s State) State {
	out := s.Clone()
	out.Selected.NextDayDelivery = !out.Selected.NextDayDelivery
	return out
}

func SetSearch(s State, text string) State {
	out := s.Clone()
	out.Selected.Search = strings.TrimSpace(text)
	return out
}

// ClearAll resets the selection and keeps the facet catalogs.
func ClearAll(s State) State {
	out := s.Clone()
	out.Selected = NewState().Selected
	return out
}

// NeedsLoad reports whether the facet catalogs have never been requested.
func NeedsLoad(s State) bool {
	return s.Status == models.StatusIdle
}

func LoadStarted(s State) State {
	out := s.Clone()
	out.Status = models.StatusLoading
	return out
}

// LoadSucceeded replaces all facet catalogs at once. Rating floors are static.
func LoadSucceeded(s State, categories []models.Category, brands []string, bounds models.PriceRange) State {
	out := s.Clone()
	out.Catalog.Categories = slices.Clone(categories)
	out.Catalog.Brands = slices.Clone(brands)
	if bounds.Max > bounds.Min {
		out.Catalog.PriceBounds = bounds
	}
	out.Status = models.StatusSucceeded
	out.Error = ""
	return out
}

// LoadFailed records the cause and keeps previously loaded catalogs.
func LoadFailed(s State, msg string) State {
	out := s.Clone()
	out.Status = models.StatusFailed
	out.Error = msg
	return out
}

// toggle adds v to the sorted set xs or removes it when present.
func toggle[T cmp.Ordered](xs []T, v T) []T {
	i, found := slices.BinarySearch(xs, v)
	if found {
		return slices.Delete(xs, i, i+1)
	}
	return slices.Insert(xs, i, v)
}
