package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"
)

// PageSize is the fixed number of products per catalog page.
const PageSize = 12

// ProductID is the opaque product identity. Upstream sends numbers, we keep strings.
type ProductID string

func (id *ProductID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || string(b) == "null" {
		*id = ""
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = ProductID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("product id: %w", err)
	}
	*id = ProductID(n.String())
	return nil
}

// Product is a point-in-time snapshot of an upstream product.
type Product struct {
	ID                 ProductID `json:"id"`
	Title              string    `json:"title"`
	Description        string    `json:"description"`
	Category           string    `json:"category"`
	Brand              string    `json:"brand"`
	Price              float64   `json:"price"`
	DiscountPercentage float64   `json:"discountPercentage"`
	Rating             float64   `json:"rating"`
	Stock              int       `json:"stock"`
	Thumbnail          string    `json:"thumbnail"`
	Images             []string  `json:"images"`
	CreatedAt          time.Time `json:"createdAt"`
}

func (p *Product) UnmarshalJSON(b []byte) error {
	type plain Product
	var aux struct {
		plain
		Meta struct {
			CreatedAt time.Time `json:"createdAt"`
		} `json:"meta"`
	}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	*p = Product(aux.plain)
	if p.CreatedAt.IsZero() {
		p.CreatedAt = aux.Meta.CreatedAt
	}
	return nil
}

// Category describes one selectable category facet.
type Category struct {
	Slug string `json:"slug"`
	Name string `json:"name"`
	URL  string `json:"url,omitempty"`
}

// UnmarshalJSON accepts both the descriptor object and the legacy plain slug string.
func (c *Category) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*c = Category{Slug: s, Name: s}
		return nil
	}
	type plain Category
	var aux plain
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	*c = Category(aux)
	if c.Name == "" {
		c.Name = c.Slug
	}
	return nil
}

// PriceRange is an inclusive price interval.
type PriceRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Contains reports whether price lies within the inclusive bounds.
func (r PriceRange) Contains(price float64) bool {
	return price >= r.Min && price <= r.Max
}

// ProductPage is the upstream response envelope.
type ProductPage struct {
	Products []Product `json:"products"`
	Total    int       `json:"total"`
	Skip     int       `json:"skip"`
	Limit    int       `json:"limit"`
}

// Status is the lifecycle of an asynchronous load.
type Status string

const (
	StatusIdle      Status = "idle"
	StatusLoading   Status = "loading"
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
)

// SortKey selects the local ordering of a page.
type SortKey string

const (
	SortRelevance SortKey = "relevance"
	SortPriceLow  SortKey = "price-low"
	SortPriceHigh SortKey = "price-high"
	SortRating    SortKey = "rating"
	SortNewest    SortKey = "newest"
)

// ParseSortKey maps user input onto a known sort key.
func ParseSortKey(s string) (SortKey, error) {
	switch k := SortKey(strings.TrimSpace(strings.ToLower(s))); k {
	case SortRelevance, SortPriceLow, SortPriceHigh, SortRating, SortNewest:
		return k, nil
	case "":
		return SortRelevance, nil
	default:
		return "", fmt.Errorf("unknown sort key %q", s)
	}
}

// FilterCriteria is the user's current selection. Empty sets mean "no constraint".
type FilterCriteria struct {
	Categories      []string    `json:"categories"`
	Brands          []string    `json:"brands"`
	Ratings         []int       `json:"ratings"`
	PriceRange      *PriceRange `json:"priceRange,omitempty"`
	NextDayDelivery bool        `json:"nextDayDelivery"`
	Search          string      `json:"search"`
}

// Clone returns a deep copy.
func (f FilterCriteria) Clone() FilterCriteria {
	out := f
	out.Categories = slices.Clone(f.Categories)
	out.Brands = slices.Clone(f.Brands)
	out.Ratings = slices.Clone(f.Ratings)
	if f.PriceRange != nil {
		pr := *f.PriceRange
		out.PriceRange = &pr
	}
	return out
}

// Key renders the criteria canonically so that equal selections compare equal.
func (f FilterCriteria) Key() string {
	var sb strings.Builder
	sb.WriteString("c=")
	sb.WriteString(strings.Join(f.Categories, ","))
	sb.WriteString("|b=")
	sb.WriteString(strings.Join(f.Brands, ","))
	sb.WriteString("|r=")
	for i, r := range f.Ratings {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(strconv.Itoa(r))
	}
	sb.WriteString("|p=")
	if f.PriceRange != nil {
		sb.WriteString(strconv.FormatFloat(f.PriceRange.Min, 'f', -1, 64))
		sb.WriteByte('-')
		sb.WriteString(strconv.FormatFloat(f.PriceRange.Max, 'f', -1, 64))
	}
	sb.WriteString("|d=")
	sb.WriteString(strconv.FormatBool(f.NextDayDelivery))
	sb.WriteString("|q=")
	sb.WriteString(f.Search)
	return sb.String()
}

// ProcessResponse summarises a batch of recorded price observations.
type ProcessResponse struct {
	TotalItems      int     `json:"total_items"`
	TotalCategories int     `json:"total_categories"`
	TotalPrice      float64 `json:"total_price"`
}

// Observation is one recorded sighting of a product price.
type Observation struct {
	ProductID  ProductID `json:"productId"`
	Title      string    `json:"title"`
	Category   string    `json:"category"`
	Brand      string    `json:"brand"`
	Price      float64   `json:"price"`
	Rating     float64   `json:"rating"`
	ObservedAt time.Time `json:"observedAt"`
}
