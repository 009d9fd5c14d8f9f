// Package query decides what to ask the catalog source for and how to
// refine what comes back. The upstream API can only narrow by a single
// category or by free text; everything else happens here, on the client.
package query

import (
	"fmt"
	"math"
	"slices"
	"sort"

	"github.com/drstein77/storefront/internal/catalog"
	"github.com/drstein77/storefront/internal/models"
)

// Params is everything a catalog page depends on.
type Params struct {
	Filters  models.FilterCriteria
	Sort     models.SortKey
	Page     int
	PageSize int
}

// Key identifies Params; a new key means a new query.
func (p Params) Key() string {
	return fmt.Sprintf("page=%d|size=%d|sort=%s|%s", p.Page, p.PageSize, p.Sort, p.Filters.Key())
}

// Plan is a built upstream request together with the work left to the client.
type Plan struct {
	Request catalog.Request
	// CategoryUpstream is set when the category constraint was sent upstream.
	CategoryUpstream bool
	// LocalPaging is set when a candidate window was fetched and must be paged here.
	LocalPaging bool
}

// BuildRequest maps params onto an upstream request. A non-zero window
// switches to fetching that many candidates from offset 0 whenever client-side
// refinement is needed, so refinement happens before paging.
func BuildRequest(p Params, window int) Plan {
	size := p.PageSize
	if size <= 0 {
		size = models.PageSize
	}
	page := p.Page
	if page < 1 {
		page = 1
	}

	var plan Plan
	req := catalog.Request{Endpoint: catalog.EndpointList, Limit: size, Skip: (page - 1) * size}

	switch {
	case p.Filters.Search != "":
		req.Endpoint = catalog.EndpointSearch
		req.Search = p.Filters.Search
	case len(p.Filters.Categories) == 1:
		req.Endpoint = catalog.EndpointCategory
		req.Category = p.Filters.Categories[0]
		plan.CategoryUpstream = true
	}

	if window > 0 && needsRefinement(p, plan) {
		req.Limit = max(window, size)
		req.Skip = 0
		plan.LocalPaging = true
	}

	plan.Request = req
	return plan
}

func needsRefinement(p Params, plan Plan) bool {
	f := p.Filters
	return f.PriceRange != nil ||
		len(f.Brands) > 0 ||
		len(f.Ratings) > 0 ||
		(len(f.Categories) > 0 && !plan.CategoryUpstream) ||
		(p.Sort != "" && p.Sort != models.SortRelevance)
}

// Refine filters and sorts products locally. The input slice is not modified.
func Refine(products []models.Product, p Params, plan Plan) []models.Product {
	f := p.Filters
	out := make([]models.Product, 0, len(products))
	for _, pr := range products {
		if f.PriceRange != nil && !f.PriceRange.Contains(pr.Price) {
			continue
		}
		if len(f.Brands) > 0 && !slices.Contains(f.Brands, pr.Brand) {
			continue
		}
		if len(f.Ratings) > 0 && !slices.Contains(f.Ratings, ratingFloor(pr.Rating)) {
			continue
		}
		if len(f.Categories) > 0 && !plan.CategoryUpstream && !slices.Contains(f.Categories, pr.Category) {
			continue
		}
		out = append(out, pr)
	}
	Sort(out, p.Sort)
	return out
}

// Sort orders products in place. Relevance keeps upstream order.
func Sort(products []models.Product, key models.SortKey) {
	var less func(a, b models.Product) bool
	switch key {
	case models.SortPriceLow:
		less = func(a, b models.Product) bool { return a.Price < b.Price }
	case models.SortPriceHigh:
		less = func(a, b models.Product) bool { return a.Price > b.Price }
	case models.SortRating:
		less = func(a, b models.Product) bool { return a.Rating > b.Rating }
	case models.SortNewest:
		less = func(a, b models.Product) bool { return a.CreatedAt.After(b.CreatedAt) }
	default:
		return
	}
	sort.SliceStable(products, func(i, j int) bool { return less(products[i], products[j]) })
}

// Result is what gets published for one page.
type Result struct {
	Items      []models.Product
	TotalCount int
}

// Assemble turns an upstream page into the published result.
func Assemble(page *models.ProductPage, p Params, plan Plan) Result {
	if page == nil {
		return Result{Items: []models.Product{}}
	}
	refined := Refine(page.Products, p, plan)
	if !plan.LocalPaging {
		return Result{Items: refined, TotalCount: page.Total}
	}

	size := p.PageSize
	if size <= 0 {
		size = models.PageSize
	}
	from := min(max(p.Page-1, 0)*size, len(refined))
	to := min(from+size, len(refined))
	return Result{Items: slices.Clone(refined[from:to]), TotalCount: len(refined)}
}

func ratingFloor(r float64) int {
	return int(math.Floor(r))
}
