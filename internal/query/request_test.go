package query

import (
	"testing"
	"time"

	"github.com/drstein77/storefront/internal/catalog"
	"github.com/drstein77/storefront/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func params(page int, f models.FilterCriteria, sort models.SortKey) Params {
	return Params{Filters: f, Sort: sort, Page: page, PageSize: models.PageSize}
}

func ids(products []models.Product) []models.ProductID {
	out := make([]models.ProductID, 0, len(products))
	for _, p := range products {
		out = append(out, p.ID)
	}
	return out
}

func TestBuildRequest(t *testing.T) {
	tests := []struct {
		name         string
		params       Params
		want         string
		wantUpstream bool
	}{
		{
			name:   "first page no filters",
			params: params(1, models.FilterCriteria{}, models.SortRelevance),
			want:   "/products?limit=12",
		},
		{
			name:   "offset from page",
			params: params(3, models.FilterCriteria{}, models.SortRelevance),
			want:   "/products?limit=12&skip=24",
		},
		{
			name:   "page below one is clamped",
			params: params(0, models.FilterCriteria{}, models.SortRelevance),
			want:   "/products?limit=12",
		},
		{
			name:   "search",
			params: params(2, models.FilterCriteria{Search: "phone"}, models.SortRelevance),
			want:   "/products/search?limit=12&q=phone&skip=12",
		},
		{
			name:         "single category narrows upstream",
			params:       params(1, models.FilterCriteria{Categories: []string{"laptops"}}, models.SortRelevance),
			want:         "/products/category/laptops?limit=12",
			wantUpstream: true,
		},
		{
			name:   "two categories are not sent upstream",
			params: params(1, models.FilterCriteria{Categories: []string{"laptops", "tablets"}}, models.SortRelevance),
			want:   "/products?limit=12",
		},
		{
			name:   "search wins over a single category",
			params: params(1, models.FilterCriteria{Search: "pro", Categories: []string{"laptops"}}, models.SortRelevance),
			want:   "/products/search?limit=12&q=pro",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan := BuildRequest(tt.params, 0)
			assert.Equal(t, tt.want, plan.Request.URI())
			assert.Equal(t, tt.wantUpstream, plan.CategoryUpstream)
			assert.False(t, plan.LocalPaging)
		})
	}
}

func TestBuildRequest_Window(t *testing.T) {
	withBrand := params(3, models.FilterCriteria{Brands: []string{"Apple"}}, models.SortRelevance)
	plan := BuildRequest(withBrand, 100)
	assert.True(t, plan.LocalPaging)
	assert.Equal(t, "/products?limit=100", plan.Request.URI())

	plain := params(3, models.FilterCriteria{}, models.SortRelevance)
	plan = BuildRequest(plain, 100)
	assert.False(t, plan.LocalPaging, "nothing to refine, upstream paging is exact")
	assert.Equal(t, "/products?limit=12&skip=24", plan.Request.URI())

	oneCategory := params(1, models.FilterCriteria{Categories: []string{"laptops"}}, models.SortRelevance)
	assert.False(t, BuildRequest(oneCategory, 100).LocalPaging)

	sorted := params(1, models.FilterCriteria{}, models.SortPriceLow)
	assert.True(t, BuildRequest(sorted, 100).LocalPaging)
}

var sample = []models.Product{
	{ID: "1", Category: "beauty", Brand: "Essence", Price: 9.99, Rating: 4.94, CreatedAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)},
	{ID: "2", Category: "beauty", Brand: "Glamour", Price: 19.99, Rating: 3.28, CreatedAt: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)},
	{ID: "3", Category: "groceries", Brand: "", Price: 1.99, Rating: 4.19},
	{ID: "4", Category: "laptops", Brand: "Apple", Price: 1999.99, Rating: 4.5, CreatedAt: time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)},
	{ID: "5", Category: "laptops", Brand: "Essence", Price: 20, Rating: 5},
}

func TestRefine_PriceIsInclusive(t *testing.T) {
	p := params(1, models.FilterCriteria{PriceRange: &models.PriceRange{Min: 9.99, Max: 20}}, models.SortRelevance)
	got := Refine(sample, p, BuildRequest(p, 0))
	assert.Equal(t, []models.ProductID{"1", "2", "5"}, ids(got))
}

func TestRefine_BrandsAndRatingFloors(t *testing.T) {
	p := params(1, models.FilterCriteria{Brands: []string{"Essence", "Apple"}, Ratings: []int{4}}, models.SortRelevance)
	got := Refine(sample, p, BuildRequest(p, 0))
	assert.Equal(t, []models.ProductID{"1", "4"}, ids(got), "4.94 and 4.5 floor to 4, 5.0 floors to 5")
}

func TestRefine_MultipleCategoriesFilteredLocally(t *testing.T) {
	p := params(1, models.FilterCriteria{Categories: []string{"groceries", "laptops"}}, models.SortRelevance)
	plan := BuildRequest(p, 0)
	require.Equal(t, catalog.EndpointList, plan.Request.Endpoint)

	got := Refine(sample, p, plan)
	assert.Equal(t, []models.ProductID{"3", "4", "5"}, ids(got))
}

func TestRefine_SingleCategoryTrustsUpstream(t *testing.T) {
	p := params(1, models.FilterCriteria{Categories: []string{"laptops"}}, models.SortRelevance)
	got := Refine(sample, p, BuildRequest(p, 0))
	assert.Len(t, got, len(sample))
}

func TestRefine_Sorts(t *testing.T) {
	tests := map[models.SortKey][]models.ProductID{
		models.SortRelevance: {"1", "2", "3", "4", "5"},
		models.SortPriceLow:  {"3", "1", "2", "5", "4"},
		models.SortPriceHigh: {"4", "5", "2", "1", "3"},
		models.SortRating:    {"5", "1", "4", "3", "2"},
		models.SortNewest:    {"2", "4", "1", "3", "5"},
	}
	for key, want := range tests {
		t.Run(string(key), func(t *testing.T) {
			p := params(1, models.FilterCriteria{}, key)
			assert.Equal(t, want, ids(Refine(sample, p, BuildRequest(p, 0))))
		})
	}
}

func TestRefine_DoesNotReorderInput(t *testing.T) {
	in := append([]models.Product(nil), sample...)
	p := params(1, models.FilterCriteria{}, models.SortPriceHigh)
	_ = Refine(in, p, BuildRequest(p, 0))
	assert.Equal(t, ids(sample), ids(in))
}

func TestAssemble_PageLocalKeepsUpstreamTotal(t *testing.T) {
	p := params(1, models.FilterCriteria{Brands: []string{"Essence"}}, models.SortRelevance)
	r := Assemble(&models.ProductPage{Products: sample, Total: 194}, p, BuildRequest(p, 0))

	assert.Equal(t, []models.ProductID{"1", "5"}, ids(r.Items))
	assert.Equal(t, 194, r.TotalCount, "the upstream total is reported even though the page is sparse")
}

func TestAssemble_WindowPagesAfterRefinement(t *testing.T) {
	var window []models.Product
	for i := 0; i < 40; i++ {
		brand := "Other"
		if i%2 == 0 {
			brand = "Essence"
		}
		window = append(window, models.Product{ID: models.ProductID(rune('A' + i)), Brand: brand})
	}

	p := params(2, models.FilterCriteria{Brands: []string{"Essence"}}, models.SortRelevance)
	plan := BuildRequest(p, 100)
	r := Assemble(&models.ProductPage{Products: window, Total: 40}, p, plan)

	assert.Equal(t, 20, r.TotalCount)
	require.Len(t, r.Items, 8)
	assert.Equal(t, window[24].ID, r.Items[0].ID)

	p.Page = 9
	assert.Empty(t, Assemble(&models.ProductPage{Products: window, Total: 40}, p, plan).Items)
}

func TestAssemble_Nil(t *testing.T) {
	r := Assemble(nil, params(1, models.FilterCriteria{}, ""), Plan{})
	assert.NotNil(t, r.Items)
	assert.Zero(t, r.TotalCount)
}

func TestParams_Key(t *testing.T) {
	a := params(1, models.FilterCriteria{Brands: []string{"Apple"}}, models.SortRelevance)
	b := params(1, models.FilterCriteria{Brands: []string{"Apple"}}, models.SortRelevance)
	assert.Equal(t, a.Key(), b.Key())

	b.Filters.NextDayDelivery = true
	assert.NotEqual(t, a.Key(), b.Key())

	b = a
	b.Page = 2
	assert.NotEqual(t, a.Key(), b.Key())
}
