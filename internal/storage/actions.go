package storage

import (
	"context"

	"github.com/drstein77/storefront/internal/cart"
	"github.com/drstein77/storefront/internal/catalog"
	"github.com/drstein77/storefront/internal/compare"
	"github.com/drstein77/storefront/internal/filters"
	"github.com/drstein77/storefront/internal/models"
	"github.com/drstein77/storefront/internal/query"
	"github.com/drstein77/storefront/internal/wishlist"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Action is a state transition. reduce must be pure: the effects it returns
// are run by the Store after the new state is published.
type Action interface {
	reduce(AppState) (AppState, []Effect)
}

// Effect is asynchronous work started by an action. A non-nil result is
// dispatched when the work completes.
type Effect func(ctx context.Context, d deps) Action

// withFilters installs f and returns to the first page.
func withFilters(s AppState, f filters.State) AppState {
	s.Filters = f
	s.Catalog = query.SetPage(s.Catalog, 1)
	return s
}

type ToggleCategory struct{ Category string }

func (a ToggleCategory) reduce(s AppState) (AppState, []Effect) {
	return withFilters(s, filters.ToggleCategory(s.Filters, a.Category)), nil
}

type ToggleBrand struct{ Brand string }

func (a ToggleBrand) reduce(s AppState) (AppState, []Effect) {
	return withFilters(s, filters.ToggleBrand(s.Filters, a.Brand)), nil
}

type ToggleRating struct{ Rating int }

func (a ToggleRating) reduce(s AppState) (AppState, []Effect) {
	return withFilters(s, filters.ToggleRating(s.Filters, a.Rating)), nil
}

type SetPriceRange struct{ Min, Max float64 }

func (a SetPriceRange) reduce(s AppState) (AppState, []Effect) {
	return withFilters(s, filters.SetPriceRange(s.Filters, a.Min, a.Max)), nil
}

type ClearPriceRange struct{}

func (ClearPriceRange) reduce(s AppState) (AppState, []Effect) {
	return withFilters(s, filters.ClearPriceRange(s.Filters)), nil
}

type ToggleNextDayDelivery struct{}

func (ToggleNextDayDelivery) reduce(s AppState) (AppState, []Effect) {
	return withFilters(s, filters.ToggleNextDayDelivery(s.Filters)), nil
}

// SetSearch commits search text. Store.TypeSearch debounces it.
type SetSearch struct{ Text string }

func (a SetSearch) reduce(s AppState) (AppState, []Effect) {
	return withFilters(s, filters.SetSearch(s.Filters, a.Text)), nil
}

type ClearFilters struct{}

func (ClearFilters) reduce(s AppState) (AppState, []Effect) {
	return withFilters(s, filters.ClearAll(s.Filters)), nil
}

type SetPage struct{ Page int }

func (a SetPage) reduce(s AppState) (AppState, []Effect) {
	s.Catalog = query.SetPage(s.Catalog, a.Page)
	return s, nil
}

type SetSort struct{ Sort models.SortKey }

func (a SetSort) reduce(s AppState) (AppState, []Effect) {
	s.Catalog = query.SetPage(query.SetSort(s.Catalog, a.Sort), 1)
	return s, nil
}

// Refresh reloads the current page even when nothing changed.
type Refresh struct{}

func (Refresh) reduce(s AppState) (AppState, []Effect) {
	s.Catalog = query.Invalidate(s.Catalog)
	return s, nil
}

type pageLoaded struct {
	seq    uint64
	params query.Params
	plan   query.Plan
	page   *models.ProductPage
}

func (a pageLoaded) reduce(s AppState) (AppState, []Effect) {
	r := query.Assemble(a.page, a.params, a.plan)
	c, ok := query.Succeeded(s.Catalog, a.seq, r)
	if !ok {
		return s, nil
	}
	s.Catalog = c
	return s, []Effect{recordObservations(r.Items)}
}

type pageFailed struct {
	seq uint64
	msg string
}

func (a pageFailed) reduce(s AppState) (AppState, []Effect) {
	if c, ok := query.Failed(s.Catalog, a.seq, a.msg); ok {
		s.Catalog = c
	}
	return s, nil
}

// LoadFacets loads the facet catalogs once per session.
type LoadFacets struct{}

func (LoadFacets) reduce(s AppState) (AppState, []Effect) {
	if !filters.NeedsLoad(s.Filters) {
		return s, nil
	}
	s.Filters = filters.LoadStarted(s.Filters)
	return s, []Effect{loadFacets}
}

// RefreshFacets reloads the facet catalogs unless a load is in flight.
type RefreshFacets struct{}

func (RefreshFacets) reduce(s AppState) (AppState, []Effect) {
	if s.Filters.Status == models.StatusLoading {
		return s, nil
	}
	s.Filters = filters.LoadStarted(s.Filters)
	return s, []Effect{loadFacets}
}

type facetsLoaded struct {
	categories []models.Category
	sample     *catalog.FacetSample
}

func (a facetsLoaded) reduce(s AppState) (AppState, []Effect) {
	s.Filters = filters.LoadSucceeded(s.Filters, a.categories, a.sample.Brands, a.sample.PriceBounds)
	return s, nil
}

type facetsFailed struct{ msg string }

func (a facetsFailed) reduce(s AppState) (AppState, []Effect) {
	s.Filters = filters.LoadFailed(s.Filters, a.msg)
	return s, nil
}

// loadFacets fetches categories and the brand sample together. Both must
// succeed; a partial result is reported as a failure.
func loadFacets(ctx context.Context, d deps) Action {
	var (
		categories []models.Category
		sample     *catalog.FacetSample
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		categories, err = d.source.Categories(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		sample, err = d.source.FacetSample(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		d.log.Error("facet load failed", zap.Error(err))
		return facetsFailed{msg: err.Error()}
	}
	if categories == nil {
		categories = []models.Category{}
	}
	if sample == nil {
		sample = &catalog.FacetSample{Brands: []string{}}
	}
	d.log.Info("facets loaded", zap.Int("categories", len(categories)), zap.Int("brands", len(sample.Brands)))
	return facetsLoaded{categories: categories, sample: sample}
}

func recordObservations(items []models.Product) Effect {
	return func(ctx context.Context, d deps) Action {
		if d.keeper == nil || len(items) == 0 {
			return nil
		}
		if err := d.keeper.RecordObservations(ctx, items); err != nil {
			d.log.Error("cannot record price observations", zap.Error(err))
		}
		return nil
	}
}

type AddToCart struct{ Product models.Product }

func (a AddToCart) reduce(s AppState) (AppState, []Effect) {
	s.Cart = cart.Add(s.Cart, a.Product)
	return s, nil
}

// RemoveFromCart takes one unit away.
type RemoveFromCart struct{ ID models.ProductID }

func (a RemoveFromCart) reduce(s AppState) (AppState, []Effect) {
	s.Cart = cart.Remove(s.Cart, a.ID)
	return s, nil
}

type SetCartQuantity struct {
	ID       models.ProductID
	Quantity int
}

func (a SetCartQuantity) reduce(s AppState) (AppState, []Effect) {
	s.Cart = cart.SetQuantity(s.Cart, a.ID, a.Quantity)
	return s, nil
}

type DeleteFromCart struct{ ID models.ProductID }

func (a DeleteFromCart) reduce(s AppState) (AppState, []Effect) {
	s.Cart = cart.Delete(s.Cart, a.ID)
	return s, nil
}

type ClearCart struct{}

func (ClearCart) reduce(s AppState) (AppState, []Effect) {
	s.Cart = cart.Clear(s.Cart)
	return s, nil
}

type AddToCompare struct{ Product models.Product }

func (a AddToCompare) reduce(s AppState) (AppState, []Effect) {
	s.Compare = compare.Add(s.Compare, a.Product)
	return s, nil
}

type RemoveFromCompare struct{ ID models.ProductID }

func (a RemoveFromCompare) reduce(s AppState) (AppState, []Effect) {
	s.Compare = compare.Remove(s.Compare, a.ID)
	return s, nil
}

type SetCompareModal struct{ Visible bool }

func (a SetCompareModal) reduce(s AppState) (AppState, []Effect) {
	s.Compare = compare.SetModalVisible(s.Compare, a.Visible)
	return s, nil
}

type ClearCompare struct{}

func (ClearCompare) reduce(s AppState) (AppState, []Effect) {
	s.Compare = compare.Clear(s.Compare)
	return s, nil
}

type AddToWishlist struct{ Product models.Product }

func (a AddToWishlist) reduce(s AppState) (AppState, []Effect) {
	s.Wishlist = wishlist.Add(s.Wishlist, a.Product)
	return s, nil
}

type RemoveFromWishlist struct{ ID models.ProductID }

func (a RemoveFromWishlist) reduce(s AppState) (AppState, []Effect) {
	s.Wishlist = wishlist.Remove(s.Wishlist, a.ID)
	return s, nil
}

type ToggleWishlist struct{ Product models.Product }

func (a ToggleWishlist) reduce(s AppState) (AppState, []Effect) {
	s.Wishlist = wishlist.Toggle(s.Wishlist, a.Product)
	return s, nil
}

type ClearWishlist struct{}

func (ClearWishlist) reduce(s AppState) (AppState, []Effect) {
	s.Wishlist = wishlist.Clear(s.Wishlist)
	return s, nil
}
