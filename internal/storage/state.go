package storage

import (
	"github.com/drstein77/storefront/internal/cart"
	"github.com/drstein77/storefront/internal/compare"
	"github.com/drstein77/storefront/internal/filters"
	"github.com/drstein77/storefront/internal/models"
	"github.com/drstein77/storefront/internal/query"
	"github.com/drstein77/storefront/internal/wishlist"
)

// AppState is the whole session state. Each slice is owned by its package's
// transition functions.
type AppState struct {
	SessionID string         `json:"sessionId"`
	Filters   filters.State  `json:"filters"`
	Catalog   query.State    `json:"catalog"`
	Cart      cart.State     `json:"cart"`
	Compare   compare.State  `json:"compare"`
	Wishlist  wishlist.State `json:"wishlist"`
}

func NewAppState(sessionID string) AppState {
	return AppState{
		SessionID: sessionID,
		Filters:   filters.NewState(),
		Catalog:   query.NewState(),
		Cart:      cart.NewState(),
		Compare:   compare.NewState(),
		Wishlist:  wishlist.NewState(),
	}
}

// Clone deep-copies every slice.
func (s AppState) Clone() AppState {
	return AppState{
		SessionID: s.SessionID,
		Filters:   s.Filters.Clone(),
		Catalog:   s.Catalog.Clone(),
		Cart:      s.Cart.Clone(),
		Compare:   s.Compare.Clone(),
		Wishlist:  s.Wishlist.Clone(),
	}
}

// Params derives the catalog query from the current selection.
func (s AppState) Params() query.Params {
	return query.Params{
		Filters:  s.Filters.Selected,
		Sort:     s.Catalog.Sort,
		Page:     s.Catalog.Page,
		PageSize: s.Catalog.PageSize,
	}
}

// findProduct looks for id among the products the session already holds.
func (s AppState) findProduct(id models.ProductID) (models.Product, bool) {
	for _, p := range s.Catalog.Items {
		if p.ID == id {
			return p, true
		}
	}
	for _, p := range s.Compare.Items {
		if p.ID == id {
			return p, true
		}
	}
	for _, p := range s.Wishlist.Items {
		if p.ID == id {
			return p, true
		}
	}
	if l, ok := s.Cart.Line(id); ok {
		return l.Product, true
	}
	return models.Product{}, false
}
