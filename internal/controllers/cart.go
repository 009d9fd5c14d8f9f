package controllers

import (
	"fmt"
	"net/http"

	"github.com/drstein77/storefront/internal/cart"
	"github.com/drstein77/storefront/internal/compress"
	"github.com/drstein77/storefront/internal/middleware"
	"github.com/drstein77/storefront/internal/models"
	"github.com/drstein77/storefront/internal/storage"
	"go.uber.org/zap"
)

type cartResponse struct {
	cart.State
	ItemCount int `json:"itemCount"`
}

func (h *BaseController) cartView() cartResponse {
	c := h.store.Snapshot().Cart
	return cartResponse{State: c, ItemCount: c.ItemCount()}
}

func (h *BaseController) getCart(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.cartView())
}

func (h *BaseController) clearCart(w http.ResponseWriter, r *http.Request) {
	h.store.Dispatch(storage.ClearCart{})
	writeJSON(w, http.StatusOK, h.cartView())
}

func (h *BaseController) addToCart(w http.ResponseWriter, r *http.Request) {
	p, ok := h.resolve(w, r)
	if !ok {
		return
	}
	h.store.Dispatch(storage.AddToCart{Product: p})
	writeJSON(w, http.StatusOK, h.cartView())
}

func (h *BaseController) removeFromCart(w http.ResponseWriter, r *http.Request) {
	h.store.Dispatch(storage.RemoveFromCart{ID: models.ProductID(pathParam(r, "id"))})
	writeJSON(w, http.StatusOK, h.cartView())
}

func (h *BaseController) setCartQuantity(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Quantity *int `json:"quantity"`
	}
	if err := decodeJSON(r, &body); err != nil {
		h.writeError(w, err)
		return
	}
	if body.Quantity == nil {
		h.writeError(w, badRequest("quantity is required"))
		return
	}
	h.store.Dispatch(storage.SetCartQuantity{ID: models.ProductID(pathParam(r, "id")), Quantity: *body.Quantity})
	writeJSON(w, http.StatusOK, h.cartView())
}

func (h *BaseController) deleteCartLine(w http.ResponseWriter, r *http.Request) {
	h.store.Dispatch(storage.DeleteFromCart{ID: models.ProductID(pathParam(r, "id"))})
	writeJSON(w, http.StatusOK, h.cartView())
}

// exportCart streams the cart as CSV packed in the requested archive type.
func (h *BaseController) exportCart(w http.ResponseWriter, r *http.Request) {
	kind := middleware.ArchiveType(r.Context())
	state := h.store.Snapshot().Cart

	w.Header().Set("Content-Type", kind.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="cart.%s"`, kind))

	aw, err := compress.NewWriter(kind, w, "cart.csv")
	if err != nil {
		h.writeError(w, err)
		return
	}
	if err := cart.WriteCSV(aw, state); err != nil {
		h.log.Error("cannot export cart", zap.Error(err))
		return
	}
	if err := aw.Close(); err != nil {
		h.log.Error("cannot finish cart archive", zap.Error(err))
	}
}

// importCart restores quantities from an exported cart. Every product is
// resolved before anything is applied.
func (h *BaseController) importCart(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()
	entries, err := cart.ReadCSV(r.Body)
	if err != nil {
		h.writeError(w, badRequest("cannot read cart: "+err.Error()))
		return
	}

	products := make([]models.Product, 0, len(entries))
	for _, e := range entries {
		p, err := h.store.ResolveProduct(r.Context(), e.ID)
		if err != nil {
			h.writeError(w, err)
			return
		}
		products = append(products, p)
	}

	for i, e := range entries {
		h.store.Dispatch(storage.AddToCart{Product: products[i]})
		h.store.Dispatch(storage.SetCartQuantity{ID: e.ID, Quantity: e.Quantity})
	}
	writeJSON(w, http.StatusOK, h.cartView())
}
