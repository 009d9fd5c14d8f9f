package controllers

import (
	"net/http"

	"github.com/drstein77/storefront/internal/models"
	"github.com/drstein77/storefront/internal/storage"
)

func (h *BaseController) getCompare(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.store.Snapshot().Compare)
}

func (h *BaseController) clearCompare(w http.ResponseWriter, r *http.Request) {
	h.store.Dispatch(storage.ClearCompare{})
	writeJSON(w, http.StatusOK, h.store.Snapshot().Compare)
}

func (h *BaseController) setCompareModal(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Visible bool `json:"visible"`
	}
	if err := decodeJSON(r, &body); err != nil {
		h.writeError(w, err)
		return
	}
	h.store.Dispatch(storage.SetCompareModal{Visible: body.Visible})
	writeJSON(w, http.StatusOK, h.store.Snapshot().Compare)
}

// addToCompare answers 409 when the comparison is full; a duplicate is a no-op.
func (h *BaseController) addToCompare(w http.ResponseWriter, r *http.Request) {
	id := models.ProductID(pathParam(r, "id"))
	current := h.store.Snapshot().Compare
	if !current.Contains(id) && !current.CanAdd(id) {
		writeJSON(w, http.StatusConflict, errorResponse{Error: "comparison is full"})
		return
	}

	p, ok := h.resolve(w, r)
	if !ok {
		return
	}
	h.store.Dispatch(storage.AddToCompare{Product: p})
	writeJSON(w, http.StatusOK, h.store.Snapshot().Compare)
}

func (h *BaseController) removeFromCompare(w http.ResponseWriter, r *http.Request) {
	h.store.Dispatch(storage.RemoveFromCompare{ID: models.ProductID(pathParam(r, "id"))})
	writeJSON(w, http.StatusOK, h.store.Snapshot().Compare)
}

func (h *BaseController) getWishlist(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.store.Snapshot().Wishlist)
}

func (h *BaseController) clearWishlist(w http.ResponseWriter, r *http.Request) {
	h.store.Dispatch(storage.ClearWishlist{})
	writeJSON(w, http.StatusOK, h.store.Snapshot().Wishlist)
}

func (h *BaseController) addToWishlist(w http.ResponseWriter, r *http.Request) {
	p, ok := h.resolve(w, r)
	if !ok {
		return
	}
	h.store.Dispatch(storage.AddToWishlist{Product: p})
	writeJSON(w, http.StatusOK, h.store.Snapshot().Wishlist)
}

func (h *BaseController) removeFromWishlist(w http.ResponseWriter, r *http.Request) {
	h.store.Dispatch(storage.RemoveFromWishlist{ID: models.ProductID(pathParam(r, "id"))})
	writeJSON(w, http.StatusOK, h.store.Snapshot().Wishlist)
}

func (h *BaseController) toggleWishlist(w http.ResponseWriter, r *http.Request) {
	p, ok := h.resolve(w, r)
	if !ok {
		return
	}
	h.store.Dispatch(storage.ToggleWishlist{Product: p})
	writeJSON(w, http.StatusOK, h.store.Snapshot().Wishlist)
}
