package controllers

import (
	"net/http"
	"strconv"

	"github.com/drstein77/storefront/internal/filters"
	"github.com/drstein77/storefront/internal/storage"
)

func (h *BaseController) filtersView() filters.State {
	return h.store.Snapshot().Filters
}

// applyFilter dispatches a and answers with the filter slice.
func (h *BaseController) applyFilter(w http.ResponseWriter, r *http.Request, a storage.Action) {
	h.store.Dispatch(a)
	h.waitIfAsked(r)
	writeJSON(w, http.StatusOK, h.filtersView())
}

func (h *BaseController) getFilters(w http.ResponseWriter, r *http.Request) {
	h.waitIfAsked(r)
	writeJSON(w, http.StatusOK, h.filtersView())
}

func (h *BaseController) clearFilters(w http.ResponseWriter, r *http.Request) {
	h.applyFilter(w, r, storage.ClearFilters{})
}

func (h *BaseController) refreshFacets(w http.ResponseWriter, r *http.Request) {
	h.applyFilter(w, r, storage.RefreshFacets{})
}

func (h *BaseController) toggleCategory(w http.ResponseWriter, r *http.Request) {
	h.applyFilter(w, r, storage.ToggleCategory{Category: pathParam(r, "slug")})
}

func (h *BaseController) toggleBrand(w http.ResponseWriter, r *http.Request) {
	h.applyFilter(w, r, storage.ToggleBrand{Brand: pathParam(r, "brand")})
}

func (h *BaseController) toggleRating(w http.ResponseWriter, r *http.Request) {
	rating, err := strconv.Atoi(pathParam(r, "rating"))
	if err != nil || rating < 0 || rating > filters.MaxRating {
		h.writeError(w, badRequest("rating must be an integer between 0 and 5"))
		return
	}
	h.applyFilter(w, r, storage.ToggleRating{Rating: rating})
}

func (h *BaseController) setPriceRange(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Min *float64 `json:"min"`
		Max *float64 `json:"max"`
	}
	if err := decodeJSON(r, &body); err != nil {
		h.writeError(w, err)
		return
	}
	if body.Min == nil || body.Max == nil {
		h.writeError(w, badRequest("both min and max are required"))
		return
	}
	if *body.Min < 0 || *body.Max < 0 {
		h.writeError(w, badRequest("prices cannot be negative"))
		return
	}
	h.applyFilter(w, r, storage.SetPriceRange{Min: *body.Min, Max: *body.Max})
}

func (h *BaseController) clearPriceRange(w http.ResponseWriter, r *http.Request) {
	h.applyFilter(w, r, storage.ClearPriceRange{})
}

func (h *BaseController) toggleNextDayDelivery(w http.ResponseWriter, r *http.Request) {
	h.applyFilter(w, r, storage.ToggleNextDayDelivery{})
}

// setSearch records a keystroke, or commits the text at once with immediate=true.
func (h *BaseController) setSearch(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Text      string `json:"text"`
		Immediate bool   `json:"immediate"`
	}
	if err := decodeJSON(r, &body); err != nil {
		h.writeError(w, err)
		return
	}
	if !body.Immediate {
		h.store.TypeSearch(body.Text)
		writeJSON(w, http.StatusAccepted, h.filtersView())
		return
	}
	h.applyFilter(w, r, storage.SetSearch{Text: body.Text})
}
