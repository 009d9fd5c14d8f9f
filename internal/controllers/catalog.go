package controllers

import (
	"net/http"
	"strconv"

	"github.com/drstein77/storefront/internal/models"
	"github.com/drstein77/storefront/internal/query"
	"github.com/drstein77/storefront/internal/storage"
)

type catalogResponse struct {
	query.State
	TotalPages int `json:"totalPages"`
}

func (h *BaseController) catalogView() catalogResponse {
	c := h.store.Snapshot().Catalog
	return catalogResponse{State: c, TotalPages: query.TotalPages(c)}
}

func (h *BaseController) getCatalog(w http.ResponseWriter, r *http.Request) {
	h.waitIfAsked(r)
	writeJSON(w, http.StatusOK, h.catalogView())
}

func (h *BaseController) refreshCatalog(w http.ResponseWriter, r *http.Request) {
	h.store.Dispatch(storage.Refresh{})
	h.waitIfAsked(r)
	writeJSON(w, http.StatusAccepted, h.catalogView())
}

func (h *BaseController) setPage(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Page int `json:"page"`
	}
	if err := decodeJSON(r, &body); err != nil {
		h.writeError(w, err)
		return
	}
	if body.Page < 1 {
		h.writeError(w, badRequest("page must be at least 1, got "+strconv.Itoa(body.Page)))
		return
	}
	h.store.Dispatch(storage.SetPage{Page: body.Page})
	h.waitIfAsked(r)
	writeJSON(w, http.StatusAccepted, h.catalogView())
}

func (h *BaseController) setSort(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Sort string `json:"sort"`
	}
	if err := decodeJSON(r, &body); err != nil {
		h.writeError(w, err)
		return
	}
	key, err := models.ParseSortKey(body.Sort)
	if err != nil {
		h.writeError(w, badRequest(err.Error()))
		return
	}
	h.store.Dispatch(storage.SetSort{Sort: key})
	h.waitIfAsked(r)
	writeJSON(w, http.StatusAccepted, h.catalogView())
}
