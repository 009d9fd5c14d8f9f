package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strconv"

	"github.com/drstein77/storefront/internal/catalog"
	"github.com/drstein77/storefront/internal/middleware"
	"github.com/drstein77/storefront/internal/models"
	"github.com/drstein77/storefront/internal/storage"
	"github.com/go-chi/chi"
	chimw "github.com/go-chi/chi/middleware"
	"go.uber.org/zap"
)

// Store is the session state the controller drives.
type Store interface {
	Dispatch(storage.Action)
	Snapshot() storage.AppState
	TypeSearch(text string)
	Wait()
	ResolveProduct(ctx context.Context, id models.ProductID) (models.Product, error)
	ObservationSummary(ctx context.Context) (*models.ProcessResponse, error)
	PriceHistory(ctx context.Context, id models.ProductID) ([]models.Observation, error)
}

// Log interface for logging
type Log interface {
	Info(string, ...zap.Field)
	Error(string, ...zap.Field)
}

// BaseController serves the session state over HTTP.
type BaseController struct {
	store Store
	log   Log
}

func NewBaseController(store Store, log Log) *BaseController {
	return &BaseController{
		store: store,
		log:   log,
	}
}

// Route sets up the routes for the BaseController
func (h *BaseController) Route() *chi.Mux {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(middleware.WithLogging(h.log))

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/state", h.getState)

		r.Route("/catalog", func(r chi.Router) {
			r.Get("/", h.getCatalog)
			r.Post("/refresh", h.refreshCatalog)
			r.Put("/page", h.setPage)
			r.Put("/sort", h.setSort)
		})

		r.Route("/filters", func(r chi.Router) {
			r.Get("/", h.getFilters)
			r.Delete("/", h.clearFilters)
			r.Post("/refresh", h.refreshFacets)
			r.Post("/categories/{slug}/toggle", h.toggleCategory)
			r.Post("/brands/{brand}/toggle", h.toggleBrand)
			r.Post("/ratings/{rating}/toggle", h.toggleRating)
			r.Put("/price", h.setPriceRange)
			r.Delete("/price", h.clearPriceRange)
			r.Post("/next-day-delivery/toggle", h.toggleNextDayDelivery)
			r.Put("/search", h.setSearch)
		})

		r.Get("/products/{id}", h.getProduct)
		r.Get("/products/{id}/history", h.getPriceHistory)
		r.Get("/observations/summary", h.getObservationSummary)

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", h.getCart)
			r.Delete("/", h.clearCart)
			r.Post("/items/{id}", h.addToCart)
			r.Delete("/items/{id}", h.removeFromCart)
			r.Put("/items/{id}", h.setCartQuantity)
			r.Delete("/lines/{id}", h.deleteCartLine)

			r.With(middleware.ArchiveTypeMiddleware).Get("/export", h.exportCart)
			r.With(middleware.DecompressRequestMiddleware).Post("/import", h.importCart)
		})

		r.Route("/compare", func(r chi.Router) {
			r.Get("/", h.getCompare)
			r.Delete("/", h.clearCompare)
			r.Put("/modal", h.setCompareModal)
			r.Post("/{id}", h.addToCompare)
			r.Delete("/{id}", h.removeFromCompare)
		})

		r.Route("/wishlist", func(r chi.Router) {
			r.Get("/", h.getWishlist)
			r.Delete("/", h.clearWishlist)
			r.Post("/{id}", h.addToWishlist)
			r.Delete("/{id}", h.removeFromWishlist)
			r.Post("/{id}/toggle", h.toggleWishlist)
		})
	})

	return r
}

func (h *BaseController) getState(w http.ResponseWriter, r *http.Request) {
	h.waitIfAsked(r)
	writeJSON(w, http.StatusOK, h.store.Snapshot())
}

func (h *BaseController) getProduct(w http.ResponseWriter, r *http.Request) {
	p, err := h.store.ResolveProduct(r.Context(), models.ProductID(pathParam(r, "id")))
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *BaseController) getPriceHistory(w http.ResponseWriter, r *http.Request) {
	history, err := h.store.PriceHistory(r.Context(), models.ProductID(pathParam(r, "id")))
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, history)
}

func (h *BaseController) getObservationSummary(w http.ResponseWriter, r *http.Request) {
	sum, err := h.store.ObservationSummary(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sum)
}

// waitIfAsked blocks until in-flight loads settle when the request carries wait=true.
func (h *BaseController) waitIfAsked(r *http.Request) {
	if ok, _ := strconv.ParseBool(r.URL.Query().Get("wait")); ok {
		h.store.Wait()
	}
}

// resolve looks up the product named by the {id} path parameter.
func (h *BaseController) resolve(w http.ResponseWriter, r *http.Request) (models.Product, bool) {
	p, err := h.store.ResolveProduct(r.Context(), models.ProductID(pathParam(r, "id")))
	if err != nil {
		h.writeError(w, err)
		return models.Product{}, false
	}
	return p, true
}

type errorResponse struct {
	Error string `json:"error"`
}

var errBadRequest = errors.New("bad request")

func badRequest(msg string) error {
	return &requestError{msg: msg}
}

type requestError struct{ msg string }

func (e *requestError) Error() string { return e.msg }
func (e *requestError) Unwrap() error { return errBadRequest }

func (h *BaseController) writeError(w http.ResponseWriter, err error) {
	var ce *catalog.Error
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, errBadRequest):
		status = http.StatusBadRequest
	case errors.Is(err, storage.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, storage.ErrNoKeeper):
		status = http.StatusServiceUnavailable
	case errors.As(err, &ce):
		status = http.StatusBadGateway
	}
	if status >= http.StatusInternalServerError {
		h.log.Error("request failed", zap.Int("status", status), zap.Error(err))
	}
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func decodeJSON(r *http.Request, dst any) error {
	defer r.Body.Close()
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return badRequest("invalid JSON body: " + err.Error())
	}
	return nil
}

func pathParam(r *http.Request, name string) string {
	v := chi.URLParam(r, name)
	if unescaped, err := url.PathUnescape(v); err == nil {
		return unescaped
	}
	return v
}
