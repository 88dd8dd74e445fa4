package backend

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/schema"

	"github.com/arozhkov/storefront/internal/store/domain"
	"github.com/arozhkov/storefront/pkg/metrics"
)

// Handler serves the storefront REST API.
type Handler struct {
	log     *slog.Logger
	store   *Store
	metrics *metrics.ServerMetrics
	decoder *schema.Decoder
}

// NewHandler wires the store to the HTTP surface. metrics may be nil.
func NewHandler(log *slog.Logger, store *Store, m *metrics.ServerMetrics) *Handler {
	decoder := schema.NewDecoder()
	decoder.IgnoreUnknownKeys(true)
	return &Handler{log: log, store: store, metrics: m, decoder: decoder}
}

// Routes builds the router.
func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()
	r.Get("/product", h.instrument("list_products", h.listProducts))
	r.Get("/product/{id}", h.instrument("get_product", h.getProduct))
	r.Post("/order", h.instrument("place_order", h.placeOrder))
	r.Handle("/metrics", metrics.Handler())
	return r
}

type listFilter struct {
	Category string `schema:"category"`
	Query    string `schema:"q"`
}

type listResponse struct {
	Total int              `json:"total"`
	Items []domain.Product `json:"items"`
}

func (h *Handler) listProducts(w http.ResponseWriter, r *http.Request) {
	var filter listFilter
	if err := h.decoder.Decode(&filter, r.URL.Query()); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid query parameters")
		return
	}

	items := h.store.Products(domain.Category(filter.Category), filter.Query)
	h.writeJSON(w, http.StatusOK, listResponse{Total: len(items), Items: items})
}

func (h *Handler) getProduct(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	p, ok := h.store.Product(id)
	if !ok {
		h.writeError(w, http.StatusNotFound, "item "+id+" is no longer available")
		return
	}
	h.writeJSON(w, http.StatusOK, p)
}

func (h *Handler) placeOrder(w http.ResponseWriter, r *http.Request) {
	var order domain.Order
	if err := json.NewDecoder(r.Body).Decode(&order); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid body")
		return
	}

	result, err := h.store.PlaceOrder(order)
	if err != nil {
		h.log.Warn("order rejected", "err", err)
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	h.log.Info("order accepted", "order_id", result.ID, "total", result.Total)
	h.writeJSON(w, http.StatusOK, result)
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (h *Handler) writeError(w http.ResponseWriter, status int, msg string) {
	h.writeJSON(w, status, map[string]string{"error": msg})
}

// instrument wraps a handler with request counting and latency observation.
func (h *Handler) instrument(name string, next http.HandlerFunc) http.HandlerFunc {
	if h.metrics == nil {
		return next
	}
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next(sw, r)
		h.metrics.Observe(name, sw.status, time.Since(start))
	}
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}
