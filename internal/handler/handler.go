// Package handler exposes the engine's operations over JSON HTTP. It is a
// thin translation layer: requests are decoded, delegated to the domain
// services, and domain errors are mapped to status codes.
package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/openshelf/inventory-ledger/internal/domain/invoice"
	"github.com/openshelf/inventory-ledger/internal/domain/product"
	"github.com/openshelf/inventory-ledger/internal/domain/shop"
	"github.com/openshelf/inventory-ledger/internal/domain/stock"
)

// Handler holds the domain dependencies for all HTTP endpoints.
type Handler struct {
	products product.Repository
	shops    shop.Repository
	invoices *invoice.Service
	ledger   *stock.Ledger
}

// NewHandler constructs a Handler with the required domain dependencies.
func NewHandler(
	products product.Repository,
	shops shop.Repository,
	invoices *invoice.Service,
	ledger *stock.Ledger,
) *Handler {
	return &Handler{
		products: products,
		shops:    shops,
		invoices: invoices,
		ledger:   ledger,
	}
}

// Routes registers all API endpoints on a new mux.
func (h *Handler) Routes() *http.ServeMux {
	mux := http.NewServeMux()

	h.route(mux, "GET /api/products", h.listProducts)
	h.route(mux, "POST /api/products", h.createProduct)
	h.route(mux, "GET /api/products/{id}", h.getProduct)
	h.route(mux, "PUT /api/products/{id}", h.updateProduct)
	h.route(mux, "DELETE /api/products/{id}", h.deleteProduct)
	h.route(mux, "POST /api/products/{id}/restock", h.restockProduct)
	h.route(mux, "GET /api/products/{id}/stock", h.currentStock)

	h.route(mux, "GET /api/stock/history", h.stockHistory)
	h.route(mux, "GET /api/stock/summary/daily", h.stockDailySummaries)
	h.route(mux, "GET /api/stock/summary/brands", h.stockBrandSummaries)

	h.route(mux, "GET /api/shops", h.listShops)
	h.route(mux, "POST /api/shops", h.createShop)
	h.route(mux, "GET /api/shops/{id}", h.getShop)
	h.route(mux, "PUT /api/shops/{id}", h.updateShop)
	h.route(mux, "DELETE /api/shops/{id}", h.deleteShop)

	h.route(mux, "POST /api/orders", h.createOrder)
	h.route(mux, "GET /api/invoices", h.listInvoices)
	h.route(mux, "GET /api/invoices/{id}", h.getInvoice)
	h.route(mux, "DELETE /api/invoices/{id}", h.deleteInvoice)
	h.route(mux, "POST /api/invoices/{id}/items", h.addItems)
	h.route(mux, "POST /api/invoices/{id}/deliver", h.markDelivered)
	h.route(mux, "PATCH /api/order-items/{id}", h.editItem)
	h.route(mux, "DELETE /api/order-items/{id}", h.removeItem)

	return mux
}

// route registers the handler and records the route pattern on the otelhttp
// labeler, so per-route metrics aggregate on patterns instead of raw URLs.
func (h *Handler) route(mux *http.ServeMux, pattern string, fn http.HandlerFunc) {
	mux.HandleFunc(pattern, func(w http.ResponseWriter, r *http.Request) {
		labeler, _ := otelhttp.LabelerFromContext(r.Context())
		labeler.Add(attribute.String("http.route", pattern))
		fn(w, r)
	})
}

type errorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func decodeJSON(r *http.Request, v any) error {
	return json.NewDecoder(r.Body).Decode(v)
}

// respondError maps domain errors to protocol responses. Validation failures
// are 422, lifecycle and concurrency violations 409, missing entities 404.
func respondError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError

	var insufficient *stock.InsufficientStockError
	switch {
	case errors.Is(err, product.ErrNotFound),
		errors.Is(err, shop.ErrNotFound),
		errors.Is(err, invoice.ErrNotFound),
		errors.Is(err, invoice.ErrLineNotFound):
		status = http.StatusNotFound
	case errors.Is(err, stock.ErrInvalidQuantity),
		errors.As(err, &insufficient):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, invoice.ErrLocked),
		errors.Is(err, stock.ErrTransientConflict),
		errors.Is(err, invoice.ErrSequenceExhausted):
		status = http.StatusConflict
	}

	if status == http.StatusInternalServerError {
		zctx.From(r.Context()).Error("request failed",
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
		respondJSON(w, status, errorResponse{Code: status, Message: "internal error"})
		return
	}
	respondJSON(w, status, errorResponse{Code: status, Message: err.Error()})
}

func badRequest(w http.ResponseWriter, message string) {
	respondJSON(w, http.StatusBadRequest, errorResponse{
		Code:    http.StatusBadRequest,
		Message: message,
	})
}
