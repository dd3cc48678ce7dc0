package handler

import (
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/openshelf/inventory-ledger/internal/domain/invoice"
)

type orderItemRequest struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

type createOrderRequest struct {
	ShopID         string             `json:"shop_id"`
	DiscountType   string             `json:"discount_type"`
	DiscountAmount decimal.Decimal    `json:"discount_amount"`
	Items          []orderItemRequest `json:"items"`
}

type addItemsRequest struct {
	Items []orderItemRequest `json:"items"`
}

type editItemRequest struct {
	Quantity  *int    `json:"quantity"`
	ProductID *string `json:"product_id"`
}

func toItemRequests(items []orderItemRequest) []invoice.ItemRequest {
	out := make([]invoice.ItemRequest, 0, len(items))
	for _, it := range items {
		out = append(out, invoice.ItemRequest{ProductID: it.ProductID, Quantity: it.Quantity})
	}
	return out
}

func (h *Handler) createOrder(w http.ResponseWriter, r *http.Request) {
	var req createOrderRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, "invalid request body")
		return
	}
	if req.ShopID == "" {
		badRequest(w, "shop_id is required")
		return
	}
	if len(req.Items) == 0 {
		badRequest(w, "items must not be empty")
		return
	}
	for _, it := range req.Items {
		if it.ProductID == "" || it.Quantity <= 0 {
			badRequest(w, "items require a product_id and a positive quantity")
			return
		}
	}

	inv, err := h.invoices.CreateOrder(r.Context(),
		req.ShopID, req.DiscountType, req.DiscountAmount, toItemRequests(req.Items))
	if err != nil {
		respondError(w, r, err)
		return
	}
	h.respondInvoice(w, r, inv.ID, http.StatusCreated)
}

func (h *Handler) addItems(w http.ResponseWriter, r *http.Request) {
	var req addItemsRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, "invalid request body")
		return
	}
	if len(req.Items) == 0 {
		badRequest(w, "items must not be empty")
		return
	}
	for _, it := range req.Items {
		if it.ProductID == "" || it.Quantity <= 0 {
			badRequest(w, "items require a product_id and a positive quantity")
			return
		}
	}

	inv, err := h.invoices.AddItems(r.Context(), r.PathValue("id"), toItemRequests(req.Items))
	if err != nil {
		respondError(w, r, err)
		return
	}
	h.respondInvoice(w, r, inv.ID, http.StatusOK)
}

func (h *Handler) editItem(w http.ResponseWriter, r *http.Request) {
	var req editItemRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, "invalid request body")
		return
	}
	if req.Quantity == nil && req.ProductID == nil {
		badRequest(w, "nothing to change")
		return
	}

	inv, err := h.invoices.EditItem(r.Context(), r.PathValue("id"), invoice.EditItemRequest{
		Quantity:  req.Quantity,
		ProductID: req.ProductID,
	})
	if err != nil {
		respondError(w, r, err)
		return
	}
	h.respondInvoice(w, r, inv.ID, http.StatusOK)
}

func (h *Handler) removeItem(w http.ResponseWriter, r *http.Request) {
	inv, err := h.invoices.RemoveItem(r.Context(), r.PathValue("id"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	h.respondInvoice(w, r, inv.ID, http.StatusOK)
}

func (h *Handler) listInvoices(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := invoice.ListFilter{
		ShopID:        q.Get("shop_id"),
		Brand:         q.Get("brand"),
		DeliveredOnly: q.Get("delivered") == "true",
	}
	if raw := q.Get("date"); raw != "" {
		day, err := time.Parse("2006-01-02", raw)
		if err != nil {
			badRequest(w, "date must be formatted as YYYY-MM-DD")
			return
		}
		filter.Date = &day
	}

	invoices, err := h.invoices.List(r.Context(), filter)
	if err != nil {
		respondError(w, r, err)
		return
	}
	views := make([]invoiceView, 0, len(invoices))
	for i := range invoices {
		views = append(views, newInvoiceView(&invoices[i], nil))
	}
	respondJSON(w, http.StatusOK, views)
}

func (h *Handler) getInvoice(w http.ResponseWriter, r *http.Request) {
	h.respondInvoice(w, r, r.PathValue("id"), http.StatusOK)
}

func (h *Handler) deleteInvoice(w http.ResponseWriter, r *http.Request) {
	if err := h.invoices.DeleteInvoice(r.Context(), r.PathValue("id")); err != nil {
		respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) markDelivered(w http.ResponseWriter, r *http.Request) {
	inv, err := h.invoices.MarkDelivered(r.Context(), r.PathValue("id"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	h.respondInvoice(w, r, inv.ID, http.StatusOK)
}

// respondInvoice re-reads the invoice so the response carries lines with the
// denormalized product fields populated.
func (h *Handler) respondInvoice(w http.ResponseWriter, r *http.Request, invoiceID string, status int) {
	inv, lines, err := h.invoices.Get(r.Context(), invoiceID)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, status, newInvoiceView(inv, lines))
}
