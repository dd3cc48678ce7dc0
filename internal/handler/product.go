package handler

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/openshelf/inventory-ledger/internal/domain/product"
)

type productRequest struct {
	Name        string          `json:"name"`
	Slug        string          `json:"slug"`
	Description string          `json:"description"`
	CostPrice   decimal.Decimal `json:"cost_price"`
	ListPrice   decimal.Decimal `json:"list_price"`
	Stock       int             `json:"stock"`
	Available   *bool           `json:"is_available"`
	Category    string          `json:"category"`
	Brand       string          `json:"brand"`
}

func (h *Handler) listProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.products.List(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	views := make([]productView, 0, len(products))
	for i := range products {
		views = append(views, newProductView(&products[i]))
	}
	respondJSON(w, http.StatusOK, views)
}

func (h *Handler) getProduct(w http.ResponseWriter, r *http.Request) {
	p, err := h.products.GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, newProductView(p))
}

func (h *Handler) createProduct(w http.ResponseWriter, r *http.Request) {
	var req productRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, "invalid request body")
		return
	}
	if req.Name == "" {
		badRequest(w, "name is required")
		return
	}
	if req.Stock < 0 {
		badRequest(w, "stock must not be negative")
		return
	}
	if req.Slug == "" {
		req.Slug = product.Slugify(req.Name)
	}

	p := &product.Product{
		ID:          uuid.New().String(),
		Name:        req.Name,
		Slug:        req.Slug,
		Description: req.Description,
		CostPrice:   req.CostPrice,
		ListPrice:   req.ListPrice,
		Stock:       req.Stock,
		Available:   req.Available == nil || *req.Available,
		Category:    req.Category,
		Brand:       req.Brand,
	}
	if err := h.products.Create(r.Context(), p); err != nil {
		respondError(w, r, err)
		return
	}

	created, err := h.products.GetByID(r.Context(), p.ID)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, newProductView(created))
}

// updateProduct edits catalog fields. Stock is deliberately absent from the
// update: the only ways to change it are restocking and invoice mutations.
func (h *Handler) updateProduct(w http.ResponseWriter, r *http.Request) {
	p, err := h.products.GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		respondError(w, r, err)
		return
	}

	var req productRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, "invalid request body")
		return
	}
	if req.Name == "" {
		badRequest(w, "name is required")
		return
	}
	if req.Slug == "" {
		req.Slug = product.Slugify(req.Name)
	}

	p.Name = req.Name
	p.Slug = req.Slug
	p.Description = req.Description
	p.CostPrice = req.CostPrice
	p.ListPrice = req.ListPrice
	p.Category = req.Category
	p.Brand = req.Brand
	if req.Available != nil {
		p.Available = *req.Available
	}

	if err := h.products.Update(r.Context(), p); err != nil {
		respondError(w, r, err)
		return
	}

	updated, err := h.products.GetByID(r.Context(), p.ID)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, newProductView(updated))
}

func (h *Handler) deleteProduct(w http.ResponseWriter, r *http.Request) {
	if err := h.products.Delete(r.Context(), r.PathValue("id")); err != nil {
		respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
