package handler

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/openshelf/inventory-ledger/internal/domain/shop"
)

type shopRequest struct {
	Name            string          `json:"name"`
	Address         string          `json:"address"`
	Phone           string          `json:"phone"`
	DiscountKazi    decimal.Decimal `json:"discount_kazi"`
	DiscountHarvest decimal.Decimal `json:"discount_harvest"`
}

func (req *shopRequest) validate() string {
	if req.Name == "" {
		return "name is required"
	}
	hundred := decimal.NewFromInt(100)
	for _, rate := range []decimal.Decimal{req.DiscountKazi, req.DiscountHarvest} {
		if rate.IsNegative() || rate.GreaterThan(hundred) {
			return "discount rates must be between 0 and 100"
		}
	}
	return ""
}

func (h *Handler) listShops(w http.ResponseWriter, r *http.Request) {
	shops, err := h.shops.List(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	views := make([]shopView, 0, len(shops))
	for i := range shops {
		views = append(views, newShopView(&shops[i]))
	}
	respondJSON(w, http.StatusOK, views)
}

func (h *Handler) getShop(w http.ResponseWriter, r *http.Request) {
	s, err := h.shops.GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, newShopView(s))
}

func (h *Handler) createShop(w http.ResponseWriter, r *http.Request) {
	var req shopRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, "invalid request body")
		return
	}
	if msg := req.validate(); msg != "" {
		badRequest(w, msg)
		return
	}

	s := &shop.Shop{
		ID:              uuid.New().String(),
		Name:            req.Name,
		Address:         req.Address,
		Phone:           req.Phone,
		DiscountKazi:    req.DiscountKazi,
		DiscountHarvest: req.DiscountHarvest,
	}
	if err := h.shops.Create(r.Context(), s); err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, newShopView(s))
}

func (h *Handler) updateShop(w http.ResponseWriter, r *http.Request) {
	var req shopRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, "invalid request body")
		return
	}
	if msg := req.validate(); msg != "" {
		badRequest(w, msg)
		return
	}

	s := &shop.Shop{
		ID:              r.PathValue("id"),
		Name:            req.Name,
		Address:         req.Address,
		Phone:           req.Phone,
		DiscountKazi:    req.DiscountKazi,
		DiscountHarvest: req.DiscountHarvest,
	}
	if err := h.shops.Update(r.Context(), s); err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, newShopView(s))
}

func (h *Handler) deleteShop(w http.ResponseWriter, r *http.Request) {
	if err := h.shops.Delete(r.Context(), r.PathValue("id")); err != nil {
		respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
