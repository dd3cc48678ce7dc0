package handler

import (
	"net/http"
	"time"
)

type restockRequest struct {
	AddedStock int `json:"added_stock"`
}

func (h *Handler) restockProduct(w http.ResponseWriter, r *http.Request) {
	var req restockRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, "invalid request body")
		return
	}

	entry, err := h.ledger.Restock(r.Context(), r.PathValue("id"), req.AddedStock)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, newHistoryEntryView(entry))
}

func (h *Handler) currentStock(w http.ResponseWriter, r *http.Request) {
	productID := r.PathValue("id")
	level, err := h.ledger.CurrentStock(r.Context(), productID)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"product_id": productID,
		"stock":      level,
	})
}

// stockHistory lists replenishment entries for one day, today by default.
func (h *Handler) stockHistory(w http.ResponseWriter, r *http.Request) {
	day := time.Now()
	if raw := r.URL.Query().Get("date"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			badRequest(w, "date must be formatted as YYYY-MM-DD")
			return
		}
		day = parsed
	}

	entries, err := h.ledger.HistoryByDate(r.Context(), day)
	if err != nil {
		respondError(w, r, err)
		return
	}
	views := make([]historyEntryView, 0, len(entries))
	for i := range entries {
		views = append(views, newHistoryEntryView(&entries[i]))
	}
	respondJSON(w, http.StatusOK, views)
}

func (h *Handler) stockDailySummaries(w http.ResponseWriter, r *http.Request) {
	summaries, err := h.ledger.DailySummaries(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	views := make([]daySummaryView, 0, len(summaries))
	for _, s := range summaries {
		views = append(views, daySummaryView{
			Date:       s.Date.Format("2006-01-02"),
			TotalValue: s.TotalValue,
		})
	}
	respondJSON(w, http.StatusOK, views)
}

func (h *Handler) stockBrandSummaries(w http.ResponseWriter, r *http.Request) {
	summaries, err := h.ledger.BrandSummaries(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	views := make([]brandSummaryView, 0, len(summaries))
	for _, s := range summaries {
		views = append(views, brandSummaryView{Brand: s.Brand, TotalValue: s.TotalValue})
	}
	respondJSON(w, http.StatusOK, views)
}
