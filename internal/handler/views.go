package handler

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/openshelf/inventory-ledger/internal/domain/invoice"
	"github.com/openshelf/inventory-ledger/internal/domain/product"
	"github.com/openshelf/inventory-ledger/internal/domain/shop"
	"github.com/openshelf/inventory-ledger/internal/domain/stock"
)

type productView struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Slug        string          `json:"slug"`
	Description string          `json:"description"`
	CostPrice   decimal.Decimal `json:"cost_price"`
	ListPrice   decimal.Decimal `json:"list_price"`
	Stock       int             `json:"stock"`
	Available   bool            `json:"is_available"`
	Category    string          `json:"category"`
	Brand       string          `json:"brand"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

func newProductView(p *product.Product) productView {
	return productView{
		ID:          p.ID,
		Name:        p.Name,
		Slug:        p.Slug,
		Description: p.Description,
		CostPrice:   p.CostPrice,
		ListPrice:   p.ListPrice,
		Stock:       p.Stock,
		Available:   p.Available,
		Category:    p.Category,
		Brand:       p.Brand,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

type shopView struct {
	ID              string          `json:"id"`
	Name            string          `json:"name"`
	Address         string          `json:"address"`
	Phone           string          `json:"phone"`
	DiscountKazi    decimal.Decimal `json:"discount_kazi"`
	DiscountHarvest decimal.Decimal `json:"discount_harvest"`
}

func newShopView(s *shop.Shop) shopView {
	return shopView{
		ID:              s.ID,
		Name:            s.Name,
		Address:         s.Address,
		Phone:           s.Phone,
		DiscountKazi:    s.DiscountKazi,
		DiscountHarvest: s.DiscountHarvest,
	}
}

type lineView struct {
	ID             string          `json:"id"`
	InvoiceID      string          `json:"invoice_id"`
	ProductID      string          `json:"product_id"`
	ProductName    string          `json:"product_name"`
	Brand          string          `json:"brand"`
	UnitCost       decimal.Decimal `json:"unit_cost"`
	Quantity       int             `json:"quantity"`
	TotalPrice     decimal.Decimal `json:"total_price"`
	DiscountAmount decimal.Decimal `json:"discount_amount"`
	FinalPrice     decimal.Decimal `json:"final_price"`
	CreatedAt      time.Time       `json:"created_at"`
}

type invoiceView struct {
	ID              string          `json:"id"`
	ShopID          string          `json:"shop_id"`
	Number          string          `json:"number"`
	Delivered       bool            `json:"delivered"`
	DiscountType    string          `json:"discount_type"`
	Subtotal        decimal.Decimal `json:"subtotal"`
	DiscountPercent decimal.Decimal `json:"discount_percent"`
	DiscountAmount  decimal.Decimal `json:"discount_amount"`
	FinalTotal      decimal.Decimal `json:"final_total"`
	CreatedAt       time.Time       `json:"created_at"`
	Items           []lineView      `json:"items,omitempty"`
}

func newInvoiceView(inv *invoice.Invoice, lines []invoice.Line) invoiceView {
	v := invoiceView{
		ID:              inv.ID,
		ShopID:          inv.ShopID,
		Number:          inv.Number,
		Delivered:       inv.Delivered,
		DiscountType:    inv.Selector,
		Subtotal:        inv.Subtotal,
		DiscountPercent: inv.DiscountPercent,
		DiscountAmount:  inv.DiscountAmount,
		FinalTotal:      inv.FinalTotal,
		CreatedAt:       inv.CreatedAt,
	}
	for _, l := range lines {
		v.Items = append(v.Items, lineView{
			ID:             l.ID,
			InvoiceID:      l.InvoiceID,
			ProductID:      l.ProductID,
			ProductName:    l.ProductName,
			Brand:          l.Brand,
			UnitCost:       l.UnitCost,
			Quantity:       l.Quantity,
			TotalPrice:     l.TotalPrice,
			DiscountAmount: l.DiscountAmount,
			FinalPrice:     l.FinalPrice,
			CreatedAt:      l.CreatedAt,
		})
	}
	return v
}

type historyEntryView struct {
	ID           string          `json:"id"`
	ProductID    string          `json:"product_id"`
	ProductName  string          `json:"product_name"`
	LastStock    int             `json:"last_stock"`
	AddedStock   int             `json:"added_stock"`
	CurrentStock int             `json:"current_stock"`
	UnitCost     decimal.Decimal `json:"unit_cost"`
	TotalValue   decimal.Decimal `json:"total_value"`
	CreatedAt    time.Time       `json:"created_at"`
}

type daySummaryView struct {
	Date       string          `json:"date"`
	TotalValue decimal.Decimal `json:"total_value"`
}

type brandSummaryView struct {
	Brand      string          `json:"brand"`
	TotalValue decimal.Decimal `json:"total_value"`
}

func newHistoryEntryView(e *stock.HistoryEntry) historyEntryView {
	return historyEntryView{
		ID:           e.ID,
		ProductID:    e.ProductID,
		ProductName:  e.ProductName,
		LastStock:    e.LastStock,
		AddedStock:   e.AddedStock,
		CurrentStock: e.CurrentStock,
		UnitCost:     e.UnitCost,
		TotalValue:   e.TotalValue,
		CreatedAt:    e.CreatedAt,
	}
}
