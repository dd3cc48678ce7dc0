//go:build integration

package integration

import (
	"fmt"
	"net/http"
	"testing"
	"time"
)

func uniqueName(prefix string) string {
	return fmt.Sprintf("%s %d", prefix, time.Now().UnixNano())
}

func createTestProduct(t *testing.T, name, costPrice string, stock int) productResponse {
	t.Helper()

	resp := doPost(t, "/api/products", map[string]any{
		"name":       name,
		"cost_price": costPrice,
		"list_price": costPrice,
		"stock":      stock,
		"category":   "Test",
		"brand":      "TestBrand",
	})
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create product: expected 201, got %d", resp.StatusCode)
	}
	return decodeJSON[productResponse](t, resp)
}

func getProduct(t *testing.T, id string) productResponse {
	t.Helper()

	resp := doGet(t, "/api/products/"+id)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("get product: expected 200, got %d", resp.StatusCode)
	}
	return decodeJSON[productResponse](t, resp)
}

func TestListProducts(t *testing.T) {
	resp := doGet(t, "/api/products")
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	products := decodeJSON[[]productResponse](t, resp)
	if len(products) < 8 {
		t.Fatalf("expected at least 8 products, got %d", len(products))
	}
	for _, p := range products {
		if p.ID == "" || p.Name == "" {
			t.Errorf("product with empty id or name: %+v", p)
		}
	}
}

func TestGetProduct_NotFound(t *testing.T) {
	resp := doGet(t, "/api/products/00000000-0000-0000-0000-000000000000")
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
}

func TestProductLifecycle(t *testing.T) {
	name := uniqueName("Mustard Oil 1L")
	created := createTestProduct(t, name, "210.00", 30)

	if created.Slug == "" {
		t.Error("expected generated slug")
	}
	if created.Stock != 30 {
		t.Errorf("stock: got %d, want 30", created.Stock)
	}
	if !created.Available {
		t.Error("expected product to default to available")
	}

	// Catalog update must not touch stock.
	resp := doPut(t, "/api/products/"+created.ID, map[string]any{
		"name":       name,
		"cost_price": "220.00",
		"list_price": "245.00",
		"stock":      999,
		"category":   "Cooking Oil",
		"brand":      "TestBrand",
	})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("update product: expected 200, got %d", resp.StatusCode)
	}

	updated := decodeJSON[productResponse](t, resp)
	if updated.Stock != 30 {
		t.Errorf("stock after catalog update: got %d, want 30", updated.Stock)
	}
	if updated.CostPrice != "220" && updated.CostPrice != "220.00" {
		t.Errorf("cost_price after update: got %q", updated.CostPrice)
	}

	del := doDelete(t, "/api/products/"+created.ID)
	del.Body.Close()
	if del.StatusCode != http.StatusNoContent {
		t.Fatalf("delete product: expected 204, got %d", del.StatusCode)
	}

	gone := doGet(t, "/api/products/"+created.ID)
	gone.Body.Close()
	if gone.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 after delete, got %d", gone.StatusCode)
	}
}

func TestRestock(t *testing.T) {
	p := createTestProduct(t, uniqueName("Chinigura Rice 1kg"), "160.00", 10)

	resp := doPost(t, "/api/products/"+p.ID+"/restock", map[string]any{"added_stock": 5})
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("restock: expected 201, got %d", resp.StatusCode)
	}

	entry := decodeJSON[historyEntryResponse](t, resp)
	if entry.LastStock != 10 || entry.AddedStock != 5 || entry.CurrentStock != 15 {
		t.Errorf("history entry stock snapshot: got %d/%d/%d, want 10/5/15",
			entry.LastStock, entry.AddedStock, entry.CurrentStock)
	}
	if entry.TotalValue != "800" {
		t.Errorf("total_value: got %q, want 800", entry.TotalValue)
	}

	if got := getProduct(t, p.ID).Stock; got != 15 {
		t.Errorf("product stock after restock: got %d, want 15", got)
	}

	today := time.Now().Format("2006-01-02")
	hist := doGet(t, "/api/stock/history?date="+today)
	defer hist.Body.Close()
	if hist.StatusCode != http.StatusOK {
		t.Fatalf("history: expected 200, got %d", hist.StatusCode)
	}
	entries := decodeJSON[[]historyEntryResponse](t, hist)
	found := false
	for _, e := range entries {
		if e.ID == entry.ID {
			found = true
			if e.ProductName != p.Name {
				t.Errorf("product_name: got %q, want %q", e.ProductName, p.Name)
			}
		}
	}
	if !found {
		t.Error("restock entry missing from today's history")
	}
}

func TestRestock_InvalidQuantity(t *testing.T) {
	p := createTestProduct(t, uniqueName("Green Tea 100g"), "95.00", 3)

	resp := doPost(t, "/api/products/"+p.ID+"/restock", map[string]any{"added_stock": 0})
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", resp.StatusCode)
	}

	if got := getProduct(t, p.ID).Stock; got != 3 {
		t.Errorf("stock changed by rejected restock: got %d, want 3", got)
	}
}

func TestStockSummaries(t *testing.T) {
	p := createTestProduct(t, uniqueName("Black Pepper 50g"), "70.00", 2)

	resp := doPost(t, "/api/products/"+p.ID+"/restock", map[string]any{"added_stock": 4})
	resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("restock: expected 201, got %d", resp.StatusCode)
	}

	daily := doGet(t, "/api/stock/summary/daily")
	defer daily.Body.Close()
	if daily.StatusCode != http.StatusOK {
		t.Fatalf("daily summaries: expected 200, got %d", daily.StatusCode)
	}
	days := decodeJSON[[]map[string]any](t, daily)
	if len(days) == 0 {
		t.Error("expected at least one daily summary")
	}

	brands := doGet(t, "/api/stock/summary/brands")
	defer brands.Body.Close()
	if brands.StatusCode != http.StatusOK {
		t.Fatalf("brand summaries: expected 200, got %d", brands.StatusCode)
	}
	byBrand := decodeJSON[[]map[string]any](t, brands)
	found := false
	for _, b := range byBrand {
		if b["brand"] == "TestBrand" {
			found = true
		}
	}
	if !found {
		t.Error("expected TestBrand in brand summaries")
	}
}
