package handlers

import (
	"fmt"
	"net/http"
	"testing"

	"go-pharma-pos/internal/database"
	"go-pharma-pos/internal/models"
	"go-pharma-pos/internal/rbac"
)

func TestAdjustStockAdd(t *testing.T) {
	setupTestDB(t)
	r := newTestRouter()
	_, token := createTestUser(t, "superadmin", "secret", rbac.SuperadminRole)
	product := createTestProduct(t, "Paracetamol 500mg", 100, 1000, 1500)

	w, body := doRequest(t, r, "POST", "/api/inventory/adjust", token, map[string]any{
		"productId": product.ID,
		"type":      "add",
		"quantity":  50,
		"note":      "restock from supplier",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if got := body["newStock"].(float64); got != 150 {
		t.Fatalf("expected newStock 150, got %v", got)
	}
	if got := reloadProduct(t, product.ID).Stock; got != 150 {
		t.Fatalf("expected persisted stock 150, got %d", got)
	}

	var entry models.InventoryHistory
	if err := database.DB.Where("product_id = ?", product.ID).First(&entry).Error; err != nil {
		t.Fatalf("expected one history row: %v", err)
	}
	if entry.Type != models.HistoryAdjustment {
		t.Errorf("expected type adjustment, got %s", entry.Type)
	}
	if entry.QuantityChange != 50 || entry.PreviousStock != 100 || entry.NewStock != 150 {
		t.Errorf("wrong ledger row: change=%d prev=%d new=%d", entry.QuantityChange, entry.PreviousStock, entry.NewStock)
	}
}

func TestAdjustStockReduceInsufficient(t *testing.T) {
	setupTestDB(t)
	r := newTestRouter()
	_, token := createTestUser(t, "superadmin", "secret", rbac.SuperadminRole)
	product := createTestProduct(t, "Amoxicillin 500mg", 100, 2000, 3000)

	w, body := doRequest(t, r, "POST", "/api/inventory/adjust", token, map[string]any{
		"productId": product.ID,
		"type":      "reduce",
		"quantity":  200,
	})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", w.Code, w.Body.String())
	}
	if body["message"] != "Insufficient stock" {
		t.Errorf("unexpected message: %v", body["message"])
	}
	if got := reloadProduct(t, product.ID).Stock; got != 100 {
		t.Errorf("stock should be unchanged, got %d", got)
	}
	if n := historyCount(t, product.ID); n != 0 {
		t.Errorf("expected no history rows, got %d", n)
	}
}

func TestAdjustStockReduce(t *testing.T) {
	setupTestDB(t)
	r := newTestRouter()
	_, token := createTestUser(t, "superadmin", "secret", rbac.SuperadminRole)
	product := createTestProduct(t, "OBH Combi", 30, 12000, 15000)

	w, body := doRequest(t, r, "POST", "/api/inventory/adjust", token, map[string]any{
		"productId": product.ID,
		"type":      "reduce",
		"quantity":  12,
		"note":      "expired batch",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if got := body["newStock"].(float64); got != 18 {
		t.Fatalf("expected newStock 18, got %v", got)
	}

	var entry models.InventoryHistory
	if err := database.DB.Where("product_id = ?", product.ID).First(&entry).Error; err != nil {
		t.Fatalf("expected history row: %v", err)
	}
	if entry.QuantityChange != -12 || entry.PreviousStock != 30 || entry.NewStock != 18 {
		t.Errorf("wrong ledger row: change=%d prev=%d new=%d", entry.QuantityChange, entry.PreviousStock, entry.NewStock)
	}
}

func TestAdjustStockValidation(t *testing.T) {
	setupTestDB(t)
	r := newTestRouter()
	_, token := createTestUser(t, "superadmin", "secret", rbac.SuperadminRole)
	product := createTestProduct(t, "Vitamin C", 10, 500, 800)

	cases := []struct {
		name string
		body map[string]any
		want int
	}{
		{"unknown type", map[string]any{"productId": product.ID, "type": "set", "quantity": 5}, http.StatusBadRequest},
		{"negative quantity", map[string]any{"productId": product.ID, "type": "add", "quantity": -5}, http.StatusBadRequest},
		{"missing product", map[string]any{"productId": 9999, "type": "add", "quantity": 5}, http.StatusNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w, _ := doRequest(t, r, "POST", "/api/inventory/adjust", token, tc.body)
			if w.Code != tc.want {
				t.Fatalf("expected %d, got %d: %s", tc.want, w.Code, w.Body.String())
			}
		})
	}

	if got := reloadProduct(t, product.ID).Stock; got != 10 {
		t.Errorf("stock should be unchanged, got %d", got)
	}
}

func TestStockOpnameCorrectsAndLogs(t *testing.T) {
	setupTestDB(t)
	r := newTestRouter()
	_, token := createTestUser(t, "superadmin", "secret", rbac.SuperadminRole)
	short := createTestProduct(t, "Betadine 30ml", 80, 9000, 12000)
	over := createTestProduct(t, "Hansaplast", 40, 300, 500)

	w, _ := doRequest(t, r, "POST", "/api/stock-opname", token, map[string]any{
		"items": []map[string]any{
			{"id": short.ID, "system_stock": 80, "actual_stock": 75},
			{"id": over.ID, "system_stock": 40, "actual_stock": 42},
		},
		"note": "monthly count",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	if got := reloadProduct(t, short.ID).Stock; got != 75 {
		t.Errorf("expected corrected stock 75, got %d", got)
	}
	if got := reloadProduct(t, over.ID).Stock; got != 42 {
		t.Errorf("expected corrected stock 42, got %d", got)
	}

	var loss models.InventoryHistory
	if err := database.DB.Where("product_id = ?", short.ID).First(&loss).Error; err != nil {
		t.Fatalf("expected opname history row: %v", err)
	}
	if loss.Type != models.HistoryOpname || loss.QuantityChange != -5 || loss.PreviousStock != 80 || loss.NewStock != 75 {
		t.Errorf("wrong ledger row: type=%s change=%d prev=%d new=%d", loss.Type, loss.QuantityChange, loss.PreviousStock, loss.NewStock)
	}
}

func TestStockOpnameNoOpWhenCountsMatch(t *testing.T) {
	setupTestDB(t)
	r := newTestRouter()
	_, token := createTestUser(t, "superadmin", "secret", rbac.SuperadminRole)
	product := createTestProduct(t, "Tolak Angin", 80, 2500, 4000)

	w, _ := doRequest(t, r, "POST", "/api/stock-opname", token, map[string]any{
		"items": []map[string]any{
			{"id": product.ID, "system_stock": 80, "actual_stock": 80},
		},
	})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if n := historyCount(t, product.ID); n != 0 {
		t.Errorf("matching count must not produce a history row, got %d", n)
	}
	if got := reloadProduct(t, product.ID).Stock; got != 80 {
		t.Errorf("stock should be unchanged, got %d", got)
	}
}

func TestStockOpnameBatchIsAtomic(t *testing.T) {
	setupTestDB(t)
	r := newTestRouter()
	_, token := createTestUser(t, "superadmin", "secret", rbac.SuperadminRole)
	product := createTestProduct(t, "Mylanta", 60, 7000, 9500)

	// Second item references a product that does not exist: the whole
	// batch must roll back, including the valid first correction.
	w, _ := doRequest(t, r, "POST", "/api/stock-opname", token, map[string]any{
		"items": []map[string]any{
			{"id": product.ID, "system_stock": 60, "actual_stock": 55},
			{"id": 9999, "system_stock": 10, "actual_stock": 5},
		},
	})
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d: %s", w.Code, w.Body.String())
	}
	if got := reloadProduct(t, product.ID).Stock; got != 60 {
		t.Errorf("batch must roll back fully, stock got %d", got)
	}
	if n := historyCount(t, product.ID); n != 0 {
		t.Errorf("rolled-back batch must not leave history rows, got %d", n)
	}
}

// The ledger must explain every stock change on the adjustment and
// opname paths: seed stock plus the sum of signed changes equals the
// current stock, and each row's before/after pair is consistent.
func TestLedgerInvariant(t *testing.T) {
	setupTestDB(t)
	r := newTestRouter()
	_, token := createTestUser(t, "superadmin", "secret", rbac.SuperadminRole)
	const seedStock = 100
	product := createTestProduct(t, "Panadol", seedStock, 1200, 1800)

	steps := []map[string]any{
		{"productId": product.ID, "type": "add", "quantity": 40},
		{"productId": product.ID, "type": "reduce", "quantity": 25},
		{"productId": product.ID, "type": "add", "quantity": 10},
	}
	for i, step := range steps {
		w, _ := doRequest(t, r, "POST", "/api/inventory/adjust", token, step)
		if w.Code != http.StatusOK {
			t.Fatalf("step %d: expected 200, got %d", i, w.Code)
		}
	}

	w, _ := doRequest(t, r, "POST", "/api/stock-opname", token, map[string]any{
		"items": []map[string]any{
			{"id": product.ID, "system_stock": 125, "actual_stock": 120},
		},
	})
	if w.Code != http.StatusOK {
		t.Fatalf("opname: expected 200, got %d", w.Code)
	}

	var entries []models.InventoryHistory
	if err := database.DB.Where("product_id = ?", product.ID).Order("id").Find(&entries).Error; err != nil {
		t.Fatalf("load history: %v", err)
	}

	sum := 0
	for _, e := range entries {
		if e.NewStock-e.PreviousStock != e.QuantityChange {
			t.Errorf("row %d: new-prev=%d but change=%d", e.ID, e.NewStock-e.PreviousStock, e.QuantityChange)
		}
		sum += e.QuantityChange
	}

	current := reloadProduct(t, product.ID).Stock
	if seedStock+sum != current {
		t.Errorf("ledger does not explain stock: seed=%d sum=%d current=%d", seedStock, sum, current)
	}
}

func TestGetInventoryHistoryFilter(t *testing.T) {
	setupTestDB(t)
	r := newTestRouter()
	_, token := createTestUser(t, "superadmin", "secret", rbac.SuperadminRole)
	first := createTestProduct(t, "Bodrex", 50, 600, 900)
	second := createTestProduct(t, "Promag", 50, 800, 1100)

	for _, id := range []uint{first.ID, second.ID} {
		w, _ := doRequest(t, r, "POST", "/api/inventory/adjust", token, map[string]any{
			"productId": id, "type": "add", "quantity": 5,
		})
		if w.Code != http.StatusOK {
			t.Fatalf("adjust: expected 200, got %d", w.Code)
		}
	}

	w, body := doRequest(t, r, "GET", fmt.Sprintf("/api/inventory/history?productId=%d", first.ID), token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	data := body["data"].([]any)
	if len(data) != 1 {
		t.Fatalf("expected 1 filtered entry, got %d", len(data))
	}
}
