package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"supermarket-dashboard/internal/models"
	"supermarket-dashboard/internal/services"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func createTestStore() *services.Store {
	store := services.NewStore()
	store.SetSales([]models.Sale{
		{
			InvoiceID:    "750-67-8428",
			Branch:       "A",
			City:         "Yangon",
			CustomerType: "Member",
			Gender:       "Female",
			ProductLine:  "Health and beauty",
			UnitPrice:    74.69,
			Quantity:     7,
			Tax:          26.14,
			Total:        548.97,
			Date:         time.Date(2019, 1, 5, 0, 0, 0, 0, time.UTC),
			Time:         "13:08",
			Payment:      "Ewallet",
			Rating:       9.1,
		},
		{
			InvoiceID:   "226-31-3081",
			Branch:      "C",
			City:        "Naypyitaw",
			ProductLine: "Electronic accessories",
			Total:       80.22,
			Date:        time.Date(2019, 3, 8, 0, 0, 0, 0, time.UTC),
			Time:        "10:29",
			Rating:      9.6,
		},
		{
			InvoiceID:   "631-41-3108",
			Branch:      "A",
			City:        "Yangon",
			ProductLine: "Home and lifestyle",
			Total:       340.53,
			Date:        time.Date(2019, 3, 3, 0, 0, 0, 0, time.UTC),
			Time:        "13:23",
			Rating:      7.4,
		},
		{
			InvoiceID:   "123-19-1176",
			Branch:      "B",
			City:        "Mandalay",
			ProductLine: "Health and beauty",
			Total:       489.05,
			Date:        time.Date(2019, 1, 5, 0, 0, 0, 0, time.UTC),
			Time:        "20:33",
			Rating:      8.4,
		},
	})
	return store
}

func TestNewAPIHandlers(t *testing.T) {
	store := createTestStore()
	handlers := NewAPIHandlers(store, testLogger())

	if handlers == nil {
		t.Fatal("NewAPIHandlers() returned nil")
	}
	if handlers.store != store {
		t.Error("NewAPIHandlers() should set store field")
	}
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var response map[string]interface{}
	if err := json.NewDecoder(w.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode JSON: %v", err)
	}
	return response
}

func TestAPIHandlers_HandleSummary(t *testing.T) {
	handlers := NewAPIHandlers(createTestStore(), testLogger())

	req := httptest.NewRequest(http.MethodGet, "/api/summary", nil)
	w := httptest.NewRecorder()

	handlers.HandleSummary(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected status %d, got %d", http.StatusOK, w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("expected content-type 'application/json', got %q", ct)
	}
	if cc := w.Header().Get("Cache-Control"); cc != "public, max-age=60" {
		t.Errorf("expected cache-control 'public, max-age=60', got %q", cc)
	}

	response := decodeEnvelope(t, w)
	if success, ok := response["success"].(bool); !ok || !success {
		t.Error("expected success=true in response")
	}

	data, ok := response["data"].(map[string]interface{})
	if !ok {
		t.Fatal("expected summary object in response")
	}
	if total, ok := data["total_sales"].(float64); !ok || total <= 0 {
		t.Errorf("expected positive total_sales, got %v", data["total_sales"])
	}
	if transactions, ok := data["transactions"].(float64); !ok || transactions != 4 {
		t.Errorf("expected 4 transactions, got %v", data["transactions"])
	}
	if _, ok := data["average_rating"].(float64); !ok {
		t.Errorf("expected numeric average_rating, got %v", data["average_rating"])
	}
}

func TestAPIHandlers_HandleSummary_Filtered(t *testing.T) {
	handlers := NewAPIHandlers(createTestStore(), testLogger())

	req := httptest.NewRequest(http.MethodGet, "/api/summary?min_rating=9", nil)
	w := httptest.NewRecorder()

	handlers.HandleSummary(w, req)

	response := decodeEnvelope(t, w)
	data := response["data"].(map[string]interface{})

	// Two fixture rows rate >= 9.
	if transactions := data["transactions"].(float64); transactions != 2 {
		t.Errorf("expected 2 transactions at min_rating=9, got %v", transactions)
	}
	if avg := data["average_rating"].(float64); avg < 9 {
		t.Errorf("filtered average rating %v should be >= threshold 9", avg)
	}
}

func TestAPIHandlers_HandleSummary_EmptyResult(t *testing.T) {
	handlers := NewAPIHandlers(createTestStore(), testLogger())

	req := httptest.NewRequest(http.MethodGet, "/api/summary?min_rating=10", nil)
	w := httptest.NewRecorder()

	handlers.HandleSummary(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("empty result is a valid state, got status %d", w.Code)
	}

	response := decodeEnvelope(t, w)
	data := response["data"].(map[string]interface{})

	if total := data["total_sales"].(float64); total != 0 {
		t.Errorf("expected total_sales=0, got %v", total)
	}
	if transactions := data["transactions"].(float64); transactions != 0 {
		t.Errorf("expected transactions=0, got %v", transactions)
	}
	if avg, present := data["average_rating"]; !present || avg != nil {
		t.Errorf("expected average_rating=null for empty result, got %v", avg)
	}
}

func TestAPIHandlers_InvalidMinRating(t *testing.T) {
	handlers := NewAPIHandlers(createTestStore(), testLogger())

	endpoints := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"summary", handlers.HandleSummary},
		{"sales", handlers.HandleSales},
		{"daily-sales", handlers.HandleDailySales},
	}

	for _, endpoint := range endpoints {
		t.Run(endpoint.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/test?min_rating=high", nil)
			w := httptest.NewRecorder()

			endpoint.handler(w, req)

			if w.Code != http.StatusBadRequest {
				t.Errorf("expected status %d, got %d", http.StatusBadRequest, w.Code)
			}

			response := decodeEnvelope(t, w)
			if success, ok := response["success"].(bool); !ok || success {
				t.Error("expected success=false in error response")
			}
			if errObj, ok := response["error"].(map[string]interface{}); !ok {
				t.Error("expected error object in response")
			} else if errObj["code"] != "VALIDATION_ERROR" {
				t.Errorf("expected VALIDATION_ERROR code, got %v", errObj["code"])
			}
		})
	}
}

func TestAPIHandlers_HandleSales(t *testing.T) {
	handlers := NewAPIHandlers(createTestStore(), testLogger())

	req := httptest.NewRequest(http.MethodGet, "/api/sales?min_rating=8", nil)
	w := httptest.NewRecorder()

	handlers.HandleSales(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, w.Code)
	}

	response := decodeEnvelope(t, w)
	data, ok := response["data"].([]interface{})
	if !ok {
		t.Fatal("expected sales array in response")
	}
	if len(data) != 3 {
		t.Fatalf("expected 3 rows at min_rating=8, got %d", len(data))
	}

	row, ok := data[0].(map[string]interface{})
	if !ok {
		t.Fatal("invalid sale structure")
	}
	if invoice, ok := row["invoice_id"].(string); !ok || invoice == "" {
		t.Error("sale should have non-empty invoice_id")
	}
	if rating, ok := row["rating"].(float64); !ok || rating < 8 {
		t.Errorf("sale rating %v should satisfy the filter", row["rating"])
	}
}

func TestAPIHandlers_HandleDailySales(t *testing.T) {
	handlers := NewAPIHandlers(createTestStore(), testLogger())

	req := httptest.NewRequest(http.MethodGet, "/api/daily-sales", nil)
	w := httptest.NewRecorder()

	handlers.HandleDailySales(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, w.Code)
	}

	response := decodeEnvelope(t, w)
	data, ok := response["data"].([]interface{})
	if !ok {
		t.Fatal("expected series array in response")
	}
	if len(data) != 3 {
		t.Fatalf("expected 3 distinct dates, got %d", len(data))
	}

	var prev string
	for _, item := range data {
		point := item.(map[string]interface{})
		date := point["date"].(string)
		if prev != "" && date <= prev {
			t.Errorf("series dates not strictly increasing: %q after %q", date, prev)
		}
		prev = date
	}
}

func TestAPIHandlers_HandleHealth(t *testing.T) {
	handlers := NewAPIHandlers(createTestStore(), testLogger())

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()

	handlers.HandleHealth(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected status %d, got %d", http.StatusOK, w.Code)
	}
	if cc := w.Header().Get("Cache-Control"); cc != "" {
		t.Errorf("health endpoint should not set cache-control, got %q", cc)
	}

	response := decodeEnvelope(t, w)
	data, ok := response["data"].(map[string]interface{})
	if !ok {
		t.Fatal("expected health data in response")
	}
	if status, ok := data["status"].(string); !ok || status != "healthy" {
		t.Errorf("expected status 'healthy', got %q", status)
	}
	if timestamp, ok := data["timestamp"].(string); !ok || timestamp == "" {
		t.Error("expected non-empty timestamp")
	} else if _, err := time.Parse(time.RFC3339, timestamp); err != nil {
		t.Errorf("invalid timestamp format: %v", err)
	}
}

func TestAPIHandlers_HandleStats(t *testing.T) {
	handlers := NewAPIHandlers(createTestStore(), testLogger())

	req := httptest.NewRequest(http.MethodGet, "/admin/stats", nil)
	w := httptest.NewRecorder()

	handlers.HandleStats(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected status %d, got %d", http.StatusOK, w.Code)
	}

	response := decodeEnvelope(t, w)
	data, ok := response["data"].(map[string]interface{})
	if !ok {
		t.Fatal("expected stats object in response")
	}
	if rows, ok := data["rows"].(float64); !ok || rows != 4 {
		t.Errorf("expected rows=4, got %v", data["rows"])
	}
}

func TestAPIHandlers_HeaderConsistency(t *testing.T) {
	handlers := NewAPIHandlers(createTestStore(), testLogger())

	apiEndpoints := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"summary", handlers.HandleSummary},
		{"sales", handlers.HandleSales},
		{"daily-sales", handlers.HandleDailySales},
	}

	for _, endpoint := range apiEndpoints {
		t.Run(endpoint.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/test", nil)
			w := httptest.NewRecorder()

			endpoint.handler(w, req)

			if ct := w.Header().Get("Content-Type"); ct != "application/json" {
				t.Errorf("expected content-type 'application/json', got %q", ct)
			}
			if cc := w.Header().Get("Cache-Control"); cc != "public, max-age=60" {
				t.Errorf("expected cache-control 'public, max-age=60', got %q", cc)
			}

			response := decodeEnvelope(t, w)
			if success, ok := response["success"].(bool); !ok || !success {
				t.Error("expected success=true in response")
			}
			if _, ok := response["data"]; !ok {
				t.Error("expected data field in response")
			}
		})
	}
}
