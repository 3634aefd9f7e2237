package httpapi

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"tokopos/backend/internal/metrics"
	"tokopos/backend/internal/service"
	"tokopos/backend/internal/store/memory"
)

// newTestAPI builds a full API with a seeded in-memory store and a real
// Service so handler tests exercise the complete request path.
func newTestAPI(t *testing.T) (*API, *metrics.Metrics) {
	t.Helper()

	m := metrics.New("test")
	svc := service.New(memory.NewSeeded(), service.WithMetrics(m))
	return New(svc, nil, m, "*"), m
}

func doJSON(t *testing.T, handler http.Handler, method string, path string, payload string) *httptest.ResponseRecorder {
	t.Helper()

	var body *bytes.Reader
	if payload == "" {
		body = bytes.NewReader(nil)
	} else {
		body = bytes.NewReader([]byte(payload))
	}
	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	return body
}

func TestHandleHealth(t *testing.T) {
	api, _ := newTestAPI(t)
	rec := doJSON(t, api.Handler(), http.MethodGet, "/healthz", "")

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if body := decodeBody(t, rec); body["ok"] != true {
		t.Fatalf("expected ok:true, got %v", body["ok"])
	}
	if rec.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Fatalf("expected security headers on response")
	}
}

func TestListProductsWithSearch(t *testing.T) {
	api, _ := newTestAPI(t)
	rec := doJSON(t, api.Handler(), http.MethodGet, "/api/v1/products?q=coffee", "")

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	products, ok := decodeBody(t, rec)["products"].([]any)
	if !ok || len(products) != 1 {
		t.Fatalf("expected one coffee product, got %v", products)
	}
}

func TestProductLifecycle(t *testing.T) {
	api, _ := newTestAPI(t)
	handler := api.Handler()

	rec := doJSON(t, handler, http.MethodPost, "/api/v1/products",
		`{"name":"Kopi Susu","barcode":"899100","purchase_price":"8.00","sale_price":12.5,"stock":5}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d (body: %s)", rec.Code, rec.Body.String())
	}
	product := decodeBody(t, rec)["product"].(map[string]any)
	id := product["id"].(string)
	if !strings.HasPrefix(id, "p-") {
		t.Fatalf("expected generated product id, got %q", id)
	}

	rec = doJSON(t, handler, http.MethodPut, "/api/v1/products/"+id,
		`{"name":"Kopi Susu Gula Aren","barcode":"899100","purchase_price":"8.00","sale_price":"13.00","stock":9}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 on update, got %d (body: %s)", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, handler, http.MethodGet, "/api/v1/products/"+id, "")
	updated := decodeBody(t, rec)["product"].(map[string]any)
	if updated["stock"].(float64) != 9 || updated["name"] != "Kopi Susu Gula Aren" {
		t.Fatalf("unexpected product after update: %v", updated)
	}

	rec = doJSON(t, handler, http.MethodDelete, "/api/v1/products/"+id, "")
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204 on delete, got %d", rec.Code)
	}
	rec = doJSON(t, handler, http.MethodGet, "/api/v1/products/"+id, "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 after delete, got %d", rec.Code)
	}
}

func TestCreateProductValidationAndDuplicateBarcode(t *testing.T) {
	api, _ := newTestAPI(t)
	handler := api.Handler()

	rec := doJSON(t, handler, http.MethodPost, "/api/v1/products",
		`{"name":"","barcode":"x","purchase_price":0,"sale_price":1,"stock":0}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	fields, ok := decodeBody(t, rec)["fields"].(map[string]any)
	if !ok || fields["name"] == nil || fields["purchase_price"] == nil {
		t.Fatalf("expected name and purchase_price field errors, got %v", fields)
	}

	rec = doJSON(t, handler, http.MethodPost, "/api/v1/products",
		`{"name":"Copy Beans","barcode":"8992761132015","purchase_price":1,"sale_price":2,"stock":1}`)
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 for duplicate barcode, got %d", rec.Code)
	}
	fields, ok = decodeBody(t, rec)["fields"].(map[string]any)
	if !ok || fields["barcode"] == nil {
		t.Fatalf("expected barcode field error, got %v", fields)
	}
}

func TestDecodeRejectsUnknownFields(t *testing.T) {
	api, _ := newTestAPI(t)
	rec := doJSON(t, api.Handler(), http.MethodPost, "/api/v1/sales",
		`{"items":[],"total":0,"discount":5}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown field, got %d", rec.Code)
	}
}

func TestRecordAndDeleteSale(t *testing.T) {
	api, _ := newTestAPI(t)
	handler := api.Handler()

	rec := doJSON(t, handler, http.MethodPost, "/api/v1/sales", `{
		"items":[
			{"product_id":"p4","product_name":"Gourmet Chocolate Bar","quantity":2,"sale_price":5.50},
			{"product_id":"p3","product_name":"Artisan Sourdough Bread","quantity":1,"sale_price":7.00}
		],
		"total":18.00
	}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d (body: %s)", rec.Code, rec.Body.String())
	}
	saleID, _ := decodeBody(t, rec)["sale_id"].(string)
	if saleID == "" {
		t.Fatalf("expected sale_id in response")
	}

	rec = doJSON(t, handler, http.MethodGet, "/api/v1/products/p4", "")
	if stock := decodeBody(t, rec)["product"].(map[string]any)["stock"].(float64); stock != 198 {
		t.Fatalf("expected stock 198, got %v", stock)
	}

	rec = doJSON(t, handler, http.MethodGet, "/api/v1/sales/"+saleID, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for sale, got %d", rec.Code)
	}

	rec = doJSON(t, handler, http.MethodDelete, "/api/v1/sales/"+saleID, "")
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
	rec = doJSON(t, handler, http.MethodDelete, "/api/v1/sales/"+saleID, "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 on second delete, got %d", rec.Code)
	}

	rec = doJSON(t, handler, http.MethodGet, "/api/v1/products/p4", "")
	if stock := decodeBody(t, rec)["product"].(map[string]any)["stock"].(float64); stock != 200 {
		t.Fatalf("expected stock restored to 200, got %v", stock)
	}

	rec = doJSON(t, handler, http.MethodGet, "/metrics", "")
	if !strings.Contains(rec.Body.String(), `test_http_requests_total{method="DELETE",path="/api/v1/sales/{id}",status="404"} 1`) {
		t.Fatalf("expected templated route label in metrics output")
	}
}

func TestRecordSaleErrors(t *testing.T) {
	api, _ := newTestAPI(t)
	handler := api.Handler()

	rec := doJSON(t, handler, http.MethodPost, "/api/v1/sales",
		`{"items":[{"product_id":"p3","product_name":"Artisan Sourdough Bread","quantity":51,"sale_price":7}],"total":357}`)
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 for insufficient stock, got %d", rec.Code)
	}
	body := decodeBody(t, rec)
	if body["product_id"] != "p3" || body["available"].(float64) != 50 {
		t.Fatalf("unexpected insufficient stock body: %v", body)
	}

	rec = doJSON(t, handler, http.MethodPost, "/api/v1/sales",
		`{"items":[{"product_id":"p3","product_name":"Artisan Sourdough Bread","quantity":1,"sale_price":7}],"total":6.99}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for mismatched total, got %d", rec.Code)
	}
	if fields, ok := decodeBody(t, rec)["fields"].(map[string]any); !ok || fields["total"] == nil {
		t.Fatalf("expected total field error, got %v", fields)
	}
}

func TestDeleteProductInUseConflict(t *testing.T) {
	api, _ := newTestAPI(t)
	rec := doJSON(t, api.Handler(), http.MethodDelete, "/api/v1/products/p1", "")
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 for product referenced by seeded sales, got %d", rec.Code)
	}
}

func TestListSalesAndDashboard(t *testing.T) {
	api, _ := newTestAPI(t)
	handler := api.Handler()

	rec := doJSON(t, handler, http.MethodGet, "/api/v1/sales", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	sales := decodeBody(t, rec)["sales"].([]any)
	if len(sales) != 5 || sales[0].(map[string]any)["id"] != "s5" {
		t.Fatalf("expected 5 sales newest first, got %v", sales)
	}

	rec = doJSON(t, handler, http.MethodGet, "/api/v1/dashboard", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	dashboard := decodeBody(t, rec)["dashboard"].(map[string]any)
	if dashboard["sales_count"].(float64) != 5 || dashboard["total_revenue"] != "157.5" {
		t.Fatalf("unexpected dashboard: %v", dashboard)
	}
}

func TestMethodNotAllowedAndPreflight(t *testing.T) {
	api, _ := newTestAPI(t)
	handler := api.Handler()

	rec := doJSON(t, handler, http.MethodPatch, "/api/v1/sales", "")
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", rec.Code)
	}

	rec = doJSON(t, handler, http.MethodOptions, "/api/v1/sales", "")
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204 for preflight, got %d", rec.Code)
	}
	if rec.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Fatalf("expected CORS origin header")
	}
}

func TestRouteLabel(t *testing.T) {
	cases := map[string]string{
		"/api/v1/products":      "/api/v1/products",
		"/api/v1/products/p1":   "/api/v1/products/{id}",
		"/api/v1/sales/s-abc":   "/api/v1/sales/{id}",
		"/api/v1/dashboard":     "/api/v1/dashboard",
		"/wp-admin/install.php": "other",
	}
	for path, want := range cases {
		if got := routeLabel(path); got != want {
			t.Fatalf("routeLabel(%q) = %q, want %q", path, got, want)
		}
	}
}
