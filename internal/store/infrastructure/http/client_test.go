package http_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/arozhkov/storefront/internal/store/domain"
	storehttp "github.com/arozhkov/storefront/internal/store/infrastructure/http"
)

func newClient(t *testing.T, handler http.Handler) *storehttp.Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return storehttp.NewClient(slog.New(slog.NewTextHandler(io.Discard, nil)), srv.URL, "https://cdn.example.com/content")
}

func TestListProductsPrefixesImages(t *testing.T) {
	price := int64(750)
	client := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/product" || r.Method != http.MethodGet {
			t.Fatalf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"total": 2,
			"items": []domain.Product{
				{ID: "a", Title: "Shovel", Price: &price, Image: "/5_Dots.svg"},
				{ID: "b", Title: "Nothing", Price: nil, Image: "Soft_Flower.svg"},
			},
		})
	}))

	products, err := client.ListProducts(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(products) != 2 {
		t.Fatalf("got %d products", len(products))
	}
	if products[0].Image != "https://cdn.example.com/content/5_Dots.svg" {
		t.Fatalf("image = %q", products[0].Image)
	}
	if products[1].Image != "https://cdn.example.com/content/Soft_Flower.svg" {
		t.Fatalf("image = %q", products[1].Image)
	}
	if products[1].Price != nil {
		t.Fatal("null price must stay nil")
	}
}

func TestSubmitOrderRoundTrip(t *testing.T) {
	var received domain.Order
	client := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/order" || r.Method != http.MethodPost {
			t.Fatalf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&received); err != nil {
			t.Fatalf("decode: %v", err)
		}
		_ = json.NewEncoder(w).Encode(domain.OrderResult{ID: "order-42", Total: 900})
	}))

	order := domain.Order{
		Payment: domain.PaymentCard,
		Email:   "dev@example.com",
		Phone:   "+71234567890",
		Address: "Lenina street 5",
		Total:   900,
		Items:   []string{"a", "b"},
	}
	result, err := client.SubmitOrder(context.Background(), order)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if result.ID != "order-42" || result.Total != 900 {
		t.Fatalf("result = %+v", result)
	}
	if received.Address != order.Address || len(received.Items) != 2 {
		t.Fatalf("server saw %+v", received)
	}
}

func TestSubmitOrderSurfacesAPIError(t *testing.T) {
	client := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "item a is no longer available"})
	}))

	_, err := client.SubmitOrder(context.Background(), domain.Order{})
	if err == nil {
		t.Fatal("expected error")
	}
	if err.Error() != "item a is no longer available" {
		t.Fatalf("err = %q, want the api message verbatim", err.Error())
	}
}

func TestListProductsPlainErrorBody(t *testing.T) {
	client := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad gateway", http.StatusBadGateway)
	}))

	_, err := client.ListProducts(context.Background())
	if err == nil {
		t.Fatal("expected error")
	}
}
