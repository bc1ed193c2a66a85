package mercadopago

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestGetPayment(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/payments/123" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer tok" {
			t.Errorf("auth header = %q", got)
		}
		_ = json.NewEncoder(w).Encode(Payment{ID: 123, Status: "approved", ExternalReference: "P1"})
	}))
	defer srv.Close()

	c := New("tok", WithBaseURL(srv.URL))
	p, err := c.GetPayment(context.Background(), "123")
	if err != nil {
		t.Fatalf("GetPayment: %v", err)
	}
	if p.ID != 123 || p.Status != "approved" || p.ExternalReference != "P1" {
		t.Errorf("unexpected payment %+v", p)
	}
}

func TestGetPayment_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := New("tok", WithBaseURL(srv.URL))
	if _, err := c.GetPayment(context.Background(), "999"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestSearchPayments(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/payments/search" {
			t.Errorf("path = %s", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("external_reference") != "P1" || q.Get("limit") != "1" ||
			q.Get("sort") != "date_created" || q.Get("criteria") != "desc" {
			t.Errorf("unexpected query %s", r.URL.RawQuery)
		}
		_ = json.NewEncoder(w).Encode(searchResponse{Results: []Payment{{ID: 42, Status: "approved"}}})
	}))
	defer srv.Close()

	c := New("tok", WithBaseURL(srv.URL))
	results, err := c.SearchPayments(context.Background(), "P1")
	if err != nil {
		t.Fatalf("SearchPayments: %v", err)
	}
	if len(results) != 1 || results[0].ID != 42 {
		t.Errorf("unexpected results %+v", results)
	}
}

func TestCreatePreference(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/checkout/preferences" {
			t.Errorf("%s %s", r.Method, r.URL.Path)
		}
		var req PreferenceRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req.ExternalReference != "P1" || !req.BinaryMode || len(req.Items) != 1 {
			t.Errorf("unexpected request %+v", req)
		}
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(Preference{
			ID:               "pref-1",
			InitPoint:        "https://mp/checkout",
			SandboxInitPoint: "https://sandbox.mp/checkout",
		})
	}))
	defer srv.Close()

	c := New("TEST-abc", WithBaseURL(srv.URL))
	pref, err := c.CreatePreference(context.Background(), PreferenceRequest{
		Items:             []PreferenceItem{{ID: "g1", Title: "Jogo de Panelas", Quantity: 1, CurrencyID: "BRL", UnitPrice: 250}},
		ExternalReference: "P1",
		BinaryMode:        true,
	})
	if err != nil {
		t.Fatalf("CreatePreference: %v", err)
	}
	if pref.ID != "pref-1" {
		t.Errorf("unexpected preference %+v", pref)
	}
	// TEST- credentials use the sandbox checkout
	if got := c.CheckoutURL(pref); got != "https://sandbox.mp/checkout" {
		t.Errorf("CheckoutURL = %q", got)
	}

	prod := New("APP-abc", WithBaseURL(srv.URL))
	if got := prod.CheckoutURL(pref); got != "https://mp/checkout" {
		t.Errorf("CheckoutURL (prod token) = %q", got)
	}
}

func TestErrorStatusSurfaces(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"message":"invalid token"}`))
	}))
	defer srv.Close()

	c := New("tok", WithBaseURL(srv.URL))
	if _, err := c.GetPayment(context.Background(), "1"); err == nil {
		t.Error("expected an error for status 400")
	}
}
