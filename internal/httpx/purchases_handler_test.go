package httpx

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rpaes/go-wedding-registry/internal/reconcile"
	"github.com/rpaes/go-wedding-registry/internal/registry"
)

type mockPurchaseStore struct {
	GetPurchaseFunc    func(ctx context.Context, id string) (registry.Purchase, error)
	DeletePurchaseFunc func(ctx context.Context, id string) error
	deleted            []string
}

func (m *mockPurchaseStore) CreatePurchase(ctx context.Context, giftID, email, name string) (registry.Purchase, error) {
	return registry.Purchase{ID: "new", GiftID: giftID, GuestEmail: email, GuestName: name, PaymentStatus: registry.StatusPending}, nil
}

func (m *mockPurchaseStore) GetPurchase(ctx context.Context, id string) (registry.Purchase, error) {
	if m.GetPurchaseFunc != nil {
		return m.GetPurchaseFunc(ctx, id)
	}
	return registry.Purchase{}, registry.ErrNotFound
}

func (m *mockPurchaseStore) GetGift(ctx context.Context, id string) (registry.Gift, error) {
	return registry.Gift{ID: id, Name: "Jogo de Panelas", Price: 250}, nil
}

func (m *mockPurchaseStore) ListPurchases(ctx context.Context) ([]registry.Purchase, error) {
	return nil, nil
}

func (m *mockPurchaseStore) ListPurchasesByEmail(ctx context.Context, email string) ([]registry.PurchaseWithGift, error) {
	return nil, nil
}

func (m *mockPurchaseStore) DeletePurchase(ctx context.Context, id string) error {
	m.deleted = append(m.deleted, id)
	if m.DeletePurchaseFunc != nil {
		return m.DeletePurchaseFunc(ctx, id)
	}
	return nil
}

type mockReconciler struct {
	notifications []string
	overrides     []registry.PaymentStatus
	notified      []string

	CheckStatusFunc func(ctx context.Context, id string) (reconcile.CheckResult, error)
	OverrideFunc    func(ctx context.Context, id string, st registry.PaymentStatus) error
}

func (m *mockReconciler) HandleNotification(ctx context.Context, paymentID string) {
	m.notifications = append(m.notifications, paymentID)
}

func (m *mockReconciler) CheckStatus(ctx context.Context, id string) (reconcile.CheckResult, error) {
	if m.CheckStatusFunc != nil {
		return m.CheckStatusFunc(ctx, id)
	}
	return reconcile.CheckResult{}, nil
}

func (m *mockReconciler) Override(ctx context.Context, id string, st registry.PaymentStatus) error {
	m.overrides = append(m.overrides, st)
	if m.OverrideFunc != nil {
		return m.OverrideFunc(ctx, id, st)
	}
	return nil
}

func (m *mockReconciler) NotifyApproved(purchaseID, paymentID string) {
	m.notified = append(m.notified, purchaseID)
}

func newTestHandler() (*mockPurchaseStore, *mockReconciler, http.Handler) {
	store := &mockPurchaseStore{}
	rec := &mockReconciler{}
	r := NewRouter()
	(&PurchasesHandler{Store: store, Reconciler: rec}).Register(r)
	return store, rec, r
}

func decodeBody(t *testing.T, rr *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var m map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &m); err != nil {
		t.Fatalf("decode response: %v (%s)", err, rr.Body.String())
	}
	return m
}

func TestWebhook_AlwaysAcks(t *testing.T) {
	tests := []struct {
		name   string
		target string
		body   string
		called bool
		wantID string
	}{
		{name: "query params", target: "/api/payments/webhook?type=payment&id=123", called: true, wantID: "123"},
		{name: "data.id query param", target: "/api/payments/webhook?topic=payment&data.id=77", called: true, wantID: "77"},
		{name: "json body with numeric id", target: "/api/payments/webhook", body: `{"type":"payment","data":{"id":123}}`, called: true, wantID: "123"},
		{name: "json body with string id", target: "/api/payments/webhook", body: `{"topic":"payment","id":"55"}`, called: true, wantID: "55"},
		{name: "non-payment type", target: "/api/payments/webhook?type=merchant_order&id=9", called: false},
		{name: "missing id", target: "/api/payments/webhook?type=payment", called: false},
		{name: "garbage body", target: "/api/payments/webhook", body: `not json`, called: false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, rec, handler := newTestHandler()

			req := httptest.NewRequest(http.MethodPost, tc.target, strings.NewReader(tc.body))
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)

			if rr.Code != http.StatusOK {
				t.Fatalf("status = %d, want 200", rr.Code)
			}
			if got := decodeBody(t, rr)["received"]; got != true {
				t.Errorf("body = %s, want received:true", rr.Body.String())
			}
			if tc.called {
				if len(rec.notifications) != 1 || rec.notifications[0] != tc.wantID {
					t.Errorf("notifications = %v, want [%s]", rec.notifications, tc.wantID)
				}
			} else if len(rec.notifications) != 0 {
				t.Errorf("reconciler called with %v, want no calls", rec.notifications)
			}
		})
	}
}

func TestOverrideStatus(t *testing.T) {
	t.Run("invalid status rejected", func(t *testing.T) {
		_, rec, handler := newTestHandler()

		req := httptest.NewRequest(http.MethodPatch, "/api/purchases/P1", strings.NewReader(`{"payment_status":"cancelled"}`))
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)

		if rr.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", rr.Code)
		}
		if len(rec.overrides) != 0 {
			t.Error("override must not run on invalid input")
		}
	})

	t.Run("valid status applied", func(t *testing.T) {
		_, rec, handler := newTestHandler()

		req := httptest.NewRequest(http.MethodPatch, "/api/purchases/P1", strings.NewReader(`{"payment_status":"rejected"}`))
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)

		if rr.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200: %s", rr.Code, rr.Body.String())
		}
		if len(rec.overrides) != 1 || rec.overrides[0] != registry.StatusRejected {
			t.Errorf("overrides = %v, want [rejected]", rec.overrides)
		}
	})

	t.Run("unknown purchase", func(t *testing.T) {
		_, rec, handler := newTestHandler()
		rec.OverrideFunc = func(ctx context.Context, id string, st registry.PaymentStatus) error {
			return registry.ErrNotFound
		}

		req := httptest.NewRequest(http.MethodPatch, "/api/purchases/nope", strings.NewReader(`{"payment_status":"approved"}`))
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)

		if rr.Code != http.StatusNotFound {
			t.Errorf("status = %d, want 404", rr.Code)
		}
	})
}

func TestDeletePurchase(t *testing.T) {
	t.Run("approved is refused", func(t *testing.T) {
		store, _, handler := newTestHandler()
		store.GetPurchaseFunc = func(ctx context.Context, id string) (registry.Purchase, error) {
			return registry.Purchase{ID: id, PaymentStatus: registry.StatusApproved}, nil
		}

		req := httptest.NewRequest(http.MethodDelete, "/api/purchases/P1", nil)
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)

		if rr.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", rr.Code)
		}
		if len(store.deleted) != 0 {
			t.Error("approved purchase must not be deleted")
		}
	})

	t.Run("pending deletes", func(t *testing.T) {
		store, _, handler := newTestHandler()
		store.GetPurchaseFunc = func(ctx context.Context, id string) (registry.Purchase, error) {
			return registry.Purchase{ID: id, PaymentStatus: registry.StatusPending}, nil
		}

		req := httptest.NewRequest(http.MethodDelete, "/api/purchases/P1", nil)
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)

		if rr.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200: %s", rr.Code, rr.Body.String())
		}
		if len(store.deleted) != 1 || store.deleted[0] != "P1" {
			t.Errorf("deleted = %v, want [P1]", store.deleted)
		}
	})

	t.Run("unknown purchase", func(t *testing.T) {
		_, _, handler := newTestHandler()

		req := httptest.NewRequest(http.MethodDelete, "/api/purchases/ghost", nil)
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)

		if rr.Code != http.StatusNotFound {
			t.Errorf("status = %d, want 404", rr.Code)
		}
	})
}

func TestCheckStatusEndpoint(t *testing.T) {
	t.Run("nothing found", func(t *testing.T) {
		_, rec, handler := newTestHandler()
		rec.CheckStatusFunc = func(ctx context.Context, id string) (reconcile.CheckResult, error) {
			return reconcile.CheckResult{Found: false}, nil
		}

		req := httptest.NewRequest(http.MethodPost, "/api/purchases/P1/check-status", nil)
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)

		if rr.Code != http.StatusNotFound {
			t.Fatalf("status = %d, want 404", rr.Code)
		}
		if got := decodeBody(t, rr)["found"]; got != false {
			t.Errorf("body = %s, want found:false", rr.Body.String())
		}
	})

	t.Run("found", func(t *testing.T) {
		_, rec, handler := newTestHandler()
		rec.CheckStatusFunc = func(ctx context.Context, id string) (reconcile.CheckResult, error) {
			return reconcile.CheckResult{
				Found:     true,
				OldStatus: registry.StatusPending,
				NewStatus: registry.StatusApproved,
				PaymentID: "42",
			}, nil
		}

		req := httptest.NewRequest(http.MethodPost, "/api/purchases/P1/check-status", nil)
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)

		if rr.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200: %s", rr.Code, rr.Body.String())
		}
		body := decodeBody(t, rr)
		if body["success"] != true || body["old_status"] != "pending" || body["new_status"] != "approved" || body["payment_id"] != "42" {
			t.Errorf("unexpected body %s", rr.Body.String())
		}
	})

	t.Run("missing credential", func(t *testing.T) {
		_, rec, handler := newTestHandler()
		rec.CheckStatusFunc = func(ctx context.Context, id string) (reconcile.CheckResult, error) {
			return reconcile.CheckResult{}, reconcile.ErrNoCredential
		}

		req := httptest.NewRequest(http.MethodPost, "/api/purchases/P1/check-status", nil)
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)

		if rr.Code != http.StatusInternalServerError {
			t.Errorf("status = %d, want 500", rr.Code)
		}
	})
}

func TestResendConfirmation(t *testing.T) {
	t.Run("approved republishes", func(t *testing.T) {
		store, rec, handler := newTestHandler()
		store.GetPurchaseFunc = func(ctx context.Context, id string) (registry.Purchase, error) {
			return registry.Purchase{ID: id, PaymentStatus: registry.StatusApproved, PaymentID: "42"}, nil
		}

		req := httptest.NewRequest(http.MethodPost, "/api/purchases/P1/resend-confirmation", nil)
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)

		if rr.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", rr.Code)
		}
		if len(rec.notified) != 1 || rec.notified[0] != "P1" {
			t.Errorf("notified = %v, want [P1]", rec.notified)
		}
	})

	t.Run("pending is refused", func(t *testing.T) {
		store, rec, handler := newTestHandler()
		store.GetPurchaseFunc = func(ctx context.Context, id string) (registry.Purchase, error) {
			return registry.Purchase{ID: id, PaymentStatus: registry.StatusPending}, nil
		}

		req := httptest.NewRequest(http.MethodPost, "/api/purchases/P1/resend-confirmation", nil)
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)

		if rr.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", rr.Code)
		}
		if len(rec.notified) != 0 {
			t.Error("no event expected for a pending purchase")
		}
	})
}

func TestGuestSessionRoundTrip(t *testing.T) {
	_, _, handler := newTestHandler()

	req := httptest.NewRequest(http.MethodPost, "/api/auth/guest/login", strings.NewReader(`{"email":"Ana@Example.com"}`))
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("login status = %d, want 200", rr.Code)
	}
	cookies := rr.Result().Cookies()
	if len(cookies) != 1 || cookies[0].Name != guestCookie {
		t.Fatalf("expected a %s cookie, got %v", guestCookie, cookies)
	}

	req2 := httptest.NewRequest(http.MethodGet, "/api/guest/purchases", nil)
	req2.AddCookie(cookies[0])
	if email, ok := guestEmail(req2); !ok || email != "ana@example.com" {
		t.Errorf("guestEmail = %q/%v, want ana@example.com/true", email, ok)
	}

	rr2 := httptest.NewRecorder()
	handler.ServeHTTP(rr2, req2)
	if rr2.Code != http.StatusOK {
		t.Errorf("guest purchases status = %d, want 200", rr2.Code)
	}

	// no cookie -> 401
	rr3 := httptest.NewRecorder()
	handler.ServeHTTP(rr3, httptest.NewRequest(http.MethodGet, "/api/guest/purchases", nil))
	if rr3.Code != http.StatusUnauthorized {
		t.Errorf("status without cookie = %d, want 401", rr3.Code)
	}
}
