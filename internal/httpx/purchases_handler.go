package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/rpaes/go-wedding-registry/internal/reconcile"
	"github.com/rpaes/go-wedding-registry/internal/registry"
)

type PurchaseStore interface {
	CreatePurchase(ctx context.Context, giftID, guestEmail, guestName string) (registry.Purchase, error)
	GetPurchase(ctx context.Context, id string) (registry.Purchase, error)
	GetGift(ctx context.Context, id string) (registry.Gift, error)
	ListPurchases(ctx context.Context) ([]registry.Purchase, error)
	ListPurchasesByEmail(ctx context.Context, email string) ([]registry.PurchaseWithGift, error)
	DeletePurchase(ctx context.Context, id string) error
}

type Reconciler interface {
	HandleNotification(ctx context.Context, paymentID string)
	CheckStatus(ctx context.Context, purchaseID string) (reconcile.CheckResult, error)
	Override(ctx context.Context, purchaseID string, status registry.PaymentStatus) error
	NotifyApproved(purchaseID, paymentID string)
}

type PurchasesHandler struct {
	Store      PurchaseStore
	Reconciler Reconciler
}

func (h *PurchasesHandler) Register(r *chi.Mux) {
	r.Post("/api/purchases", h.createPurchase)
	r.Get("/api/purchases", h.listPurchases)
	r.Get("/api/purchases/{id}", h.getPurchase)
	r.Patch("/api/purchases/{id}", h.overrideStatus)
	r.Delete("/api/purchases/{id}", h.deletePurchase)
	r.Post("/api/purchases/{id}/check-status", h.checkStatus)
	r.Post("/api/purchases/{id}/resend-confirmation", h.resendConfirmation)
	r.Post("/api/payments/webhook", h.webhook)
	r.Post("/api/auth/guest/login", h.guestLogin)
	r.Get("/api/guest/purchases", h.guestPurchases)
}

type createPurchaseReq struct {
	GiftID     string `json:"gift_id"`
	GuestEmail string `json:"guest_email"`
	GuestName  string `json:"guest_name"`
}

func (h *PurchasesHandler) createPurchase(w http.ResponseWriter, r *http.Request) {
	var req createPurchaseReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "invalid json"})
		return
	}
	if req.GiftID == "" || req.GuestEmail == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "missing required fields"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	p, err := h.Store.CreatePurchase(ctx, req.GiftID, req.GuestEmail, req.GuestName)
	if errors.Is(err, registry.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "gift not found"})
		return
	}
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"message": err.Error()})
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (h *PurchasesHandler) listPurchases(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	ps, err := h.Store.ListPurchases(ctx)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"message": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, ps)
}

func (h *PurchasesHandler) getPurchase(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	p, err := h.Store.GetPurchase(ctx, id)
	if errors.Is(err, registry.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "purchase not found"})
		return
	}
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"message": err.Error()})
		return
	}

	resp := map[string]any{"purchase": p, "gift": nil}
	if g, err := h.Store.GetGift(ctx, p.GiftID); err == nil {
		resp["gift"] = g
	}
	writeJSON(w, http.StatusOK, resp)
}

type overrideReq struct {
	PaymentStatus string `json:"payment_status"`
}

// overrideStatus is the admin escape hatch: it skips the gateway entirely.
func (h *PurchasesHandler) overrideStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req overrideReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || !registry.ValidStatus(req.PaymentStatus) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "invalid payment status"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	err := h.Reconciler.Override(ctx, id, registry.PaymentStatus(req.PaymentStatus))
	if errors.Is(err, registry.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "purchase not found"})
		return
	}
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"message": "failed to update purchase"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "payment_status": req.PaymentStatus})
}

func (h *PurchasesHandler) deletePurchase(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	p, err := h.Store.GetPurchase(ctx, id)
	if errors.Is(err, registry.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "purchase not found"})
		return
	}
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"message": err.Error()})
		return
	}
	// approved purchases stay on the books
	if !p.PaymentStatus.Deletable() {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "approved purchases cannot be deleted"})
		return
	}

	if err := h.Store.DeletePurchase(ctx, id); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"message": "error deleting purchase"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

type checkStatusResp struct {
	Success bool `json:"success"`
	reconcile.CheckResult
}

func (h *PurchasesHandler) checkStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	res, err := h.Reconciler.CheckStatus(ctx, id)
	if errors.Is(err, registry.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "purchase not found"})
		return
	}
	if errors.Is(err, reconcile.ErrNoCredential) {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"message": "MercadoPago access token not configured"})
		return
	}
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"message": "error checking payment status"})
		return
	}
	if !res.Found {
		writeJSON(w, http.StatusNotFound, map[string]any{
			"found":   false,
			"message": "no payment found for this purchase",
		})
		return
	}
	writeJSON(w, http.StatusOK, checkStatusResp{Success: true, CheckResult: res})
}

func (h *PurchasesHandler) resendConfirmation(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	p, err := h.Store.GetPurchase(ctx, id)
	if errors.Is(err, registry.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "purchase not found"})
		return
	}
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"message": err.Error()})
		return
	}
	if p.PaymentStatus != registry.StatusApproved {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "purchase is not approved"})
		return
	}

	h.Reconciler.NotifyApproved(p.ID, p.PaymentID)
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

type webhookBody struct {
	Type  string          `json:"type"`
	Topic string          `json:"topic"`
	ID    json.RawMessage `json:"id"`
	Data  struct {
		ID json.RawMessage `json:"id"`
	} `json:"data"`
}

// rawID turns a JSON field that may arrive as a string or a number into text.
func rawID(r json.RawMessage) string {
	s := strings.Trim(strings.TrimSpace(string(r)), `"`)
	if s == "null" {
		return ""
	}
	return s
}

// webhook is the gateway notification endpoint. It always answers 200
// {"received":true}; anything else and the gateway keeps re-delivering.
func (h *PurchasesHandler) webhook(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	topic := q.Get("topic")
	if topic == "" {
		topic = q.Get("type")
	}
	paymentID := q.Get("id")
	if paymentID == "" {
		paymentID = q.Get("data.id")
	}

	// notifications usually arrive in the body
	if paymentID == "" {
		var body webhookBody
		if err := json.NewDecoder(r.Body).Decode(&body); err == nil {
			paymentID = rawID(body.Data.ID)
			if paymentID == "" {
				paymentID = rawID(body.ID)
			}
			if body.Type != "" {
				topic = body.Type
			} else if body.Topic != "" {
				topic = body.Topic
			}
		}
	}

	if paymentID != "" && topic == "payment" {
		ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
		defer cancel()
		h.Reconciler.HandleNotification(ctx, paymentID)
	}

	writeJSON(w, http.StatusOK, map[string]any{"received": true})
}
