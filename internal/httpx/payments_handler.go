package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/rpaes/go-wedding-registry/internal/mercadopago"
	"github.com/rpaes/go-wedding-registry/internal/registry"
)

type CheckoutStore interface {
	GetPurchase(ctx context.Context, id string) (registry.Purchase, error)
	GetGift(ctx context.Context, id string) (registry.Gift, error)
	GetConfig(ctx context.Context) (registry.SiteConfig, error)
}

type CheckoutGateway interface {
	CreatePreference(ctx context.Context, req mercadopago.PreferenceRequest) (*mercadopago.Preference, error)
	CheckoutURL(p *mercadopago.Preference) string
	IsTestToken() bool
}

type PaymentsHandler struct {
	Store      CheckoutStore
	NewGateway func(accessToken string) CheckoutGateway

	// PublicURL is where the gateway sends the guest back after checkout.
	PublicURL string
}

func (h *PaymentsHandler) Register(r *chi.Mux) {
	r.Post("/api/payments/create-preference", h.createPreference)
}

type createPreferenceReq struct {
	PurchaseID string `json:"purchase_id"`
}

func (h *PaymentsHandler) createPreference(w http.ResponseWriter, r *http.Request) {
	var req createPreferenceReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.PurchaseID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "purchase_id is required"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	purchase, err := h.Store.GetPurchase(ctx, req.PurchaseID)
	if errors.Is(err, registry.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "purchase not found"})
		return
	}
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"message": err.Error()})
		return
	}

	gift, err := h.Store.GetGift(ctx, purchase.GiftID)
	if err != nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "gift not found"})
		return
	}

	cfg, err := h.Store.GetConfig(ctx)
	if err != nil || cfg.MercadoPagoAccessToken == "" {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"message": "MercadoPago not configured"})
		return
	}

	description := gift.Description
	if description == "" {
		description = "Presente de Casamento"
	}

	gw := h.NewGateway(cfg.MercadoPagoAccessToken)
	pref, err := gw.CreatePreference(ctx, mercadopago.PreferenceRequest{
		Items: []mercadopago.PreferenceItem{{
			ID:          gift.ID,
			Title:       gift.Name,
			Description: description,
			Quantity:    1,
			CurrencyID:  "BRL",
			UnitPrice:   purchase.Amount,
		}},
		Payer: mercadopago.Payer{Email: purchase.GuestEmail},
		BackURLs: mercadopago.BackURLs{
			Success: fmt.Sprintf("%s/payment/success?purchase_id=%s", h.PublicURL, purchase.ID),
			Failure: fmt.Sprintf("%s/payment/failure?purchase_id=%s", h.PublicURL, purchase.ID),
			Pending: fmt.Sprintf("%s/payment/pending?purchase_id=%s", h.PublicURL, purchase.ID),
		},
		AutoReturn:          "all",
		ExternalReference:   purchase.ID,
		StatementDescriptor: "CASAMENTO",
		PaymentMethods: mercadopago.PaymentMethods{
			// no boleto: keep checkout on pix/card
			ExcludedPaymentTypes: []mercadopago.ExcludedPaymentType{{ID: "ticket"}},
			Installments:         12,
		},
		// binary mode: instant approve/reject, no in-between analysis state
		BinaryMode: true,
	})
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"message": "error creating preference"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"init_point":    gw.CheckoutURL(pref),
		"preference_id": pref.ID,
		"is_test_mode":  gw.IsTestToken(),
	})
}
