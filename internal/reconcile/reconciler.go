// Package reconcile maps gateway payment statuses onto the local purchase
// status and persists the result. All three entry points (gateway webhook,
// manual status check, admin override) run through here so the mapping and the
// approval side effect live in one place.
package reconcile

import (
	"context"
	"errors"
	"log"
	"strconv"
	"time"

	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"

	kafkax "github.com/rpaes/go-wedding-registry/internal/kafka"
	"github.com/rpaes/go-wedding-registry/internal/mercadopago"
	"github.com/rpaes/go-wedding-registry/internal/registry"
)

// ErrNoCredential: site_config carries no gateway access token.
var ErrNoCredential = errors.New("mercadopago access token not configured")

type PurchaseStore interface {
	GetPurchase(ctx context.Context, id string) (registry.Purchase, error)
	SetPaymentStatus(ctx context.Context, id string, status registry.PaymentStatus, paymentID string) error
	SetStatus(ctx context.Context, id string, status registry.PaymentStatus) error
}

type ConfigStore interface {
	GetConfig(ctx context.Context) (registry.SiteConfig, error)
}

type PaymentGateway interface {
	GetPayment(ctx context.Context, id string) (*mercadopago.Payment, error)
	SearchPayments(ctx context.Context, externalReference string) ([]mercadopago.Payment, error)
}

// GatewayFactory builds a gateway client for the credential currently stored
// in site_config (the token is editable at runtime from the admin console).
type GatewayFactory func(accessToken string) PaymentGateway

type Publisher interface {
	Publish(key, value []byte, headers ...kafkago.Header)
}

type Reconciler struct {
	Purchases PurchaseStore
	Config    ConfigStore
	Gateway   GatewayFactory
	Producer  Publisher
	Service   string
}

// HandleNotification is the webhook path. It swallows every internal error:
// the gateway must always get a 200 back or it keeps re-delivering.
// Status and payment id are persisted unconditionally.
func (r *Reconciler) HandleNotification(ctx context.Context, paymentID string) {
	gw, err := r.gateway(ctx)
	if err != nil {
		log.Printf("webhook: %v", err)
		return
	}

	pay, err := gw.GetPayment(ctx, paymentID)
	if err != nil {
		log.Printf("webhook: payment %s lookup: %v", paymentID, err)
		return
	}
	if pay.ExternalReference == "" {
		log.Printf("webhook: payment %s has no external reference, ignoring", paymentID)
		return
	}

	status := registry.FromGatewayStatus(pay.Status)
	if err := r.Purchases.SetPaymentStatus(ctx, pay.ExternalReference, status, paymentID); err != nil {
		log.Printf("webhook: update purchase %s: %v", pay.ExternalReference, err)
	} else {
		log.Printf("webhook: purchase %s -> %s (payment %s)", pay.ExternalReference, status, paymentID)
	}

	// the approval event fires even when the write failed; the mailer loads the
	// purchase itself and drops events it cannot resolve
	if status == registry.StatusApproved {
		r.NotifyApproved(pay.ExternalReference, paymentID)
	}
}

type CheckResult struct {
	Found     bool                   `json:"found"`
	OldStatus registry.PaymentStatus `json:"old_status,omitempty"`
	NewStatus registry.PaymentStatus `json:"new_status,omitempty"`
	PaymentID string                 `json:"payment_id,omitempty"`
}

// CheckStatus is the manual path: look the payment up by the stored payment id
// first, then fall back to a search by external reference (covers purchases
// whose payment id was never recorded). Writes only when something changed.
func (r *Reconciler) CheckStatus(ctx context.Context, purchaseID string) (CheckResult, error) {
	pur, err := r.Purchases.GetPurchase(ctx, purchaseID)
	if err != nil {
		return CheckResult{}, err
	}

	gw, err := r.gateway(ctx)
	if err != nil {
		return CheckResult{}, err
	}

	var pay *mercadopago.Payment
	if pur.PaymentID != "" {
		pay, err = gw.GetPayment(ctx, pur.PaymentID)
		if err != nil {
			log.Printf("check-status: lookup by payment_id %s failed, trying search: %v", pur.PaymentID, err)
			pay = nil
		}
	}
	if pay == nil {
		results, err := gw.SearchPayments(ctx, purchaseID)
		if err != nil {
			log.Printf("check-status: search by reference %s: %v", purchaseID, err)
		} else if len(results) > 0 {
			pay = &results[0] // most recent first
		}
	}
	if pay == nil {
		return CheckResult{Found: false}, nil
	}

	newStatus := registry.FromGatewayStatus(pay.Status)
	mpID := strconv.FormatInt(pay.ID, 10)

	if newStatus != pur.PaymentStatus || pur.PaymentID != mpID {
		if err := r.Purchases.SetPaymentStatus(ctx, purchaseID, newStatus, mpID); err != nil {
			return CheckResult{}, err
		}
		if newStatus == registry.StatusApproved && pur.PaymentStatus != registry.StatusApproved {
			r.NotifyApproved(purchaseID, mpID)
		}
	}

	return CheckResult{
		Found:     true,
		OldStatus: pur.PaymentStatus,
		NewStatus: newStatus,
		PaymentID: mpID,
	}, nil
}

// Override is the admin path: no gateway involved, the target status is taken
// as-is. The approval mail fires whenever the new status is approved, even if
// it already was. Approved purchases may still be moved back to pending or
// rejected here; only deletion treats approved as terminal.
func (r *Reconciler) Override(ctx context.Context, purchaseID string, status registry.PaymentStatus) error {
	if err := r.Purchases.SetStatus(ctx, purchaseID, status); err != nil {
		return err
	}
	if status == registry.StatusApproved {
		r.NotifyApproved(purchaseID, "")
	}
	return nil
}

// NotifyApproved publishes the approval event consumed by the mailer.
// Fire-and-forget: the producer buffers and writes async.
func (r *Reconciler) NotifyApproved(purchaseID, paymentID string) {
	ev := registry.Envelope{
		EventID:       uuid.NewString(),
		EventType:     registry.EventPurchaseApproved,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      r.Service,
		CorrelationID: purchaseID,
		Payload: kafkax.MustMarshal(registry.PurchaseApprovedPayload{
			PurchaseID: purchaseID,
			PaymentID:  paymentID,
		}),
	}
	r.Producer.Publish(registry.PartitionKey(purchaseID), kafkax.MustMarshal(ev),
		kafkago.Header{Key: "x-event-type", Value: []byte(registry.EventPurchaseApproved)},
		kafkago.Header{Key: "x-event-version", Value: []byte("1")},
	)
}

func (r *Reconciler) gateway(ctx context.Context) (PaymentGateway, error) {
	cfg, err := r.Config.GetConfig(ctx)
	if err != nil {
		return nil, err
	}
	if cfg.MercadoPagoAccessToken == "" {
		return nil, ErrNoCredential
	}
	return r.Gateway(cfg.MercadoPagoAccessToken), nil
}
