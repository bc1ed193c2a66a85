package mail

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"

	kafkax "github.com/rpaes/go-wedding-registry/internal/kafka"
	"github.com/rpaes/go-wedding-registry/internal/redisx"
	"github.com/rpaes/go-wedding-registry/internal/registry"
)

type Store interface {
	GetPurchase(ctx context.Context, id string) (registry.Purchase, error)
	GetGift(ctx context.Context, id string) (registry.Gift, error)
	GetConfig(ctx context.Context) (registry.SiteConfig, error)
}

// Deliver is swappable in tests; the default sends over SMTP.
type Deliver func(s *Sender, m Message) error

// Service consumes purchase-approval events and sends the confirmation mails.
// Failures are logged and the offset is committed anyway: mail is a
// best-effort notification, never retried.
type Service struct {
	Store       Store
	Redis       *redis.Client
	ServiceName string
	Deliver     Deliver
}

func (s *Service) deliver(snd *Sender, m Message) error {
	if s.Deliver != nil {
		return s.Deliver(snd, m)
	}
	return snd.Send(m)
}

// HandlePurchaseApproved is wired as the consumer handler.
func (s *Service) HandlePurchaseApproved(ctx context.Context, m kafkago.Message) error {
	var env registry.Envelope
	if err := json.Unmarshal(m.Value, &env); err != nil {
		return err
	}
	if env.EventType != registry.EventPurchaseApproved {
		return nil
	}

	// dedup on event id so a re-delivered event does not mail twice
	if s.Redis != nil {
		dkey := fmt.Sprintf(redisx.KeyDedup, "mailer", env.EventID)
		if exists, _ := redisx.Exists(ctx, s.Redis, dkey); exists {
			return nil
		}
		_ = s.Redis.Set(ctx, dkey, "1", redisx.TTLDedup).Err()
	}

	p, err := kafkax.UnwrapPayload[registry.PurchaseApprovedPayload](env.Payload)
	if err != nil {
		return err
	}

	purchase, err := s.Store.GetPurchase(ctx, p.PurchaseID)
	if err != nil {
		log.Printf("mailer: purchase %s: %v", p.PurchaseID, err)
		return nil
	}
	gift, err := s.Store.GetGift(ctx, purchase.GiftID)
	if err != nil {
		log.Printf("mailer: gift %s: %v", purchase.GiftID, err)
		return nil
	}
	cfg, err := s.Store.GetConfig(ctx)
	if err != nil {
		log.Printf("mailer: config: %v", err)
		return nil
	}

	snd, ok := SenderFromConfig(cfg)
	if !ok {
		log.Printf("mailer: smtp not configured, skipping purchase %s", p.PurchaseID)
		return nil
	}

	if err := s.deliver(snd, PurchaseConfirmation(cfg, purchase, gift)); err != nil {
		log.Printf("mailer: guest mail for purchase %s: %v", p.PurchaseID, err)
	}
	if cfg.NotificationEmail != "" {
		if err := s.deliver(snd, AdminNotification(cfg, purchase, gift)); err != nil {
			log.Printf("mailer: admin mail for purchase %s: %v", p.PurchaseID, err)
		}
	}
	return nil
}
