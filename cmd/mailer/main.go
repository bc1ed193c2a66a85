package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/rpaes/go-wedding-registry/internal/config"
	kafkax "github.com/rpaes/go-wedding-registry/internal/kafka"
	"github.com/rpaes/go-wedding-registry/internal/mail"
	"github.com/rpaes/go-wedding-registry/internal/postgres"
	"github.com/rpaes/go-wedding-registry/internal/redisx"
	"github.com/rpaes/go-wedding-registry/internal/registry"
)

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func mustAtoi(s, def string) int {
	if s == "" {
		s = def
	}
	i, err := strconv.Atoi(s)
	if err != nil {
		return 1
	}
	return i
}

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// DB
	db, err := postgres.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer db.Close()

	// Redis (event dedup)
	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	svc := &mail.Service{
		Store:       &registry.Repo{DB: db},
		Redis:       rdb,
		ServiceName: cfg.ServiceName + "-mailer",
	}

	group := getenv("MAILER_GROUP", "mailer-svc")
	workers := mustAtoi(os.Getenv("MAILER_WORKERS"), "4")
	cons := kafkax.NewConsumer(cfg.KafkaBrokers, group, registry.TopicPurchaseApproved, workers)

	go func() {
		log.Printf("mailer consumer started: group=%s topic=%s workers=%d", group, registry.TopicPurchaseApproved, workers)
		if err := cons.Start(ctx, svc.HandlePurchaseApproved); err != nil {
			log.Printf("consumer exit: %v", err)
			cancel()
		}
	}()

	// graceful shutdown
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Println("shutting down consumer...")
	cancel()
	time.Sleep(500 * time.Millisecond)
}
