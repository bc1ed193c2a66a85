package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/rpaes/go-wedding-registry/internal/config"
	"github.com/rpaes/go-wedding-registry/internal/httpx"
	kafkax "github.com/rpaes/go-wedding-registry/internal/kafka"
	"github.com/rpaes/go-wedding-registry/internal/mercadopago"
	"github.com/rpaes/go-wedding-registry/internal/postgres"
	"github.com/rpaes/go-wedding-registry/internal/reconcile"
	"github.com/rpaes/go-wedding-registry/internal/redisx"
	"github.com/rpaes/go-wedding-registry/internal/registry"
	"github.com/rpaes/go-wedding-registry/internal/storage"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// DB
	db, err := postgres.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Fatalf("db connect: %v", err)
	}
	defer db.Close()

	// Redis
	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	// Kafka producer for purchase approval events
	prod := kafkax.NewProducer(cfg.KafkaBrokers, registry.TopicPurchaseApproved, 1024)
	prod.Start(ctx)

	repo := &registry.Repo{DB: db}

	rec := &reconcile.Reconciler{
		Purchases: repo,
		Config:    repo,
		Gateway: func(token string) reconcile.PaymentGateway {
			return mercadopago.New(token)
		},
		Producer: prod,
		Service:  cfg.ServiceName,
	}

	// S3 uploader (optional)
	var uploader httpx.ImageUploader
	if cfg.S3Bucket != "" {
		up, err := storage.NewUploader(ctx, cfg.S3Bucket, cfg.S3PublicURL)
		if err != nil {
			log.Fatalf("s3 uploader: %v", err)
		}
		uploader = up
	} else {
		log.Println("S3_BUCKET not set, image upload disabled")
	}

	router := httpx.NewRouter()
	(&httpx.PurchasesHandler{Store: repo, Reconciler: rec}).Register(router)
	(&httpx.PaymentsHandler{
		Store: repo,
		NewGateway: func(token string) httpx.CheckoutGateway {
			return mercadopago.New(token)
		},
		PublicURL: cfg.PublicURL,
	}).Register(router)
	(&httpx.GiftsHandler{Store: repo, Redis: rdb}).Register(router)
	(&httpx.ConfigHandler{Store: repo, Redis: rdb}).Register(router)
	(&httpx.RSVPHandler{Store: repo}).Register(router)
	(&httpx.UploadHandler{Uploader: uploader, MaxSize: cfg.UploadMaxSize}).Register(router)

	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: router}

	// graceful shutdown
	go func() {
		log.Printf("HTTP listening at %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Println("shutting down...")

	ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel2()
	_ = srv.Shutdown(ctx2)
	prod.Close() // close inbox -> flush & close writer
	prod.WaitClosed()
}
