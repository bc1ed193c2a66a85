package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"

	"github.com/rpaes/go-wedding-registry/internal/redisx"
	"github.com/rpaes/go-wedding-registry/internal/registry"
)

type GiftStore interface {
	ListGifts(ctx context.Context) ([]registry.Gift, error)
	GetGift(ctx context.Context, id string) (registry.Gift, error)
	CreateGift(ctx context.Context, name, description string, price float64, imageURL string) (registry.Gift, error)
	UpdateGift(ctx context.Context, id, name, description string, price float64, imageURL string) (registry.Gift, error)
	DeleteGift(ctx context.Context, id string) error
}

type GiftsHandler struct {
	Store GiftStore
	Redis *redis.Client
}

func (h *GiftsHandler) Register(r *chi.Mux) {
	r.Get("/api/gifts", h.listGifts)
	r.Post("/api/gifts", h.createGift)
	r.Put("/api/gifts/{id}", h.updateGift)
	r.Delete("/api/gifts/{id}", h.deleteGift)
}

func (h *GiftsHandler) listGifts(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	// catalog is read on every gifts-page load; serve from cache when warm
	if h.Redis != nil {
		if s, err := h.Redis.Get(ctx, redisx.KeyGiftCatalog).Result(); err == nil && s != "" {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(s))
			return
		}
	}

	gifts, err := h.Store.ListGifts(ctx)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"message": err.Error()})
		return
	}
	if gifts == nil {
		gifts = []registry.Gift{}
	}

	b, _ := json.Marshal(gifts)
	if h.Redis != nil {
		_ = h.Redis.Set(ctx, redisx.KeyGiftCatalog, b, redisx.TTLGiftCache).Err()
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(b)
}

type giftReq struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	ImageURL    string  `json:"image_url"`
}

func (h *GiftsHandler) createGift(w http.ResponseWriter, r *http.Request) {
	var req giftReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Name == "" || req.Price <= 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "name and a positive price are required"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	g, err := h.Store.CreateGift(ctx, req.Name, req.Description, req.Price, req.ImageURL)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"message": err.Error()})
		return
	}
	h.invalidate(ctx)
	writeJSON(w, http.StatusCreated, g)
}

func (h *GiftsHandler) updateGift(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req giftReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Name == "" || req.Price <= 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "name and a positive price are required"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	g, err := h.Store.UpdateGift(ctx, id, req.Name, req.Description, req.Price, req.ImageURL)
	if errors.Is(err, registry.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "gift not found"})
		return
	}
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"message": err.Error()})
		return
	}
	h.invalidate(ctx)
	writeJSON(w, http.StatusOK, g)
}

func (h *GiftsHandler) deleteGift(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	err := h.Store.DeleteGift(ctx, id)
	if errors.Is(err, registry.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "gift not found"})
		return
	}
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"message": err.Error()})
		return
	}
	h.invalidate(ctx)
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

func (h *GiftsHandler) invalidate(ctx context.Context) {
	if h.Redis != nil {
		_ = h.Redis.Del(ctx, redisx.KeyGiftCatalog).Err()
	}
}
