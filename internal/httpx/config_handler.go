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

type ConfigStore interface {
	GetConfig(ctx context.Context) (registry.SiteConfig, error)
	UpdateConfig(ctx context.Context, c registry.SiteConfig) error
}

type ConfigHandler struct {
	Store ConfigStore
	Redis *redis.Client
}

func (h *ConfigHandler) Register(r *chi.Mux) {
	r.Get("/api/config", h.getConfig)
	r.Put("/api/config", h.updateConfig)
}

// getConfig serves the public view of site_config (credentials stripped),
// cached in redis because the frontend reads it on every page load.
func (h *ConfigHandler) getConfig(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	if h.Redis != nil {
		if s, err := h.Redis.Get(ctx, redisx.KeySiteConfig).Result(); err == nil && s != "" {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(s))
			return
		}
	}

	cfg, err := h.Store.GetConfig(ctx)
	if errors.Is(err, registry.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "site not configured"})
		return
	}
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"message": err.Error()})
		return
	}

	b, _ := json.Marshal(cfg.Public())
	if h.Redis != nil {
		_ = h.Redis.Set(ctx, redisx.KeySiteConfig, b, redisx.TTLConfigCache).Err()
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(b)
}

func (h *ConfigHandler) updateConfig(w http.ResponseWriter, r *http.Request) {
	var cfg registry.SiteConfig
	if err := json.NewDecoder(r.Body).Decode(&cfg); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "invalid json"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if err := h.Store.UpdateConfig(ctx, cfg); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"message": err.Error()})
		return
	}
	if h.Redis != nil {
		_ = h.Redis.Del(ctx, redisx.KeySiteConfig).Err()
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}
