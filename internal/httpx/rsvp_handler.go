package httpx

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/rpaes/go-wedding-registry/internal/registry"
)

type RSVPStore interface {
	CreateRSVP(ctx context.Context, g registry.RSVPGuest) (string, error)
	ListRSVPs(ctx context.Context) ([]registry.RSVPGuest, error)
}

type RSVPHandler struct {
	Store RSVPStore
}

func (h *RSVPHandler) Register(r *chi.Mux) {
	r.Post("/api/rsvp", h.create)
	r.Get("/api/rsvp", h.list)
}

func (h *RSVPHandler) create(w http.ResponseWriter, r *http.Request) {
	var g registry.RSVPGuest
	if err := json.NewDecoder(r.Body).Decode(&g); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "invalid json"})
		return
	}
	if g.Name == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "name is required"})
		return
	}
	if g.GuestsCount <= 0 {
		g.GuestsCount = 1
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	id, err := h.Store.CreateRSVP(ctx, g)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"message": "error saving rsvp"})
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"success": true, "id": id})
}

func (h *RSVPHandler) list(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	guests, err := h.Store.ListRSVPs(ctx)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"message": "error fetching rsvp list"})
		return
	}
	if guests == nil {
		guests = []registry.RSVPGuest{}
	}
	writeJSON(w, http.StatusOK, guests)
}
