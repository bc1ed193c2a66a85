package httpx

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/rpaes/go-wedding-registry/internal/registry"
)

// The guest "session" is the original site's token: base64("email:timestamp")
// in an httpOnly cookie. It identifies, it does not authenticate.
const guestCookie = "guest_session"

func setGuestSession(w http.ResponseWriter, email string) {
	token := base64.StdEncoding.EncodeToString(
		[]byte(email + ":" + strconv.FormatInt(time.Now().UnixMilli(), 10)))
	http.SetCookie(w, &http.Cookie{
		Name:     guestCookie,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   60 * 60 * 24 * 30, // 30 days
	})
}

func guestEmail(r *http.Request) (string, bool) {
	c, err := r.Cookie(guestCookie)
	if err != nil || c.Value == "" {
		return "", false
	}
	raw, err := base64.StdEncoding.DecodeString(c.Value)
	if err != nil {
		return "", false
	}
	email := strings.SplitN(string(raw), ":", 2)[0]
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return "", false
	}
	return email, true
}

type guestLoginReq struct {
	Email string `json:"email"`
}

func (h *PurchasesHandler) guestLogin(w http.ResponseWriter, r *http.Request) {
	var req guestLoginReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Email == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "email is required"})
		return
	}
	setGuestSession(w, req.Email)
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

func (h *PurchasesHandler) guestPurchases(w http.ResponseWriter, r *http.Request) {
	email, ok := guestEmail(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "not authenticated"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	ps, err := h.Store.ListPurchasesByEmail(ctx, email)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"message": "error fetching purchases"})
		return
	}
	if ps == nil {
		ps = []registry.PurchaseWithGift{}
	}
	writeJSON(w, http.StatusOK, ps)
}
