package registry

import (
	"context"

	"github.com/google/uuid"
)

func (r *Repo) CreateRSVP(ctx context.Context, g RSVPGuest) (string, error) {
	id := uuid.NewString()
	_, err := r.DB.Exec(ctx, `
		INSERT INTO rsvp_guests(id, name, email, phone, guests_count, message)
		VALUES ($1, $2, NULLIF($3,''), NULLIF($4,''), $5, NULLIF($6,''))
	`, id, g.Name, g.Email, g.Phone, g.GuestsCount, g.Message)
	return id, err
}

func (r *Repo) ListRSVPs(ctx context.Context) ([]RSVPGuest, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT id, name, email, phone, guests_count, message, created_at
		FROM rsvp_guests ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []RSVPGuest
	for rows.Next() {
		var g RSVPGuest
		var email, phone, msg *string
		if err := rows.Scan(&g.ID, &g.Name, &email, &phone, &g.GuestsCount, &msg, &g.CreatedAt); err != nil {
			return nil, err
		}
		if email != nil {
			g.Email = *email
		}
		if phone != nil {
			g.Phone = *phone
		}
		if msg != nil {
			g.Message = *msg
		}
		out = append(out, g)
	}
	return out, rows.Err()
}
