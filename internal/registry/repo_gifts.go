package registry

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const giftCols = `id, name, description, price, image_url, created_at, updated_at`

func scanGift(row pgx.Row) (Gift, error) {
	var g Gift
	var desc, img *string
	err := row.Scan(&g.ID, &g.Name, &desc, &g.Price, &img, &g.CreatedAt, &g.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return g, ErrNotFound
	}
	if err != nil {
		return g, err
	}
	if desc != nil {
		g.Description = *desc
	}
	if img != nil {
		g.ImageURL = *img
	}
	return g, nil
}

func (r *Repo) GetGift(ctx context.Context, id string) (Gift, error) {
	row := r.DB.QueryRow(ctx, `SELECT `+giftCols+` FROM gifts WHERE id=$1`, id)
	return scanGift(row)
}

func (r *Repo) ListGifts(ctx context.Context) ([]Gift, error) {
	rows, err := r.DB.Query(ctx, `SELECT `+giftCols+` FROM gifts ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Gift
	for rows.Next() {
		g, err := scanGift(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

func (r *Repo) CreateGift(ctx context.Context, name, description string, price float64, imageURL string) (Gift, error) {
	id := uuid.NewString()
	_, err := r.DB.Exec(ctx, `
		INSERT INTO gifts(id, name, description, price, image_url)
		VALUES ($1, $2, NULLIF($3,''), $4, NULLIF($5,''))
	`, id, name, description, price, imageURL)
	if err != nil {
		return Gift{}, err
	}
	return r.GetGift(ctx, id)
}

func (r *Repo) UpdateGift(ctx context.Context, id, name, description string, price float64, imageURL string) (Gift, error) {
	ct, err := r.DB.Exec(ctx, `
		UPDATE gifts SET name=$2, description=NULLIF($3,''), price=$4, image_url=NULLIF($5,''), updated_at=now()
		WHERE id=$1`, id, name, description, price, imageURL)
	if err != nil {
		return Gift{}, err
	}
	if ct.RowsAffected() == 0 {
		return Gift{}, ErrNotFound
	}
	return r.GetGift(ctx, id)
}

func (r *Repo) DeleteGift(ctx context.Context, id string) error {
	ct, err := r.DB.Exec(ctx, `DELETE FROM gifts WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
