package registry

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repo struct{ DB *pgxpool.Pool }

var ErrNotFound = errors.New("not found")

const purchaseCols = `id, gift_id, guest_email, guest_name, amount, payment_id, payment_status, created_at, updated_at`

func scanPurchase(row pgx.Row) (Purchase, error) {
	var p Purchase
	var name, payID *string
	err := row.Scan(&p.ID, &p.GiftID, &p.GuestEmail, &name, &p.Amount, &payID, &p.PaymentStatus, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return p, ErrNotFound
	}
	if err != nil {
		return p, err
	}
	if name != nil {
		p.GuestName = *name
	}
	if payID != nil {
		p.PaymentID = *payID
	}
	return p, nil
}

// CreatePurchase inserts a pending purchase priced from the gift row
// (amount is never trusted from the client).
func (r *Repo) CreatePurchase(ctx context.Context, giftID, guestEmail, guestName string) (Purchase, error) {
	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return Purchase{}, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var price float64
	err = tx.QueryRow(ctx, `SELECT price FROM gifts WHERE id=$1`, giftID).Scan(&price)
	if errors.Is(err, pgx.ErrNoRows) {
		return Purchase{}, ErrNotFound
	}
	if err != nil {
		return Purchase{}, err
	}

	id := uuid.NewString()
	_, err = tx.Exec(ctx, `
		INSERT INTO purchases(id, gift_id, guest_email, guest_name, amount, payment_status)
		VALUES ($1, $2, $3, NULLIF($4,''), $5, 'pending')
	`, id, giftID, guestEmail, guestName, price)
	if err != nil {
		return Purchase{}, err
	}
	if err := tx.Commit(ctx); err != nil {
		return Purchase{}, err
	}
	return r.GetPurchase(ctx, id)
}

func (r *Repo) GetPurchase(ctx context.Context, id string) (Purchase, error) {
	row := r.DB.QueryRow(ctx, `SELECT `+purchaseCols+` FROM purchases WHERE id=$1`, id)
	return scanPurchase(row)
}

func (r *Repo) ListPurchases(ctx context.Context) ([]Purchase, error) {
	rows, err := r.DB.Query(ctx, `SELECT `+purchaseCols+` FROM purchases ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Purchase
	for rows.Next() {
		p, err := scanPurchase(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// ListPurchasesByEmail lists a guest's purchases newest-first, each joined with
// its gift. The email match is case-insensitive (ILIKE, same as the original site).
func (r *Repo) ListPurchasesByEmail(ctx context.Context, email string) ([]PurchaseWithGift, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT p.id, p.gift_id, p.guest_email, p.guest_name, p.amount, p.payment_id, p.payment_status,
		       p.created_at, p.updated_at,
		       g.id, g.name, g.description, g.price, g.image_url, g.created_at, g.updated_at
		FROM purchases p
		LEFT JOIN gifts g ON g.id = p.gift_id
		WHERE p.guest_email ILIKE $1
		ORDER BY p.created_at DESC`, email)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []PurchaseWithGift
	for rows.Next() {
		var p PurchaseWithGift
		var name, payID *string
		var gID, gName, gDesc, gImg *string
		var gPrice *float64
		var gCreated, gUpdated *time.Time
		err := rows.Scan(&p.ID, &p.GiftID, &p.GuestEmail, &name, &p.Amount, &payID, &p.PaymentStatus,
			&p.CreatedAt, &p.UpdatedAt,
			&gID, &gName, &gDesc, &gPrice, &gImg, &gCreated, &gUpdated)
		if err != nil {
			return nil, err
		}
		if name != nil {
			p.GuestName = *name
		}
		if payID != nil {
			p.PaymentID = *payID
		}
		if gID != nil {
			g := Gift{ID: *gID, Name: *gName, Price: *gPrice, CreatedAt: *gCreated, UpdatedAt: *gUpdated}
			if gDesc != nil {
				g.Description = *gDesc
			}
			if gImg != nil {
				g.ImageURL = *gImg
			}
			p.Gift = &g
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// SetPaymentStatus writes status + gateway payment id, bumping updated_at.
// Used by the gateway-driven reconciliation paths.
func (r *Repo) SetPaymentStatus(ctx context.Context, id string, status PaymentStatus, paymentID string) error {
	ct, err := r.DB.Exec(ctx, `
		UPDATE purchases SET payment_status=$2, payment_id=$3, updated_at=now()
		WHERE id=$1`, id, status, paymentID)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// SetStatus writes only the status (admin override leaves payment_id untouched).
func (r *Repo) SetStatus(ctx context.Context, id string, status PaymentStatus) error {
	ct, err := r.DB.Exec(ctx, `
		UPDATE purchases SET payment_status=$2, updated_at=now()
		WHERE id=$1`, id, status)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Repo) DeletePurchase(ctx context.Context, id string) error {
	ct, err := r.DB.Exec(ctx, `DELETE FROM purchases WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
