package registry

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
)

// GetConfig reads the singleton site_config row (id=1).
func (r *Repo) GetConfig(ctx context.Context) (SiteConfig, error) {
	var c SiteConfig
	var siteName, coupleName, weddingDate *string
	var venueName, venueAddr *string
	var mpToken, notifyEmail *string
	var smtpHost, smtpUser, smtpPass *string
	var smtpPort *int
	var confSubject, confContent *string

	err := r.DB.QueryRow(ctx, `
		SELECT id, site_name, couple_name, wedding_date, venue_name, venue_address,
		       mercadopago_access_token, notification_email,
		       smtp_host, smtp_port, smtp_user, smtp_password,
		       email_confirmation_subject, email_confirmation_content, updated_at
		FROM site_config WHERE id=1`).Scan(
		&c.ID, &siteName, &coupleName, &weddingDate, &venueName, &venueAddr,
		&mpToken, &notifyEmail,
		&smtpHost, &smtpPort, &smtpUser, &smtpPass,
		&confSubject, &confContent, &c.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return c, ErrNotFound
	}
	if err != nil {
		return c, err
	}

	set := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	set(&c.SiteName, siteName)
	set(&c.CoupleName, coupleName)
	set(&c.WeddingDate, weddingDate)
	set(&c.VenueName, venueName)
	set(&c.VenueAddress, venueAddr)
	set(&c.MercadoPagoAccessToken, mpToken)
	set(&c.NotificationEmail, notifyEmail)
	set(&c.SMTPHost, smtpHost)
	set(&c.SMTPUser, smtpUser)
	set(&c.SMTPPassword, smtpPass)
	set(&c.EmailConfirmationSubject, confSubject)
	set(&c.EmailConfirmationContent, confContent)
	if smtpPort != nil {
		c.SMTPPort = *smtpPort
	}
	return c, nil
}

// UpdateConfig upserts the singleton row. Empty strings clear the column.
func (r *Repo) UpdateConfig(ctx context.Context, c SiteConfig) error {
	_, err := r.DB.Exec(ctx, `
		INSERT INTO site_config (id, site_name, couple_name, wedding_date, venue_name, venue_address,
		                         mercadopago_access_token, notification_email,
		                         smtp_host, smtp_port, smtp_user, smtp_password,
		                         email_confirmation_subject, email_confirmation_content, updated_at)
		VALUES (1, NULLIF($1,''), NULLIF($2,''), NULLIF($3,''), NULLIF($4,''), NULLIF($5,''),
		        NULLIF($6,''), NULLIF($7,''),
		        NULLIF($8,''), NULLIF($9,0), NULLIF($10,''), NULLIF($11,''),
		        NULLIF($12,''), NULLIF($13,''), now())
		ON CONFLICT (id) DO UPDATE SET
			site_name=EXCLUDED.site_name,
			couple_name=EXCLUDED.couple_name,
			wedding_date=EXCLUDED.wedding_date,
			venue_name=EXCLUDED.venue_name,
			venue_address=EXCLUDED.venue_address,
			mercadopago_access_token=EXCLUDED.mercadopago_access_token,
			notification_email=EXCLUDED.notification_email,
			smtp_host=EXCLUDED.smtp_host,
			smtp_port=EXCLUDED.smtp_port,
			smtp_user=EXCLUDED.smtp_user,
			smtp_password=EXCLUDED.smtp_password,
			email_confirmation_subject=EXCLUDED.email_confirmation_subject,
			email_confirmation_content=EXCLUDED.email_confirmation_content,
			updated_at=now()
	`, c.SiteName, c.CoupleName, c.WeddingDate, c.VenueName, c.VenueAddress,
		c.MercadoPagoAccessToken, c.NotificationEmail,
		c.SMTPHost, c.SMTPPort, c.SMTPUser, c.SMTPPassword,
		c.EmailConfirmationSubject, c.EmailConfirmationContent)
	return err
}
