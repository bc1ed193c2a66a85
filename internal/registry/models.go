package registry

import "time"

type Gift struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Price       float64   `json:"price"`
	ImageURL    string    `json:"image_url,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type Purchase struct {
	ID            string        `json:"id"`
	GiftID        string        `json:"gift_id"`
	GuestEmail    string        `json:"guest_email"`
	GuestName     string        `json:"guest_name,omitempty"`
	Amount        float64       `json:"amount"`
	PaymentID     string        `json:"payment_id,omitempty"` // gateway's own id, empty until known
	PaymentStatus PaymentStatus `json:"payment_status"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}

type PurchaseWithGift struct {
	Purchase
	Gift *Gift `json:"gift"`
}

type RSVPGuest struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Email       string    `json:"email,omitempty"`
	Phone       string    `json:"phone,omitempty"`
	GuestsCount int       `json:"guests_count"`
	Message     string    `json:"message,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// SiteConfig is the singleton row (id=1) the whole site reads: couple identity,
// venue details, the payment credential, and SMTP/mail settings.
type SiteConfig struct {
	ID          int    `json:"id"`
	SiteName    string `json:"site_name,omitempty"`
	CoupleName  string `json:"couple_name,omitempty"`
	WeddingDate string `json:"wedding_date,omitempty"`

	VenueName    string `json:"venue_name,omitempty"`
	VenueAddress string `json:"venue_address,omitempty"`

	MercadoPagoAccessToken string `json:"mercadopago_access_token,omitempty"`
	NotificationEmail      string `json:"notification_email,omitempty"`

	SMTPHost     string `json:"smtp_host,omitempty"`
	SMTPPort     int    `json:"smtp_port,omitempty"`
	SMTPUser     string `json:"smtp_user,omitempty"`
	SMTPPassword string `json:"smtp_password,omitempty"`

	EmailConfirmationSubject string `json:"email_confirmation_subject,omitempty"`
	EmailConfirmationContent string `json:"email_confirmation_content,omitempty"`

	UpdatedAt time.Time `json:"updated_at"`
}

// Public strips credentials before the config leaves the admin/public API.
func (c SiteConfig) Public() SiteConfig {
	c.MercadoPagoAccessToken = ""
	c.SMTPPassword = ""
	return c
}
