package mail

import (
	"fmt"
	"net/smtp"

	"github.com/rpaes/go-wedding-registry/internal/registry"
)

// Sender delivers HTML mail over plain SMTP with the credentials stored in
// site_config.
type Sender struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// SenderFromConfig returns ok=false when SMTP is not configured; callers skip
// sending rather than erroring (mail is best-effort everywhere).
func SenderFromConfig(cfg registry.SiteConfig) (*Sender, bool) {
	if cfg.SMTPHost == "" || cfg.SMTPUser == "" {
		return nil, false
	}
	port := cfg.SMTPPort
	if port == 0 {
		port = 587
	}
	return &Sender{
		Host:     cfg.SMTPHost,
		Port:     port,
		Username: cfg.SMTPUser,
		Password: cfg.SMTPPassword,
		From:     cfg.SMTPUser,
	}, true
}

func (s *Sender) Send(m Message) error {
	addr := fmt.Sprintf("%s:%d", s.Host, s.Port)
	auth := smtp.PlainAuth("", s.Username, s.Password, s.Host)

	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/html; charset=\"UTF-8\"\r\n\r\n%s",
		s.From, m.To, m.Subject, m.HTML)

	return smtp.SendMail(addr, auth, s.From, []string{m.To}, []byte(msg))
}
