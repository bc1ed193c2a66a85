package mail

import (
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/rpaes/go-wedding-registry/internal/registry"
)

type Message struct {
	To      string
	Subject string
	HTML    string
}

var layout = template.Must(template.New("layout").Parse(`<!DOCTYPE html>
<html>
  <head><meta name="viewport" content="width=device-width, initial-scale=1.0"/></head>
  <body style="margin:0;padding:0;font-family:Helvetica,Arial,sans-serif;background-color:#f9fafb;color:#374151;">
    <div style="max-width:600px;margin:40px auto;background:#ffffff;border-radius:12px;overflow:hidden;">
      <div style="padding:30px 40px;text-align:center;border-bottom:1px solid #f3f4f6;">
        <h1 style="font-size:24px;font-weight:300;color:#111827;margin:0;">{{.Title}}</h1>
        <div style="font-size:12px;text-transform:uppercase;letter-spacing:2px;color:#9ca3af;margin-top:8px;">{{.SiteName}}</div>
      </div>
      <div style="padding:40px;line-height:1.6;font-size:16px;color:#4b5563;">{{.Content}}</div>
      <div style="background-color:#f9fafb;padding:20px;text-align:center;font-size:12px;color:#9ca3af;">
        <p>Enviado com carinho &bull; {{.Year}}</p>
      </div>
    </div>
  </body>
</html>`))

type layoutData struct {
	Title    string
	SiteName string
	Content  template.HTML // admin-edited template bodies are trusted HTML
	Year     int
}

func render(title, siteName, content string) string {
	var sb strings.Builder
	_ = layout.Execute(&sb, layoutData{
		Title:    title,
		SiteName: siteName,
		Content:  template.HTML(content),
		Year:     time.Now().Year(),
	})
	return sb.String()
}

// ReplaceVars substitutes {key} placeholders, the same scheme the admin
// console documents for editable templates.
func ReplaceVars(text string, vars map[string]string) string {
	for k, v := range vars {
		text = strings.ReplaceAll(text, "{"+k+"}", v)
	}
	return text
}

const defaultConfirmationContent = `
<p>Olá <strong>{guest_name}</strong>,</p>
<p>Não temos palavras para agradecer o seu carinho! Recebemos a notificação do seu presente: <strong>{gift_name}</strong>.</p>
<p>Ficamos muito felizes com o seu gesto. Ele nos ajudará muito nesta nova etapa de nossas vidas.</p>
<br>
<p>Com carinho,<br>{couple_name}</p>`

func formatAmount(v float64) string {
	return strings.Replace(fmt.Sprintf("%.2f", v), ".", ",", 1)
}

func coupleName(cfg registry.SiteConfig) string {
	if cfg.CoupleName != "" {
		return cfg.CoupleName
	}
	return "Os Noivos"
}

func confirmationVars(cfg registry.SiteConfig, p registry.Purchase, g registry.Gift) map[string]string {
	guestName := p.GuestName
	if guestName == "" {
		// best effort: local part of the email
		guestName = strings.SplitN(p.GuestEmail, "@", 2)[0]
	}
	paymentID := p.PaymentID
	if paymentID == "" {
		paymentID = "PENDENTE"
	}
	return map[string]string{
		"guest_name":  guestName,
		"guest_email": p.GuestEmail,
		"gift_name":   g.Name,
		"amount":      formatAmount(p.Amount),
		"payment_id":  paymentID,
		"couple_name": coupleName(cfg),
	}
}

// PurchaseConfirmation is the thank-you mail sent to the guest once a payment
// is approved. Subject and body may be overridden from site_config.
func PurchaseConfirmation(cfg registry.SiteConfig, p registry.Purchase, g registry.Gift) Message {
	vars := confirmationVars(cfg, p, g)

	content := cfg.EmailConfirmationContent
	if content == "" {
		content = defaultConfirmationContent
	}
	subject := cfg.EmailConfirmationSubject
	if subject == "" {
		subject = "Obrigado pelo presente! - " + coupleName(cfg)
	}

	return Message{
		To:      p.GuestEmail,
		Subject: ReplaceVars(subject, vars),
		HTML:    render("Presente Recebido", coupleName(cfg), ReplaceVars(content, vars)),
	}
}

// AdminNotification tells the couple a gift was paid for.
func AdminNotification(cfg registry.SiteConfig, p registry.Purchase, g registry.Gift) Message {
	vars := confirmationVars(cfg, p, g)
	content := ReplaceVars(`
<p>Boa notícia! <strong>{guest_name}</strong> ({guest_email}) presenteou vocês.</p>
<div style="background-color:#f3f4f6;border-radius:8px;padding:20px;margin:20px 0;">
  <p><strong>Presente:</strong> {gift_name}</p>
  <p><strong>Valor:</strong> R$ {amount}</p>
  <p><strong>Pagamento:</strong> {payment_id}</p>
</div>`, vars)

	return Message{
		To:      cfg.NotificationEmail,
		Subject: ReplaceVars("Novo presente recebido: {gift_name}", vars),
		HTML:    render("Novo Presente", coupleName(cfg), content),
	}
}
