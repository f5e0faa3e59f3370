package mailer

import (
	"context"
	"fmt"
	"log/slog"
	"net/smtp"
	"strings"

	"github.com/greenleaf/plant-store-api/internal/config"
	"github.com/greenleaf/plant-store-api/internal/model"
)

// Mailer sends transactional mail. All sends are best-effort from the caller's
// point of view: the notification worker logs failures and moves on.
type Mailer interface {
	SendOrderConfirmation(ctx context.Context, email, firstName string, order *model.Order) error
	SendVerificationEmail(ctx context.Context, email, firstName, token string) error
	SendWelcomeEmail(ctx context.Context, email, firstName string) error
}

// New returns an SMTP-backed mailer, or a log-only mailer when no SMTP host is
// configured (local development).
func New(cfg config.SMTPConfig, log *slog.Logger) Mailer {
	if cfg.Host == "" {
		return &logMailer{log: log}
	}
	return &smtpMailer{cfg: cfg}
}

type smtpMailer struct {
	cfg config.SMTPConfig
}

func (m *smtpMailer) SendOrderConfirmation(ctx context.Context, email, firstName string, order *model.Order) error {
	ref := orderRef(order)
	subject := fmt.Sprintf("Confirmation de commande #%s", ref)

	var b strings.Builder
	fmt.Fprintf(&b, "Bonjour %s,\n\nMerci pour votre commande #%s.\n\n", firstName, ref)
	for _, line := range order.Lines {
		fmt.Fprintf(&b, "  %dx %s — %s %s\n", line.Quantity, line.Name, line.Subtotal(), "TND")
	}
	fmt.Fprintf(&b, "\nTotal: %s TND\n\nPépinière\n", order.TotalPrice)

	return m.send(email, subject, b.String())
}

func (m *smtpMailer) SendVerificationEmail(ctx context.Context, email, firstName, token string) error {
	body := fmt.Sprintf("Bonjour %s,\n\nConfirmez votre adresse email en visitant:\n/api/users/verify-email/%s\n\nLe lien expire dans 24 heures.\n\nPépinière\n", firstName, token)
	return m.send(email, "Confirmez votre adresse email - Pépinière", body)
}

func (m *smtpMailer) SendWelcomeEmail(ctx context.Context, email, firstName string) error {
	body := fmt.Sprintf("Bonjour %s,\n\nVotre adresse email est vérifiée. Bienvenue chez Pépinière !\n", firstName)
	return m.send(email, "Bienvenue chez Pépinière !", body)
}

func (m *smtpMailer) send(to, subject, body string) error {
	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\nContent-Type: text/plain; charset=utf-8\r\n\r\n%s",
		m.cfg.From, to, subject, body)

	var auth smtp.Auth
	if m.cfg.User != "" {
		auth = smtp.PlainAuth("", m.cfg.User, m.cfg.Password, m.cfg.Host)
	}
	if err := smtp.SendMail(m.cfg.Addr(), auth, m.cfg.From, []string{to}, []byte(msg)); err != nil {
		return fmt.Errorf("send mail to %s: %w", to, err)
	}
	return nil
}

// logMailer records what would have been sent. Used when SMTP is not
// configured.
type logMailer struct {
	log *slog.Logger
}

func (m *logMailer) SendOrderConfirmation(_ context.Context, email, firstName string, order *model.Order) error {
	m.log.Info("mail: order confirmation", "to", email, "first_name", firstName, "order_id", order.ID, "total", order.TotalPrice)
	return nil
}

func (m *logMailer) SendVerificationEmail(_ context.Context, email, firstName, token string) error {
	m.log.Info("mail: email verification", "to", email, "first_name", firstName)
	return nil
}

func (m *logMailer) SendWelcomeEmail(_ context.Context, email, firstName string) error {
	m.log.Info("mail: welcome", "to", email, "first_name", firstName)
	return nil
}

func orderRef(order *model.Order) string {
	s := strings.ReplaceAll(order.ID.String(), "-", "")
	if len(s) > 8 {
		s = s[len(s)-8:]
	}
	return strings.ToUpper(s)
}
