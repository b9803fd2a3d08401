package mail

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/smtp"
	"regexp"
	"strings"
)

// Mailer sends the transactional emails the authentication flows produce.
type Mailer interface {
	// SendEmailConfirmation delivers a confirm-your-address link.
	SendEmailConfirmation(ctx context.Context, toEmail, username, link string) error

	// SendPasswordReset delivers a password-reset link.
	SendPasswordReset(ctx context.Context, toEmail, username, link string) error

	// SendAction delivers a custom-purpose message with a ready-made link.
	// Used for caller-defined action tokens.
	SendAction(ctx context.Context, toEmail, subject, body string) error
}

// SMTPConfig holds all configuration for SMTPMailer.
type SMTPConfig struct {
	Host        string
	Port        string
	Username    string
	Password    string
	FromAddress string
}

// SMTPMailer sends transactional email via SMTP with mandatory STARTTLS.
// Compatible with any SMTP provider: SES, Mailgun, Mailpit (local dev), etc.
type SMTPMailer struct {
	cfg SMTPConfig
}

// NewSMTPMailer creates an SMTPMailer with the given config.
func NewSMTPMailer(cfg SMTPConfig) *SMTPMailer {
	return &SMTPMailer{cfg: cfg}
}

// NopMailer discards all outbound email. Used when SMTP is not configured.
type NopMailer struct{}

// SendEmailConfirmation describes the sendemailconfirmation operation and its observable behavior.
func (NopMailer) SendEmailConfirmation(context.Context, string, string, string) error { return nil }

// SendPasswordReset describes the sendpasswordreset operation and its observable behavior.
func (NopMailer) SendPasswordReset(context.Context, string, string, string) error { return nil }

// SendAction describes the sendaction operation and its observable behavior.
func (NopMailer) SendAction(context.Context, string, string, string) error { return nil }

// unresolvedPlaceholder matches any %%word%% placeholder left after substitution.
var unresolvedPlaceholder = regexp.MustCompile(`%%\w+%%`)

// applyVars substitutes %%key%% placeholders in tmpl using vars, then strips any
// that remain unresolved rather than leaving them in the output.
func applyVars(tmpl string, vars map[string]string) string {
	pairs := make([]string, 0, len(vars)*2)
	for key, value := range vars {
		pairs = append(pairs, "%%"+key+"%%", value)
	}
	substituted := strings.NewReplacer(pairs...).Replace(tmpl)
	return unresolvedPlaceholder.ReplaceAllString(substituted, "")
}

// sendMail dials the SMTP server, enforces STARTTLS (rejects plaintext sessions),
// authenticates, and delivers msg. The connection respects ctx cancellation.
func (m *SMTPMailer) sendMail(ctx context.Context, toEmail, msg string) error {
	conn, err := (&net.Dialer{}).DialContext(ctx, "tcp", m.cfg.Host+":"+m.cfg.Port)
	if err != nil {
		return fmt.Errorf("smtp dial: %w", err)
	}

	c, err := smtp.NewClient(conn, m.cfg.Host)
	if err != nil {
		conn.Close()
		return fmt.Errorf("smtp client: %w", err)
	}
	defer c.Close()

	if ok, _ := c.Extension("STARTTLS"); !ok {
		return fmt.Errorf("smtp server does not advertise STARTTLS: refusing plaintext session")
	}
	if err := c.StartTLS(&tls.Config{ServerName: m.cfg.Host}); err != nil {
		return fmt.Errorf("smtp starttls: %w", err)
	}

	if err := c.Auth(smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)); err != nil {
		return fmt.Errorf("smtp auth: %w", err)
	}

	if err := c.Mail(m.cfg.FromAddress); err != nil {
		return fmt.Errorf("smtp MAIL FROM: %w", err)
	}
	if err := c.Rcpt(toEmail); err != nil {
		return fmt.Errorf("smtp RCPT TO: %w", err)
	}

	wc, err := c.Data()
	if err != nil {
		return fmt.Errorf("smtp DATA: %w", err)
	}
	if _, err := fmt.Fprint(wc, msg); err != nil {
		return fmt.Errorf("smtp write: %w", err)
	}
	if err := wc.Close(); err != nil {
		return fmt.Errorf("smtp data close: %w", err)
	}

	return c.Quit()
}

func (m *SMTPMailer) message(toEmail, subject, body string) string {
	return "From: " + m.cfg.FromAddress + "\r\n" +
		"To: " + toEmail + "\r\n" +
		"Subject: " + subject + "\r\n" +
		"MIME-Version: 1.0\r\n" +
		"Content-Type: text/plain; charset=UTF-8\r\n" +
		"\r\n" +
		body
}

// SendEmailConfirmation emails an address-confirmation link to toEmail.
func (m *SMTPMailer) SendEmailConfirmation(ctx context.Context, toEmail, username, link string) error {
	body := "Hi %%username%%,\n\n" +
		"Please confirm your email address to complete registration.\n\n" +
		"Click the link below to confirm:\n\n" +
		"%%link%%\n\n" +
		"If you did not create an account, ignore this email."

	msg := m.message(toEmail, "Confirm your email address", body)
	msg = applyVars(msg, map[string]string{"username": username, "link": link})

	if err := m.sendMail(ctx, toEmail, msg); err != nil {
		return fmt.Errorf("sending email confirmation: %w", err)
	}
	return nil
}

// SendPasswordReset emails a password-reset link to toEmail.
func (m *SMTPMailer) SendPasswordReset(ctx context.Context, toEmail, username, link string) error {
	body := "Hi %%username%%,\n\n" +
		"You requested a password reset.\n\n" +
		"Click the link below to choose a new password:\n\n" +
		"%%link%%\n\n" +
		"If you did not request a reset, ignore this email."

	msg := m.message(toEmail, "Reset your password", body)
	msg = applyVars(msg, map[string]string{"username": username, "link": link})

	if err := m.sendMail(ctx, toEmail, msg); err != nil {
		return fmt.Errorf("sending password reset email: %w", err)
	}
	return nil
}

// SendAction emails a custom-purpose message to toEmail.
func (m *SMTPMailer) SendAction(ctx context.Context, toEmail, subject, body string) error {
	if err := m.sendMail(ctx, toEmail, m.message(toEmail, subject, body)); err != nil {
		return fmt.Errorf("sending action email: %w", err)
	}
	return nil
}
