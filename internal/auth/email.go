package auth

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strings"
	"text/template"

	"github.com/rs/zerolog"
	"github.com/wneessen/go-mail"
)

// ResetMailer delivers password reset links.
type ResetMailer interface {
	SendPasswordResetEmail(ctx context.Context, toEmail, resetToken string) error
}

// EmailService sends transactional mail over SMTP.
type EmailService struct {
	smtpHost     string
	smtpPort     int
	smtpUsername string
	smtpPassword string
	fromEmail    string
	publicURL    string
	send         func(ctx context.Context, msg *mail.Msg) error
	logger       zerolog.Logger
}

// EmailConfig holds SMTP configuration.
type EmailConfig struct {
	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	FromEmail    string
	// PublicURL is the web client origin used to build reset links.
	PublicURL string
}

var _ ResetMailer = (*EmailService)(nil)

// NewEmailService creates an email service.
func NewEmailService(cfg EmailConfig, logger zerolog.Logger) *EmailService {
	svc := &EmailService{
		smtpHost:     cfg.SMTPHost,
		smtpPort:     cfg.SMTPPort,
		smtpUsername: cfg.SMTPUsername,
		smtpPassword: cfg.SMTPPassword,
		fromEmail:    cfg.FromEmail,
		publicURL:    strings.TrimSuffix(cfg.PublicURL, "/"),
		logger:       logger.With().Str("component", "email").Logger(),
	}
	svc.send = svc.dialAndSend
	return svc
}

func (e *EmailService) dialAndSend(ctx context.Context, msg *mail.Msg) error {
	opts := []mail.Option{
		mail.WithPort(e.smtpPort),
		mail.WithTLSPolicy(mail.TLSOpportunistic),
	}
	if e.smtpUsername != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(e.smtpUsername),
			mail.WithPassword(e.smtpPassword),
		)
	}
	client, err := mail.NewClient(e.smtpHost, opts...)
	if err != nil {
		return fmt.Errorf("smtp client: %w", err)
	}
	return client.DialAndSendWithContext(ctx, msg)
}

// Configured reports whether an SMTP host is set.
func (e *EmailService) Configured() bool {
	return e.smtpHost != "" && e.smtpPort != 0
}

const resetSubject = "Reset your VoiceMitra password"

var resetTemplate = template.Must(template.New("reset").Parse(`Hello,

You requested a password reset for your VoiceMitra account.

Open the link below to choose a new password:
{{.ResetURL}}

This link will expire in 1 hour.

If you did not request this, please ignore this email.

VoiceMitra Team`))

// SendPasswordResetEmail sends a password reset email with the reset token.
func (e *EmailService) SendPasswordResetEmail(ctx context.Context, toEmail, resetToken string) error {
	if !e.Configured() {
		return fmt.Errorf("email service not configured")
	}

	resetURL := fmt.Sprintf("%s/reset-password?token=%s", e.publicURL, url.QueryEscape(resetToken))

	var body bytes.Buffer
	if err := resetTemplate.Execute(&body, map[string]string{"ResetURL": resetURL}); err != nil {
		return fmt.Errorf("execute template: %w", err)
	}

	msg := mail.NewMsg(mail.WithEncoding(mail.NoEncoding))
	if err := msg.From(e.fromEmail); err != nil {
		return fmt.Errorf("from address: %w", err)
	}
	if err := msg.To(toEmail); err != nil {
		return fmt.Errorf("to address: %w", err)
	}
	msg.Subject(resetSubject)
	msg.SetBodyString(mail.TypeTextPlain, body.String())

	if err := e.send(ctx, msg); err != nil {
		e.logger.Error().Err(err).Str("to", toEmail).Msg("failed to send password reset email")
		return fmt.Errorf("send email: %w", err)
	}

	e.logger.Info().Str("to", toEmail).Msg("password reset email sent")
	return nil
}
