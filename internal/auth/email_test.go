package auth

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wneessen/go-mail"
)

func TestSendPasswordResetEmail(t *testing.T) {
	svc := NewEmailService(EmailConfig{SMTPHost: "smtp.example.com", SMTPPort: 587, FromEmail: "no-reply@voicemitra.app", PublicURL: "https://voicemitra.app/"}, zerolog.Nop())

	var sent *mail.Msg
	svc.send = func(_ context.Context, msg *mail.Msg) error {
		sent = msg
		return nil
	}

	require.NoError(t, svc.SendPasswordResetEmail(context.Background(), "kiran@example.com", "tok+en"))
	require.NotNil(t, sent)
	assert.Equal(t, []string{"<kiran@example.com>"}, sent.GetToString())

	var raw bytes.Buffer
	_, err := sent.WriteTo(&raw)
	require.NoError(t, err)
	assert.Contains(t, raw.String(), "Subject: Reset your VoiceMitra password")
	assert.Contains(t, raw.String(), "https://voicemitra.app/reset-password?token=tok%2Ben")
}

func TestSendPasswordResetEmailFailures(t *testing.T) {
	unconfigured := NewEmailService(EmailConfig{}, zerolog.Nop())
	assert.False(t, unconfigured.Configured())
	assert.Error(t, unconfigured.SendPasswordResetEmail(context.Background(), "a@b.co", "t"))

	svc := NewEmailService(EmailConfig{SMTPHost: "smtp.example.com", SMTPPort: 25, FromEmail: "no-reply@voicemitra.app"}, zerolog.Nop())
	svc.send = func(context.Context, *mail.Msg) error { return errors.New("connection refused") }
	assert.Error(t, svc.SendPasswordResetEmail(context.Background(), "a@b.co", "t"))

	assert.Error(t, svc.SendPasswordResetEmail(context.Background(), "not an address", "t"))
}
