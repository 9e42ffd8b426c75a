package notifications

import (
	"bytes"
	"context"
	"io"
	"mime"
	"mime/multipart"
	"net/mail"
	"testing"
	"time"

	"triptrek/internal/shared/config"
	"triptrek/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testMailer(t *testing.T) *SMTPMailer {
	t.Helper()
	m, err := NewSMTPMailer(config.EmailConfig{
		SMTPHost:  "smtp.example.com",
		SMTPPort:  587,
		FromEmail: "noreply@triptrek.com",
		FromName:  "TripTrek",
	}, logger.Discard())
	require.NoError(t, err)
	m.now = func() time.Time { return time.Date(2026, 10, 17, 9, 0, 0, 0, time.UTC) }
	return m
}

func TestNewSMTPMailerValidation(t *testing.T) {
	_, err := NewSMTPMailer(config.EmailConfig{SMTPPort: 587, FromEmail: "a@b.c"}, nil)
	assert.Error(t, err)

	_, err = NewSMTPMailer(config.EmailConfig{SMTPHost: "h", SMTPPort: 70000, FromEmail: "a@b.c"}, nil)
	assert.Error(t, err)
}

func TestBuildMessageWithAttachment(t *testing.T) {
	m := testMailer(t)
	pdf := bytes.Repeat([]byte("%PDF-1.3 ticket "), 20)

	raw, err := m.buildMessage(&Message{
		To:       "asha@example.com",
		ToName:   "Asha",
		Subject:  "TripTrek Ticket Confirmation - Booking #42",
		TextBody: "Hi Asha,\nYour booking is confirmed.",
		Attachments: []Attachment{
			{Filename: "ticket_42.pdf", ContentType: "application/pdf", Data: pdf},
		},
	})
	require.NoError(t, err)

	parsed, err := mail.ReadMessage(bytes.NewReader(raw))
	require.NoError(t, err)
	assert.Equal(t, "TripTrek Ticket Confirmation - Booking #42", parsed.Header.Get("Subject"))
	assert.Contains(t, parsed.Header.Get("From"), "noreply@triptrek.com")

	mediaType, params, err := mime.ParseMediaType(parsed.Header.Get("Content-Type"))
	require.NoError(t, err)
	assert.Equal(t, "multipart/mixed", mediaType)

	reader := multipart.NewReader(parsed.Body, params["boundary"])

	text, err := reader.NextPart()
	require.NoError(t, err)
	body, _ := io.ReadAll(text)
	assert.Contains(t, string(body), "Your booking is confirmed.")

	attachment, err := reader.NextPart()
	require.NoError(t, err)
	assert.Equal(t, "ticket_42.pdf", attachment.FileName())
	assert.Equal(t, "application/pdf", attachment.Header.Get("Content-Type"))

	_, err = reader.NextPart()
	assert.ErrorIs(t, err, io.EOF)
}

func TestWriteBase64LinesWraps(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeBase64Lines(&buf, bytes.Repeat([]byte{0xff}, 120)))

	for _, line := range bytes.Split(bytes.TrimSuffix(buf.Bytes(), []byte("\r\n")), []byte("\r\n")) {
		assert.LessOrEqual(t, len(line), 76)
	}
}

func TestLogMailerNeverFails(t *testing.T) {
	err := NewLogMailer(logger.Discard()).Send(context.Background(), &Message{To: "x@y.z", Subject: "hi"})
	assert.NoError(t, err)
}
