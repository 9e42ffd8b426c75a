package tickets

import (
	"context"
	"errors"
	"fmt"
	"time"

	"triptrek/internal/bookings"
	"triptrek/internal/notifications"
	"triptrek/internal/shared/config"
	"triptrek/pkg/logger"
	"triptrek/pkg/metrics"

	"github.com/google/uuid"
)

// ArtifactRecorder stores artifact paths on the booking row
type ArtifactRecorder interface {
	RecordArtifacts(ctx context.Context, id uuid.UUID, qrPath, ticketPath string) error
}

// Artifacts are the files produced for a confirmed booking
type Artifacts struct {
	QRPath  string
	PDFPath string
	PDF     []byte
}

// Issuer produces, caches and emails tickets. It runs as the bookings
// confirmation hook.
type Issuer struct {
	recorder  ArtifactRecorder
	store     Store
	mailer    notifications.Mailer
	publisher notifications.Publisher
	config    config.TicketConfig
	log       *logger.Logger
	now       func() time.Time
}

func NewIssuer(recorder ArtifactRecorder, store Store, mailer notifications.Mailer, publisher notifications.Publisher, cfg config.TicketConfig, log *logger.Logger) *Issuer {
	if log == nil {
		log = logger.GetDefault()
	}
	if publisher == nil {
		publisher = notifications.NoopPublisher{}
	}
	if cfg.ProductName == "" {
		cfg.ProductName = "TripTrek"
	}
	return &Issuer{
		recorder:  recorder,
		store:     store,
		mailer:    mailer,
		publisher: publisher,
		config:    cfg,
		log:       log,
		now:       time.Now,
	}
}

// OnConfirmed issues the ticket and emails it
func (i *Issuer) OnConfirmed(ctx context.Context, booking *bookings.Booking) error {
	artifacts, err := i.Issue(ctx, booking)
	if err != nil {
		return err
	}
	return i.Deliver(ctx, booking, artifacts.PDF)
}

// Issue generates a fresh QR code and PDF for a paid, confirmed booking
func (i *Issuer) Issue(ctx context.Context, booking *bookings.Booking) (*Artifacts, error) {
	if err := checkIssuable(booking); err != nil {
		return nil, err
	}

	qrPNG, qrPath, err := i.writeQR(ctx, booking)
	if err != nil {
		return nil, err
	}

	pdf, pdfPath, err := i.writePDF(ctx, booking, qrPNG)
	if err != nil {
		return nil, err
	}

	if err := i.recorder.RecordArtifacts(ctx, booking.ID, qrPath, pdfPath); err != nil {
		return nil, fmt.Errorf("failed to record ticket artifacts: %w", err)
	}
	booking.QRCodePath = &qrPath
	booking.TicketPath = &pdfPath

	metrics.TicketsIssued.Inc()
	i.log.LogTicketIssued(ctx, booking.ID.String(), qrPath, pdfPath)
	notifications.PublishQuietly(ctx, i.publisher, i.log, notifications.NewEvent(
		notifications.EventTicketIssued, booking.ID, booking.UserID, map[string]interface{}{
			"qr_code":    qrPath,
			"ticket_pdf": pdfPath,
		}))

	return &Artifacts{QRPath: qrPath, PDFPath: pdfPath, PDF: pdf}, nil
}

// EnsurePDF returns the cached ticket, rebuilding the missing pieces when the
// cached file is gone.
func (i *Issuer) EnsurePDF(ctx context.Context, booking *bookings.Booking) ([]byte, string, error) {
	if err := checkIssuable(booking); err != nil {
		return nil, "", err
	}
	id := booking.ID.String()
	filename := TicketFilename(id)

	pdf, err := i.store.Get(ctx, TicketKey(id))
	if err == nil {
		return pdf, filename, nil
	}
	if !errors.Is(err, ErrArtifactNotFound) {
		return nil, "", err
	}

	var qrPNG []byte
	qrPath := ""
	if booking.QRCodePath != nil && *booking.QRCodePath != "" {
		if data, err := i.store.Get(ctx, *booking.QRCodePath); err == nil {
			qrPNG = data
		} else if !errors.Is(err, ErrArtifactNotFound) {
			return nil, "", err
		}
	}
	if qrPNG == nil {
		if qrPNG, qrPath, err = i.writeQR(ctx, booking); err != nil {
			return nil, "", err
		}
	}

	pdf, pdfPath, err := i.writePDF(ctx, booking, qrPNG)
	if err != nil {
		return nil, "", err
	}
	if err := i.recorder.RecordArtifacts(ctx, booking.ID, qrPath, pdfPath); err != nil {
		return nil, "", fmt.Errorf("failed to record ticket artifacts: %w", err)
	}
	booking.TicketPath = &pdfPath
	if qrPath != "" {
		booking.QRCodePath = &qrPath
	}

	i.log.LogTicketIssued(ctx, id, qrPath, pdfPath)
	return pdf, filename, nil
}

// Deliver emails the ticket to the booking's user
func (i *Issuer) Deliver(ctx context.Context, booking *bookings.Booking, pdf []byte) error {
	if booking.User == nil || booking.User.Email == "" {
		metrics.TicketDeliveryFailures.Inc()
		return fmt.Errorf("%w: booking %s has no recipient email", ErrDeliveryFailed, booking.ID)
	}

	msg := &notifications.Message{
		To:       booking.User.Email,
		ToName:   booking.User.DisplayName(),
		Subject:  fmt.Sprintf("%s Ticket Confirmation - Booking #%s", i.config.ProductName, booking.ID),
		TextBody: i.emailBody(booking),
		Attachments: []notifications.Attachment{{
			Filename:    TicketFilename(booking.ID.String()),
			ContentType: "application/pdf",
			Data:        pdf,
		}},
	}

	if err := i.mailer.Send(ctx, msg); err != nil {
		metrics.TicketDeliveryFailures.Inc()
		return fmt.Errorf("%w: booking %s: %w", ErrDeliveryFailed, booking.ID, err)
	}
	return nil
}

func (i *Issuer) emailBody(booking *bookings.Booking) string {
	title := ""
	if booking.Package != nil {
		title = booking.Package.Title
	}
	return fmt.Sprintf("Hello %s,\n\n"+
		"Your booking is CONFIRMED.\n\n"+
		"Package: %s\n"+
		"Travelers: %d\n"+
		"Booking ID: %s\n"+
		"Amount Paid: %s\n\n"+
		"Your ticket is attached in PDF format.\n"+
		"Thank you for choosing %s!",
		booking.User.DisplayName(), title, booking.Travelers, booking.ID,
		formatAmount(paymentCurrency(booking), booking.TotalAmount.StringFixed(2)), i.config.ProductName)
}

func (i *Issuer) writeQR(ctx context.Context, booking *bookings.Booking) ([]byte, string, error) {
	png, err := EncodeQR(QRToken(i.config.ProductName, booking))
	if err != nil {
		return nil, "", err
	}
	path, err := i.store.Put(ctx, QRKey(booking.ID.String()), png)
	if err != nil {
		return nil, "", fmt.Errorf("failed to store QR code: %w", err)
	}
	return png, path, nil
}

func (i *Issuer) writePDF(ctx context.Context, booking *bookings.Booking, qrPNG []byte) ([]byte, string, error) {
	pdf, err := RenderTicket(i.document(booking), qrPNG, i.store)
	if err != nil {
		return nil, "", err
	}
	path, err := i.store.Put(ctx, TicketKey(booking.ID.String()), pdf)
	if err != nil {
		return nil, "", fmt.Errorf("failed to store ticket: %w", err)
	}
	return pdf, path, nil
}

func (i *Issuer) document(booking *bookings.Booking) TicketDocument {
	doc := TicketDocument{
		Product:      i.config.ProductName,
		BookingID:    booking.ID.String(),
		Status:       booking.Status.String(),
		TravelerName: booking.User.DisplayName(),
		Username:     booking.User.Username,
		Email:        booking.User.Email,
		PackageTitle: booking.Package.Title,
		StartDate:    booking.Package.StartDate,
		EndDate:      booking.Package.EndDate,
		DurationDays: booking.Package.DurationDays,
		Travelers:    booking.Travelers,
		Amount:       booking.TotalAmount.StringFixed(2),
		Currency:     paymentCurrency(booking),
		IssuedAt:     i.now(),
		LogoRef:      i.config.LogoPath,
	}
	if dest := booking.Package.Destination; dest != nil {
		doc.Destination = dest.Name
		if dest.Country != "" {
			doc.Destination += ", " + dest.Country
		}
	}
	if booking.OfferCode != nil {
		doc.OfferCode = *booking.OfferCode
	}
	if p, ok := booking.PaymentRecord(); ok {
		if p.GatewayPaymentID != nil {
			doc.PaymentID = *p.GatewayPaymentID
		}
		if p.PaidAt != nil {
			doc.PaidAt = *p.PaidAt
		}
	}
	return doc
}

func checkIssuable(booking *bookings.Booking) error {
	if !booking.TicketAvailable() {
		return bookings.ErrPaymentIncomplete
	}
	if booking.User == nil || booking.Package == nil {
		return fmt.Errorf("booking %s is missing user or package details", booking.ID)
	}
	return nil
}

func paymentCurrency(booking *bookings.Booking) string {
	if p, ok := booking.PaymentRecord(); ok && p.Currency != "" {
		return p.Currency
	}
	return "INR"
}

func formatAmount(currency, amount string) string {
	if currency == "INR" {
		return "₹" + amount
	}
	return currency + " " + amount
}
