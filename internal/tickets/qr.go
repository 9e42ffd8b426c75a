package tickets

import (
	"fmt"

	"triptrek/internal/bookings"

	"github.com/skip2/go-qrcode"
)

const qrSize = 256

// QRToken is the text encoded in a ticket's QR code
func QRToken(product string, booking *bookings.Booking) string {
	username, title := "", ""
	if booking.User != nil {
		username = booking.User.Username
	}
	if booking.Package != nil {
		title = booking.Package.Title
	}
	return fmt.Sprintf("%s | Booking:%s | User:%s | Package:%s", product, booking.ID, username, title)
}

// EncodeQR renders token as a PNG
func EncodeQR(token string) ([]byte, error) {
	png, err := qrcode.Encode(token, qrcode.Medium, qrSize)
	if err != nil {
		return nil, fmt.Errorf("failed to encode QR code: %w", err)
	}
	return png, nil
}
