package tickets

import (
	"bytes"
	"fmt"
	"strconv"
	"time"

	"github.com/go-pdf/fpdf"
)

// AssetResolver turns an asset reference into a readable local file path
type AssetResolver interface {
	ResolveAsset(ref string) (string, error)
}

// TicketDocument is everything printed on a ticket
type TicketDocument struct {
	Product      string
	BookingID    string
	Status       string
	TravelerName string
	Username     string
	Email        string
	PackageTitle string
	Destination  string
	StartDate    time.Time
	EndDate      time.Time
	DurationDays int
	Travelers    int
	OfferCode    string
	Amount       string
	Currency     string
	PaymentID    string
	PaidAt       time.Time
	IssuedAt     time.Time

	// QRRef is read through the resolver when no QR bytes are passed in
	QRRef   string
	LogoRef string
}

const dateLayout = "02 Jan 2006"

// RenderTicket lays out a one page A4 ticket. It has no side effects: assets
// are only read, and the output depends on doc alone.
func RenderTicket(doc TicketDocument, qrPNG []byte, assets AssetResolver) ([]byte, error) {
	qrPath, logoPath := "", ""
	if len(qrPNG) == 0 {
		if doc.QRRef == "" {
			return nil, fmt.Errorf("%w: no QR code for booking %s", ErrRenderingFailed, doc.BookingID)
		}
		p, err := resolve(assets, doc.QRRef)
		if err != nil {
			return nil, err
		}
		qrPath = p
	}
	if doc.LogoRef != "" {
		p, err := resolve(assets, doc.LogoRef)
		if err != nil {
			return nil, err
		}
		logoPath = p
	}

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetCatalogSort(true)
	pdf.SetCreationDate(doc.IssuedAt)
	pdf.SetModificationDate(doc.IssuedAt)
	pdf.SetTitle(doc.Product+" Ticket "+doc.BookingID, true)
	pdf.SetAuthor(doc.Product, true)
	pdf.SetCreator(doc.Product, true)
	pdf.SetMargins(15, 15, 15)
	pdf.SetAutoPageBreak(false, 15)
	pdf.AddPage()

	tr := pdf.UnicodeTranslatorFromDescriptor("")

	// Header band
	pdf.SetFillColor(14, 116, 144)
	pdf.Rect(0, 0, 210, 38, "F")
	pdf.SetTextColor(255, 255, 255)
	pdf.SetFont("Helvetica", "B", 24)
	pdf.SetXY(15, 10)
	pdf.CellFormat(120, 10, tr(doc.Product), "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 12)
	pdf.SetX(15)
	pdf.CellFormat(120, 8, "E-Ticket / Booking Confirmation", "", 1, "L", false, 0, "")

	if logoPath != "" {
		pdf.ImageOptions(logoPath, 165, 6, 28, 0, false, fpdf.ImageOptions{ReadDpi: true}, 0, "")
	}

	// Details
	pdf.SetTextColor(33, 37, 41)
	pdf.SetXY(15, 48)
	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(0, 8, tr(doc.PackageTitle), "", 1, "L", false, 0, "")
	if doc.Destination != "" {
		pdf.SetFont("Helvetica", "", 11)
		pdf.CellFormat(0, 6, tr(doc.Destination), "", 1, "L", false, 0, "")
	}
	pdf.Ln(4)

	rows := [][2]string{
		{"Booking ID", doc.BookingID},
		{"Status", doc.Status},
		{"Traveler", doc.TravelerName},
		{"Username", doc.Username},
		{"Email", doc.Email},
		{"Travel dates", travelDates(doc)},
		{"Travelers", strconv.Itoa(doc.Travelers)},
	}
	if doc.OfferCode != "" {
		rows = append(rows, [2]string{"Offer", doc.OfferCode})
	}
	rows = append(rows,
		[2]string{"Amount paid", doc.Currency + " " + doc.Amount},
		[2]string{"Payment ID", doc.PaymentID},
	)
	if !doc.PaidAt.IsZero() {
		rows = append(rows, [2]string{"Paid at", doc.PaidAt.UTC().Format("02 Jan 2006 15:04 MST")})
	}

	for i, row := range rows {
		fill := i%2 == 0
		pdf.SetFillColor(241, 245, 249)
		pdf.SetFont("Helvetica", "B", 10)
		pdf.CellFormat(40, 8, row[0], "", 0, "L", fill, 0, "")
		pdf.SetFont("Helvetica", "", 10)
		pdf.CellFormat(85, 8, tr(row[1]), "", 1, "L", fill, 0, "")
	}

	// QR code
	qrOpts := fpdf.ImageOptions{ImageType: "PNG"}
	qrName := qrPath
	if qrPath == "" {
		qrName = "qr_" + doc.BookingID
		pdf.RegisterImageOptionsReader(qrName, qrOpts, bytes.NewReader(qrPNG))
	}
	pdf.ImageOptions(qrName, 145, 62, 50, 50, false, qrOpts, 0, "")
	pdf.SetXY(145, 113)
	pdf.SetFont("Helvetica", "", 8)
	pdf.CellFormat(50, 5, "Scan at check-in", "", 0, "C", false, 0, "")

	// Footer
	pdf.SetDrawColor(203, 213, 225)
	pdf.Line(15, 270, 195, 270)
	pdf.SetXY(15, 273)
	pdf.SetFont("Helvetica", "I", 9)
	pdf.SetTextColor(100, 116, 139)
	pdf.CellFormat(0, 5, tr("Present this ticket with a valid photo ID. Thank you for choosing "+doc.Product+"!"), "", 1, "C", false, 0, "")
	pdf.CellFormat(0, 5, "Issued "+doc.IssuedAt.UTC().Format(dateLayout), "", 0, "C", false, 0, "")

	if err := pdf.Error(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRenderingFailed, err)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRenderingFailed, err)
	}
	return buf.Bytes(), nil
}

func resolve(assets AssetResolver, ref string) (string, error) {
	if assets == nil {
		return "", fmt.Errorf("%w: no resolver for asset %q", ErrRenderingFailed, ref)
	}
	p, err := assets.ResolveAsset(ref)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrRenderingFailed, err)
	}
	return p, nil
}

func travelDates(doc TicketDocument) string {
	if doc.StartDate.IsZero() {
		return ""
	}
	dates := doc.StartDate.Format(dateLayout)
	if !doc.EndDate.IsZero() {
		dates += " - " + doc.EndDate.Format(dateLayout)
	}
	if doc.DurationDays > 0 {
		dates += fmt.Sprintf(" (%d days)", doc.DurationDays)
	}
	return dates
}
