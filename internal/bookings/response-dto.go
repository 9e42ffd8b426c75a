package bookings

import (
	"time"

	"triptrek/internal/shared/utils/response"
)

type BookingResponse struct {
	ID              string       `json:"id"`
	PackageID       string       `json:"package_id"`
	PackageTitle    string       `json:"package_title,omitempty"`
	Travelers       int          `json:"travelers"`
	TotalAmount     string       `json:"total_amount"`
	OfferCode       *string      `json:"offer_code,omitempty"`
	Status          Status       `json:"status"`
	BookingTime     time.Time    `json:"booking_time"`
	Payment         *PaymentInfo `json:"payment,omitempty"`
	TicketAvailable bool         `json:"ticket_available"`
}

type PaymentInfo struct {
	ID       string     `json:"id"`
	OrderID  string     `json:"order_id"`
	Amount   string     `json:"amount"`
	Currency string     `json:"currency"`
	Paid     bool       `json:"paid"`
	PaidAt   *time.Time `json:"paid_at,omitempty"`
}

type BookingListResponse struct {
	Bookings   []BookingResponse   `json:"bookings"`
	Pagination response.Pagination `json:"pagination"`
}

func ToBookingResponse(b *Booking) BookingResponse {
	resp := BookingResponse{
		ID:              b.ID.String(),
		PackageID:       b.PackageID.String(),
		Travelers:       b.Travelers,
		TotalAmount:     b.TotalAmount.StringFixed(2),
		OfferCode:       b.OfferCode,
		Status:          b.Status,
		BookingTime:     b.BookingTime,
		TicketAvailable: b.TicketAvailable(),
	}
	if b.Package != nil {
		resp.PackageTitle = b.Package.Title
	}
	if p, ok := b.PaymentRecord(); ok {
		resp.Payment = &PaymentInfo{
			ID:       p.ID.String(),
			OrderID:  p.GatewayOrderID,
			Amount:   p.Amount.StringFixed(2),
			Currency: p.Currency,
			Paid:     p.Paid,
			PaidAt:   p.PaidAt,
		}
	}
	return resp
}

func ToBookingListResponse(bookings []Booking, query BookingListQuery, total int64) BookingListResponse {
	query.normalize()
	items := make([]BookingResponse, 0, len(bookings))
	for i := range bookings {
		items = append(items, ToBookingResponse(&bookings[i]))
	}
	return BookingListResponse{
		Bookings:   items,
		Pagination: response.NewPagination(query.Page, query.Limit, total),
	}
}
