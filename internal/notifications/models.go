package notifications

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type EventType string

const (
	EventBookingCreated   EventType = "booking.created"
	EventBookingConfirmed EventType = "booking.confirmed"
	EventPaymentOrdered   EventType = "payment.order_opened"
	EventPaymentVerified  EventType = "payment.verified"
	EventTicketIssued     EventType = "ticket.issued"
)

// Event is the envelope published for every booking flow transition
type Event struct {
	ID         uuid.UUID              `json:"id"`
	Type       EventType              `json:"type"`
	BookingID  uuid.UUID              `json:"booking_id"`
	UserID     uuid.UUID              `json:"user_id"`
	Data       map[string]interface{} `json:"data,omitempty"`
	OccurredAt time.Time              `json:"occurred_at"`
}

// NewEvent stamps a fresh event for a booking
func NewEvent(eventType EventType, bookingID, userID uuid.UUID, data map[string]interface{}) *Event {
	return &Event{
		ID:         uuid.New(),
		Type:       eventType,
		BookingID:  bookingID,
		UserID:     userID,
		Data:       data,
		OccurredAt: time.Now().UTC(),
	}
}

// PartitionKey keeps every event of one booking on the same partition
func (e *Event) PartitionKey() string {
	return e.BookingID.String()
}

func (e *Event) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// Attachment is a file carried by an outgoing email
type Attachment struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Message is a plain-text email with optional attachments
type Message struct {
	To          string
	ToName      string
	Subject     string
	TextBody    string
	Attachments []Attachment
}
