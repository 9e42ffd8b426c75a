package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// BookingsCreated counts pending bookings persisted, labelled by whether an offer applied
	BookingsCreated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "triptrek",
			Subsystem: "bookings",
			Name:      "created_total",
			Help:      "The total number of bookings created",
		},
		[]string{"offer_applied"},
	)

	// BookingsConfirmed counts PENDING -> CONFIRMED transitions
	BookingsConfirmed = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "triptrek",
			Subsystem: "bookings",
			Name:      "confirmed_total",
			Help:      "The total number of bookings confirmed after payment",
		},
	)

	// SlotsExhausted counts booking attempts rejected for lack of slots
	SlotsExhausted = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "triptrek",
			Subsystem: "bookings",
			Name:      "slots_exhausted_total",
			Help:      "The total number of bookings rejected because the package had too few slots",
		},
	)

	// PaymentOrders counts remote orders opened, by outcome
	PaymentOrders = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "triptrek",
			Subsystem: "payments",
			Name:      "orders_total",
			Help:      "The total number of payment gateway orders requested",
		},
		[]string{"outcome"},
	)

	// PaymentVerifications counts callback verifications, by outcome
	PaymentVerifications = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "triptrek",
			Subsystem: "payments",
			Name:      "verifications_total",
			Help:      "The total number of payment callbacks verified",
		},
		[]string{"outcome"},
	)

	// GatewayLatency observes payment gateway round trips
	GatewayLatency = promauto.NewSummaryVec(
		prometheus.SummaryOpts{
			Namespace:  "triptrek",
			Subsystem:  "payments",
			Name:       "gateway_duration_seconds",
			Help:       "Time spent waiting on the payment gateway",
			Objectives: map[float64]float64{0.5: 0.05, 0.9: 0.01, 0.99: 0.001},
		},
		[]string{"operation"},
	)

	// TicketsIssued counts generated tickets
	TicketsIssued = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "triptrek",
			Subsystem: "tickets",
			Name:      "issued_total",
			Help:      "The total number of tickets rendered",
		},
	)

	// TicketDeliveryFailures counts ticket emails that failed to send
	TicketDeliveryFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "triptrek",
			Subsystem: "tickets",
			Name:      "delivery_failed_total",
			Help:      "The total number of ticket emails that failed",
		},
	)
)

// Outcome labels shared by the payment counters
const (
	OutcomeSuccess   = "success"
	OutcomeFailure   = "failure"
	OutcomeDuplicate = "duplicate"
	OutcomeTampered  = "tampered"
	OutcomeUnknown   = "unknown_order"
)
