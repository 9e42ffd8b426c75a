package bookings

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"triptrek/internal/offers"
	"triptrek/internal/shared/middleware"
	"triptrek/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// offerTable is an offers.Repository keyed by lowercased code
type offerTable map[string]*offers.Offer

func (t offerTable) FindByCode(_ context.Context, code string) (*offers.Offer, error) {
	return t[strings.ToLower(code)], nil
}

func (t offerTable) Upsert(_ context.Context, offer *offers.Offer) error {
	t[strings.ToLower(offer.Code)] = offer
	return nil
}

// withOfferService swaps the fixture's offer stub for the real resolver
func withOfferService(f *fixture, codes ...*offers.Offer) *fixture {
	table := offerTable{}
	for _, o := range codes {
		_ = table.Upsert(context.Background(), o)
	}
	f.svc = NewService(f.repo, f.catalog, offers.NewService(table, logger.Discard()), f.publisher, logger.Discard())
	return f
}

func newBookingRouter(f *fixture) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	auth := func(c *gin.Context) {
		c.Set(middleware.ContextUserID, f.userID.String())
		c.Set(middleware.ContextUserRole, "USER")
		c.Next()
	}
	SetupBookingRoutes(router.Group("/api/v1"), NewController(f.svc, logger.Discard()), auth)
	return router
}

type bookingEnvelope struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Data    BookingResponse `json:"data"`
}

func postBooking(router *gin.Engine, packageID uuid.UUID, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/packages/"+packageID.String()+"/bookings", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)
	return w
}

func TestCreateBookingEndpoint(t *testing.T) {
	f := newFixture(t, "1000.00", 10)
	router := newBookingRouter(f)

	w := postBooking(router, f.pkg.ID, `{"travelers":2,"offer_code":"save10"}`)
	require.Equal(t, http.StatusCreated, w.Code)

	var resp bookingEnvelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "success", resp.Status)
	assert.Equal(t, "1800.00", resp.Data.TotalAmount)
	assert.Equal(t, StatusPending, resp.Data.Status)
	assert.False(t, resp.Data.TicketAvailable)
}

func TestCreateBookingEndpointRejections(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		status int
	}{
		{"missing travelers", `{}`, http.StatusBadRequest},
		{"zero travelers", `{"travelers":0}`, http.StatusBadRequest},
		{"negative travelers", `{"travelers":-1}`, http.StatusBadRequest},
		{"not enough slots", `{"travelers":11}`, http.StatusConflict},
		{"large party over capacity", `{"travelers":60}`, http.StatusConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, "1000.00", 10)
			w := postBooking(newBookingRouter(f), f.pkg.ID, tt.body)
			assert.Equal(t, tt.status, w.Code)
		})
	}
}

func TestCreateBookingEndpointIgnoresUnusableOfferCodes(t *testing.T) {
	tests := []struct {
		name  string
		code  string
		total string
	}{
		{"trailing space", "save10 ", "1800.00"},
		{"hyphenated unknown", "SUMMER-25", "2000.00"},
		{"punctuation", "SAVE 10%", "2000.00"},
		{"too long", strings.Repeat("A", 80), "2000.00"},
		{"inactive", "DEAD", "2000.00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := withOfferService(newFixture(t, "1000.00", 10),
				&offers.Offer{ID: uuid.New(), Code: "SAVE10", DiscountPercent: 10, Active: true},
				&offers.Offer{ID: uuid.New(), Code: "DEAD", DiscountPercent: 50, Active: false},
			)
			body, err := json.Marshal(map[string]interface{}{"travelers": 2, "offer_code": tt.code})
			require.NoError(t, err)

			w := postBooking(newBookingRouter(f), f.pkg.ID, string(body))
			require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

			var resp bookingEnvelope
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, tt.total, resp.Data.TotalAmount)
		})
	}
}

func TestCreateBookingEndpointUnknownPackage(t *testing.T) {
	f := newFixture(t, "1000.00", 10)
	w := postBooking(newBookingRouter(f), uuid.New(), `{"travelers":1}`)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetBookingEndpointHidesForeignBookings(t *testing.T) {
	f := newFixture(t, "1000.00", 10)
	other, err := f.svc.CreateBooking(context.Background(), uuid.New(), f.pkg.ID, CreateBookingRequest{Travelers: 1})
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/bookings/"+other.ID.String(), nil)
	newBookingRouter(f).ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}
