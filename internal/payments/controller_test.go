package payments

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"triptrek/internal/bookings"
	"triptrek/internal/tickets"
	"triptrek/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubService returns a fixed verification outcome
type stubService struct {
	booking *bookings.Booking
	err     error
}

func (s *stubService) OpenOrder(context.Context, uuid.UUID, uuid.UUID) (*RemoteOrder, error) {
	return nil, errors.New("not used")
}

func (s *stubService) VerifyCallback(context.Context, string, string, string) (*bookings.Booking, error) {
	return s.booking, s.err
}

func postVerify(t *testing.T, svc Service) (int, string) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	router := gin.New()
	noAuth := func(c *gin.Context) { c.Next() }
	SetupPaymentRoutes(router.Group("/api/v1"), NewController(svc, "/api/v1/bookings", logger.Discard()), noAuth)

	body := `{"razorpay_order_id":"order_1","razorpay_payment_id":"pay_1","razorpay_signature":"sig"}`
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/payments/verify", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	var resp struct {
		Message string `json:"message"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return w.Code, resp.Message
}

func TestVerifyPaymentMessageFollowsTicketFailure(t *testing.T) {
	booking := &bookings.Booking{
		ID:          uuid.New(),
		PackageID:   uuid.New(),
		Travelers:   2,
		TotalAmount: decimal.RequireFromString("1800.00"),
		Status:      bookings.StatusConfirmed,
	}

	tests := []struct {
		name    string
		err     error
		message string
	}{
		{"no failure", nil, "Payment successful. Ticket sent to your email."},
		{"email failed", fmt.Errorf("%w: smtp down", tickets.ErrDeliveryFailed), "could not be emailed"},
		{"rendering failed", fmt.Errorf("%w: bad logo", tickets.ErrRenderingFailed), "could not be generated"},
		{"storage failed", errors.New("disk full"), "could not be issued or emailed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, message := postVerify(t, &stubService{booking: booking, err: tt.err})
			assert.Equal(t, http.StatusOK, code)
			assert.Contains(t, message, tt.message)
		})
	}
}

func TestVerifyPaymentInvalidSignature(t *testing.T) {
	code, _ := postVerify(t, &stubService{err: ErrInvalidSignature})
	assert.Equal(t, http.StatusBadRequest, code)
}
