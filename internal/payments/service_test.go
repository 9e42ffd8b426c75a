package payments

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"triptrek/internal/bookings"
	"triptrek/internal/shared/config"
	"triptrek/pkg/logger"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const testSecret = "s3cr3t"

type mockBookingService struct {
	mock.Mock
}

func (m *mockBookingService) CreateBooking(ctx context.Context, userID, packageID uuid.UUID, req bookings.CreateBookingRequest) (*bookings.Booking, error) {
	args := m.Called(ctx, userID, packageID, req)
	return bookingArg(args, 0), args.Error(1)
}

func (m *mockBookingService) GetUserBooking(ctx context.Context, userID, bookingID uuid.UUID) (*bookings.Booking, error) {
	args := m.Called(ctx, userID, bookingID)
	return bookingArg(args, 0), args.Error(1)
}

func (m *mockBookingService) GetUserBookings(ctx context.Context, userID uuid.UUID, query bookings.BookingListQuery) ([]bookings.Booking, int64, error) {
	args := m.Called(ctx, userID, query)
	return args.Get(0).([]bookings.Booking), args.Get(1).(int64), args.Error(2)
}

func (m *mockBookingService) ConfirmPayment(ctx context.Context, confirmation bookings.PaymentConfirmation) (*bookings.Booking, error) {
	args := m.Called(ctx, confirmation)
	return bookingArg(args, 0), args.Error(1)
}

func (m *mockBookingService) TransitionToConfirmed(ctx context.Context, bookingID uuid.UUID) (*bookings.Booking, error) {
	args := m.Called(ctx, bookingID)
	return bookingArg(args, 0), args.Error(1)
}

func (m *mockBookingService) SetConfirmationHook(hook bookings.ConfirmationHook) {
	m.Called(hook)
}

func bookingArg(args mock.Arguments, i int) *bookings.Booking {
	if b, ok := args.Get(i).(*bookings.Booking); ok {
		return b
	}
	return nil
}

type mockGateway struct {
	mock.Mock
}

func (m *mockGateway) CreateOrder(ctx context.Context, req OrderRequest) (*GatewayOrder, error) {
	args := m.Called(ctx, req)
	if o, ok := args.Get(0).(*GatewayOrder); ok {
		return o, args.Error(1)
	}
	return nil, args.Error(1)
}

// memoryStore keeps one payment row per booking, like the unique index does
type memoryStore struct {
	mu        sync.Mutex
	byBooking map[uuid.UUID]*bookings.Payment
}

func newMemoryStore() *memoryStore {
	return &memoryStore{byBooking: map[uuid.UUID]*bookings.Payment{}}
}

func (s *memoryStore) OpenPaymentOrder(_ context.Context, bookingID uuid.UUID, orderID string, amount decimal.Decimal, currency string) (*bookings.Payment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.byBooking[bookingID]
	if !ok {
		p = &bookings.Payment{ID: uuid.New(), BookingID: bookingID, Currency: currency}
		s.byBooking[bookingID] = p
	}
	if p.Paid {
		return nil, bookings.ErrAlreadyPaid
	}
	p.GatewayOrderID = orderID
	p.Amount = amount
	cp := *p
	return &cp, nil
}

func (s *memoryStore) GetPaymentByOrderID(_ context.Context, orderID string) (*bookings.Payment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, p := range s.byBooking {
		if p.GatewayOrderID == orderID {
			cp := *p
			return &cp, nil
		}
	}
	return nil, bookings.ErrPaymentNotFound
}

type paymentFixture struct {
	svc      Service
	bookings *mockBookingService
	gateway  *mockGateway
	store    *memoryStore
	locker   OrderLocker
	userID   uuid.UUID
	booking  *bookings.Booking
}

func newPaymentFixture(t *testing.T) *paymentFixture {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	f := &paymentFixture{
		bookings: &mockBookingService{},
		gateway:  &mockGateway{},
		store:    newMemoryStore(),
		locker:   NewRedisOrderLock(client, 15*time.Second),
		userID:   uuid.New(),
	}
	f.booking = &bookings.Booking{
		ID:          uuid.New(),
		UserID:      f.userID,
		Travelers:   2,
		TotalAmount: decimal.RequireFromString("1800.00"),
		Status:      bookings.StatusPending,
	}
	f.svc = NewService(f.bookings, f.store, f.gateway, f.locker, nil, config.PaymentConfig{
		KeyID:     "rzp_test_key",
		KeySecret: testSecret,
		Currency:  "INR",
	}, logger.Discard())
	return f
}

func TestOpenOrder(t *testing.T) {
	f := newPaymentFixture(t)
	ctx := context.Background()

	f.bookings.On("GetUserBooking", mock.Anything, f.userID, f.booking.ID).Return(f.booking, nil)
	f.gateway.On("CreateOrder", mock.Anything, mock.MatchedBy(func(req OrderRequest) bool {
		return req.Amount == 180000 && req.Currency == "INR" && req.Receipt == "booking_"+f.booking.ID.String()
	})).Return(&GatewayOrder{ID: "order_1", Amount: 180000, Currency: "INR"}, nil).Once()

	order, err := f.svc.OpenOrder(ctx, f.userID, f.booking.ID)
	require.NoError(t, err)

	assert.Equal(t, "order_1", order.OrderID)
	assert.Equal(t, int64(180000), order.Amount)
	assert.Equal(t, "rzp_test_key", order.KeyID)
	assert.Equal(t, f.booking.ID, order.BookingID)

	payment, err := f.store.GetPaymentByOrderID(ctx, "order_1")
	require.NoError(t, err)
	assert.Equal(t, f.booking.ID, payment.BookingID)
	f.gateway.AssertExpectations(t)
}

func TestOpenOrderTwiceReplacesTheOrder(t *testing.T) {
	f := newPaymentFixture(t)
	ctx := context.Background()

	f.bookings.On("GetUserBooking", mock.Anything, f.userID, f.booking.ID).Return(f.booking, nil)
	f.gateway.On("CreateOrder", mock.Anything, mock.Anything).Return(&GatewayOrder{ID: "order_1"}, nil).Once()
	f.gateway.On("CreateOrder", mock.Anything, mock.Anything).Return(&GatewayOrder{ID: "order_2"}, nil).Once()

	_, err := f.svc.OpenOrder(ctx, f.userID, f.booking.ID)
	require.NoError(t, err)
	_, err = f.svc.OpenOrder(ctx, f.userID, f.booking.ID)
	require.NoError(t, err)

	assert.Len(t, f.store.byBooking, 1)
	_, err = f.store.GetPaymentByOrderID(ctx, "order_1")
	assert.ErrorIs(t, err, bookings.ErrPaymentNotFound)
	_, err = f.store.GetPaymentByOrderID(ctx, "order_2")
	assert.NoError(t, err)
}

func TestOpenOrderRejectsPaidBookings(t *testing.T) {
	f := newPaymentFixture(t)
	f.booking.Status = bookings.StatusConfirmed
	f.booking.Payment = &bookings.Payment{ID: uuid.New(), BookingID: f.booking.ID, Paid: true}

	f.bookings.On("GetUserBooking", mock.Anything, f.userID, f.booking.ID).Return(f.booking, nil)

	_, err := f.svc.OpenOrder(context.Background(), f.userID, f.booking.ID)
	assert.ErrorIs(t, err, bookings.ErrAlreadyPaid)
	f.gateway.AssertNotCalled(t, "CreateOrder", mock.Anything, mock.Anything)
}

func TestOpenOrderGatewayFailureLeavesNoPayment(t *testing.T) {
	f := newPaymentFixture(t)

	f.bookings.On("GetUserBooking", mock.Anything, f.userID, f.booking.ID).Return(f.booking, nil)
	f.gateway.On("CreateOrder", mock.Anything, mock.Anything).
		Return(nil, &GatewayError{Op: "create order", Err: context.DeadlineExceeded})

	_, err := f.svc.OpenOrder(context.Background(), f.userID, f.booking.ID)
	assert.ErrorIs(t, err, ErrGateway)
	assert.Empty(t, f.store.byBooking)

	// The lock was released, so a retry reaches the gateway again
	_, err = f.svc.OpenOrder(context.Background(), f.userID, f.booking.ID)
	assert.ErrorIs(t, err, ErrGateway)
	f.gateway.AssertNumberOfCalls(t, "CreateOrder", 2)
}

func TestOpenOrderWhileLocked(t *testing.T) {
	f := newPaymentFixture(t)
	ctx := context.Background()

	f.bookings.On("GetUserBooking", mock.Anything, f.userID, f.booking.ID).Return(f.booking, nil)
	_, err := f.locker.Acquire(ctx, f.booking.ID)
	require.NoError(t, err)

	_, err = f.svc.OpenOrder(ctx, f.userID, f.booking.ID)
	assert.ErrorIs(t, err, ErrOrderInProgress)
	f.gateway.AssertNotCalled(t, "CreateOrder", mock.Anything, mock.Anything)
}

func TestVerifyCallback(t *testing.T) {
	f := newPaymentFixture(t)
	ctx := context.Background()

	payment, err := f.store.OpenPaymentOrder(ctx, f.booking.ID, "order_1", f.booking.TotalAmount, "INR")
	require.NoError(t, err)

	confirmed := *f.booking
	confirmed.Status = bookings.StatusConfirmed
	sig := Signature(testSecret, "order_1", "pay_1")
	f.bookings.On("ConfirmPayment", mock.Anything, bookings.PaymentConfirmation{
		PaymentID:        payment.ID,
		GatewayPaymentID: "pay_1",
		Signature:        sig,
	}).Return(&confirmed, nil)

	booking, err := f.svc.VerifyCallback(ctx, "order_1", "pay_1", sig)
	require.NoError(t, err)
	assert.Equal(t, bookings.StatusConfirmed, booking.Status)
	f.bookings.AssertExpectations(t)
}

func TestVerifyCallbackTamperedSignatureMutatesNothing(t *testing.T) {
	f := newPaymentFixture(t)
	ctx := WithClientIP(context.Background(), "203.0.113.9")

	_, err := f.store.OpenPaymentOrder(ctx, f.booking.ID, "order_1", f.booking.TotalAmount, "INR")
	require.NoError(t, err)

	sig := Signature(testSecret, "order_1", "pay_1")
	tampered := "0" + sig[1:]
	if tampered == sig {
		tampered = "1" + sig[1:]
	}

	_, err = f.svc.VerifyCallback(ctx, "order_1", "pay_1", tampered)
	assert.ErrorIs(t, err, ErrInvalidSignature)
	f.bookings.AssertNotCalled(t, "ConfirmPayment", mock.Anything, mock.Anything)

	payment, err := f.store.GetPaymentByOrderID(ctx, "order_1")
	require.NoError(t, err)
	assert.False(t, payment.Paid)
}

func TestVerifyCallbackUnknownOrder(t *testing.T) {
	f := newPaymentFixture(t)

	_, err := f.svc.VerifyCallback(context.Background(), "order_missing", "pay_1", Signature(testSecret, "order_missing", "pay_1"))
	assert.ErrorIs(t, err, ErrUnknownOrder)
}

func TestVerifyCallbackReturnsBookingWhenDeliveryFails(t *testing.T) {
	f := newPaymentFixture(t)
	ctx := context.Background()

	_, err := f.store.OpenPaymentOrder(ctx, f.booking.ID, "order_1", f.booking.TotalAmount, "INR")
	require.NoError(t, err)

	confirmed := *f.booking
	confirmed.Status = bookings.StatusConfirmed
	deliveryErr := errors.New("smtp down")
	f.bookings.On("ConfirmPayment", mock.Anything, mock.Anything).Return(&confirmed, deliveryErr)

	booking, err := f.svc.VerifyCallback(ctx, "order_1", "pay_1", Signature(testSecret, "order_1", "pay_1"))
	assert.ErrorIs(t, err, deliveryErr)
	require.NotNil(t, booking)
	assert.Equal(t, bookings.StatusConfirmed, booking.Status)
}
