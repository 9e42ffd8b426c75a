package offers

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"triptrek/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryRepository struct {
	offers map[string]*Offer
	err    error
}

func (m *memoryRepository) FindByCode(_ context.Context, code string) (*Offer, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.offers[strings.ToLower(code)], nil
}

func (m *memoryRepository) Upsert(_ context.Context, offer *Offer) error {
	m.offers[strings.ToLower(offer.Code)] = offer
	return nil
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func ptr(t time.Time) *time.Time { return &t }

func newRepo(offers ...*Offer) *memoryRepository {
	repo := &memoryRepository{offers: map[string]*Offer{}}
	for _, o := range offers {
		_ = repo.Upsert(context.Background(), o)
	}
	return repo
}

func TestResolve(t *testing.T) {
	today := day(2026, 10, 17)
	repo := newRepo(
		&Offer{Code: "SAVE10", DiscountPercent: 10, Active: true},
		&Offer{Code: "OFF", DiscountPercent: 50, Active: false},
		&Offer{Code: "EXPIRED", DiscountPercent: 20, Active: true, ValidTo: ptr(day(2026, 10, 16))},
		&Offer{Code: "FUTURE", DiscountPercent: 20, Active: true, ValidFrom: ptr(day(2026, 10, 18))},
		&Offer{Code: "TODAY", DiscountPercent: 5, Active: true, ValidFrom: ptr(today), ValidTo: ptr(today)},
		&Offer{Code: "SUMMER-25", DiscountPercent: 25, Active: true},
		&Offer{Code: "FREE", DiscountPercent: 100, Active: true},
	)
	svc := NewService(repo, logger.Discard())

	tests := []struct {
		name     string
		code     string
		wantCode string
	}{
		{"exact", "SAVE10", "SAVE10"},
		{"case insensitive", "save10", "SAVE10"},
		{"padded", "  Save10 ", "SAVE10"},
		{"blank", "", ""},
		{"unknown", "NOPE", ""},
		{"inactive", "OFF", ""},
		{"expired", "EXPIRED", ""},
		{"not yet valid", "FUTURE", ""},
		{"inclusive window", "today", "TODAY"},
		{"hyphenated", "summer-25 ", "SUMMER-25"},
		{"full discount", "FREE", ""},
		{"punctuation", "SAVE 10%", ""},
		{"too long", strings.Repeat("A", MaxCodeLength+1), ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			offer, err := svc.Resolve(context.Background(), tt.code, today)
			require.NoError(t, err)
			if tt.wantCode == "" {
				assert.Nil(t, offer)
				return
			}
			require.NotNil(t, offer)
			assert.Equal(t, tt.wantCode, offer.Code)
		})
	}
}

func TestResolveStorageError(t *testing.T) {
	repo := newRepo()
	repo.err = errors.New("connection reset")
	svc := NewService(repo, logger.Discard())

	_, err := svc.Resolve(context.Background(), "SAVE10", day(2026, 1, 1))
	assert.Error(t, err)
}

func TestIsRedeemableOnIgnoresTimeOfDay(t *testing.T) {
	offer := &Offer{Code: "EOD", DiscountPercent: 10, Active: true, ValidTo: ptr(day(2026, 10, 17))}

	lateEvening := time.Date(2026, 10, 17, 23, 59, 0, 0, time.UTC)
	assert.True(t, offer.IsRedeemableOn(lateEvening))
	assert.False(t, offer.IsRedeemableOn(lateEvening.Add(2*time.Minute)))

	var none *Offer
	assert.False(t, none.IsRedeemableOn(lateEvening))
}

func TestResolveSkipsStorageForMalformedCodes(t *testing.T) {
	repo := newRepo()
	repo.err = errors.New("should not be queried")
	svc := NewService(repo, logger.Discard())

	for _, code := range []string{"SAVE 10%", "<script>", strings.Repeat("x", MaxCodeLength+1)} {
		offer, err := svc.Resolve(context.Background(), code, day(2026, 1, 1))
		require.NoError(t, err, code)
		assert.Nil(t, offer, code)
	}
}

func TestIsRedeemableOnRejectsFullDiscount(t *testing.T) {
	now := day(2026, 10, 17)
	assert.True(t, (&Offer{DiscountPercent: 99, Active: true}).IsRedeemableOn(now))
	assert.False(t, (&Offer{DiscountPercent: 100, Active: true}).IsRedeemableOn(now))
}
