package offers

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"triptrek/pkg/logger"
)

type Service interface {
	// Resolve returns the offer to apply for code on day, or nil when the code
	// is blank, unknown, inactive or outside its window. Only storage failures
	// are returned as errors.
	Resolve(ctx context.Context, code string, day time.Time) (*Offer, error)
}

type service struct {
	repo Repository
	log  *logger.Logger
}

func NewService(repo Repository, log *logger.Logger) Service {
	if log == nil {
		log = logger.GetDefault()
	}
	return &service{repo: repo, log: log}
}

// MaxCodeLength matches the offers.code column size
const MaxCodeLength = 50

func (s *service) Resolve(ctx context.Context, code string, day time.Time) (*Offer, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, nil
	}
	if !isWellFormedCode(code) {
		s.log.DebugContext(ctx, "offer code malformed, ignoring", slog.Int("length", len(code)))
		return nil, nil
	}

	offer, err := s.repo.FindByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if offer == nil {
		s.log.DebugContext(ctx, "offer code not found", slog.String("code", code))
		return nil, nil
	}
	if !offer.IsRedeemableOn(day) {
		s.log.DebugContext(ctx, "offer code not redeemable",
			slog.String("code", offer.Code),
			slog.Bool("active", offer.Active),
		)
		return nil, nil
	}
	return offer, nil
}

// isWellFormedCode reports whether code could name a stored offer: ASCII
// letters, digits, '-' or '_' and no longer than the column.
func isWellFormedCode(code string) bool {
	if len(code) > MaxCodeLength {
		return false
	}
	for _, r := range code {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
		default:
			return false
		}
	}
	return true
}
