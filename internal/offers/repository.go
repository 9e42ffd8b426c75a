package offers

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Repository interface {
	FindByCode(ctx context.Context, code string) (*Offer, error)
	Upsert(ctx context.Context, offer *Offer) error
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

// FindByCode matches codes case-insensitively. A missing code is (nil, nil).
func (r *repository) FindByCode(ctx context.Context, code string) (*Offer, error) {
	var offer Offer
	err := r.db.WithContext(ctx).
		Where("LOWER(code) = ?", strings.ToLower(code)).
		First(&offer).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to look up offer: %w", err)
	}
	return &offer, nil
}

func (r *repository) Upsert(ctx context.Context, offer *Offer) error {
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "code"}},
			DoUpdates: clause.AssignmentColumns([]string{"description", "discount_percent", "active", "valid_from", "valid_to"}),
		}).
		Create(offer).Error
	if err != nil {
		return fmt.Errorf("failed to upsert offer %s: %w", offer.Code, err)
	}
	return nil
}
