package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Repository interface {
	GetPackageByID(ctx context.Context, id uuid.UUID) (*Package, error)

	// Seeding
	UpsertDestination(ctx context.Context, destination *Destination) error
	UpsertPackage(ctx context.Context, pkg *Package) error
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) GetPackageByID(ctx context.Context, id uuid.UUID) (*Package, error) {
	var pkg Package
	err := r.db.WithContext(ctx).
		Preload("Destination").
		Where("id = ?", id).
		First(&pkg).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPackageNotFound
		}
		return nil, fmt.Errorf("failed to load package: %w", err)
	}
	return &pkg, nil
}

func (r *repository) UpsertDestination(ctx context.Context, destination *Destination) error {
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "slug"}},
			DoUpdates: clause.AssignmentColumns([]string{"name", "country", "description"}),
		}).
		Create(destination).Error
	if err != nil {
		return fmt.Errorf("failed to upsert destination %s: %w", destination.Slug, err)
	}
	return r.db.WithContext(ctx).Where("slug = ?", destination.Slug).First(destination).Error
}

// UpsertPackage inserts or refreshes a package by slug. Slot counters are only
// written on insert so reseeding never hands back reserved slots.
func (r *repository) UpsertPackage(ctx context.Context, pkg *Package) error {
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "slug"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"title", "short_description", "description", "price",
				"duration_days", "start_date", "end_date",
			}),
		}).
		Create(pkg).Error
	if err != nil {
		return fmt.Errorf("failed to upsert package %s: %w", pkg.Slug, err)
	}
	return r.db.WithContext(ctx).Where("slug = ?", pkg.Slug).First(pkg).Error
}

// ReserveSlots takes n slots from a package inside the caller's transaction.
// The decrement is a single conditional UPDATE so concurrent reservations can
// never drive available_slots below zero.
func ReserveSlots(tx *gorm.DB, packageID uuid.UUID, n int) error {
	if n <= 0 {
		return fmt.Errorf("invalid slot count %d", n)
	}

	result := tx.Model(&Package{}).
		Where("id = ? AND available_slots >= ?", packageID, n).
		UpdateColumn("available_slots", gorm.Expr("available_slots - ?", n))
	if result.Error != nil {
		return fmt.Errorf("failed to reserve slots: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrInsufficientSlots
	}
	return nil
}
