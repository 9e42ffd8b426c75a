package catalog

import (
	"context"
	"log/slog"

	"triptrek/internal/shared/constants"
	"triptrek/pkg/cache"
	"triptrek/pkg/logger"

	"github.com/google/uuid"
)

type Service interface {
	GetPackage(ctx context.Context, id uuid.UUID) (*Package, error)
	// InvalidatePackage drops the cached copy after availability changes
	InvalidatePackage(ctx context.Context, id uuid.UUID)
}

type service struct {
	repo  Repository
	cache cache.Service
	log   *logger.Logger
}

// NewService wires the catalog. cacheService may be nil when Redis is not available.
func NewService(repo Repository, cacheService cache.Service, log *logger.Logger) Service {
	if log == nil {
		log = logger.GetDefault()
	}
	return &service{repo: repo, cache: cacheService, log: log}
}

func (s *service) GetPackage(ctx context.Context, id uuid.UUID) (*Package, error) {
	if s.cache == nil {
		return s.repo.GetPackageByID(ctx, id)
	}

	var pkg Package
	err := s.cache.GetOrSet(ctx, constants.BuildPackageDetailKey(id), constants.TTL_PACKAGE_DETAIL,
		func() (interface{}, error) {
			return s.repo.GetPackageByID(ctx, id)
		}, &pkg)
	if err != nil {
		return nil, err
	}
	return &pkg, nil
}

func (s *service) InvalidatePackage(ctx context.Context, id uuid.UUID) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, constants.BuildPackageDetailKey(id)); err != nil {
		s.log.WarnContext(ctx, "failed to invalidate package cache",
			slog.String("package_id", id.String()), slog.Any("error", err))
	}
}
