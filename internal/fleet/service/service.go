package service

import (
	"context"
	"log/slog"

	"motorcover/internal/fleet/models"
	dErrors "motorcover/pkg/domain-errors"
)

// Store is the storage capability the fleet service needs. Concrete engines
// (postgres, in-memory) implement it identically.
type Store interface {
	Exists(ctx context.Context, carID int64) (bool, error)
	FindByID(ctx context.Context, carID int64) (models.Car, error)
	List(ctx context.Context) ([]models.CarWithOwner, error)
}

// Service exposes read operations over the vehicle fleet.
type Service struct {
	store  Store
	logger *slog.Logger
}

// New constructs the fleet service.
func New(store Store, logger *slog.Logger) *Service {
	return &Service{store: store, logger: logger}
}

// List returns every car joined with its owner.
func (s *Service) List(ctx context.Context) ([]models.CarWithOwner, error) {
	cars, err := s.store.List(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "failed to list cars")
	}
	return cars, nil
}

// Exists reports whether a car identity is known.
func (s *Service) Exists(ctx context.Context, carID int64) (bool, error) {
	ok, err := s.store.Exists(ctx, carID)
	if err != nil {
		return false, dErrors.Wrap(err, dErrors.CodeUnavailable, "failed to check car")
	}
	return ok, nil
}
