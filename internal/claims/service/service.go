package service

import (
	"context"
	"log/slog"
	"sort"
	"strings"

	claimModel "motorcover/internal/claims/models"
	policyModel "motorcover/internal/policy/models"
	"motorcover/pkg/dates"
	dErrors "motorcover/pkg/domain-errors"
)

// CarStore is the slice of fleet storage this service needs.
type CarStore interface {
	Exists(ctx context.Context, carID int64) (bool, error)
}

// ClaimStore is the claim storage capability.
type ClaimStore interface {
	Create(ctx context.Context, claim *claimModel.Claim) error
	ListByCar(ctx context.Context, carID int64) ([]claimModel.Claim, error)
}

// PolicyReader is the read-only slice of policy storage the history timeline
// needs.
type PolicyReader interface {
	ListByCar(ctx context.Context, carID int64) ([]policyModel.InsurancePolicy, error)
}

// Service manages claims and assembles car history timelines.
type Service struct {
	cars     CarStore
	claims   ClaimStore
	policies PolicyReader
	logger   *slog.Logger
}

// New constructs the claims service.
func New(cars CarStore, claims ClaimStore, policies PolicyReader, logger *slog.Logger) *Service {
	return &Service{cars: cars, claims: claims, policies: policies, logger: logger}
}

// Create validates and persists a claim against an existing car.
func (s *Service) Create(ctx context.Context, carID int64, description string, amount float64, claimDate dates.Date) (claimModel.Claim, error) {
	if strings.TrimSpace(description) == "" {
		return claimModel.Claim{}, dErrors.New(dErrors.CodeValidation, "claim description is required")
	}
	if amount <= 0 {
		return claimModel.Claim{}, dErrors.New(dErrors.CodeValidation, "claim amount must be positive")
	}
	if claimDate.IsZero() {
		return claimModel.Claim{}, dErrors.New(dErrors.CodeValidation, "claim date is required")
	}

	exists, err := s.cars.Exists(ctx, carID)
	if err != nil {
		return claimModel.Claim{}, dErrors.Wrap(err, dErrors.CodeUnavailable, "failed to check car")
	}
	if !exists {
		return claimModel.Claim{}, dErrors.Newf(dErrors.CodeNotFound, "car %d not found", carID)
	}

	claim := claimModel.Claim{
		CarID:       carID,
		Description: strings.TrimSpace(description),
		Amount:      amount,
		ClaimDate:   claimDate,
	}
	if err := s.claims.Create(ctx, &claim); err != nil {
		return claimModel.Claim{}, dErrors.Wrap(err, dErrors.CodeUnavailable, "failed to create claim")
	}
	return claim, nil
}

// ListByCar returns the car's claims, failing with CodeNotFound for an
// unknown car.
func (s *Service) ListByCar(ctx context.Context, carID int64) ([]claimModel.Claim, error) {
	exists, err := s.cars.Exists(ctx, carID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "failed to check car")
	}
	if !exists {
		return nil, dErrors.Newf(dErrors.CodeNotFound, "car %d not found", carID)
	}

	claims, err := s.claims.ListByCar(ctx, carID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "failed to load claims")
	}
	return claims, nil
}

// History merges the car's policies and claims into one timeline, newest
// first. Policies sort on their start date; claims on their claim date.
func (s *Service) History(ctx context.Context, carID int64) (claimModel.CarHistory, error) {
	exists, err := s.cars.Exists(ctx, carID)
	if err != nil {
		return claimModel.CarHistory{}, dErrors.Wrap(err, dErrors.CodeUnavailable, "failed to check car")
	}
	if !exists {
		return claimModel.CarHistory{}, dErrors.Newf(dErrors.CodeNotFound, "car %d not found", carID)
	}

	policies, err := s.policies.ListByCar(ctx, carID)
	if err != nil {
		return claimModel.CarHistory{}, dErrors.Wrap(err, dErrors.CodeUnavailable, "failed to load policies")
	}
	claims, err := s.claims.ListByCar(ctx, carID)
	if err != nil {
		return claimModel.CarHistory{}, dErrors.Wrap(err, dErrors.CodeUnavailable, "failed to load claims")
	}

	timeline := make([]claimModel.HistoryItem, 0, len(policies)+len(claims))
	for _, p := range policies {
		end := p.EndDate
		timeline = append(timeline, claimModel.HistoryItem{
			Type:     "policy",
			Date:     p.StartDate,
			EndDate:  &end,
			Provider: p.Provider,
			ItemID:   p.ID,
		})
	}
	for _, c := range claims {
		amount := c.Amount
		timeline = append(timeline, claimModel.HistoryItem{
			Type:        "claim",
			Date:        c.ClaimDate,
			Description: c.Description,
			Amount:      &amount,
			ItemID:      c.ID,
		})
	}
	sort.SliceStable(timeline, func(i, j int) bool {
		return timeline[i].Date.After(timeline[j].Date)
	})

	return claimModel.CarHistory{CarID: carID, Timeline: timeline}, nil
}
