package service

import (
	"context"
	"errors"
	"log/slog"

	"motorcover/internal/platform/metrics"
	"motorcover/internal/policy/models"
	"motorcover/pkg/dates"
	dErrors "motorcover/pkg/domain-errors"
	"motorcover/pkg/platform/sentinel"
	"motorcover/pkg/requestcontext"
)

// CarStore is the slice of fleet storage this service needs.
type CarStore interface {
	Exists(ctx context.Context, carID int64) (bool, error)
}

// PolicyStore is the policy storage capability. CreateIfNoOverlap must treat
// the overlap check and insert as one atomic operation per car.
type PolicyStore interface {
	ListByCar(ctx context.Context, carID int64) ([]models.InsurancePolicy, error)
	CreateIfNoOverlap(ctx context.Context, policy *models.InsurancePolicy) error
}

// Service holds the coverage validator and the overlap guard.
type Service struct {
	cars     CarStore
	policies PolicyStore
	logger   *slog.Logger
	metrics  *metrics.Metrics
}

// Option configures optional service dependencies.
type Option func(*Service)

// WithLogger sets the service logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithMetrics sets the metrics sink.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// New constructs the policy service.
func New(cars CarStore, policies PolicyStore, opts ...Option) *Service {
	s := &Service{
		cars:     cars,
		policies: policies,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// IsCovered reports whether any policy of the car covers the given date.
// Boundary days count as covered on both ends. A car with zero policies is
// simply uncovered; only an unknown car is an error. Overlapping policies
// are tolerated here even though the creation path forbids them: data
// imported outside that path still answers correctly under any-match
// semantics.
func (s *Service) IsCovered(ctx context.Context, carID int64, date dates.Date) (bool, error) {
	exists, err := s.cars.Exists(ctx, carID)
	if err != nil {
		return false, dErrors.Wrap(err, dErrors.CodeUnavailable, "failed to check car")
	}
	if !exists {
		return false, dErrors.Newf(dErrors.CodeNotFound, "car %d not found", carID)
	}

	policies, err := s.policies.ListByCar(ctx, carID)
	if err != nil {
		return false, dErrors.Wrap(err, dErrors.CodeUnavailable, "failed to load policies")
	}
	if s.metrics != nil {
		s.metrics.CoverageChecks.Inc()
	}
	for _, p := range policies {
		if p.Covers(date) {
			return true, nil
		}
	}
	return false, nil
}

// ListByCar returns the car's policies, failing with CodeNotFound for an
// unknown car.
func (s *Service) ListByCar(ctx context.Context, carID int64) ([]models.InsurancePolicy, error) {
	exists, err := s.cars.Exists(ctx, carID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "failed to check car")
	}
	if !exists {
		return nil, dErrors.Newf(dErrors.CodeNotFound, "car %d not found", carID)
	}

	policies, err := s.policies.ListByCar(ctx, carID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "failed to load policies")
	}
	return policies, nil
}

// Create validates and persists a new policy. The interval must satisfy
// start < end strictly, the car must exist, and the interval must not share
// a single day with any existing policy for the car.
func (s *Service) Create(ctx context.Context, carID int64, provider string, start, end dates.Date) (models.InsurancePolicy, error) {
	if !start.Before(end) {
		return models.InsurancePolicy{}, dErrors.New(dErrors.CodeValidation, "start date must be before end date")
	}

	exists, err := s.cars.Exists(ctx, carID)
	if err != nil {
		return models.InsurancePolicy{}, dErrors.Wrap(err, dErrors.CodeUnavailable, "failed to check car")
	}
	if !exists {
		return models.InsurancePolicy{}, dErrors.Newf(dErrors.CodeNotFound, "car %d not found", carID)
	}

	policy := models.InsurancePolicy{
		CarID:     carID,
		Provider:  provider,
		StartDate: start,
		EndDate:   end,
	}
	if err := s.policies.CreateIfNoOverlap(ctx, &policy); err != nil {
		switch {
		case errors.Is(err, sentinel.ErrConflict):
			return models.InsurancePolicy{}, dErrors.New(dErrors.CodeConflict, "policy dates overlap an existing policy for this car")
		case errors.Is(err, sentinel.ErrNotFound):
			return models.InsurancePolicy{}, dErrors.Newf(dErrors.CodeNotFound, "car %d not found", carID)
		default:
			return models.InsurancePolicy{}, dErrors.Wrap(err, dErrors.CodeUnavailable, "failed to create policy")
		}
	}

	if s.metrics != nil {
		s.metrics.PoliciesCreated.Inc()
	}
	s.logger.InfoContext(ctx, "policy created",
		"request_id", requestcontext.RequestID(ctx),
		"policy_id", policy.ID,
		"car_id", carID,
		"start_date", start.String(),
		"end_date", end.String(),
	)
	return policy, nil
}
