package store

import (
	"context"
	"sort"
	"sync"

	"motorcover/internal/policy/models"
	"motorcover/pkg/dates"
	"motorcover/pkg/platform/sentinel"
)

// CarDirectory resolves the car identity fields that ride along with sweep
// candidates. The postgres engine does this join in SQL; the in-memory engine
// asks the fleet store.
type CarDirectory interface {
	CarIdentity(ctx context.Context, carID int64) (vin, ownerName string, err error)
}

// InMemory keeps policies and expiration records in maps. One mutex covers
// both so the overlap check and insert happen under a single critical
// section, mirroring the transactional boundary of the postgres engine.
type InMemory struct {
	mu          sync.RWMutex
	nextID      int64
	cars        CarDirectory
	policies    map[int64]models.InsurancePolicy
	expirations map[int64]models.PolicyExpiration // keyed by policy ID
}

// NewInMemory creates an empty in-memory policy store. cars may be nil, in
// which case sweep candidates carry blank identity fields.
func NewInMemory(cars CarDirectory) *InMemory {
	return &InMemory{
		nextID:      1,
		cars:        cars,
		policies:    make(map[int64]models.InsurancePolicy),
		expirations: make(map[int64]models.PolicyExpiration),
	}
}

// ListByCar returns all policies for one car ordered by start date.
func (s *InMemory) ListByCar(ctx context.Context, carID int64) ([]models.InsurancePolicy, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.InsurancePolicy, 0)
	for _, p := range s.policies {
		if p.CarID == carID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartDate.Before(out[j].StartDate) })
	return out, nil
}

// CreateIfNoOverlap inserts the policy unless its interval intersects an
// existing interval for the same car. Returns sentinel.ErrConflict on
// overlap. The check and insert share one critical section so concurrent
// creations for the same car cannot both pass the check.
func (s *InMemory) CreateIfNoOverlap(ctx context.Context, policy *models.InsurancePolicy) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.policies {
		if existing.CarID == policy.CarID && existing.Overlaps(policy.StartDate, policy.EndDate) {
			return sentinel.ErrConflict
		}
	}

	policy.ID = s.nextID
	s.nextID++
	s.policies[policy.ID] = *policy
	return nil
}

// ExpiringOnOrBefore returns policies whose end date is on or before cutoff
// and which have no expiration record yet.
func (s *InMemory) ExpiringOnOrBefore(ctx context.Context, cutoff dates.Date) ([]models.ExpiringPolicy, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.ExpiringPolicy, 0)
	for _, p := range s.policies {
		if p.EndDate.After(cutoff) {
			continue
		}
		if _, recorded := s.expirations[p.ID]; recorded {
			continue
		}
		candidate := models.ExpiringPolicy{
			PolicyID: p.ID,
			CarID:    p.CarID,
			Provider: p.Provider,
			EndDate:  p.EndDate,
		}
		if s.cars != nil {
			if vin, owner, err := s.cars.CarIdentity(ctx, p.CarID); err == nil {
				candidate.VIN = vin
				candidate.OwnerName = owner
			}
		}
		out = append(out, candidate)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PolicyID < out[j].PolicyID })
	return out, nil
}

// HasExpirationRecord reports whether the policy's expiration was recorded.
func (s *InMemory) HasExpirationRecord(ctx context.Context, policyID int64) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.expirations[policyID]
	return ok, nil
}

// RecordExpirations inserts the batch, skipping policies that already have a
// record. Returns the number actually inserted. The whole batch commits
// under one critical section.
func (s *InMemory) RecordExpirations(ctx context.Context, records []models.PolicyExpiration) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	inserted := 0
	for _, rec := range records {
		if _, exists := s.expirations[rec.PolicyID]; exists {
			continue
		}
		rec.ID = s.nextID
		s.nextID++
		s.expirations[rec.PolicyID] = rec
		inserted++
	}
	return inserted, nil
}

// ListExpirations returns every expiration record ordered by policy ID.
func (s *InMemory) ListExpirations(ctx context.Context) ([]models.PolicyExpiration, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.PolicyExpiration, 0, len(s.expirations))
	for _, rec := range s.expirations {
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PolicyID < out[j].PolicyID })
	return out, nil
}
