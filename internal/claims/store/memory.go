package store

import (
	"context"
	"sort"
	"sync"

	"motorcover/internal/claims/models"
)

// InMemory keeps claims in a map for unit tests and the zero-dependency run
// mode.
type InMemory struct {
	mu     sync.RWMutex
	nextID int64
	claims map[int64]models.Claim
}

// NewInMemory creates an empty in-memory claim store.
func NewInMemory() *InMemory {
	return &InMemory{
		nextID: 1,
		claims: make(map[int64]models.Claim),
	}
}

// Create inserts the claim and assigns its ID.
func (s *InMemory) Create(ctx context.Context, claim *models.Claim) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	claim.ID = s.nextID
	s.nextID++
	s.claims[claim.ID] = *claim
	return nil
}

// ListByCar returns the car's claims ordered by claim date.
func (s *InMemory) ListByCar(ctx context.Context, carID int64) ([]models.Claim, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Claim, 0)
	for _, c := range s.claims {
		if c.CarID == carID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ClaimDate.Before(out[j].ClaimDate) })
	return out, nil
}
