package store

import (
	"context"
	"sort"
	"sync"

	"motorcover/internal/fleet/models"
	"motorcover/pkg/platform/sentinel"
)

// InMemory keeps cars and owners in maps. It backs unit tests and the
// zero-dependency run mode.
type InMemory struct {
	mu     sync.RWMutex
	nextID int64
	owners map[int64]models.Owner
	cars   map[int64]models.Car
}

// NewInMemory creates an empty in-memory fleet store.
func NewInMemory() *InMemory {
	return &InMemory{
		nextID: 1,
		owners: make(map[int64]models.Owner),
		cars:   make(map[int64]models.Car),
	}
}

// AddOwner inserts an owner, assigning an ID when none is set.
func (s *InMemory) AddOwner(ctx context.Context, owner models.Owner) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if owner.ID == 0 {
		owner.ID = s.nextID
	}
	if owner.ID >= s.nextID {
		s.nextID = owner.ID + 1
	}
	s.owners[owner.ID] = owner
	return owner.ID, nil
}

// AddCar inserts a car, assigning an ID when none is set. The owner must
// already exist.
func (s *InMemory) AddCar(ctx context.Context, car models.Car) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.owners[car.OwnerID]; !ok {
		return 0, sentinel.ErrNotFound
	}
	if car.ID == 0 {
		car.ID = s.nextID
	}
	if car.ID >= s.nextID {
		s.nextID = car.ID + 1
	}
	s.cars[car.ID] = car
	return car.ID, nil
}

// Exists reports whether the car is known.
func (s *InMemory) Exists(ctx context.Context, carID int64) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.cars[carID]
	return ok, nil
}

// FindByID returns one car or sentinel.ErrNotFound.
func (s *InMemory) FindByID(ctx context.Context, carID int64) (models.Car, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	car, ok := s.cars[carID]
	if !ok {
		return models.Car{}, sentinel.ErrNotFound
	}
	return car, nil
}

// CarIdentity returns the VIN and owner name for a car. The policy store
// uses it to decorate sweep candidates the way the SQL engine's join does.
func (s *InMemory) CarIdentity(ctx context.Context, carID int64) (string, string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	car, ok := s.cars[carID]
	if !ok {
		return "", "", sentinel.ErrNotFound
	}
	return car.VIN, s.owners[car.OwnerID].Name, nil
}

// List returns all cars joined with their owners, ordered by ID.
func (s *InMemory) List(ctx context.Context) ([]models.CarWithOwner, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.CarWithOwner, 0, len(s.cars))
	for _, car := range s.cars {
		owner := s.owners[car.OwnerID]
		out = append(out, models.CarWithOwner{
			Car:        car,
			OwnerName:  owner.Name,
			OwnerEmail: owner.Email,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}
