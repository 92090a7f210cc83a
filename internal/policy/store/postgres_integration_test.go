//go:build integration

package store

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"motorcover/internal/platform/postgres"
	"motorcover/internal/policy/models"
	"motorcover/pkg/dates"
	"motorcover/pkg/platform/sentinel"
	"motorcover/pkg/testutil/containers"
)

type PostgresPolicyStoreSuite struct {
	suite.Suite
	ctx   context.Context
	pg    *containers.PostgresContainer
	store *Postgres
	carID int64
}

func TestPostgresPolicyStoreSuite(t *testing.T) {
	suite.Run(t, new(PostgresPolicyStoreSuite))
}

func (s *PostgresPolicyStoreSuite) SetupSuite() {
	s.ctx = context.Background()
	s.pg = containers.GetPostgres(s.T())
	s.Require().NoError(postgres.EnsureSchema(s.ctx, s.pg.DB))
	s.store = NewPostgres(s.pg.DB)
}

func (s *PostgresPolicyStoreSuite) SetupTest() {
	s.Require().NoError(s.pg.TruncateTables(s.ctx,
		"policy_expirations", "claims", "policies", "cars", "owners"))

	var ownerID int64
	s.Require().NoError(s.pg.DB.QueryRowContext(s.ctx,
		`INSERT INTO owners (name, email) VALUES ('Ana Pop', 'ana.pop@example.com') RETURNING id`,
	).Scan(&ownerID))
	s.Require().NoError(s.pg.DB.QueryRowContext(s.ctx,
		`INSERT INTO cars (vin, make, model, year_of_manufacture, owner_id)
		 VALUES ('VIN12345', 'Dacia', 'Logan', 2018, $1) RETURNING id`, ownerID,
	).Scan(&s.carID))
}

func (s *PostgresPolicyStoreSuite) newPolicy(start, end dates.Date) *models.InsurancePolicy {
	return &models.InsurancePolicy{
		CarID:     s.carID,
		Provider:  "Allianz",
		StartDate: start,
		EndDate:   end,
	}
}

func (s *PostgresPolicyStoreSuite) TestCreateAndList() {
	p := s.newPolicy(dates.MustNew(2024, time.January, 1), dates.MustNew(2024, time.June, 30))
	s.Require().NoError(s.store.CreateIfNoOverlap(s.ctx, p))
	s.NotZero(p.ID)

	policies, err := s.store.ListByCar(s.ctx, s.carID)
	s.Require().NoError(err)
	s.Require().Len(policies, 1)
	s.Equal(p.ID, policies[0].ID)
	s.Equal("Allianz", policies[0].Provider)
	s.Equal("2024-01-01", policies[0].StartDate.String())
	s.Equal("2024-06-30", policies[0].EndDate.String())
}

func (s *PostgresPolicyStoreSuite) TestEmptyProviderStoredAsNull() {
	p := s.newPolicy(dates.MustNew(2024, time.January, 1), dates.MustNew(2024, time.June, 30))
	p.Provider = ""
	s.Require().NoError(s.store.CreateIfNoOverlap(s.ctx, p))

	policies, err := s.store.ListByCar(s.ctx, s.carID)
	s.Require().NoError(err)
	s.Require().Len(policies, 1)
	s.Empty(policies[0].Provider)
}

func (s *PostgresPolicyStoreSuite) TestOverlapRejection() {
	s.Require().NoError(s.store.CreateIfNoOverlap(s.ctx,
		s.newPolicy(dates.MustNew(2024, time.January, 1), dates.MustNew(2024, time.June, 30))))

	err := s.store.CreateIfNoOverlap(s.ctx,
		s.newPolicy(dates.MustNew(2024, time.June, 30), dates.MustNew(2024, time.December, 31)))
	s.Require().ErrorIs(err, sentinel.ErrConflict, "shared boundary day overlaps")

	err = s.store.CreateIfNoOverlap(s.ctx,
		s.newPolicy(dates.MustNew(2024, time.July, 1), dates.MustNew(2024, time.December, 31)))
	s.Require().NoError(err, "back-to-back interval does not overlap")
}

func (s *PostgresPolicyStoreSuite) TestCreateUnknownCar() {
	p := s.newPolicy(dates.MustNew(2024, time.January, 1), dates.MustNew(2024, time.June, 30))
	p.CarID = s.carID + 9999
	s.Require().ErrorIs(s.store.CreateIfNoOverlap(s.ctx, p), sentinel.ErrNotFound)
}

func (s *PostgresPolicyStoreSuite) TestConcurrentCreationsSerialize() {
	start := dates.MustNew(2024, time.January, 1)
	end := dates.MustNew(2024, time.December, 31)

	const goroutines = 8
	var wg sync.WaitGroup
	results := make(chan error, goroutines)
	for range goroutines {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results <- s.store.CreateIfNoOverlap(s.ctx, s.newPolicy(start, end))
		}()
	}
	wg.Wait()
	close(results)

	succeeded := 0
	for err := range results {
		if err == nil {
			succeeded++
		} else {
			s.Require().ErrorIs(err, sentinel.ErrConflict)
		}
	}
	s.Equal(1, succeeded, "the car row lock must serialize concurrent creations")

	policies, err := s.store.ListByCar(s.ctx, s.carID)
	s.Require().NoError(err)
	s.Len(policies, 1)
}

func (s *PostgresPolicyStoreSuite) TestExpiringOnOrBeforeAntiJoin() {
	past := s.newPolicy(dates.MustNew(2024, time.January, 1), dates.MustNew(2024, time.June, 30))
	future := s.newPolicy(dates.MustNew(2024, time.July, 1), dates.MustNew(2024, time.December, 31))
	s.Require().NoError(s.store.CreateIfNoOverlap(s.ctx, past))
	s.Require().NoError(s.store.CreateIfNoOverlap(s.ctx, future))

	candidates, err := s.store.ExpiringOnOrBefore(s.ctx, dates.MustNew(2024, time.June, 30))
	s.Require().NoError(err)
	s.Require().Len(candidates, 1)
	s.Equal(past.ID, candidates[0].PolicyID)
	s.Equal("VIN12345", candidates[0].VIN)
	s.Equal("Ana Pop", candidates[0].OwnerName)

	n, err := s.store.RecordExpirations(s.ctx, []models.PolicyExpiration{{
		PolicyID:       past.ID,
		ExpirationDate: past.EndDate,
		ProcessedAt:    time.Now().UTC(),
		LogMessage:     "insurance policy expired",
	}})
	s.Require().NoError(err)
	s.Equal(1, n)

	candidates, err = s.store.ExpiringOnOrBefore(s.ctx, dates.MustNew(2024, time.June, 30))
	s.Require().NoError(err)
	s.Empty(candidates)

	has, err := s.store.HasExpirationRecord(s.ctx, past.ID)
	s.Require().NoError(err)
	s.True(has)
}

func (s *PostgresPolicyStoreSuite) TestConcurrentRecordingsLeaveOneRow() {
	p := s.newPolicy(dates.MustNew(2024, time.January, 1), dates.MustNew(2024, time.June, 30))
	s.Require().NoError(s.store.CreateIfNoOverlap(s.ctx, p))

	rec := models.PolicyExpiration{
		PolicyID:       p.ID,
		ExpirationDate: p.EndDate,
		ProcessedAt:    time.Now().UTC(),
	}

	const goroutines = 8
	var wg sync.WaitGroup
	inserted := make(chan int, goroutines)
	for range goroutines {
		wg.Add(1)
		go func() {
			defer wg.Done()
			n, err := s.store.RecordExpirations(s.ctx, []models.PolicyExpiration{rec})
			s.NoError(err)
			inserted <- n
		}()
	}
	wg.Wait()
	close(inserted)

	total := 0
	for n := range inserted {
		total += n
	}
	s.Equal(1, total, "the uniqueness constraint must admit exactly one record")

	records, err := s.store.ListExpirations(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(records, 1)
	s.Equal(p.ID, records[0].PolicyID)
	s.Equal(p.EndDate, records[0].ExpirationDate)
}
