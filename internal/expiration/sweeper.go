// Package expiration discovers policies whose coverage has just lapsed and
// records each expiration durably, exactly once.
package expiration

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"motorcover/internal/platform/metrics"
	policyModel "motorcover/internal/policy/models"
	"motorcover/pkg/dates"
	dErrors "motorcover/pkg/domain-errors"
)

// RecordingWindow bounds how long after a policy's end date the sweep will
// still record its expiration. Candidates older than this are skipped on
// every tick: the sweep reports recent lapses, it is not a backfill job.
const RecordingWindow = 24 * time.Hour

// Store is the storage capability the sweep needs. RecordExpirations must
// commit the batch atomically and skip (not fail on) policies that already
// have a record, so a race between two ticks leaves exactly one row.
type Store interface {
	ExpiringOnOrBefore(ctx context.Context, cutoff dates.Date) ([]policyModel.ExpiringPolicy, error)
	RecordExpirations(ctx context.Context, records []policyModel.PolicyExpiration) (int, error)
}

// Sweeper executes expiration-detection ticks. Safe for concurrent use; the
// storage uniqueness constraint, not the Sweeper, is what guarantees
// exactly-once recording.
type Sweeper struct {
	store   Store
	logger  *slog.Logger
	metrics *metrics.Metrics
	clock   func() time.Time
}

// SweeperOption configures a Sweeper.
type SweeperOption func(*Sweeper)

// WithClock sets the clock function for testability.
func WithClock(clock func() time.Time) SweeperOption {
	return func(s *Sweeper) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// WithMetrics sets the metrics sink.
func WithMetrics(m *metrics.Metrics) SweeperOption {
	return func(s *Sweeper) { s.metrics = m }
}

// NewSweeper constructs a Sweeper.
func NewSweeper(store Store, logger *slog.Logger, opts ...SweeperOption) *Sweeper {
	s := &Sweeper{
		store:  store,
		logger: logger,
		clock:  time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Tick runs one scan-and-record cycle and returns how many expirations were
// recorded. Re-running immediately is a no-op: candidates are discovered via
// an anti-join on already-recorded policies, and the batch insert skips
// duplicates.
func (s *Sweeper) Tick(ctx context.Context) (int, error) {
	now := s.clock().UTC()
	today := dates.FromTime(now)

	candidates, err := s.store.ExpiringOnOrBefore(ctx, today)
	if err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeUnavailable, "failed to query expiring policies")
	}

	var batch []policyModel.PolicyExpiration
	for _, c := range candidates {
		elapsed := now.Sub(c.EndDate.Time())
		if elapsed < 0 || elapsed > RecordingWindow {
			// Outside the recording window: either clock skew put the end
			// date in the future, or the lapse is too old to report.
			continue
		}

		message := fmt.Sprintf(
			"insurance policy %d (provider %q) for vehicle %s owned by %s expired on %s",
			c.PolicyID, c.Provider, c.VIN, c.OwnerName, c.EndDate,
		)
		s.logger.WarnContext(ctx, "policy expired",
			"policy_id", c.PolicyID,
			"car_id", c.CarID,
			"provider", c.Provider,
			"vin", c.VIN,
			"owner", c.OwnerName,
			"end_date", c.EndDate.String(),
		)
		batch = append(batch, policyModel.PolicyExpiration{
			PolicyID:       c.PolicyID,
			ExpirationDate: c.EndDate,
			ProcessedAt:    now,
			LogMessage:     message,
		})
	}

	if len(batch) == 0 {
		return 0, nil
	}
	recorded, err := s.store.RecordExpirations(ctx, batch)
	if err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeUnavailable, "failed to record expirations")
	}
	if s.metrics != nil {
		s.metrics.ExpirationsRecorded.Add(float64(recorded))
	}
	return recorded, nil
}
