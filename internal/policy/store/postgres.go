package store

import (
	"context"
	"database/sql"
	"fmt"

	"motorcover/internal/policy/models"
	"motorcover/pkg/dates"
	"motorcover/pkg/platform/sentinel"
)

// Postgres persists policies and expiration records in PostgreSQL.
type Postgres struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed policy store.
func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

func (s *Postgres) ListByCar(ctx context.Context, carID int64) ([]models.InsurancePolicy, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, car_id, provider, start_date, end_date
		FROM policies
		WHERE car_id = $1
		ORDER BY start_date
	`, carID)
	if err != nil {
		return nil, fmt.Errorf("list policies: %w", err)
	}
	defer rows.Close()

	var out []models.InsurancePolicy
	for rows.Next() {
		p, err := scanPolicy(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate policy rows: %w", err)
	}
	return out, nil
}

// CreateIfNoOverlap inserts the policy unless its closed interval intersects
// an existing interval for the same car. The car row is locked first, so two
// concurrent creations for the same car serialize: the second sees the first
// insert and gets sentinel.ErrConflict instead of a lost-update race.
func (s *Postgres) CreateIfNoOverlap(ctx context.Context, policy *models.InsurancePolicy) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin create policy tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	var lockedID int64
	err = tx.QueryRowContext(ctx,
		`SELECT id FROM cars WHERE id = $1 FOR UPDATE`, policy.CarID,
	).Scan(&lockedID)
	if err == sql.ErrNoRows {
		return sentinel.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("lock car row: %w", err)
	}

	var overlaps bool
	err = tx.QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM policies
			WHERE car_id = $1 AND start_date <= $3 AND end_date >= $2
		)
	`, policy.CarID, policy.StartDate, policy.EndDate).Scan(&overlaps)
	if err != nil {
		return fmt.Errorf("check policy overlap: %w", err)
	}
	if overlaps {
		return sentinel.ErrConflict
	}

	err = tx.QueryRowContext(ctx, `
		INSERT INTO policies (car_id, provider, start_date, end_date)
		VALUES ($1, NULLIF($2, ''), $3, $4)
		RETURNING id
	`, policy.CarID, policy.Provider, policy.StartDate, policy.EndDate).Scan(&policy.ID)
	if err != nil {
		return fmt.Errorf("insert policy: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit create policy tx: %w", err)
	}
	return nil
}

// ExpiringOnOrBefore returns policies past their end date that have no
// expiration record, joined with car VIN and owner name for the log line.
func (s *Postgres) ExpiringOnOrBefore(ctx context.Context, cutoff dates.Date) ([]models.ExpiringPolicy, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT p.id, p.car_id, COALESCE(p.provider, ''), p.end_date, c.vin, o.name
		FROM policies p
		JOIN cars c ON c.id = p.car_id
		JOIN owners o ON o.id = c.owner_id
		WHERE p.end_date <= $1
		  AND NOT EXISTS (
			SELECT 1 FROM policy_expirations e WHERE e.policy_id = p.id
		  )
		ORDER BY p.id
	`, cutoff)
	if err != nil {
		return nil, fmt.Errorf("query expiring policies: %w", err)
	}
	defer rows.Close()

	var out []models.ExpiringPolicy
	for rows.Next() {
		var c models.ExpiringPolicy
		if err := rows.Scan(&c.PolicyID, &c.CarID, &c.Provider, &c.EndDate, &c.VIN, &c.OwnerName); err != nil {
			return nil, fmt.Errorf("scan expiring policy: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate expiring policies: %w", err)
	}
	return out, nil
}

func (s *Postgres) HasExpirationRecord(ctx context.Context, policyID int64) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM policy_expirations WHERE policy_id = $1)`, policyID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check expiration record: %w", err)
	}
	return exists, nil
}

// RecordExpirations inserts the batch in one transaction. Duplicate policy
// IDs are skipped via the uniqueness constraint rather than failing the
// batch, so a race between two ticks leaves exactly one surviving record.
func (s *Postgres) RecordExpirations(ctx context.Context, records []models.PolicyExpiration) (int, error) {
	if len(records) == 0 {
		return 0, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin record expirations tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	inserted := 0
	for _, rec := range records {
		res, err := tx.ExecContext(ctx, `
			INSERT INTO policy_expirations (policy_id, expiration_date, processed_at, log_message)
			VALUES ($1, $2, $3, NULLIF($4, ''))
			ON CONFLICT (policy_id) DO NOTHING
		`, rec.PolicyID, rec.ExpirationDate, rec.ProcessedAt, rec.LogMessage)
		if err != nil {
			return 0, fmt.Errorf("insert expiration for policy %d: %w", rec.PolicyID, err)
		}
		if n, err := res.RowsAffected(); err == nil {
			inserted += int(n)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit record expirations tx: %w", err)
	}
	return inserted, nil
}

func (s *Postgres) ListExpirations(ctx context.Context) ([]models.PolicyExpiration, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, policy_id, expiration_date, processed_at, COALESCE(log_message, '')
		FROM policy_expirations
		ORDER BY policy_id
	`)
	if err != nil {
		return nil, fmt.Errorf("list expirations: %w", err)
	}
	defer rows.Close()

	var out []models.PolicyExpiration
	for rows.Next() {
		var rec models.PolicyExpiration
		if err := rows.Scan(&rec.ID, &rec.PolicyID, &rec.ExpirationDate, &rec.ProcessedAt, &rec.LogMessage); err != nil {
			return nil, fmt.Errorf("scan expiration: %w", err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate expirations: %w", err)
	}
	return out, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPolicy(row rowScanner) (models.InsurancePolicy, error) {
	var p models.InsurancePolicy
	var provider sql.NullString
	if err := row.Scan(&p.ID, &p.CarID, &provider, &p.StartDate, &p.EndDate); err != nil {
		return models.InsurancePolicy{}, fmt.Errorf("scan policy: %w", err)
	}
	p.Provider = provider.String
	return p, nil
}
