package store

import (
	"context"
	"database/sql"
	"fmt"

	"motorcover/internal/claims/models"
)

// Postgres persists claims in PostgreSQL.
type Postgres struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed claim store.
func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

func (s *Postgres) Create(ctx context.Context, claim *models.Claim) error {
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO claims (car_id, description, amount, claim_date)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`, claim.CarID, claim.Description, claim.Amount, claim.ClaimDate).Scan(&claim.ID)
	if err != nil {
		return fmt.Errorf("insert claim: %w", err)
	}
	return nil
}

func (s *Postgres) ListByCar(ctx context.Context, carID int64) ([]models.Claim, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, car_id, description, amount, claim_date
		FROM claims
		WHERE car_id = $1
		ORDER BY claim_date
	`, carID)
	if err != nil {
		return nil, fmt.Errorf("list claims: %w", err)
	}
	defer rows.Close()

	var out []models.Claim
	for rows.Next() {
		var c models.Claim
		if err := rows.Scan(&c.ID, &c.CarID, &c.Description, &c.Amount, &c.ClaimDate); err != nil {
			return nil, fmt.Errorf("scan claim: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate claims: %w", err)
	}
	return out, nil
}
