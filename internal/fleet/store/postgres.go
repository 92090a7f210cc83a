package store

import (
	"context"
	"database/sql"
	"fmt"

	"motorcover/internal/fleet/models"
	"motorcover/pkg/platform/sentinel"
)

// Postgres reads fleet data from PostgreSQL.
type Postgres struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed fleet store.
func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

func (s *Postgres) Exists(ctx context.Context, carID int64) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM cars WHERE id = $1)`, carID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check car exists: %w", err)
	}
	return exists, nil
}

func (s *Postgres) FindByID(ctx context.Context, carID int64) (models.Car, error) {
	var car models.Car
	var mk, model sql.NullString
	err := s.db.QueryRowContext(ctx, `
		SELECT id, vin, make, model, year_of_manufacture, owner_id
		FROM cars
		WHERE id = $1
	`, carID).Scan(&car.ID, &car.VIN, &mk, &model, &car.YearOfManufacture, &car.OwnerID)
	if err == sql.ErrNoRows {
		return models.Car{}, sentinel.ErrNotFound
	}
	if err != nil {
		return models.Car{}, fmt.Errorf("find car: %w", err)
	}
	car.Make = mk.String
	car.Model = model.String
	return car, nil
}

func (s *Postgres) List(ctx context.Context) ([]models.CarWithOwner, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT c.id, c.vin, c.make, c.model, c.year_of_manufacture, c.owner_id, o.name, o.email
		FROM cars c
		JOIN owners o ON o.id = c.owner_id
		ORDER BY c.id
	`)
	if err != nil {
		return nil, fmt.Errorf("list cars: %w", err)
	}
	defer rows.Close()

	var out []models.CarWithOwner
	for rows.Next() {
		var car models.CarWithOwner
		var mk, model, email sql.NullString
		if err := rows.Scan(&car.ID, &car.VIN, &mk, &model, &car.YearOfManufacture,
			&car.OwnerID, &car.OwnerName, &email); err != nil {
			return nil, fmt.Errorf("scan car row: %w", err)
		}
		car.Make = mk.String
		car.Model = model.String
		if email.Valid {
			car.OwnerEmail = &email.String
		}
		out = append(out, car)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate car rows: %w", err)
	}
	return out, nil
}
