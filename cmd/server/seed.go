package main

import (
	"context"
	"fmt"
	"time"

	claimModel "motorcover/internal/claims/models"
	claimsstore "motorcover/internal/claims/store"
	fleetModel "motorcover/internal/fleet/models"
	fleetstore "motorcover/internal/fleet/store"
	policyModel "motorcover/internal/policy/models"
	policystore "motorcover/internal/policy/store"
	"motorcover/pkg/dates"
)

// seedDemoData populates the in-memory stores with a small fleet so the API
// is explorable without a database. One policy ends yesterday so the very
// first sweep tick has something to record.
func seedDemoData(ctx context.Context, fleet *fleetstore.InMemory, policies *policystore.InMemory, claims *claimsstore.InMemory) error {
	anaEmail := "ana.pop@example.com"
	anaID, err := fleet.AddOwner(ctx, fleetModel.Owner{Name: "Ana Pop", Email: &anaEmail})
	if err != nil {
		return fmt.Errorf("seed owner: %w", err)
	}
	bogdanID, err := fleet.AddOwner(ctx, fleetModel.Owner{Name: "Bogdan Ionescu"})
	if err != nil {
		return fmt.Errorf("seed owner: %w", err)
	}

	car1, err := fleet.AddCar(ctx, fleetModel.Car{
		VIN: "VIN12345", Make: "Dacia", Model: "Logan", YearOfManufacture: 2018, OwnerID: anaID,
	})
	if err != nil {
		return fmt.Errorf("seed car: %w", err)
	}
	car2, err := fleet.AddCar(ctx, fleetModel.Car{
		VIN: "VIN67890", Make: "VW", Model: "Golf", YearOfManufacture: 2021, OwnerID: bogdanID,
	})
	if err != nil {
		return fmt.Errorf("seed car: %w", err)
	}

	yesterday := dates.FromTime(time.Now().UTC()).AddDays(-1)
	seedPolicies := []policyModel.InsurancePolicy{
		{CarID: car1, Provider: "Allianz", StartDate: dates.MustNew(2024, 1, 1), EndDate: dates.MustNew(2024, 12, 31)},
		{CarID: car1, Provider: "Groupama", StartDate: dates.MustNew(2025, 1, 1), EndDate: dates.MustNew(2025, 12, 31)},
		{CarID: car2, Provider: "Allianz", StartDate: yesterday.AddDays(-364), EndDate: yesterday},
	}
	for i := range seedPolicies {
		if err := policies.CreateIfNoOverlap(ctx, &seedPolicies[i]); err != nil {
			return fmt.Errorf("seed policy: %w", err)
		}
	}

	claim := claimModel.Claim{
		CarID:       car1,
		Description: "Rear bumper damage in parking lot",
		Amount:      450.00,
		ClaimDate:   dates.MustNew(2024, 6, 15),
	}
	if err := claims.Create(ctx, &claim); err != nil {
		return fmt.Errorf("seed claim: %w", err)
	}
	return nil
}
