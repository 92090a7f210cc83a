package models

import (
	"time"

	"motorcover/pkg/dates"
)

// InsurancePolicy covers one car for an inclusive calendar-date interval.
//
// Invariants:
//   - StartDate < EndDate (strict), enforced at creation
//   - intervals for the same car never overlap, enforced at creation under a
//     per-car serialization boundary
//   - immutable once created; there is no update or delete path
type InsurancePolicy struct {
	ID        int64      `json:"id"`
	CarID     int64      `json:"carId"`
	Provider  string     `json:"provider,omitempty"`
	StartDate dates.Date `json:"startDate"`
	EndDate   dates.Date `json:"endDate"`
}

// Covers reports whether d falls inside the policy interval. Both boundary
// days count as covered.
func (p InsurancePolicy) Covers(d dates.Date) bool {
	return !d.Before(p.StartDate) && !d.After(p.EndDate)
}

// Overlaps reports whether the closed interval [start, end] shares at least
// one calendar day with the policy interval. Touching at a single boundary
// day counts as overlap: back-to-back policies must not share a date.
func (p InsurancePolicy) Overlaps(start, end dates.Date) bool {
	return !start.After(p.EndDate) && !end.Before(p.StartDate)
}

// PolicyExpiration records that a policy's coverage lapsed. The sweep engine
// is the sole writer; at most one record exists per policy.
type PolicyExpiration struct {
	ID             int64      `json:"id"`
	PolicyID       int64      `json:"policyId"`
	ExpirationDate dates.Date `json:"expirationDate"`
	ProcessedAt    time.Time  `json:"processedAt"`
	LogMessage     string     `json:"logMessage,omitempty"`
}

// ExpiringPolicy is a sweep candidate: a policy whose end date has passed and
// which has no expiration record yet. VIN and owner name ride along for the
// human-readable log line only.
type ExpiringPolicy struct {
	PolicyID  int64
	CarID     int64
	Provider  string
	EndDate   dates.Date
	VIN       string
	OwnerName string
}
