package models

import "motorcover/pkg/dates"

// Claim is a damage claim filed against a car.
type Claim struct {
	ID          int64      `json:"id"`
	CarID       int64      `json:"carId"`
	Description string     `json:"description"`
	Amount      float64    `json:"amount"`
	ClaimDate   dates.Date `json:"claimDate"`
}

// HistoryItem is one entry in a car's merged policy-and-claim timeline.
type HistoryItem struct {
	Type        string     `json:"type"` // "policy" or "claim"
	Date        dates.Date `json:"date"`
	EndDate     *dates.Date `json:"endDate,omitempty"`
	Description string     `json:"description,omitempty"`
	Amount      *float64   `json:"amount,omitempty"`
	Provider    string     `json:"provider,omitempty"`
	ItemID      int64      `json:"itemId"`
}

// CarHistory is the timeline response for one car, newest first.
type CarHistory struct {
	CarID    int64         `json:"carId"`
	Timeline []HistoryItem `json:"timeline"`
}
