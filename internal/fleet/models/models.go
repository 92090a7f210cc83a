package models

// Owner is reference data: the person a car is registered to. The core never
// mutates owners; they arrive through onboarding outside this service.
type Owner struct {
	ID    int64   `json:"id"`
	Name  string  `json:"name"`
	Email *string `json:"email,omitempty"`
}

// Car is the vehicle identity the policy subsystem hangs off of. Referenced,
// never mutated, by this service.
type Car struct {
	ID                int64  `json:"id"`
	VIN               string `json:"vin"`
	Make              string `json:"make,omitempty"`
	Model             string `json:"model,omitempty"`
	YearOfManufacture int    `json:"yearOfManufacture"`
	OwnerID           int64  `json:"ownerId"`
}

// CarWithOwner is the read model for car listings.
type CarWithOwner struct {
	Car
	OwnerName  string  `json:"ownerName"`
	OwnerEmail *string `json:"ownerEmail,omitempty"`
}
