package models

import "time"

// Reservation is an immutable record of a quantity held against an
// inventory item under a caller-supplied identifier. A nil ExpiresAt
// means the hold never expires on its own.
type Reservation struct {
	ID         string
	Quantity   int
	ReservedAt time.Time
	ExpiresAt  *time.Time
}

// Expired reports whether the reservation's expiry has passed at the
// given instant. Reservations without an expiry never expire.
func (r Reservation) Expired(now time.Time) bool {
	return r.ExpiresAt != nil && now.After(*r.ExpiresAt)
}
