package models

import (
	"time"

	"github.com/google/uuid"
)

// Address is a row of the 'addresses' table. Checkout only accepts an
// address owned by the caller.
type Address struct {
	ID        uuid.UUID `json:"address_id" db:"address_id"`
	UserID    uuid.UUID `json:"user_id" db:"user_id"`
	Line1     string    `json:"line1" db:"line1"`
	Line2     *string   `json:"line2,omitempty" db:"line2"`
	City      string    `json:"city" db:"city"`
	State     string    `json:"state" db:"state"`
	Postcode  string    `json:"postcode" db:"postcode"`
	Country   string    `json:"country" db:"country"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
