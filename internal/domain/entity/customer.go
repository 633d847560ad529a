package entity

import "time"

// Customer cliente B2B o B2C.
type Customer struct {
	ID        string
	Name      string
	Email     string
	Phone     string
	Address   string
	CreatedAt time.Time
}
