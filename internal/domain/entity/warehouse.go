package entity

import "time"

// Warehouse representa una bodega física donde se almacenan los lotes.
type Warehouse struct {
	ID          string
	Name        string // único
	Address     string
	Description string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
