package model

import "time"

// Worker is a person who is issued protective equipment.
type Worker struct {
	ID        int64      `json:"id"`
	Name      string     `json:"name"`
	Position  string     `json:"position,omitempty"`
	ShoeSize  int        `json:"shoe_size,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	DeletedAt *time.Time `json:"deleted_at,omitempty"`
}

// DefaultEquipmentTypes is the equipment slot list used when none is configured.
var DefaultEquipmentTypes = []string{
	"Helmet",
	"Safety shoes",
	"Vest",
	"Gloves",
	"Glasses",
	"Boots",
	"Raincoat",
}
