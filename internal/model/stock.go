package model

import "time"

// StockItem is a PPE article kept in the central store.
type StockItem struct {
	ID        int64      `json:"id"`
	Name      string     `json:"name"`
	Category  string     `json:"category"`
	Quantity  int        `json:"quantity"`
	MinStock  int        `json:"min_stock"`
	Supplier  string     `json:"supplier,omitempty"`
	PhotoMime string     `json:"photo_mime,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	DeletedAt *time.Time `json:"deleted_at,omitempty"`
}

// Stock levels.
const (
	StockLevelOut      = "out"
	StockLevelCritical = "critical"
	StockLevelNormal   = "normal"
)

// StockLevel classifies the item against its minimum stock.
func (s StockItem) StockLevel() string {
	switch {
	case s.Quantity <= 0:
		return StockLevelOut
	case s.Quantity <= s.MinStock:
		return StockLevelCritical
	default:
		return StockLevelNormal
	}
}
