package model

import (
	"fmt"
	"time"

	"github.com/erazemk/hsetracker/internal/expiry"
)

// Equipment is one equipment type issued to a worker.
// ReceptionDate and ValidityDate are YYYY-MM-DD or empty.
type Equipment struct {
	WorkerID      int64       `json:"worker_id"`
	Name          string      `json:"name"`
	Quantity      int         `json:"quantity"`
	ReceptionDate string      `json:"reception_date"`
	ValidityDate  string      `json:"validity_date"`
	Status        string      `json:"status"`
	Kind          expiry.Kind `json:"kind"`
	Days          *int        `json:"days_remaining,omitempty"`
	UpdatedAt     time.Time   `json:"updated_at"`

	// Joined fields (not always populated).
	WorkerName string `json:"worker_name,omitempty"`
}

// EquipmentRecord is the full equipment sheet of one worker.
type EquipmentRecord struct {
	Worker    Worker      `json:"worker"`
	Equipment []Equipment `json:"equipment"`
}

// ExpiryItem converts the row to the form tracked by the expiry engine.
func (e Equipment) ExpiryItem() expiry.Item {
	return expiry.Item{
		Name:          e.Name,
		Quantity:      e.Quantity,
		ReceptionDate: e.ReceptionDate,
		ValidityDate:  e.ValidityDate,
	}
}

// ApplyStatus sets the derived status fields.
func (e *Equipment) ApplyStatus(st expiry.Status) {
	e.Status = st.Label()
	e.Kind = st.Kind
	e.Days = nil
	if st.Kind != expiry.KindUnset {
		days := st.DaysRemaining
		e.Days = &days
	}
}

// ValidateEquipment checks a configured slot: positive quantity, both dates
// set, and validity strictly after reception.
func ValidateEquipment(e Equipment) error {
	if e.Name == "" {
		return fmt.Errorf("equipment name required")
	}
	if e.Quantity <= 0 {
		return fmt.Errorf("quantity must be positive for %s", e.Name)
	}
	if e.ReceptionDate == "" || e.ValidityDate == "" {
		return fmt.Errorf("reception and validity dates are required for %s", e.Name)
	}

	reception, err := time.Parse(expiry.DateLayout, e.ReceptionDate)
	if err != nil {
		return fmt.Errorf("invalid reception date for %s: %q", e.Name, e.ReceptionDate)
	}
	validity, err := time.Parse(expiry.DateLayout, e.ValidityDate)
	if err != nil {
		return fmt.Errorf("invalid validity date for %s: %q", e.Name, e.ValidityDate)
	}
	if !validity.After(reception) {
		return fmt.Errorf("validity date must be after reception date for %s", e.Name)
	}
	return nil
}
