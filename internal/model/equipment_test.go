package model

import (
	"testing"

	"github.com/erazemk/hsetracker/internal/expiry"
)

func TestValidateEquipment(t *testing.T) {
	tests := []struct {
		name    string
		e       Equipment
		wantErr bool
	}{
		{"valid", Equipment{Name: "Helmet", Quantity: 1, ReceptionDate: "2024-01-01", ValidityDate: "2025-01-01"}, false},
		{"no name", Equipment{Quantity: 1, ReceptionDate: "2024-01-01", ValidityDate: "2025-01-01"}, true},
		{"zero quantity", Equipment{Name: "Helmet", ReceptionDate: "2024-01-01", ValidityDate: "2025-01-01"}, true},
		{"missing validity", Equipment{Name: "Helmet", Quantity: 1, ReceptionDate: "2024-01-01"}, true},
		{"missing reception", Equipment{Name: "Helmet", Quantity: 1, ValidityDate: "2024-01-01"}, true},
		{"same day", Equipment{Name: "Helmet", Quantity: 1, ReceptionDate: "2024-01-01", ValidityDate: "2024-01-01"}, true},
		{"validity before reception", Equipment{Name: "Helmet", Quantity: 1, ReceptionDate: "2024-02-01", ValidityDate: "2024-01-01"}, true},
		{"bad date", Equipment{Name: "Helmet", Quantity: 1, ReceptionDate: "01.02.2024", ValidityDate: "2025-01-01"}, true},
	}

	for _, tt := range tests {
		err := ValidateEquipment(tt.e)
		if (err != nil) != tt.wantErr {
			t.Errorf("%s: ValidateEquipment error = %v, wantErr %v", tt.name, err, tt.wantErr)
		}
	}
}

func TestApplyStatus(t *testing.T) {
	var e Equipment
	e.ApplyStatus(expiry.FromDays(3))
	if e.Status != "Expires in 3 days" || e.Kind != expiry.KindSoon || e.Days == nil || *e.Days != 3 {
		t.Errorf("unexpected status fields: %+v", e)
	}

	e.ApplyStatus(expiry.Status{})
	if e.Status != "" || e.Kind != expiry.KindUnset || e.Days != nil {
		t.Errorf("expected unset status, got %+v", e)
	}
}
