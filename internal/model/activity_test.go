package model

import "testing"

func TestValidateIncident(t *testing.T) {
	valid := Incident{
		Type: IncidentFire, Title: "Smoke in workshop", Severity: SeverityHigh,
		Status: IncidentNew, Date: "2024-01-10",
	}
	if err := ValidateIncident(valid); err != nil {
		t.Fatalf("valid incident rejected: %v", err)
	}

	tests := []struct {
		name   string
		modify func(*Incident)
	}{
		{"no title", func(i *Incident) { i.Title = "" }},
		{"unknown type", func(i *Incident) { i.Type = "flood" }},
		{"unknown severity", func(i *Incident) { i.Severity = "extreme" }},
		{"unknown status", func(i *Incident) { i.Status = "closed" }},
		{"bad date", func(i *Incident) { i.Date = "10/01/2024" }},
	}
	for _, tt := range tests {
		i := valid
		tt.modify(&i)
		if err := ValidateIncident(i); err == nil {
			t.Errorf("%s: expected error", tt.name)
		}
	}
}

func TestValidateTraining(t *testing.T) {
	valid := Training{
		Title: "First aid", Date: "2024-02-15", Duration: 480,
		MaxParticipants: 12, Status: TrainingPlanned,
	}
	if err := ValidateTraining(valid); err != nil {
		t.Fatalf("valid training rejected: %v", err)
	}

	tests := []struct {
		name   string
		modify func(*Training)
	}{
		{"no title", func(tr *Training) { tr.Title = "" }},
		{"bad date", func(tr *Training) { tr.Date = "" }},
		{"zero duration", func(tr *Training) { tr.Duration = 0 }},
		{"no seats", func(tr *Training) { tr.MaxParticipants = 0 }},
		{"unknown status", func(tr *Training) { tr.Status = "done" }},
	}
	for _, tt := range tests {
		tr := valid
		tt.modify(&tr)
		if err := ValidateTraining(tr); err == nil {
			t.Errorf("%s: expected error", tt.name)
		}
	}
}

func TestValidateEvent(t *testing.T) {
	tests := []struct {
		event   Event
		wantErr bool
	}{
		{Event{Title: "Safety audit", Date: "2024-03-01", Time: "09:30"}, false},
		{Event{Title: "", Date: "2024-03-01", Time: "09:30"}, true},
		{Event{Title: "Audit", Date: "2024-3-1", Time: "09:30"}, true},
		{Event{Title: "Audit", Date: "2024-03-01", Time: "9h30"}, true},
		{Event{Title: "Audit", Date: "2024-03-01", Time: "25:00"}, true},
	}
	for _, tt := range tests {
		err := ValidateEvent(tt.event)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateEvent(%+v) error = %v, wantErr %v", tt.event, err, tt.wantErr)
		}
	}
}
