package model

import "testing"

func TestRoleAtLeast(t *testing.T) {
	tests := []struct {
		role     string
		minimum  string
		expected bool
	}{
		{RoleAdmin, RoleAdmin, true},
		{RoleAdmin, RoleSupervisor, true},
		{RoleAdmin, RoleTechnician, true},
		{RoleSupervisor, RoleAdmin, false},
		{RoleSupervisor, RoleSupervisor, true},
		{RoleSupervisor, RoleTechnician, true},
		{RoleTechnician, RoleAdmin, false},
		{RoleTechnician, RoleSupervisor, false},
		{RoleTechnician, RoleTechnician, true},
		// Unknown roles fail-closed.
		{"unknown", RoleTechnician, false},
		{RoleAdmin, "unknown", false},
		{"", "", false},
		{"", RoleTechnician, false},
	}

	for _, tt := range tests {
		got := RoleAtLeast(tt.role, tt.minimum)
		if got != tt.expected {
			t.Errorf("RoleAtLeast(%q, %q) = %v, want %v", tt.role, tt.minimum, got, tt.expected)
		}
	}
}

func TestValidatePassword(t *testing.T) {
	tests := []struct {
		password string
		wantErr  bool
	}{
		{"", true},
		{"short", true},
		{"1234567", true},
		{"12345678", false},
		{"a-valid-password", false},
	}

	for _, tt := range tests {
		err := ValidatePassword(tt.password)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidatePassword(%q) error = %v, wantErr %v", tt.password, err, tt.wantErr)
		}
	}
}

func TestValidRole(t *testing.T) {
	for _, r := range []string{RoleAdmin, RoleSupervisor, RoleTechnician} {
		if !ValidRole(r) {
			t.Errorf("ValidRole(%q) = false", r)
		}
	}
	if ValidRole("manager") {
		t.Error("ValidRole(\"manager\") = true")
	}
}
