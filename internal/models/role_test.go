package models

import (
	"strings"
	"testing"
)

func TestNormalizeRole(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want UserRole
	}{
		{"student english", "student", RoleStudent},
		{"student spanish", "estudiante", RoleStudent},
		{"student mixed case", "EsTuDiAnTe", RoleStudent},
		{"teacher english", "teacher", RoleTeacher},
		{"teacher spanish", "profesor", RoleTeacher},
		{"teacher alternate", "docente", RoleTeacher},
		{"teacher upper", "TEACHER", RoleTeacher},
		{"coordinator english", "coordinator", RoleCoordinator},
		{"coordinator spanish", "Coordinador", RoleCoordinator},
		{"admin", "admin", RoleAdmin},
		{"admin spanish", "administrador", RoleAdmin},
		{"super admin", "super_admin", RoleAdmin},
		{"super admin compact", "SuperAdmin", RoleAdmin},
		{"super admin spanish", "superadministrador", RoleAdmin},
		{"empty defaults to student", "", RoleStudent},
		{"whitespace defaults to student", "   ", RoleStudent},
		{"unknown defaults to student", "bogus", RoleStudent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeRole(tt.raw); got != tt.want {
				t.Errorf("NormalizeRole(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}

func TestNormalizeRoleCaseInsensitive(t *testing.T) {
	// The recognized vocabulary must normalize identically regardless of case.
	for _, raw := range []string{"estudiante", "profesor", "coordinador", "administrador"} {
		lower := NormalizeRole(raw)
		upper := NormalizeRole(strings.ToUpper(raw))
		if lower != upper {
			t.Errorf("case sensitivity for %q: %q vs %q", raw, lower, upper)
		}
	}
}

func TestUserRoleIsValid(t *testing.T) {
	for _, r := range AllRoles {
		if !r.IsValid() {
			t.Errorf("expected %q to be valid", r)
		}
	}
	if UserRole("proctor").IsValid() {
		t.Error("expected unknown role to be invalid")
	}
}
