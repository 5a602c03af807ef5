package models

import (
	"log/slog"
	"strings"
)

type UserRole string
type Role = UserRole // Alias for compatibility

const (
	RoleStudent     UserRole = "student"
	RoleTeacher     UserRole = "teacher"
	RoleCoordinator UserRole = "coordinator"
	RoleAdmin       UserRole = "admin"
)

// AllRoles lists every canonical role, least privileged first.
var AllRoles = []UserRole{RoleStudent, RoleTeacher, RoleCoordinator, RoleAdmin}

// NormalizeRole maps a raw role string from the identity provider to a canonical
// role. Matching is case-insensitive and accepts both the English and the Spanish
// vocabulary used by legacy accounts. Unknown or empty input degrades to the
// least-privileged role instead of failing login.
func NormalizeRole(raw string) UserRole {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "student", "estudiante", "learner":
		return RoleStudent
	case "teacher", "profesor", "docente", "instructor":
		return RoleTeacher
	case "coordinator", "coordinador":
		return RoleCoordinator
	case "admin", "administrator", "administrador",
		"super_admin", "superadmin", "superadministrador":
		return RoleAdmin
	case "":
		return RoleStudent
	default:
		slog.Warn("Unrecognized role, defaulting to student", "role", raw)
		return RoleStudent
	}
}

// IsValid reports whether the role is one of the canonical values.
func (r UserRole) IsValid() bool {
	switch r {
	case RoleStudent, RoleTeacher, RoleCoordinator, RoleAdmin:
		return true
	}
	return false
}

// DisplayName returns the Spanish display name shown in the portal UI.
func (r UserRole) DisplayName() string {
	switch r {
	case RoleStudent:
		return "Estudiante"
	case RoleTeacher:
		return "Profesor"
	case RoleCoordinator:
		return "Coordinador"
	case RoleAdmin:
		return "Administrador"
	default:
		return "Usuario"
	}
}
