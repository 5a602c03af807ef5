package authz

import (
	"strings"

	"github.com/altius-edu/portal-service/internal/models"
)

// Visibility classifies a route for the guard.
type Visibility int

const (
	// Public routes render for anyone.
	Public Visibility = iota
	// PublicOnly routes (login, registration) redirect away when already
	// authenticated.
	PublicOnly
	// Protected routes require an authenticated principal; AllowedRoles may
	// narrow them further.
	Protected
)

// RouteRule maps a navigable path to its authorization requirement. An empty
// AllowedRoles set on a protected route means any authenticated principal.
type RouteRule struct {
	Path         string
	Visibility   Visibility
	AllowedRoles []models.UserRole
}

// Allows reports whether the rule admits the given canonical role.
func (r RouteRule) Allows(role models.UserRole) bool {
	if len(r.AllowedRoles) == 0 {
		return true
	}
	for _, allowed := range r.AllowedRoles {
		if allowed == role {
			return true
		}
	}
	return false
}

// Table is the static route authorization table, built once at startup and
// never mutated afterwards.
type Table struct {
	rules []RouteRule
}

// NewTable builds the portal's route table. It is the single source of truth
// for both the guard and the navigation builder.
func NewTable() *Table {
	student := []models.UserRole{models.RoleStudent}
	teacher := []models.UserRole{models.RoleTeacher}
	staff := []models.UserRole{models.RoleCoordinator, models.RoleAdmin}

	return &Table{rules: []RouteRule{
		// Public-only entry points.
		{Path: "/", Visibility: PublicOnly},
		{Path: "/login", Visibility: PublicOnly},
		{Path: "/register", Visibility: PublicOnly},
		{Path: "/institution-register", Visibility: PublicOnly},

		// Any authenticated principal.
		{Path: "/dashboard", Visibility: Protected},
		{Path: "/perfil", Visibility: Protected},
		{Path: "/change-password", Visibility: Protected},

		// Student portal.
		{Path: "/tareas", Visibility: Protected, AllowedRoles: student},
		{Path: "/materias", Visibility: Protected, AllowedRoles: student},
		{Path: "/notas", Visibility: Protected, AllowedRoles: student},
		{Path: "/student/tasks", Visibility: Protected, AllowedRoles: student},
		{Path: "/quiz", Visibility: Protected, AllowedRoles: student},

		// Teacher portal.
		{Path: "/profesor", Visibility: Protected, AllowedRoles: teacher},
		{Path: "/profesor/materias", Visibility: Protected, AllowedRoles: teacher},
		{Path: "/profesor/tareas", Visibility: Protected, AllowedRoles: teacher},
		{Path: "/profesor/calificaciones", Visibility: Protected, AllowedRoles: teacher},
		{Path: "/teacher/tasks", Visibility: Protected, AllowedRoles: teacher},

		// Shared academic views.
		{Path: "/subjects", Visibility: Protected,
			AllowedRoles: []models.UserRole{models.RoleStudent, models.RoleTeacher, models.RoleCoordinator}},
		{Path: "/assignments", Visibility: Protected,
			AllowedRoles: []models.UserRole{models.RoleStudent, models.RoleTeacher}},
		{Path: "/grades", Visibility: Protected,
			AllowedRoles: []models.UserRole{models.RoleStudent, models.RoleTeacher, models.RoleCoordinator}},
		{Path: "/calendar", Visibility: Protected,
			AllowedRoles: []models.UserRole{models.RoleStudent, models.RoleTeacher, models.RoleCoordinator}},
		{Path: "/actividades-interactivas", Visibility: Protected,
			AllowedRoles: []models.UserRole{models.RoleStudent, models.RoleTeacher, models.RoleCoordinator}},

		// Coordination and administration.
		{Path: "/users", Visibility: Protected, AllowedRoles: staff},
		{Path: "/reports", Visibility: Protected, AllowedRoles: staff},
		{Path: "/gestion-grados", Visibility: Protected, AllowedRoles: staff},
		{Path: "/settings", Visibility: Protected, AllowedRoles: []models.UserRole{models.RoleAdmin}},
		{Path: "/admin", Visibility: Protected, AllowedRoles: []models.UserRole{models.RoleAdmin}},
	}}
}

// Lookup returns the rule whose path matches the requested one, preferring the
// longest prefix match so nested paths inherit their section's rule. Unlisted
// paths fall back to a protected any-authenticated rule.
func (t *Table) Lookup(path string) RouteRule {
	path = normalizePath(path)
	best := RouteRule{Path: path, Visibility: Protected}
	bestLen := -1
	for _, rule := range t.rules {
		if rule.Path == path {
			return rule
		}
		if strings.HasPrefix(path, rule.Path+"/") && len(rule.Path) > bestLen {
			best = rule
			bestLen = len(rule.Path)
		}
	}
	return best
}

// Rules returns the table entries in declaration order.
func (t *Table) Rules() []RouteRule {
	return t.rules
}

func normalizePath(path string) string {
	if path == "" {
		return "/"
	}
	if path != "/" && strings.HasSuffix(path, "/") {
		path = strings.TrimRight(path, "/")
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return path
}
