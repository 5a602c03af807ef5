package authz

import (
	"sort"

	"github.com/altius-edu/portal-service/internal/models"
)

// NavEntry is one visible menu item for the current principal.
type NavEntry struct {
	Label       string `json:"label"`
	Path        string `json:"path"`
	Icon        string `json:"icon"`
	Description string `json:"description,omitempty"`
}

// navMeta decorates a route-table path with menu presentation. Navigation is
// derived from the authorization table itself, so an entry can never point at
// a route its role cannot enter; menuRoles only narrows presentation further
// (e.g. teachers get /profesor as home instead of the generic /dashboard).
type navMeta struct {
	path        string
	label       string
	icon        string
	description string
	order       int
	menuRoles   []models.UserRole
}

var navCatalog = []navMeta{
	{path: "/dashboard", label: "Dashboard", icon: "home", order: 0,
		description: "Vista general",
		menuRoles:   []models.UserRole{models.RoleStudent, models.RoleCoordinator, models.RoleAdmin}},
	{path: "/tareas", label: "Tareas", icon: "check-square", order: 1,
		description: "Gestiona tus tareas y entregas"},
	{path: "/materias", label: "Materias", icon: "book-open", order: 2,
		description: "Explora tus materias y contenidos"},
	{path: "/notas", label: "Notas", icon: "bar-chart", order: 3,
		description: "Revisa tus calificaciones y progreso"},

	{path: "/profesor", label: "Dashboard", icon: "home", order: 0,
		description: "Panel de control del profesor"},
	{path: "/profesor/materias", label: "Mis Materias", icon: "book-open", order: 1,
		description: "Gestiona tus materias y contenidos"},
	{path: "/profesor/tareas", label: "Tareas", icon: "check-square", order: 2,
		description: "Crea y gestiona tareas para estudiantes"},
	{path: "/profesor/calificaciones", label: "Calificaciones", icon: "bar-chart", order: 3,
		description: "Califica y evalúa a tus estudiantes"},

	{path: "/users", label: "Usuarios", icon: "users", order: 1,
		description: "Gestiona usuarios del sistema"},
	{path: "/reports", label: "Reportes", icon: "bar-chart", order: 2,
		description: "Genera reportes institucionales"},

	{path: "/actividades-interactivas", label: "Actividades", icon: "play", order: 4,
		description: "Actividades interactivas"},
	{path: "/settings", label: "Configuración", icon: "settings", order: 5,
		description: "Configuración del sistema"},
}

func (m navMeta) shownTo(role models.UserRole) bool {
	if len(m.menuRoles) == 0 {
		return true
	}
	for _, r := range m.menuRoles {
		if r == role {
			return true
		}
	}
	return false
}

// Navigation builds per-role menus from the route table.
type Navigation struct {
	table *Table
}

func NewNavigation(table *Table) *Navigation {
	return &Navigation{table: table}
}

// EntriesFor returns the ordered menu for the given canonical role. Anonymous
// visitors (empty role) get no entries. The result is recomputed on every
// call; it is cheap and keeps the menu consistent with the route table.
func (n *Navigation) EntriesFor(role models.UserRole) []NavEntry {
	if role == "" {
		return nil
	}

	type ordered struct {
		entry NavEntry
		order int
	}
	var out []ordered
	for _, meta := range navCatalog {
		rule := n.table.Lookup(meta.path)
		if rule.Visibility != Protected || !rule.Allows(role) || !meta.shownTo(role) {
			continue
		}
		out = append(out, ordered{
			entry: NavEntry{
				Label:       meta.label,
				Path:        meta.path,
				Icon:        meta.icon,
				Description: meta.description,
			},
			order: meta.order,
		})
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].order < out[j].order })

	entries := make([]NavEntry, len(out))
	for i, o := range out {
		entries[i] = o.entry
	}
	return entries
}
