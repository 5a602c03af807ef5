package authz

import (
	"testing"

	"github.com/altius-edu/portal-service/internal/models"
)

func paths(entries []NavEntry) map[string]bool {
	out := make(map[string]bool, len(entries))
	for _, e := range entries {
		out[e.Path] = true
	}
	return out
}

func TestEntriesForAnonymousIsEmpty(t *testing.T) {
	nav := NewNavigation(NewTable())
	if entries := nav.EntriesFor(""); len(entries) != 0 {
		t.Errorf("anonymous menu should be empty, got %v", entries)
	}
}

func TestEntriesForStudent(t *testing.T) {
	nav := NewNavigation(NewTable())
	got := paths(nav.EntriesFor(models.RoleStudent))

	for _, want := range []string{"/dashboard", "/tareas", "/materias", "/notas", "/actividades-interactivas"} {
		if !got[want] {
			t.Errorf("student menu missing %s", want)
		}
	}
	for _, deny := range []string{"/profesor", "/users", "/reports", "/settings"} {
		if got[deny] {
			t.Errorf("student menu must not include %s", deny)
		}
	}
}

func TestEntriesForTeacher(t *testing.T) {
	nav := NewNavigation(NewTable())
	got := paths(nav.EntriesFor(models.RoleTeacher))

	for _, want := range []string{"/profesor", "/profesor/materias", "/profesor/tareas", "/profesor/calificaciones"} {
		if !got[want] {
			t.Errorf("teacher menu missing %s", want)
		}
	}
	for _, deny := range []string{"/tareas", "/notas", "/users", "/dashboard"} {
		if got[deny] {
			t.Errorf("teacher menu must not include %s", deny)
		}
	}
}

func TestEntriesRoleExclusivity(t *testing.T) {
	nav := NewNavigation(NewTable())
	coordinator := paths(nav.EntriesFor(models.RoleCoordinator))
	teacher := paths(nav.EntriesFor(models.RoleTeacher))

	// Coordinator entries never include teacher-exclusive views and vice versa.
	for _, p := range []string{"/profesor", "/profesor/materias", "/profesor/tareas", "/profesor/calificaciones"} {
		if coordinator[p] {
			t.Errorf("coordinator menu must not include teacher view %s", p)
		}
	}
	for _, p := range []string{"/users", "/reports"} {
		if teacher[p] {
			t.Errorf("teacher menu must not include coordinator view %s", p)
		}
	}
}

func TestEntriesDerivedFromRouteTable(t *testing.T) {
	table := NewTable()
	nav := NewNavigation(table)

	// Every menu entry must be enterable by the role it is shown to.
	for _, role := range models.AllRoles {
		for _, entry := range nav.EntriesFor(role) {
			d := Evaluate(userWithRole(role), table.Lookup(entry.Path), entry.Path)
			if d.Outcome != Allow {
				t.Errorf("menu for %s lists %s but the guard decides %s", role, entry.Path, d.Outcome)
			}
		}
	}
}

func TestEntriesDeterministicOrder(t *testing.T) {
	nav := NewNavigation(NewTable())
	first := nav.EntriesFor(models.RoleStudent)
	second := nav.EntriesFor(models.RoleStudent)
	if len(first) != len(second) {
		t.Fatalf("recomputed menu changed length: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Errorf("entry %d differs between recomputations: %+v vs %+v", i, first[i], second[i])
		}
	}
	if len(first) == 0 || first[0].Path != "/dashboard" {
		t.Errorf("student menu should start with /dashboard, got %+v", first)
	}
}

func TestCoordinatorSettingsNotShown(t *testing.T) {
	// /settings is admin-only in the route table, so deriving the menu from
	// the table must hide it from coordinators even though the legacy
	// hand-written catalog listed it.
	nav := NewNavigation(NewTable())
	if paths(nav.EntriesFor(models.RoleCoordinator))["/settings"] {
		t.Error("coordinator menu must not include admin-only /settings")
	}
	if !paths(nav.EntriesFor(models.RoleAdmin))["/settings"] {
		t.Error("admin menu should include /settings")
	}
}
