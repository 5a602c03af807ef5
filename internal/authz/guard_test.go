package authz

import (
	"testing"

	"github.com/altius-edu/portal-service/internal/models"
)

func userWithRole(role models.UserRole) *models.User {
	return &models.User{ID: "u-1", Email: "test@altius.edu", Role: role}
}

func TestEvaluate(t *testing.T) {
	table := NewTable()

	tests := []struct {
		name       string
		principal  *models.User
		path       string
		want       Outcome
		wantTarget string
		wantFrom   string
	}{
		{
			name:      "anonymous on protected admin route",
			principal: nil,
			path:      "/admin",
			want:      RedirectLogin, wantTarget: LoginPath, wantFrom: "/admin",
		},
		{
			name:      "teacher allowed on shared route",
			principal: userWithRole(models.RoleTeacher),
			path:      "/assignments",
			want:      Allow,
		},
		{
			name:      "student denied on admin route goes to student home",
			principal: userWithRole(models.RoleStudent),
			path:      "/admin",
			want:      RedirectDefault, wantTarget: "/dashboard",
		},
		{
			name:      "authenticated on public-only login",
			principal: userWithRole(models.RoleStudent),
			path:      "/login",
			want:      RedirectDefault, wantTarget: "/dashboard",
		},
		{
			name:      "teacher on public-only login goes to teacher home",
			principal: userWithRole(models.RoleTeacher),
			path:      "/login",
			want:      RedirectDefault, wantTarget: "/profesor",
		},
		{
			name:      "anonymous on public-only login",
			principal: nil,
			path:      "/login",
			want:      Allow,
		},
		{
			name:      "authenticated on unrestricted protected route",
			principal: userWithRole(models.RoleCoordinator),
			path:      "/perfil",
			want:      Allow,
		},
		{
			name:      "coordinator denied on admin-only settings",
			principal: userWithRole(models.RoleCoordinator),
			path:      "/settings",
			want:      RedirectDefault, wantTarget: "/dashboard",
		},
		{
			name:      "anonymous on unlisted path is treated as protected",
			principal: nil,
			path:      "/unlisted",
			want:      RedirectLogin, wantTarget: LoginPath, wantFrom: "/unlisted",
		},
		{
			name:      "nested teacher path inherits section rule",
			principal: userWithRole(models.RoleStudent),
			path:      "/profesor/tareas/t-9",
			want:      RedirectDefault, wantTarget: "/dashboard",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Evaluate(tt.principal, table.Lookup(tt.path), tt.path)
			if got.Outcome != tt.want {
				t.Fatalf("outcome = %q, want %q", got.Outcome, tt.want)
			}
			if got.Target != tt.wantTarget {
				t.Errorf("target = %q, want %q", got.Target, tt.wantTarget)
			}
			if got.From != tt.wantFrom {
				t.Errorf("from = %q, want %q", got.From, tt.wantFrom)
			}
		})
	}
}

func TestEvaluateRememberedTarget(t *testing.T) {
	table := NewTable()
	d := Evaluate(nil, table.Lookup("/users"), "/users")
	if d.Outcome != RedirectLogin {
		t.Fatalf("outcome = %q, want %q", d.Outcome, RedirectLogin)
	}
	if d.From != "/users" {
		t.Errorf("remembered path = %q, want /users", d.From)
	}
}

func TestTableLookup(t *testing.T) {
	table := NewTable()

	if rule := table.Lookup("/tareas"); rule.Visibility != Protected || !rule.Allows(models.RoleStudent) {
		t.Errorf("unexpected rule for /tareas: %+v", rule)
	}
	if rule := table.Lookup("/tareas/"); rule.Path != "/tareas" {
		t.Errorf("trailing slash should resolve to /tareas, got %q", rule.Path)
	}
	if rule := table.Lookup("/quiz/abc-123"); !rule.Allows(models.RoleStudent) || rule.Allows(models.RoleTeacher) {
		t.Errorf("nested quiz path should keep the student-only rule, got %+v", rule)
	}
	if rule := table.Lookup(""); rule.Visibility != PublicOnly {
		t.Errorf("empty path should resolve to the public-only root, got %+v", rule)
	}
}

func TestDefaultPath(t *testing.T) {
	if got := DefaultPath(models.RoleTeacher); got != "/profesor" {
		t.Errorf("teacher home = %q", got)
	}
	for _, role := range []models.UserRole{models.RoleStudent, models.RoleCoordinator, models.RoleAdmin} {
		if got := DefaultPath(role); got != "/dashboard" {
			t.Errorf("%s home = %q, want /dashboard", role, got)
		}
	}
}
