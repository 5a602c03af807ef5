package authz

import (
	"github.com/altius-edu/portal-service/internal/models"
)

// Outcome is the guard's decision for one navigation.
type Outcome string

const (
	// Allow renders the requested view.
	Allow Outcome = "allow"
	// RedirectLogin sends an unauthenticated visitor to the login view,
	// remembering the originally requested path.
	RedirectLogin Outcome = "redirect_login"
	// RedirectDefault sends an authenticated principal to its role home,
	// either because its role is not allowed or because the route is
	// public-only.
	RedirectDefault Outcome = "redirect_default"
)

// LoginPath is the target of RedirectLogin decisions.
const LoginPath = "/login"

// Decision is the full guard verdict: the outcome, where to navigate if not
// allowed, and the preserved origin for post-login return.
type Decision struct {
	Outcome Outcome `json:"outcome"`
	// Target is the redirect destination; empty on Allow.
	Target string `json:"target,omitempty"`
	// From preserves the requested path on RedirectLogin so a successful
	// login can return to it.
	From string `json:"from,omitempty"`
}

// DefaultPath returns the role-appropriate home view.
func DefaultPath(role models.UserRole) string {
	switch role {
	case models.RoleTeacher:
		return "/profesor"
	case models.RoleStudent, models.RoleCoordinator, models.RoleAdmin:
		return "/dashboard"
	default:
		return "/dashboard"
	}
}

// Evaluate decides whether the principal may enter the route described by
// rule. It is pure and synchronous; callers re-evaluate on every navigation.
// The principal's role is always canonical: normalization happens upstream
// when the session is established, so the guard never sees an unknown role.
func Evaluate(principal *models.User, rule RouteRule, path string) Decision {
	authenticated := principal != nil

	switch rule.Visibility {
	case Public:
		return Decision{Outcome: Allow}

	case PublicOnly:
		if authenticated {
			return Decision{Outcome: RedirectDefault, Target: DefaultPath(principal.Role)}
		}
		return Decision{Outcome: Allow}

	default: // Protected
		if !authenticated {
			return Decision{Outcome: RedirectLogin, Target: LoginPath, From: normalizePath(path)}
		}
		if rule.Allows(principal.Role) {
			return Decision{Outcome: Allow}
		}
		return Decision{Outcome: RedirectDefault, Target: DefaultPath(principal.Role)}
	}
}

// Guard bundles the route table with the decision function.
type Guard struct {
	table *Table
}

func NewGuard(table *Table) *Guard {
	return &Guard{table: table}
}

// Check evaluates the principal against the rule governing path.
func (g *Guard) Check(principal *models.User, path string) Decision {
	return Evaluate(principal, g.table.Lookup(path), path)
}

// Table exposes the underlying route table (navigation derives from it).
func (g *Guard) Table() *Table {
	return g.table
}
