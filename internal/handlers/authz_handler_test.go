package handlers

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/casdoor/casdoor-go-sdk/casdoorsdk"
	"github.com/gin-gonic/gin"
	"golang.org/x/oauth2"

	"github.com/altius-edu/portal-service/internal/authz"
	"github.com/altius-edu/portal-service/internal/models"
	"github.com/altius-edu/portal-service/internal/session"
	"github.com/altius-edu/portal-service/internal/utils"
)

// fakeIdentity maps fixed tokens to principals.
type fakeIdentity struct {
	users map[string]casdoorsdk.User
}

func (f *fakeIdentity) GetOAuthToken(code, state string) (*oauth2.Token, error) {
	return nil, fmt.Errorf("not used in these tests")
}

func (f *fakeIdentity) ParseJwtToken(token string) (*casdoorsdk.Claims, error) {
	user, ok := f.users[token]
	if !ok {
		return nil, fmt.Errorf("unknown token")
	}
	return &casdoorsdk.Claims{User: user}, nil
}

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	logger := utils.NewSlogLogger(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError})))
	identity := &fakeIdentity{users: map[string]casdoorsdk.User{
		"student-token": {Id: "a1", Email: "alumno@example.com", Type: "estudiante"},
		"teacher-token": {Id: "t1", Email: "profe@example.com", Type: "profesor"},
		"admin-token":   {Id: "ad1", Email: "admin@example.com", Type: "admin"},
	}}
	sessions := session.NewStore(session.NewMemoryStorage(), slog.New(slog.NewTextHandler(os.Stdout, nil)))

	table := authz.NewTable()
	authzHandler := NewAuthzHandler(authz.NewGuard(table), authz.NewNavigation(table), logger)
	authMiddleware := NewAuthMiddleware(identity, sessions, logger)

	router := gin.New()
	v1 := router.Group("/api/v1")
	v1.Use(authMiddleware.Authenticate())
	v1.GET("/authz/decision", authzHandler.Decision)
	v1.GET("/navigation", authzHandler.Navigation)

	protected := v1.Group("")
	protected.Use(authMiddleware.RequireAuth())
	protected.GET("/teacher-only", authMiddleware.RequireRoleMiddleware(models.RoleTeacher), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	return router
}

func doRequest(t *testing.T, router *gin.Engine, path, token string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var body map[string]any
	if len(w.Body.Bytes()) > 0 {
		if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
			t.Fatalf("invalid JSON response: %v", err)
		}
	}
	return w, body
}

func TestAuthzDecisionEndpoint(t *testing.T) {
	router := newTestRouter(t)

	tests := []struct {
		name        string
		path        string
		token       string
		wantOutcome string
		wantTarget  string
		wantFrom    string
	}{
		{
			name:        "anonymous on protected route is sent to login with origin",
			path:        "/tareas",
			wantOutcome: "redirect_login",
			wantTarget:  "/login",
			wantFrom:    "/tareas",
		},
		{
			name:        "student allowed on student route",
			path:        "/tareas",
			token:       "student-token",
			wantOutcome: "allow",
		},
		{
			name:        "student on teacher route bounces to role home",
			path:        "/profesor",
			token:       "student-token",
			wantOutcome: "redirect_default",
			wantTarget:  "/dashboard",
		},
		{
			name:        "authenticated teacher on public-only login bounces home",
			path:        "/login",
			token:       "teacher-token",
			wantOutcome: "redirect_default",
			wantTarget:  "/profesor",
		},
		{
			name:        "anonymous on public root is allowed",
			path:        "/",
			wantOutcome: "allow",
		},
		{
			name:        "admin passes every protected route",
			path:        "/settings",
			token:       "admin-token",
			wantOutcome: "allow",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, body := doRequest(t, router, "/api/v1/authz/decision?path="+tt.path, tt.token)
			if w.Code != http.StatusOK {
				t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
			}
			if body["outcome"] != tt.wantOutcome {
				t.Errorf("Expected outcome %s, got %v", tt.wantOutcome, body["outcome"])
			}
			if tt.wantTarget != "" && body["target"] != tt.wantTarget {
				t.Errorf("Expected target %s, got %v", tt.wantTarget, body["target"])
			}
			if tt.wantFrom != "" && body["from"] != tt.wantFrom {
				t.Errorf("Expected from %s, got %v", tt.wantFrom, body["from"])
			}
		})
	}

	t.Run("missing path parameter", func(t *testing.T) {
		w, _ := doRequest(t, router, "/api/v1/authz/decision", "")
		if w.Code != http.StatusBadRequest {
			t.Errorf("Expected 400, got %d", w.Code)
		}
	})
}

func TestNavigationEndpoint(t *testing.T) {
	router := newTestRouter(t)

	t.Run("anonymous gets an empty menu", func(t *testing.T) {
		w, body := doRequest(t, router, "/api/v1/navigation", "")
		if w.Code != http.StatusOK {
			t.Fatalf("Expected 200, got %d", w.Code)
		}
		entries := body["entries"].([]any)
		if len(entries) != 0 {
			t.Errorf("Expected no entries for anonymous, got %d", len(entries))
		}
	})

	t.Run("teacher menu stays inside teacher routes", func(t *testing.T) {
		w, body := doRequest(t, router, "/api/v1/navigation", "teacher-token")
		if w.Code != http.StatusOK {
			t.Fatalf("Expected 200, got %d", w.Code)
		}
		entries := body["entries"].([]any)
		if len(entries) == 0 {
			t.Fatal("Expected teacher menu entries")
		}
		for _, e := range entries {
			path := e.(map[string]any)["path"].(string)
			w2, decision := doRequest(t, router, "/api/v1/authz/decision?path="+path, "teacher-token")
			if w2.Code != http.StatusOK || decision["outcome"] != "allow" {
				t.Errorf("Menu entry %s is not enterable by its role: %v", path, decision)
			}
		}
	})
}

func TestRoleMiddlewareResponses(t *testing.T) {
	router := newTestRouter(t)

	t.Run("no token gets the login redirect", func(t *testing.T) {
		w, body := doRequest(t, router, "/api/v1/teacher-only", "")
		if w.Code != http.StatusUnauthorized {
			t.Fatalf("Expected 401, got %d", w.Code)
		}
		redirect := body["redirect"].(map[string]any)
		if redirect["to"] != "/login" {
			t.Errorf("Expected redirect to /login, got %v", redirect["to"])
		}
		if redirect["from"] != "/api/v1/teacher-only" {
			t.Errorf("Expected preserved origin, got %v", redirect["from"])
		}
	})

	t.Run("wrong role gets its role home", func(t *testing.T) {
		w, body := doRequest(t, router, "/api/v1/teacher-only", "student-token")
		if w.Code != http.StatusForbidden {
			t.Fatalf("Expected 403, got %d", w.Code)
		}
		redirect := body["redirect"].(map[string]any)
		if redirect["to"] != "/dashboard" {
			t.Errorf("Expected redirect to /dashboard, got %v", redirect["to"])
		}
	})

	t.Run("matching role passes", func(t *testing.T) {
		w, _ := doRequest(t, router, "/api/v1/teacher-only", "teacher-token")
		if w.Code != http.StatusOK {
			t.Errorf("Expected 200, got %d", w.Code)
		}
	})

	t.Run("admin passes every role gate", func(t *testing.T) {
		w, _ := doRequest(t, router, "/api/v1/teacher-only", "admin-token")
		if w.Code != http.StatusOK {
			t.Errorf("Expected 200, got %d", w.Code)
		}
	})
}
