package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/altius-edu/portal-service/internal/authz"
	"github.com/altius-edu/portal-service/internal/models"
	"github.com/altius-edu/portal-service/internal/repositories/casdoor"
	"github.com/altius-edu/portal-service/internal/services"
	"github.com/altius-edu/portal-service/internal/session"
	"github.com/altius-edu/portal-service/internal/utils"
)

// AuthMiddleware resolves the principal for each request: it parses the bearer
// token with the identity provider and rehydrates the session record, so a
// profile update made on one request is visible on the next.
type AuthMiddleware struct {
	identity services.IdentityClient
	sessions *session.Store
	logger   utils.Logger
}

func NewAuthMiddleware(identity services.IdentityClient, sessions *session.Store, logger utils.Logger) *AuthMiddleware {
	return &AuthMiddleware{
		identity: identity,
		sessions: sessions,
		logger:   logger,
	}
}

// Authenticate resolves the principal when a valid token is present and
// continues without one otherwise. Route-level middleware decides what an
// unauthenticated request may do.
func (am *AuthMiddleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := am.resolvePrincipal(c)
		if user != nil {
			c.Set("user", user)
			c.Set("user_id", user.ID)
			c.Set("user_role", user.Role)
			c.Set("user_email", user.Email)
		}
		c.Next()
	}
}

// RequireAuth aborts unauthenticated requests with the login redirect,
// preserving the requested path for post-login return.
func (am *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, exists := c.Get("user"); !exists {
			c.JSON(http.StatusUnauthorized, ErrorResponse{
				Error:    "unauthorized",
				Message:  "Authentication required",
				Redirect: &RedirectInfo{To: authz.LoginPath, From: c.Request.URL.Path},
			})
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequireRoleMiddleware checks if the user has one of the required roles.
// Admins pass every role gate. Refusals carry the caller's role home.
func (am *AuthMiddleware) RequireRoleMiddleware(requiredRoles ...models.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		userRole, exists := c.Get("user_role")
		if !exists {
			c.JSON(http.StatusUnauthorized, ErrorResponse{
				Error:    "unauthorized",
				Message:  "Authentication required",
				Redirect: &RedirectInfo{To: authz.LoginPath, From: c.Request.URL.Path},
			})
			c.Abort()
			return
		}

		role, ok := userRole.(models.UserRole)
		if !ok {
			c.JSON(http.StatusForbidden, ErrorResponse{
				Error:   "forbidden",
				Message: "invalid user role format",
			})
			c.Abort()
			return
		}

		hasRequiredRole := false
		for _, requiredRole := range requiredRoles {
			if role == requiredRole || role == models.RoleAdmin {
				hasRequiredRole = true
				break
			}
		}

		if !hasRequiredRole {
			c.JSON(http.StatusForbidden, ErrorResponse{
				Error:    "forbidden",
				Message:  fmt.Sprintf("insufficient permissions, required role: %v", requiredRoles),
				Redirect: &RedirectInfo{To: authz.DefaultPath(role)},
			})
			c.Abort()
			return
		}

		c.Next()
	}
}

func (am *AuthMiddleware) resolvePrincipal(c *gin.Context) *models.User {
	token := bearerToken(c)
	if token == "" {
		return nil
	}

	claims, err := am.identity.ParseJwtToken(token)
	if err != nil {
		utils.FromContext(c, am.logger).Debug("Rejected bearer token", "error", err)
		return nil
	}
	if claims.User.Id == "" {
		return nil
	}

	// Prefer the session record: it carries profile patches the identity
	// provider has not seen yet. The token must match the stored one.
	rec, err := am.sessions.Get(c.Request.Context(), claims.User.Id)
	if err == nil && rec.IsAuthenticated && rec.Token == token {
		return rec.User
	}

	return casdoor.ConvertCasdoorUser(&claims.User)
}

func bearerToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return ""
	}
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}
	return parts[1]
}
