package ginserver

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	gin "github.com/gin-gonic/gin"

	"travelnest/internal/app/dto"
	"travelnest/internal/app/middleware"
	"travelnest/internal/app/services/auth"
	domainauth "travelnest/internal/domain/auth"
	domainuser "travelnest/internal/domain/user"
)

const principalContextKey = "travelnest.principal"

const (
	roleManager = string(domainuser.RoleManager)
	roleAdmin   = string(domainuser.RoleAdmin)
)

type principal struct {
	ID      string
	Roles   []string
	Token   string
	Profile dto.UserProfile
}

func (p principal) HasRole(role string) bool {
	role = strings.ToLower(strings.TrimSpace(role))
	if role == "" {
		return false
	}
	for _, r := range p.Roles {
		if strings.ToLower(r) == role {
			return true
		}
	}
	return false
}

func (p principal) IsAdmin() bool { return p.HasRole(roleAdmin) }

// AuthMiddleware resolves the bearer token, when present, into a principal.
// Anonymous requests pass through; handlers decide what needs a login.
type AuthMiddleware struct {
	Service *auth.Service
	Logger  *slog.Logger
}

func (m AuthMiddleware) Handle(c *gin.Context) {
	token := extractBearerToken(c.GetHeader("Authorization"))
	if token == "" || m.Service == nil {
		c.Next()
		return
	}
	resolved, err := m.Service.ResolveToken(c.Request.Context(), token)
	if err != nil {
		if !errors.Is(err, domainauth.ErrSessionNotFound) && m.Logger != nil {
			m.Logger.Debug("token validation failed", "error", err)
		}
		c.Next()
		return
	}
	user := resolved.User
	p := principal{
		ID:      string(user.ID),
		Roles:   mapRoles(user.Roles),
		Token:   token,
		Profile: dto.MapUserProfile(user),
	}
	c.Set(principalContextKey, p)
	ctx := middleware.WithCaller(c.Request.Context(), middleware.Caller{ID: p.ID, Roles: p.Roles})
	c.Request = c.Request.WithContext(ctx)
	c.Next()
}

func mapRoles(roles []domainuser.Role) []string {
	result := make([]string, 0, len(roles))
	for _, r := range roles {
		result = append(result, string(r))
	}
	return result
}

func currentPrincipal(c *gin.Context) (principal, bool) {
	val, exists := c.Get(principalContextKey)
	if !exists {
		return principal{}, false
	}
	p, ok := val.(principal)
	return p, ok
}

// requireRole writes 401/403 and returns false unless the caller is logged in
// and holds one of roles. No roles means any logged in user.
func requireRole(c *gin.Context, roles ...string) (principal, bool) {
	p, ok := currentPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "auth required"})
		return principal{}, false
	}
	if len(roles) == 0 {
		return p, true
	}
	for _, role := range roles {
		if p.HasRole(role) {
			return p, true
		}
	}
	c.JSON(http.StatusForbidden, gin.H{"error": "insufficient permissions"})
	return principal{}, false
}

func extractBearerToken(header string) string {
	if len(header) < 7 || !strings.EqualFold(header[:7], "bearer ") {
		return ""
	}
	return strings.TrimSpace(header[7:])
}
