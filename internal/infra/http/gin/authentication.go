package ginserver

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	gin "github.com/gin-gonic/gin"

	"dwelling/internal/app/services/auth"
	domainauth "dwelling/internal/domain/auth"
)

const principalContextKey = "dwelling.principal"

// TokenResolver turns a bearer token into the signed-in user.
type TokenResolver interface {
	ResolveToken(ctx context.Context, token string) (*auth.ResolveResult, error)
}

type principal struct {
	ID    string
	Name  string
	Email string
	Image string
	Token string
}

// AuthMiddleware attaches the principal when the request carries a valid
// bearer token. Requests without one continue anonymously; handlers decide
// whether that is acceptable.
type AuthMiddleware struct {
	Resolver TokenResolver
	Logger   *slog.Logger
}

func (m AuthMiddleware) Handle(c *gin.Context) {
	token := extractBearerToken(c.GetHeader("Authorization"))
	if token == "" || m.Resolver == nil {
		c.Next()
		return
	}
	resolved, err := m.Resolver.ResolveToken(c.Request.Context(), token)
	if err != nil {
		if !errors.Is(err, domainauth.ErrSessionNotFound) && m.Logger != nil {
			m.Logger.Debug("token validation failed", "error", err)
		}
		c.Next()
		return
	}
	user := resolved.User
	c.Set(principalContextKey, principal{
		ID:    string(user.ID),
		Name:  user.Name,
		Email: user.Email,
		Image: user.Image,
		Token: token,
	})
	c.Next()
}

func currentPrincipal(c *gin.Context) (principal, bool) {
	val, exists := c.Get(principalContextKey)
	if !exists {
		return principal{}, false
	}
	p, ok := val.(principal)
	return p, ok
}

// requesterID is the signed-in user's id or "" for anonymous requests.
func requesterID(c *gin.Context) string {
	p, _ := currentPrincipal(c)
	return p.ID
}

func extractBearerToken(header string) string {
	if len(header) < 7 || !strings.EqualFold(header[:7], "bearer ") {
		return ""
	}
	return strings.TrimSpace(header[7:])
}
