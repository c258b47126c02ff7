package ginserver

import (
	"context"
	"net/http"

	gin "github.com/gin-gonic/gin"
)

type SessionHTTP interface {
	Me(c *gin.Context)
	Logout(c *gin.Context)
}

type SessionRevoker interface {
	Logout(ctx context.Context, token string) error
}

// SessionHandler exposes the signed-in user and lets them end the session.
type SessionHandler struct {
	Sessions SessionRevoker
}

// Me answers 200 with null for anonymous callers, mirroring a
// "current user or nothing" lookup.
func (h SessionHandler) Me(c *gin.Context) {
	p, ok := currentPrincipal(c)
	if !ok {
		c.JSON(http.StatusOK, gin.H{"user": nil})
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": gin.H{
		"id":    p.ID,
		"name":  p.Name,
		"email": p.Email,
		"image": p.Image,
	}})
}

func (h SessionHandler) Logout(c *gin.Context) {
	p, ok := currentPrincipal(c)
	if !ok || h.Sessions == nil {
		c.Status(http.StatusNoContent)
		return
	}
	if err := h.Sessions.Logout(c.Request.Context(), p.Token); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

var _ SessionHTTP = SessionHandler{}
