package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/mamadbah2/coldroom/internal/domain/models"
)

// Headers set by the authenticating proxy in front of the service.
const (
	HeaderUser = "X-User"
	HeaderRole = "X-Role"
)

const identityKey = "coldroom.identity"

// Identity is the authenticated caller of a request.
type Identity struct {
	User string
	Role models.Role
}

// RequireIdentity rejects requests that carry no user header and stores the
// caller's identity on the context.
func RequireIdentity() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := strings.TrimSpace(c.GetHeader(HeaderUser))
		if user == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing " + HeaderUser + " header"})
			return
		}
		c.Set(identityKey, Identity{User: user, Role: models.ParseRole(c.GetHeader(HeaderRole))})
		c.Next()
	}
}

func identityFrom(c *gin.Context) Identity {
	if v, ok := c.Get(identityKey); ok {
		if id, ok := v.(Identity); ok {
			return id
		}
	}
	return Identity{Role: models.RoleViewer}
}
