package middleware

import (
	"net/http"
	"strings"

	"github.com/K-Gaydukov/marketplace/internal/entity"
	"github.com/K-Gaydukov/marketplace/internal/security"
	"github.com/gin-gonic/gin"
)

const principalKey = "principal"

type Authn struct {
	tokens *security.TokenService
}

func NewAuthn(tokens *security.TokenService) *Authn {
	return &Authn{tokens: tokens}
}

// Require verifies the bearer token and attaches the resolved principal
// to the request. A missing or invalid credential is 401; it is never
// promoted to the service identity.
func (a *Authn) Require() gin.HandlerFunc {
	return func(c *gin.Context) {
		auth := c.GetHeader("Authorization")
		if !strings.HasPrefix(auth, "Bearer ") {
			unauth(c, "invalid_request", "missing bearer token")
			return
		}

		raw := strings.TrimPrefix(auth, "Bearer ")
		principal, err := a.tokens.Verify(raw)
		if err != nil {
			unauth(c, "invalid_token", "invalid jwt")
			return
		}

		c.Set(principalKey, principal)
		c.Next()
	}
}

// PrincipalFrom returns the principal set by Require. The bool is false
// on routes that skipped authentication.
func PrincipalFrom(c *gin.Context) (entity.Principal, bool) {
	v, ok := c.Get(principalKey)
	if !ok {
		return entity.Principal{}, false
	}
	p, ok := v.(entity.Principal)
	return p, ok
}

func unauth(c *gin.Context, code, desc string) {
	c.Header("WWW-Authenticate", `Bearer error="`+code+`", error_description="`+desc+`"`)
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": code, "error_description": desc})
}
