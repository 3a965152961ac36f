package httpx

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/MikeMC777/tienda-ecom/internal/auth"
)

const principalKey = "principal"

// PrincipalResolver verifies a bearer token. auth.Issuer resolves locally;
// identity.Client asks the identity service.
type PrincipalResolver interface {
	Resolve(ctx context.Context, token string) (auth.Principal, error)
}

// Auth rejects requests without a valid access token and stores the
// principal on the context.
func Auth(r PrincipalResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		scheme, token, ok := strings.Cut(header, " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
			Error(c, http.StatusUnauthorized, "authentication credentials were not provided")
			return
		}
		p, err := r.Resolve(c.Request.Context(), strings.TrimSpace(token))
		if err != nil {
			Error(c, http.StatusUnauthorized, "given token not valid for any token type")
			return
		}
		c.Set(principalKey, p)
		c.Next()
	}
}

// RequireStaff must run after Auth.
func RequireStaff() gin.HandlerFunc {
	return func(c *gin.Context) {
		if p, ok := PrincipalFrom(c); !ok || !p.IsStaff {
			Error(c, http.StatusForbidden, "you do not have permission to perform this action")
			return
		}
		c.Next()
	}
}

func PrincipalFrom(c *gin.Context) (auth.Principal, bool) {
	v, ok := c.Get(principalKey)
	if !ok {
		return auth.Principal{}, false
	}
	p, ok := v.(auth.Principal)
	return p, ok
}

// MustPrincipal is for handlers mounted behind Auth.
func MustPrincipal(c *gin.Context) auth.Principal {
	p, _ := PrincipalFrom(c)
	return p
}
