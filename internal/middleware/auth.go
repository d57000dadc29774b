package middleware

import (
	"log/slog"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/simp-lee/logger"

	"github.com/simp-lee/companyemployees/internal/domain"
	"github.com/simp-lee/companyemployees/internal/pkg"
)

const claimsContextKey = "auth_claims"

// TokenParser validates a bearer token and returns its claims.
type TokenParser interface {
	Parse(token string) (*pkg.TokenClaims, error)
}

// Authenticator guards routes with bearer tokens. A nil *Authenticator is
// disabled: every handler it returns passes requests through.
type Authenticator struct {
	tokens TokenParser
	public map[string]struct{}
}

// NewAuthenticator creates an Authenticator. Requests whose path is listed in
// publicPaths skip token validation.
func NewAuthenticator(tokens TokenParser, publicPaths []string) *Authenticator {
	public := make(map[string]struct{}, len(publicPaths))
	for _, p := range publicPaths {
		public[normalizePath(p)] = struct{}{}
	}
	return &Authenticator{tokens: tokens, public: public}
}

// Authenticate validates the Authorization header and stores the claims in the
// gin context. Missing or invalid tokens get 401.
func (a *Authenticator) Authenticate() gin.HandlerFunc {
	if a == nil || a.tokens == nil {
		return passThrough
	}

	return func(c *gin.Context) {
		if _, ok := a.public[normalizePath(c.Request.URL.Path)]; ok {
			c.Next()
			return
		}

		token, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			c.Header("WWW-Authenticate", `Bearer`)
			pkg.Error(c, domain.NewAppError(domain.KindUnauthorized, "missing bearer token", nil))
			c.Abort()
			return
		}

		claims, err := a.tokens.Parse(token)
		if err != nil {
			c.Header("WWW-Authenticate", `Bearer error="invalid_token"`)
			pkg.Error(c, err)
			c.Abort()
			return
		}

		c.Set(claimsContextKey, claims)
		ctx := logger.WithContextAttrs(c.Request.Context(), slog.String("user", claims.UserName))
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

// RequireRoles admits requests whose claims carry at least one of roles.
// Requests without claims get 401; requests lacking every role get 403.
func (a *Authenticator) RequireRoles(roles ...string) gin.HandlerFunc {
	if a == nil || a.tokens == nil || len(roles) == 0 {
		return passThrough
	}

	return func(c *gin.Context) {
		claims, ok := GetClaims(c)
		if !ok {
			pkg.Error(c, domain.ErrUnauthorized)
			c.Abort()
			return
		}
		for _, role := range roles {
			if claims.HasRole(role) {
				c.Next()
				return
			}
		}
		pkg.Error(c, domain.NewAppError(domain.KindForbidden, "insufficient role", nil))
		c.Abort()
	}
}

// GetClaims returns the token claims stored by Authenticate.
func GetClaims(c *gin.Context) (*pkg.TokenClaims, bool) {
	v, exists := c.Get(claimsContextKey)
	if !exists {
		return nil, false
	}
	claims, ok := v.(*pkg.TokenClaims)
	return claims, ok && claims != nil
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func normalizePath(p string) string {
	p = strings.TrimSpace(p)
	if len(p) > 1 {
		p = strings.TrimRight(p, "/")
	}
	return p
}

func passThrough(c *gin.Context) { c.Next() }
