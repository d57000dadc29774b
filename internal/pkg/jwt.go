package pkg

import (
	"errors"
	"strings"
	"time"

	"github.com/simp-lee/jwt"

	"github.com/simp-lee/companyemployees/internal/domain"
)

// TokenClaims is the payload of an access token.
type TokenClaims struct {
	UserName  string
	Roles     []string
	TokenID   string
	ExpiresAt time.Time
}

// HasRole reports whether the claims carry role, ignoring case.
func (c *TokenClaims) HasRole(role string) bool {
	for _, r := range c.Roles {
		if strings.EqualFold(r, role) {
			return true
		}
	}
	return false
}

// JWTOptions configures token signing and validation.
type JWTOptions struct {
	Secret   string
	Issuer   string
	Audience string
	Expiry   time.Duration
	// Now overrides the clock. Nil means time.Now.
	Now func() time.Time
}

type clockFunc func() time.Time

func (f clockFunc) Now() time.Time { return f() }

// JWT issues and validates HS256 access tokens bound to one issuer and audience.
type JWT struct {
	svc    jwt.Service
	expiry time.Duration
}

// NewJWT creates a JWT with the given options. Close releases it.
func NewJWT(opts JWTOptions) (*JWT, error) {
	if strings.TrimSpace(opts.Secret) == "" {
		return nil, errors.New("jwt secret is required")
	}
	if opts.Expiry <= 0 {
		return nil, errors.New("jwt expiry must be positive")
	}

	jwtOpts := []jwt.Option{
		jwt.WithMaxTokenLifetime(opts.Expiry),
		jwt.WithUserRevocationTTL(max(opts.Expiry, jwt.DefaultUserRevocationTTL)),
	}
	if opts.Issuer != "" {
		jwtOpts = append(jwtOpts, jwt.WithIssuer(opts.Issuer))
	}
	if opts.Audience != "" {
		jwtOpts = append(jwtOpts, jwt.WithAudience(opts.Audience))
	}
	if opts.Now != nil {
		jwtOpts = append(jwtOpts, jwt.WithClock(clockFunc(opts.Now)))
	}

	svc, err := jwt.New(opts.Secret, jwtOpts...)
	if err != nil {
		return nil, err
	}
	return &JWT{svc: svc, expiry: opts.Expiry}, nil
}

// Generate signs a token for userName. It returns the token and its expiry time.
func (j *JWT) Generate(userName string, roles []string) (string, time.Time, error) {
	token, err := j.svc.GenerateToken(userName, roles, j.expiry)
	if err != nil {
		return "", time.Time{}, err
	}
	parsed, err := j.svc.ParseToken(token)
	if err != nil {
		return "", time.Time{}, err
	}
	return token, parsed.ExpiresAt, nil
}

// Parse validates the signature, lifetime, issuer and audience of token.
// Any failure is reported as a domain unauthorized error.
func (j *JWT) Parse(token string) (*TokenClaims, error) {
	parsed, err := j.svc.ValidateToken(token)
	if err != nil {
		msg := "invalid token"
		if errors.Is(err, jwt.ErrExpiredToken) {
			msg = "token expired"
		}
		return nil, domain.NewAppError(domain.KindUnauthorized, msg, err)
	}
	return &TokenClaims{
		UserName:  parsed.UserID,
		Roles:     parsed.Roles,
		TokenID:   parsed.TokenID,
		ExpiresAt: parsed.ExpiresAt,
	}, nil
}

// Close stops the background cleanup of the underlying service.
func (j *JWT) Close() {
	if j != nil && j.svc != nil {
		j.svc.Close()
	}
}
