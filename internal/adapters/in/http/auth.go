package http

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"optideliver/internal/core/domain/model/identity"
	"optideliver/internal/core/domain/model/kernel"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

const principalKey = "principal"

// Claims are the token fields the service reads. The subject is the user id.
// Tokens are issued elsewhere; this service only verifies them.
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// Authenticator verifies HS256 bearer tokens and turns them into principals.
type Authenticator struct {
	secret []byte
	parser *jwt.Parser
}

func NewAuthenticator(secret string) *Authenticator {
	return &Authenticator{
		secret: []byte(secret),
		parser: jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})),
	}
}

// Principal parses an "Authorization: Bearer <token>" header value.
func (a *Authenticator) Principal(header string) (identity.Principal, error) {
	raw, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || strings.TrimSpace(raw) == "" {
		return identity.Principal{}, errors.New("missing bearer token")
	}

	claims := &Claims{}
	token, err := a.parser.ParseWithClaims(strings.TrimSpace(raw), claims, func(*jwt.Token) (any, error) {
		return a.secret, nil
	})
	if err != nil || !token.Valid {
		return identity.Principal{}, fmt.Errorf("invalid token: %w", err)
	}

	userID, err := kernel.UUIDFromString(claims.Subject)
	if err != nil {
		return identity.Principal{}, fmt.Errorf("invalid subject: %w", err)
	}
	return identity.NewPrincipal(userID, identity.Role(claims.Role))
}

// Authenticate rejects requests without a valid token.
func (a *Authenticator) Authenticate(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		p, err := a.Principal(c.Request().Header.Get(echo.HeaderAuthorization))
		if err != nil {
			return echo.NewHTTPError(http.StatusUnauthorized, err.Error())
		}
		c.Set(principalKey, p)
		return next(c)
	}
}

// OptionalAuth attaches a principal when a valid token is present and lets
// anonymous requests through.
func (a *Authenticator) OptionalAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if p, err := a.Principal(c.Request().Header.Get(echo.HeaderAuthorization)); err == nil {
			c.Set(principalKey, p)
		}
		return next(c)
	}
}

// IssueToken signs a token for userID. The service does not issue tokens to
// users; this exists for operators and tests.
func (a *Authenticator) IssueToken(userID kernel.UUID, role identity.Role, claims jwt.RegisteredClaims) (string, error) {
	claims.Subject = userID.String()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{Role: string(role), RegisteredClaims: claims})
	return token.SignedString(a.secret)
}

func principalFrom(c echo.Context) (identity.Principal, bool) {
	p, ok := c.Get(principalKey).(identity.Principal)
	return p, ok
}

func mustPrincipal(c echo.Context) (identity.Principal, error) {
	p, ok := principalFrom(c)
	if !ok {
		return identity.Principal{}, echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}
	return p, nil
}
