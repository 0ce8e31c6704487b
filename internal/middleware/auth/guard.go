package auth

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"stores-api/internal/blocklist"
	"stores-api/internal/tokens"
)

const claimsKey = "claims"

// Guard checks presented bearer tokens before a protected handler runs.
// It is a pure predicate over the token and the blocklist: no side effects
// on success. Checks run in a fixed order: presence, signature, expiry,
// revocation, freshness/type, admin.
type Guard struct {
	Codec     *tokens.Codec
	Blocklist blocklist.Blocklist
}

// ClaimsFrom returns the claims stored by a Require* middleware, or nil when
// the route is unguarded.
func ClaimsFrom(c echo.Context) *tokens.Claims {
	claims, _ := c.Get(claimsKey).(*tokens.Claims)
	return claims
}

func (g *Guard) RequireLogin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if _, err := g.authenticate(c, false); err != nil {
			return err
		}
		return next(c)
	}
}

func (g *Guard) RequireFresh(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		claims, err := g.authenticate(c, false)
		if err != nil {
			return err
		}
		if !claims.Fresh {
			return echo.NewHTTPError(http.StatusUnauthorized, echo.Map{
				"description": "Token is not fresh.",
				"error":       "fresh_token_required",
			})
		}
		return next(c)
	}
}

func (g *Guard) RequireRefresh(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if _, err := g.authenticate(c, true); err != nil {
			return err
		}
		return next(c)
	}
}

// RequireAdmin gates destructive admin operations: the token must be fresh
// and carry the admin claim.
func (g *Guard) RequireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return g.RequireFresh(func(c echo.Context) error {
		if !ClaimsFrom(c).IsAdmin {
			return echo.NewHTTPError(http.StatusUnauthorized, "Admin privilege required.")
		}
		return next(c)
	})
}

func (g *Guard) authenticate(c echo.Context, refresh bool) (*tokens.Claims, error) {
	raw := bearerToken(c)
	if raw == "" {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, echo.Map{
			"description": "Request missing access token.",
			"error":       "authorization_required",
		})
	}

	var claims *tokens.Claims
	var err error
	if refresh {
		claims, err = g.Codec.DecodeRefresh(raw)
	} else {
		claims, err = g.Codec.DecodeAccess(raw)
	}
	if err != nil {
		if errors.Is(err, tokens.ErrExpired) {
			return nil, echo.NewHTTPError(http.StatusUnauthorized, echo.Map{
				"message": "Token has expired.",
				"error":   "token_expired",
			})
		}
		return nil, echo.NewHTTPError(http.StatusUnauthorized, echo.Map{
			"message": "Signature verification failed.",
			"error":   "invalid_token",
		})
	}

	revoked, err := g.Blocklist.IsRevoked(c.Request().Context(), claims.ID)
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if revoked {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, echo.Map{
			"description": "Token has been revoked.",
			"error":       "token_revoked",
		})
	}

	c.Set(claimsKey, claims)
	return claims, nil
}

func bearerToken(c echo.Context) string {
	h := c.Request().Header.Get(echo.HeaderAuthorization)
	if h == "" {
		return ""
	}
	const prefix = "Bearer "
	if !strings.HasPrefix(h, prefix) {
		return ""
	}
	return strings.TrimSpace(h[len(prefix):])
}
