package middleware

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"github.com/99minutos/user-admin/internal/api/metrics"
	"github.com/99minutos/user-admin/internal/core/domain"
)

// HeaderAPIToken carries a user's API token for programmatic callers.
const HeaderAPIToken = "X-API-Token"

// IdentityResolver loads the current, active state of an authenticated caller.
type IdentityResolver interface {
	ResolveAPIToken(ctx context.Context, token string) (*domain.User, error)
	ResolveSubject(ctx context.Context, userID int64) (*domain.User, error)
}

// Auth authenticates the caller with a Bearer JWT or, failing that, an
// X-API-Token header. Either way the user is loaded through users on every
// request, so deleted, deactivated or demoted users lose access immediately;
// roles come from the store, never from the token. It sets "username" and
// "roles" on the echo context and records the caller as the actor on the
// request context.
func Auth(jwtSecret string, users IdentityResolver) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := c.Request().Context()

			var (
				user   *domain.User
				err    error
				method string
			)

			switch authHeader := c.Request().Header.Get("Authorization"); {
			case authHeader != "":
				method = "jwt"
				parts := strings.SplitN(authHeader, " ", 2)
				if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
					return echo.NewHTTPError(http.StatusUnauthorized, "invalid authorization header")
				}

				userID, ok := subject(parts[1], jwtSecret)
				if !ok {
					metrics.ObserveAuth(method, false)
					return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
				}
				user, err = users.ResolveSubject(ctx, userID)

			case c.Request().Header.Get(HeaderAPIToken) != "":
				method = "api_token"
				user, err = users.ResolveAPIToken(ctx, c.Request().Header.Get(HeaderAPIToken))

			default:
				return echo.NewHTTPError(http.StatusUnauthorized, "missing authorization header")
			}

			if err != nil {
				metrics.ObserveAuth(method, false)
				if errors.Is(err, domain.ErrInvalidCredentials) || errors.Is(err, domain.ErrInactiveUser) {
					return echo.NewHTTPError(http.StatusUnauthorized, "invalid credentials")
				}
				return err
			}
			metrics.ObserveAuth(method, true)

			c.Set("username", user.Username)
			c.Set("roles", user.Roles)
			c.SetRequest(c.Request().WithContext(domain.WithActor(ctx, user.Username)))

			return next(c)
		}
	}
}

// subject verifies an HS256 token and returns the user ID in its "sub" claim.
func subject(token, jwtSecret string) (int64, bool) {
	claims := jwt.RegisteredClaims{}
	tkn, err := jwt.ParseWithClaims(token, &claims, func(token *jwt.Token) (interface{}, error) {
		if token.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return []byte(jwtSecret), nil
	})
	if err != nil || !tkn.Valid {
		return 0, false
	}

	id, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
