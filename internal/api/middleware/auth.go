package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/skatepark/skater-profiles/internal/core/domain"
	"github.com/skatepark/skater-profiles/internal/pkg/metrics"
)

// ClaimsContextKey is the echo context key holding the *domain.Claims of an
// authenticated request.
const ClaimsContextKey = "claims"

// TokenVerifier decodes a session credential.
type TokenVerifier interface {
	Verify(token string) (*domain.Claims, error)
}

// RevocationChecker reports whether a skater's credentials were revoked.
type RevocationChecker interface {
	IsRevoked(ctx context.Context, skaterID int64) (bool, error)
}

// Auth validates the credential carried by the request and injects its
// claims into the context. The "token" query parameter takes precedence over
// the Authorization header.
func Auth(verifier TokenVerifier, revocations RevocationChecker) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw := extractToken(c.Request())
			if raw == "" {
				metrics.AuthRejectionsTotal.WithLabelValues("missing").Inc()
				return echo.NewHTTPError(http.StatusUnauthorized, "protected resource, valid credentials required").
					SetInternal(domain.ErrUnauthenticated)
			}

			claims, err := verifier.Verify(raw)
			if err != nil {
				return rejectToken(err)
			}

			revoked, err := revocations.IsRevoked(c.Request().Context(), claims.ID)
			if err != nil {
				return fmt.Errorf("check revocation: %w", err)
			}
			if revoked {
				metrics.AuthRejectionsTotal.WithLabelValues("revoked").Inc()
				return echo.NewHTTPError(http.StatusUnauthorized, "account no longer active, log in again").
					SetInternal(domain.ErrTokenRevoked)
			}

			c.Set(ClaimsContextKey, claims)
			return next(c)
		}
	}
}

// ClaimsFrom returns the claims stored by Auth.
func ClaimsFrom(c echo.Context) (*domain.Claims, bool) {
	claims, ok := c.Get(ClaimsContextKey).(*domain.Claims)
	return claims, ok && claims != nil
}

func extractToken(r *http.Request) string {
	if t := r.URL.Query().Get("token"); t != "" {
		return t
	}
	parts := strings.SplitN(r.Header.Get("Authorization"), " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

func rejectToken(err error) error {
	switch {
	case errors.Is(err, domain.ErrTokenExpired):
		metrics.AuthRejectionsTotal.WithLabelValues("expired").Inc()
		return echo.NewHTTPError(http.StatusUnauthorized, "token expired, log in again").SetInternal(err)
	case errors.Is(err, domain.ErrTokenSignatureInvalid):
		metrics.AuthRejectionsTotal.WithLabelValues("signature").Inc()
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid token signature").SetInternal(err)
	default:
		metrics.AuthRejectionsTotal.WithLabelValues("malformed").Inc()
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid token, log in again").SetInternal(err)
	}
}
