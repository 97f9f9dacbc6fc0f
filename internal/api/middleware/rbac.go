package middleware

import (
	"context"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/skatepark/skater-profiles/internal/core/domain"
	"github.com/skatepark/skater-profiles/internal/pkg/metrics"
)

// AdminChecker reports whether a skater holds an active admin role.
type AdminChecker interface {
	IsActiveAdmin(ctx context.Context, skaterID int64) (bool, error)
}

// RequireAdmin lets the request through only for active administrators.
// It must run after Auth.
func RequireAdmin(checker AdminChecker) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			claims, ok := ClaimsFrom(c)
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, "protected resource, valid credentials required").
					SetInternal(domain.ErrUnauthenticated)
			}

			admin, err := checker.IsActiveAdmin(c.Request().Context(), claims.ID)
			if err != nil {
				return fmt.Errorf("check admin role: %w", err)
			}
			if !admin {
				metrics.AuthRejectionsTotal.WithLabelValues("not_admin").Inc()
				return c.JSON(http.StatusForbidden, map[string]string{"error": "you are not an administrator"})
			}
			return next(c)
		}
	}
}
