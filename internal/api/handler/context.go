package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/skatepark/skater-profiles/internal/api/middleware"
	"github.com/skatepark/skater-profiles/internal/core/domain"
)

// ctxClaims extracts the claims injected by the Auth middleware. Their
// absence means the route was mounted without Auth, which is answered as an
// unauthenticated request rather than a panic.
func ctxClaims(c echo.Context) (*domain.Claims, error) {
	claims, ok := middleware.ClaimsFrom(c)
	if !ok {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims").
			SetInternal(domain.ErrUnauthenticated)
	}
	return claims, nil
}
