package handler

import (
	"context"
	"io"
	"net/http/httptest"

	"github.com/labstack/echo/v4"

	"github.com/skatepark/skater-profiles/internal/api/middleware"
	"github.com/skatepark/skater-profiles/internal/core/domain"
	"github.com/skatepark/skater-profiles/internal/core/ports"
)

type stubSkaterService struct {
	registerFn      func(ctx context.Context, in ports.RegisterInput) (int64, error)
	loginFn         func(ctx context.Context, email, password string) (string, *domain.Skater, error)
	profileFn       func(ctx context.Context, id int64) (*domain.Skater, error)
	listFn          func(ctx context.Context) ([]*domain.Skater, error)
	updateProfileFn func(ctx context.Context, id int64, in ports.UpdateProfileInput) error
	deleteFn        func(ctx context.Context, id int64, password string) error
	toggleStatusFn  func(ctx context.Context, adminID, targetID int64) (bool, error)
}

func (s *stubSkaterService) Register(ctx context.Context, in ports.RegisterInput) (int64, error) {
	return s.registerFn(ctx, in)
}

func (s *stubSkaterService) Login(ctx context.Context, email, password string) (string, *domain.Skater, error) {
	return s.loginFn(ctx, email, password)
}

func (s *stubSkaterService) Profile(ctx context.Context, id int64) (*domain.Skater, error) {
	return s.profileFn(ctx, id)
}

func (s *stubSkaterService) List(ctx context.Context) ([]*domain.Skater, error) {
	return s.listFn(ctx)
}

func (s *stubSkaterService) UpdateProfile(ctx context.Context, id int64, in ports.UpdateProfileInput) error {
	return s.updateProfileFn(ctx, id, in)
}

func (s *stubSkaterService) Delete(ctx context.Context, id int64, password string) error {
	return s.deleteFn(ctx, id, password)
}

func (s *stubSkaterService) ToggleStatus(ctx context.Context, adminID, targetID int64) (bool, error) {
	return s.toggleStatusFn(ctx, adminID, targetID)
}

func newEcho() *echo.Echo {
	e := echo.New()
	e.Validator = NewValidator()
	return e
}

// newContext builds an echo context, optionally carrying authenticated claims.
func newContext(e *echo.Echo, method, target string, body io.Reader, contentType string, claims *domain.Claims) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(method, target, body)
	if contentType != "" {
		req.Header.Set(echo.HeaderContentType, contentType)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if claims != nil {
		c.Set(middleware.ClaimsContextKey, claims)
	}
	return c, rec
}
