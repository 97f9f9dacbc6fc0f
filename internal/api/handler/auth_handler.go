package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/skatepark/skater-profiles/internal/core/domain"
	"github.com/skatepark/skater-profiles/internal/core/ports"
)

type AuthHandler struct {
	service ports.SkaterService
}

func NewAuthHandler(service ports.SkaterService) *AuthHandler {
	return &AuthHandler{service: service}
}

type loginRequest struct {
	Email    string `json:"email"    form:"email"    validate:"required"`
	Password string `json:"password" form:"password" validate:"required"`
}

type loginResponse struct {
	Message string         `json:"message"`
	Token   string         `json:"token"`
	User    *domain.Skater `json:"usuario"`
}

// Login authenticates a skater and returns a session token.
//
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  loginResponse
// @Failure      400   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid payload"})
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	token, skater, err := h.service.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, loginResponse{
		Message: "login successful",
		Token:   token,
		User:    skater,
	})
}
