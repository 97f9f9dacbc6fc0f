package handler

import (
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/skatepark/skater-profiles/internal/core/domain"
	"github.com/skatepark/skater-profiles/internal/core/ports"
)

// SkaterHandler serves the account lifecycle and the JSON views.
type SkaterHandler struct {
	service        ports.SkaterService
	maxUploadBytes int64
}

func NewSkaterHandler(service ports.SkaterService, maxUploadBytes int64) *SkaterHandler {
	return &SkaterHandler{service: service, maxUploadBytes: maxUploadBytes}
}

// --- Request / Response types ---

type registerResponse struct {
	Message string `json:"message"`
	ID      int64  `json:"id"`
}

type updateProfileRequest struct {
	Email           *string `json:"email"            validate:"omitempty,email"`
	Name            *string `json:"nombre"`
	Password        *string `json:"password"`
	YearsExperience *int    `json:"anos_experiencia" validate:"omitempty,gte=0"`
	Specialty       *string `json:"especialidad"`
}

type deleteRequest struct {
	Password string `json:"password" form:"password" validate:"required"`
}

type toggleStatusResponse struct {
	Message string `json:"message"`
	ID      int64  `json:"id"`
	Active  bool   `json:"estado"`
}

type skatersResponse struct {
	Skaters []*domain.Skater `json:"skaters"`
}

type messageResponse struct {
	Message string `json:"message"`
}

// Register creates an account from a multipart form with a profile photo.
//
// @Summary      Register a skater
// @Tags         skaters
// @Accept       multipart/form-data
// @Produce      json
// @Param        email             formData  string  true  "Email"
// @Param        nombre            formData  string  true  "Name"
// @Param        password          formData  string  true  "Password"
// @Param        anos_experiencia  formData  int     true  "Years of experience"
// @Param        especialidad      formData  string  true  "Specialty"
// @Param        imagen            formData  file    true  "Profile photo"
// @Success      201  {object}  registerResponse
// @Failure      400  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /registro [post]
func (h *SkaterHandler) Register(c echo.Context) error {
	req := c.Request()
	req.Body = http.MaxBytesReader(c.Response(), req.Body, h.maxUploadBytes)

	form, err := c.MultipartForm()
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return c.JSON(http.StatusBadRequest, map[string]string{
				"error": fmt.Sprintf("upload exceeds the %d MB limit", h.maxUploadBytes>>20),
			})
		}
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid multipart form"})
	}

	years := -1
	if raw := strings.TrimSpace(c.FormValue("anos_experiencia")); raw != "" {
		years, err = strconv.Atoi(raw)
		if err != nil {
			return fmt.Errorf("%w: anos_experiencia must be a number", domain.ErrValidation)
		}
	}

	in := ports.RegisterInput{
		Email:           strings.TrimSpace(c.FormValue("email")),
		Name:            strings.TrimSpace(c.FormValue("nombre")),
		Password:        c.FormValue("password"),
		YearsExperience: years,
		Specialty:       strings.TrimSpace(c.FormValue("especialidad")),
	}

	if files := form.File["imagen"]; len(files) > 0 {
		image, err := files[0].Open()
		if err != nil {
			return fmt.Errorf("open upload: %w", err)
		}
		defer closeUpload(image)
		in.Image = image
		in.ImageName = files[0].Filename
	}

	id, err := h.service.Register(req.Context(), in)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, registerResponse{Message: "skater registered", ID: id})
}

// UpdateProfile changes the authenticated skater's own data.
//
// @Summary      Update own profile
// @Tags         skaters
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      updateProfileRequest  true  "Fields to change"
// @Success      201   {object}  messageResponse
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /skaters [put]
func (h *SkaterHandler) UpdateProfile(c echo.Context) error {
	claims, err := ctxClaims(c)
	if err != nil {
		return err
	}

	var req updateProfileRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid payload"})
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	err = h.service.UpdateProfile(c.Request().Context(), claims.ID, ports.UpdateProfileInput{
		Email:           req.Email,
		Name:            req.Name,
		Password:        req.Password,
		YearsExperience: req.YearsExperience,
		Specialty:       req.Specialty,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, messageResponse{Message: "profile updated"})
}

// Delete removes the authenticated skater's account after re-checking the password.
//
// @Summary      Delete own account
// @Tags         skaters
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      deleteRequest  true  "Current password"
// @Success      200   {object}  messageResponse
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /skaters [delete]
func (h *SkaterHandler) Delete(c echo.Context) error {
	claims, err := ctxClaims(c)
	if err != nil {
		return err
	}

	var req deleteRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid payload"})
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	if err := h.service.Delete(c.Request().Context(), claims.ID, req.Password); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, messageResponse{Message: "account deleted"})
}

// ToggleStatus flips the review status of another skater. Admins only.
//
// @Summary      Toggle skater status
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        id   query     int  true  "Skater id"
// @Success      201  {object}  toggleStatusResponse
// @Failure      400  {object}  map[string]string
// @Failure      401  {object}  map[string]string
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /skaters/estado [put]
func (h *SkaterHandler) ToggleStatus(c echo.Context) error {
	claims, err := ctxClaims(c)
	if err != nil {
		return err
	}

	raw := strings.TrimSpace(c.QueryParam("id"))
	if raw == "" {
		return fmt.Errorf("%w: id of the skater to update is required", domain.ErrValidation)
	}
	targetID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return fmt.Errorf("%w: id must be a number", domain.ErrValidation)
	}

	active, err := h.service.ToggleStatus(c.Request().Context(), claims.ID, targetID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, toggleStatusResponse{
		Message: "status updated",
		ID:      targetID,
		Active:  active,
	})
}

// Profile returns the authenticated skater's own record.
//
// @Summary      Own profile
// @Tags         skaters
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  domain.Skater
// @Failure      401  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /perfil [get]
func (h *SkaterHandler) Profile(c echo.Context) error {
	claims, err := ctxClaims(c)
	if err != nil {
		return err
	}

	skater, err := h.service.Profile(c.Request().Context(), claims.ID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, skater)
}

// List is the public listing shown on the home page.
//
// @Summary      List skaters
// @Tags         skaters
// @Produce      json
// @Success      200  {object}  skatersResponse
// @Router       /skaters [get]
func (h *SkaterHandler) List(c echo.Context) error {
	return h.list(c)
}

// AdminList is the administrator's view of every account and its status.
//
// @Summary      List skaters for review
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  skatersResponse
// @Failure      401  {object}  map[string]string
// @Failure      403  {object}  map[string]string
// @Router       /admin/skaters [get]
func (h *SkaterHandler) AdminList(c echo.Context) error {
	return h.list(c)
}

func (h *SkaterHandler) list(c echo.Context) error {
	skaters, err := h.service.List(c.Request().Context())
	if err != nil {
		return err
	}
	if skaters == nil {
		skaters = []*domain.Skater{}
	}
	return c.JSON(http.StatusOK, skatersResponse{Skaters: skaters})
}

func closeUpload(f multipart.File) {
	_ = f.Close()
}
