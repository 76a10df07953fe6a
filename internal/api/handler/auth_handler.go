package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/lifeofpease/matchmaking-api/internal/core/domain"
	"github.com/lifeofpease/matchmaking-api/internal/core/ports"
)

// AuthHandler handles registration, login and self-service profile routes.
type AuthHandler struct {
	service ports.AuthService
}

func NewAuthHandler(service ports.AuthService) *AuthHandler {
	return &AuthHandler{service: service}
}

// --- Request / Response types ---

type registerRequest struct {
	FirstName    string   `json:"firstname" validate:"required"`
	LastName     string   `json:"lastname" validate:"required"`
	Email        string   `json:"email" validate:"required,email"`
	Password     string   `json:"password" validate:"required,min=8"`
	Gender       string   `json:"gender"`
	PrimaryPhone string   `json:"primary_phone" validate:"required"`
	Tags         []string `json:"tags"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type loginResponse struct {
	Token string `json:"token"`
	User  any    `json:"user"`
}

type updateProfileRequest struct {
	FirstName         *string   `json:"firstname"`
	LastName          *string   `json:"lastname"`
	Gender            *string   `json:"gender"`
	PrimaryPhone      *string   `json:"primary_phone"`
	PhotoURL          *string   `json:"photo_url"`
	Description       *string   `json:"description"`
	Tags              *[]string `json:"tags"`
	YearsOfExperience *int      `json:"years_of_experience"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=8"`
}

// RegisterClient handles POST /api/auth/register/client.
//
// @Summary      Register a client account
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      registerRequest  true  "Registration payload"
// @Success      200   {object}  envelope
// @Router       /api/auth/register/client [post]
func (h *AuthHandler) RegisterClient(c echo.Context) error {
	return h.register(c, h.service.RegisterClient)
}

// RegisterTherapist handles POST /api/auth/register/therapist.
//
// @Summary      Register a therapist account
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      registerRequest  true  "Registration payload"
// @Success      200   {object}  envelope
// @Router       /api/auth/register/therapist [post]
func (h *AuthHandler) RegisterTherapist(c echo.Context) error {
	return h.register(c, h.service.RegisterTherapist)
}

func (h *AuthHandler) register(c echo.Context, fn func(ctx context.Context, in ports.RegisterInput) (*domain.User, error)) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	user, err := fn(c.Request().Context(), ports.RegisterInput{
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Email:        req.Email,
		Password:     req.Password,
		Gender:       req.Gender,
		PrimaryPhone: req.PrimaryPhone,
		TagNames:     req.Tags,
	})
	if err != nil {
		return err
	}

	return sendSuccess(c, user, "Account created.")
}

// Login handles POST /api/auth/login.
//
// @Summary      Authenticate and obtain a JWT
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Credentials"
// @Success      200   {object}  envelope
// @Router       /api/auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	token, user, err := h.service.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return err
	}

	return sendSuccess(c, loginResponse{Token: token, User: user}, "")
}

// Me handles GET /api/auth/me.
//
// @Summary      Fetch the authenticated user's profile
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  envelope
// @Router       /api/auth/me [get]
func (h *AuthHandler) Me(c echo.Context) error {
	cl, err := ctxClaims(c)
	if err != nil {
		return err
	}

	user, err := h.service.Me(c.Request().Context(), cl.UserID)
	if err != nil {
		return err
	}

	return sendSuccess(c, user, "")
}

// UpdateProfile handles PUT /api/auth/profile.
//
// @Summary      Update the authenticated user's profile
// @Tags         auth
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      updateProfileRequest  true  "Fields to change"
// @Success      200   {object}  envelope
// @Router       /api/auth/profile [put]
func (h *AuthHandler) UpdateProfile(c echo.Context) error {
	cl, err := ctxClaims(c)
	if err != nil {
		return err
	}

	var req updateProfileRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	user, err := h.service.UpdateProfile(c.Request().Context(), cl.UserID, cl.Role, ports.ProfileUpdateInput{
		FirstName:         req.FirstName,
		LastName:          req.LastName,
		Gender:            req.Gender,
		PrimaryPhone:      req.PrimaryPhone,
		PhotoURL:          req.PhotoURL,
		Description:       req.Description,
		TagNames:          req.Tags,
		YearsOfExperience: req.YearsOfExperience,
	})
	if err != nil {
		return err
	}

	return sendSuccess(c, user, "Profile updated.")
}

// ChangePassword handles PUT /api/auth/password.
//
// @Summary      Change the authenticated user's password
// @Tags         auth
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      changePasswordRequest  true  "Current and new password"
// @Success      200   {object}  envelope
// @Router       /api/auth/password [put]
func (h *AuthHandler) ChangePassword(c echo.Context) error {
	cl, err := ctxClaims(c)
	if err != nil {
		return err
	}

	var req changePasswordRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	if err := h.service.ChangePassword(c.Request().Context(), cl.UserID, req.CurrentPassword, req.NewPassword); err != nil {
		return err
	}

	return sendSuccess(c, nil, "Password changed.")
}
