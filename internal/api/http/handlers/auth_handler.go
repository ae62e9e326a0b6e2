package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/anamaak-service/internal/api/dto"
	"github.com/spec-kit/anamaak-service/internal/auth"
	"github.com/spec-kit/anamaak-service/internal/service"
	"github.com/spec-kit/anamaak-service/pkg/util"
)

// AuthHandler manages account endpoints under /api/auth.
type AuthHandler struct {
	service *service.AuthService
}

// NewAuthHandler constructs handler.
func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{service: authService}
}

// Register POST /api/auth/register.
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return util.NewValidationError("Données invalides", nil)
	}
	if err := dto.Validate(req); err != nil {
		return err
	}

	user, token, err := h.service.Register(c.Context(), req.Email, req.Password, req.Nom)
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusCreated, "Compte créé avec succès", fiber.Map{
		"user":  dto.NewUserResponse(user),
		"token": token,
	})
}

// Login POST /api/auth/login.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return util.NewValidationError("Données invalides", nil)
	}
	if err := dto.Validate(req); err != nil {
		return err
	}

	user, token, err := h.service.Login(c.Context(), req.Email, req.Password)
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, "Connexion réussie", fiber.Map{
		"user":  dto.NewUserResponse(user),
		"token": token,
	})
}

// Logout POST /api/auth/logout.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	token, ok := auth.TokenFromContext(c)
	if !ok {
		return util.NewUnauthorized("Token d'accès requis")
	}
	if err := h.service.Logout(c.Context(), token); err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, "Déconnexion réussie", nil)
}

// Profile GET /api/auth/profile.
func (h *AuthHandler) Profile(c *fiber.Ctx) error {
	principal, ok := auth.UserFromContext(c)
	if !ok {
		return util.NewUnauthorized("Token d'accès requis")
	}

	user, stats, err := h.service.Profile(c.Context(), principal.ID)
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, "", fiber.Map{
		"user":         dto.NewUserResponse(user),
		"statistiques": dto.NewUserStatsResponse(stats),
	})
}

// UpdateProfile PUT /api/auth/profile.
func (h *AuthHandler) UpdateProfile(c *fiber.Ctx) error {
	principal, ok := auth.UserFromContext(c)
	if !ok {
		return util.NewUnauthorized("Token d'accès requis")
	}

	var req dto.UpdateProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return util.NewValidationError("Données invalides", nil)
	}
	if err := dto.Validate(req); err != nil {
		return err
	}

	user, err := h.service.UpdateProfile(c.Context(), principal.ID, req.Nom)
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, "Profil mis à jour avec succès", fiber.Map{
		"user": dto.NewUserResponse(user),
	})
}

// ChangePassword PUT /api/auth/change-password.
func (h *AuthHandler) ChangePassword(c *fiber.Ctx) error {
	principal, ok := auth.UserFromContext(c)
	if !ok {
		return util.NewUnauthorized("Token d'accès requis")
	}

	var req dto.ChangePasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return util.NewValidationError("Données invalides", nil)
	}
	if err := dto.Validate(req); err != nil {
		return err
	}

	if err := h.service.ChangePassword(c.Context(), principal.ID, req.CurrentPassword, req.NewPassword); err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, "Mot de passe modifié avec succès", nil)
}

// Verify GET /api/auth/verify echoes the authenticated account, letting
// clients confirm a stored token is still usable.
func (h *AuthHandler) Verify(c *fiber.Ctx) error {
	principal, ok := auth.UserFromContext(c)
	if !ok {
		return util.NewUnauthorized("Token d'accès requis")
	}
	return respond(c, fiber.StatusOK, "Token valide", fiber.Map{
		"user": dto.NewUserResponse(principal),
	})
}
