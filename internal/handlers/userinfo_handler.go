package handlers

import (
	"errors"

	"marketplace/internal/middleware"
	"marketplace/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

// UserInfoHandler handles HTTP requests for the caller's own profile.
type UserInfoHandler struct {
	userService *services.UserService
	validate    *validator.Validate
}

// NewUserInfoHandler creates a new UserInfoHandler.
func NewUserInfoHandler(userService *services.UserService) *UserInfoHandler {
	return &UserInfoHandler{
		userService: userService,
		validate:    validator.New(),
	}
}

// RegisterRoutes registers the profile routes with the Fiber app.
func (h *UserInfoHandler) RegisterRoutes(router fiber.Router, authRequired fiber.Handler) {
	profileRoutes := router.Group("/userinfo", authRequired)
	profileRoutes.Get("/me", h.HandleGetProfile)
	profileRoutes.Get("/email", h.HandleGetEmail)
	profileRoutes.Put("/username", h.HandleUpdateUsername)
	profileRoutes.Put("/email", h.HandleUpdateEmail)
	profileRoutes.Put("/password", h.HandleUpdatePassword)
}

// HandleGetProfile returns the caller's profile.
func (h *UserInfoHandler) HandleGetProfile(c *fiber.Ctx) error {
	user, err := h.userService.GetUserByID(middleware.CurrentUserID(c))
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"message": "Not authenticated",
		})
	}
	return c.JSON(user.ToResponse())
}

// HandleGetEmail returns only the caller's email address.
func (h *UserInfoHandler) HandleGetEmail(c *fiber.Ctx) error {
	user, err := h.userService.GetUserByID(middleware.CurrentUserID(c))
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"message": "Not authenticated",
		})
	}
	return c.JSON(fiber.Map{
		"email": user.Email,
	})
}

// UpdateUsernameRequest is the body for a username change.
type UpdateUsernameRequest struct {
	NewUsername string `json:"newUsername" validate:"required,min=3,max=100"`
}

// HandleUpdateUsername changes the caller's username.
func (h *UserInfoHandler) HandleUpdateUsername(c *fiber.Ctx) error {
	var req UpdateUsernameRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}
	if err := h.validate.Struct(req); err != nil {
		return validationErrorResponse(c, err)
	}

	user, err := h.userService.GetUserByID(middleware.CurrentUserID(c))
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"message": "Not authenticated",
		})
	}

	if err := h.userService.UpdateUsername(user, req.NewUsername); err != nil {
		if errors.Is(err, services.ErrUsernameTaken) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"message": "Username is already taken",
			})
		}
		logrus.Printf("Error updating username: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not update username",
		})
	}
	return c.JSON(fiber.Map{
		"message": "Username updated successfully",
	})
}

// UpdateEmailRequest is the body for an email change.
type UpdateEmailRequest struct {
	NewEmail string `json:"newEmail" validate:"required,email"`
}

// HandleUpdateEmail changes the caller's email address.
func (h *UserInfoHandler) HandleUpdateEmail(c *fiber.Ctx) error {
	var req UpdateEmailRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}
	if err := h.validate.Struct(req); err != nil {
		return validationErrorResponse(c, err)
	}

	user, err := h.userService.GetUserByID(middleware.CurrentUserID(c))
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"message": "Not authenticated",
		})
	}

	if err := h.userService.UpdateEmail(user, req.NewEmail); err != nil {
		if errors.Is(err, services.ErrEmailTaken) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"message": "Email is already in use",
			})
		}
		logrus.Printf("Error updating email: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not update email",
		})
	}
	return c.JSON(fiber.Map{
		"message": "Email updated successfully",
	})
}

// UpdatePasswordRequest is the body for a password change.
type UpdatePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,min=6"`
}

// HandleUpdatePassword changes the caller's password after verifying the
// current one.
func (h *UserInfoHandler) HandleUpdatePassword(c *fiber.Ctx) error {
	var req UpdatePasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}
	if err := h.validate.Struct(req); err != nil {
		return validationErrorResponse(c, err)
	}

	user, err := h.userService.GetUserByID(middleware.CurrentUserID(c))
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"message": "Not authenticated",
		})
	}

	if err := h.userService.UpdatePassword(user, req.CurrentPassword, req.NewPassword); err != nil {
		if errors.Is(err, services.ErrWrongPassword) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"message": "Current password is incorrect",
			})
		}
		logrus.Printf("Error updating password: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not update password",
		})
	}
	return c.JSON(fiber.Map{
		"message": "Password updated successfully",
	})
}
