package handlers

import (
	"errors"

	"marketplace/internal/models"
	"marketplace/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

// UserHandler handles HTTP requests for user administration.
type UserHandler struct {
	userService *services.UserService
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(userService *services.UserService) *UserHandler {
	return &UserHandler{
		userService: userService,
	}
}

// RegisterRoutes registers the user administration routes. Lookup requires
// a session; role changes and deletion require the ADMIN role.
func (h *UserHandler) RegisterRoutes(router fiber.Router, authRequired, adminRequired fiber.Handler) {
	userRoutes := router.Group("/users", authRequired)
	userRoutes.Get("/:email", h.HandleGetUserByEmail)
	userRoutes.Delete("/:email", adminRequired, h.HandleDeleteUser)
	userRoutes.Put("/:email/admin", adminRequired, h.HandleMakeAdmin)
	userRoutes.Put("/:email/admin/remove", adminRequired, h.HandleRemoveAdmin)
}

// HandleGetUserByEmail retrieves a user's public profile by email.
func (h *UserHandler) HandleGetUserByEmail(c *fiber.Ctx) error {
	email := c.Params("email")
	user, err := h.userService.GetUserByEmail(email)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"message": "User not found",
			})
		}
		logrus.Printf("Error getting user by email %s: %v", email, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not retrieve user",
		})
	}
	return c.JSON(user.ToResponse())
}

// HandleDeleteUser removes the user behind the email.
func (h *UserHandler) HandleDeleteUser(c *fiber.Ctx) error {
	email := c.Params("email")
	if err := h.userService.DeleteByEmail(email); err != nil {
		if errors.Is(err, services.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"message": "User not found",
			})
		}
		logrus.Printf("Error deleting user %s: %v", email, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not delete user",
		})
	}
	return c.JSON(fiber.Map{
		"message": "User deleted successfully",
	})
}

// HandleMakeAdmin grants the ADMIN role.
func (h *UserHandler) HandleMakeAdmin(c *fiber.Ctx) error {
	return h.setRole(c, models.RoleAdmin, "User role updated to ADMIN successfully")
}

// HandleRemoveAdmin revokes the ADMIN role.
func (h *UserHandler) HandleRemoveAdmin(c *fiber.Ctx) error {
	email := c.Params("email")
	user, err := h.userService.GetUserByEmail(email)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"message": "User not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not retrieve user",
		})
	}
	if user.Role != models.RoleAdmin {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "User is not an admin",
		})
	}
	return h.setRole(c, models.RoleUser, "Admin role removed successfully")
}

func (h *UserHandler) setRole(c *fiber.Ctx, role models.Role, successMessage string) error {
	email := c.Params("email")
	if _, err := h.userService.SetRole(email, role); err != nil {
		if errors.Is(err, services.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"message": "User not found",
			})
		}
		logrus.Printf("Error setting role for user %s: %v", email, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not update user role",
		})
	}
	return c.JSON(fiber.Map{
		"message": successMessage,
	})
}
