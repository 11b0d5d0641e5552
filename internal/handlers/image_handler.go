package handlers

import (
	"marketplace/internal/storage"

	"github.com/gofiber/fiber/v2"
)

// ImageHandler serves stored item images by file name.
type ImageHandler struct {
	store storage.FileStore
}

// NewImageHandler creates a new ImageHandler.
func NewImageHandler(store storage.FileStore) *ImageHandler {
	return &ImageHandler{store: store}
}

// RegisterRoutes registers the image routes with the Fiber app.
func (h *ImageHandler) RegisterRoutes(router fiber.Router) {
	imageRoutes := router.Group("/images")
	imageRoutes.Get("/:filename", h.HandleGetImage)
}

// HandleGetImage streams a stored image file. Unknown or malformed names
// get a 404.
func (h *ImageHandler) HandleGetImage(c *fiber.Ctx) error {
	path, err := h.store.Path(c.Params("filename"))
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"message": "Image not found",
		})
	}
	return c.SendFile(path)
}
