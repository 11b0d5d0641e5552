package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"strconv"
	"time"

	"marketplace/internal/middleware"
	"marketplace/internal/models"
	"marketplace/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

// ItemHandler handles HTTP requests for listings, favorites, and
// reservations.
type ItemHandler struct {
	itemService     *services.ItemService
	favoriteService *services.FavoriteService
	userService     *services.UserService
	validate        *validator.Validate
}

// NewItemHandler creates a new ItemHandler.
func NewItemHandler(
	itemService *services.ItemService,
	favoriteService *services.FavoriteService,
	userService *services.UserService,
) *ItemHandler {
	return &ItemHandler{
		itemService:     itemService,
		favoriteService: favoriteService,
		userService:     userService,
		validate:        validator.New(),
	}
}

// RegisterRoutes registers the item routes with the Fiber app. Browsing is
// public; anything that acts on behalf of a user requires a session.
// Literal paths are registered before the /:itemId parameter route.
func (h *ItemHandler) RegisterRoutes(router fiber.Router, authRequired fiber.Handler) {
	itemRoutes := router.Group("/items")
	itemRoutes.Get("/", h.HandleGetItems)
	itemRoutes.Get("/search", h.HandleSearchItems)
	itemRoutes.Get("/price", h.HandleGetItemsByPriceRange)
	itemRoutes.Get("/user", authRequired, h.HandleGetUserItems)
	itemRoutes.Get("/favorites", authRequired, h.HandleGetFavorites)
	itemRoutes.Get("/category/:categoryId", h.HandleGetItemsByCategory)
	itemRoutes.Post("/", authRequired, h.HandleCreateItem)
	itemRoutes.Get("/:itemId", h.HandleGetItemByID)
	itemRoutes.Delete("/:itemId", authRequired, h.HandleDeleteItem)
	itemRoutes.Put("/:itemId/categories", authRequired, h.HandleAssignCategory)
	itemRoutes.Post("/:itemId/favorite", authRequired, h.HandleAddFavorite)
	itemRoutes.Delete("/:itemId/favorite", authRequired, h.HandleRemoveFavorite)
	itemRoutes.Get("/:itemId/is-favorite", authRequired, h.HandleIsFavorite)
	itemRoutes.Post("/:itemId/reserve", authRequired, h.HandleReserveItem)
	itemRoutes.Delete("/:itemId/reserve", authRequired, h.HandleCancelReservation)
}

// ItemResponse is the wire shape for a listing, with the owner embedded
// and image rows flattened to their URLs.
type ItemResponse struct {
	ID               string               `json:"id"`
	Title            string               `json:"title"`
	BriefDescription string               `json:"briefDescription"`
	FullDescription  string               `json:"fullDescription"`
	Price            float64              `json:"price"`
	Latitude         float64              `json:"latitude"`
	Longitude        float64              `json:"longitude"`
	PublishDate      time.Time            `json:"publishDate"`
	Status           models.ItemStatus    `json:"status"`
	CategoryID       string               `json:"categoryId"`
	Owner            *models.UserResponse `json:"owner,omitempty"`
	ImageURLs        []string             `json:"imageUrls"`
	ReservationDate  *time.Time           `json:"reservationDate,omitempty"`
	ReservedByID     *string              `json:"reservedById,omitempty"`
}

func (h *ItemHandler) toItemResponse(item *models.Item, owners map[string]*models.UserResponse) ItemResponse {
	resp := ItemResponse{
		ID:               item.ID,
		Title:            item.Title,
		BriefDescription: item.BriefDescription,
		FullDescription:  item.FullDescription,
		Price:            item.Price,
		Latitude:         item.Latitude,
		Longitude:        item.Longitude,
		PublishDate:      item.PublishDate,
		Status:           item.Status,
		CategoryID:       item.CategoryID,
		ImageURLs:        make([]string, 0, len(item.Images)),
		ReservationDate:  item.ReservationDate,
		ReservedByID:     item.ReservedByID,
	}
	for _, image := range item.Images {
		resp.ImageURLs = append(resp.ImageURLs, image.ImageURL)
	}

	if owner, ok := owners[item.UserID]; ok {
		resp.Owner = owner
	} else if user, err := h.userService.GetUserByID(item.UserID); err == nil {
		view := user.ToResponse()
		owners[item.UserID] = &view
		resp.Owner = &view
	}
	return resp
}

func (h *ItemHandler) toItemResponses(items []models.Item) []ItemResponse {
	owners := make(map[string]*models.UserResponse)
	responses := make([]ItemResponse, 0, len(items))
	for i := range items {
		responses = append(responses, h.toItemResponse(&items[i], owners))
	}
	return responses
}

// HandleGetItems retrieves all items.
func (h *ItemHandler) HandleGetItems(c *fiber.Ctx) error {
	items, err := h.itemService.GetAllItems()
	if err != nil {
		logrus.Printf("Error getting all items: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not retrieve items",
		})
	}
	return c.JSON(h.toItemResponses(items))
}

// HandleGetItemByID retrieves a single item by its ID.
func (h *ItemHandler) HandleGetItemByID(c *fiber.Ctx) error {
	item, err := h.itemService.GetItemByID(c.Params("itemId"))
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"message": "Item not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not retrieve item",
		})
	}
	return c.JSON(h.toItemResponse(item, make(map[string]*models.UserResponse)))
}

// HandleGetUserItems retrieves the caller's own listings.
func (h *ItemHandler) HandleGetUserItems(c *fiber.Ctx) error {
	items, err := h.itemService.GetItemsByUser(middleware.CurrentUserID(c))
	if err != nil {
		logrus.Printf("Error getting user items: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not retrieve items",
		})
	}
	return c.JSON(h.toItemResponses(items))
}

// HandleGetItemsByCategory retrieves all items in a category.
func (h *ItemHandler) HandleGetItemsByCategory(c *fiber.Ctx) error {
	items, err := h.itemService.GetItemsByCategory(c.Params("categoryId"))
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"message": "Category not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not retrieve items",
		})
	}
	return c.JSON(h.toItemResponses(items))
}

// HandleSearchItems retrieves items whose descriptions match ?q=.
func (h *ItemHandler) HandleSearchItems(c *fiber.Ctx) error {
	keyword := c.Query("q")
	if keyword == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Query parameter 'q' is required",
		})
	}
	items, err := h.itemService.SearchItems(keyword)
	if err != nil {
		logrus.Printf("Error searching items: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not search items",
		})
	}
	return c.JSON(h.toItemResponses(items))
}

// HandleGetItemsByPriceRange retrieves items priced within ?min=&max=.
func (h *ItemHandler) HandleGetItemsByPriceRange(c *fiber.Ctx) error {
	minPrice, err := strconv.ParseFloat(c.Query("min", "0"), 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid 'min' query parameter",
		})
	}
	maxPrice, err := strconv.ParseFloat(c.Query("max"), 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid 'max' query parameter",
		})
	}
	items, err := h.itemService.GetItemsByPriceRange(minPrice, maxPrice)
	if err != nil {
		logrus.Printf("Error getting items by price range: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not retrieve items",
		})
	}
	return c.JSON(h.toItemResponses(items))
}

// CreateItemRequest is the JSON part of the multipart item-creation body.
type CreateItemRequest struct {
	Title            string  `json:"title" validate:"required,min=3,max=100"`
	BriefDescription string  `json:"briefDescription" validate:"omitempty,max=255"`
	FullDescription  string  `json:"fullDescription" validate:"omitempty,max=2000"`
	Price            float64 `json:"price" validate:"required,gt=0"`
	Latitude         float64 `json:"latitude" validate:"omitempty,latitude"`
	Longitude        float64 `json:"longitude" validate:"omitempty,longitude"`
	CategoryID       string  `json:"categoryId" validate:"required"`
}

// HandleCreateItem creates a listing from a multipart form carrying an
// `itemData` JSON part and zero or more `images` file parts.
func (h *ItemHandler) HandleCreateItem(c *fiber.Ctx) error {
	form, err := c.MultipartForm()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Expected multipart form data",
			"error":   err.Error(),
		})
	}

	itemData := form.Value["itemData"]
	if len(itemData) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Form field 'itemData' is required",
		})
	}

	var req CreateItemRequest
	if err := json.Unmarshal([]byte(itemData[0]), &req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid itemData JSON",
			"error":   err.Error(),
		})
	}
	if err := h.validate.Struct(req); err != nil {
		return validationErrorResponse(c, err)
	}

	uploads, err := readUploads(form.File["images"])
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Could not read uploaded files",
			"error":   err.Error(),
		})
	}

	params := models.ItemParams{
		Title:            req.Title,
		BriefDescription: req.BriefDescription,
		FullDescription:  req.FullDescription,
		Price:            req.Price,
		Latitude:         req.Latitude,
		Longitude:        req.Longitude,
		UserID:           middleware.CurrentUserID(c),
		CategoryID:       req.CategoryID,
	}

	item, err := h.itemService.CreateItem(params, uploads)
	if err != nil {
		logrus.Printf("Error creating item: %v", err)
		if errors.Is(err, services.ErrBadCategory) || errors.Is(err, services.ErrInvalidImage) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"message": "Could not create item",
				"error":   err.Error(),
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not create item",
			"error":   err.Error(),
		})
	}

	return c.Status(fiber.StatusCreated).JSON(h.toItemResponse(item, make(map[string]*models.UserResponse)))
}

func readUploads(files []*multipart.FileHeader) ([]services.Upload, error) {
	uploads := make([]services.Upload, 0, len(files))
	for _, fileHeader := range files {
		f, err := fileHeader.Open()
		if err != nil {
			return nil, err
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			return nil, err
		}
		uploads = append(uploads, services.Upload{
			Filename:    fileHeader.Filename,
			ContentType: fileHeader.Header.Get("Content-Type"),
			Data:        data,
		})
	}
	return uploads, nil
}

// HandleDeleteItem removes a listing (owner or admin only).
func (h *ItemHandler) HandleDeleteItem(c *fiber.Ctx) error {
	caller, err := h.userService.GetUserByID(middleware.CurrentUserID(c))
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"message": "Not authenticated",
		})
	}

	if err := h.itemService.DeleteItem(c.Params("itemId"), caller); err != nil {
		if errors.Is(err, services.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"message": "Item not found",
			})
		}
		if errors.Is(err, services.ErrForbidden) {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"message": "You may not delete another user's item",
			})
		}
		logrus.Printf("Error deleting item: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not delete item",
		})
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// AssignCategoryRequest is the body for re-binding an item's category.
type AssignCategoryRequest struct {
	CategoryID string `json:"categoryId" validate:"required"`
}

// HandleAssignCategory moves an item into another category.
func (h *ItemHandler) HandleAssignCategory(c *fiber.Ctx) error {
	var req AssignCategoryRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}
	if err := h.validate.Struct(req); err != nil {
		return validationErrorResponse(c, err)
	}

	item, err := h.itemService.AssignCategory(c.Params("itemId"), req.CategoryID)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"message": "Item or category not found",
			})
		}
		logrus.Printf("Error assigning category: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not assign category",
		})
	}
	return c.JSON(h.toItemResponse(item, make(map[string]*models.UserResponse)))
}

// HandleAddFavorite bookmarks an item for the caller. Repeated calls are
// idempotent.
func (h *ItemHandler) HandleAddFavorite(c *fiber.Ctx) error {
	itemID := c.Params("itemId")
	if _, err := h.itemService.GetItemByID(itemID); err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"message": "Item not found",
		})
	}

	favorite, err := h.favoriteService.AddFavorite(middleware.CurrentUserID(c), itemID)
	if err != nil {
		logrus.Printf("Error adding favorite: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not add favorite",
		})
	}
	return c.JSON(favorite)
}

// HandleRemoveFavorite deletes the caller's bookmark of an item.
func (h *ItemHandler) HandleRemoveFavorite(c *fiber.Ctx) error {
	itemID := c.Params("itemId")
	if _, err := h.itemService.GetItemByID(itemID); err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"message": "Item not found",
		})
	}

	if err := h.favoriteService.RemoveFavorite(middleware.CurrentUserID(c), itemID); err != nil {
		logrus.Printf("Error removing favorite: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not remove favorite",
		})
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// HandleIsFavorite reports whether the caller has bookmarked the item.
func (h *ItemHandler) HandleIsFavorite(c *fiber.Ctx) error {
	itemID := c.Params("itemId")
	if _, err := h.itemService.GetItemByID(itemID); err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"message": "Item not found",
		})
	}

	favorited, err := h.favoriteService.IsFavorited(middleware.CurrentUserID(c), itemID)
	if err != nil {
		logrus.Printf("Error checking favorite: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not check favorite",
		})
	}
	return c.JSON(favorited)
}

// HandleGetFavorites retrieves the items the caller has bookmarked.
func (h *ItemHandler) HandleGetFavorites(c *fiber.Ctx) error {
	items, err := h.favoriteService.GetUserFavoriteItems(middleware.CurrentUserID(c))
	if err != nil {
		logrus.Printf("Error getting favorites: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not retrieve favorites",
		})
	}
	return c.JSON(h.toItemResponses(items))
}

// HandleReserveItem places a one-hour hold on the item for the caller.
func (h *ItemHandler) HandleReserveItem(c *fiber.Ctx) error {
	item, err := h.itemService.ReserveItem(c.Params("itemId"), middleware.CurrentUserID(c))
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"message": "Item not found",
			})
		}
		if errors.Is(err, services.ErrAlreadyReserved) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"message": "Item is already reserved",
			})
		}
		logrus.Printf("Error reserving item: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not reserve item",
		})
	}
	return c.JSON(h.toItemResponse(item, make(map[string]*models.UserResponse)))
}

// HandleCancelReservation releases the caller's hold on the item.
func (h *ItemHandler) HandleCancelReservation(c *fiber.Ctx) error {
	item, err := h.itemService.CancelReservation(c.Params("itemId"), middleware.CurrentUserID(c))
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"message": "Item not found",
			})
		}
		if errors.Is(err, services.ErrNotReserver) {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"message": "You are not the reserver of this item",
			})
		}
		logrus.Printf("Error cancelling reservation: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not cancel reservation",
		})
	}
	return c.JSON(h.toItemResponse(item, make(map[string]*models.UserResponse)))
}
