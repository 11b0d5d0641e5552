package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"marketplace/internal/models"
	"marketplace/internal/repositories"
	"marketplace/internal/storage"

	"github.com/sirupsen/logrus"
)

// Upload is one image file received with an item creation request.
type Upload struct {
	Filename    string
	ContentType string
	AltText     string
	Data        []byte
}

// ItemService handles business logic for listings: catalog queries,
// creation with image storage, deletion, and the reservation policy.
type ItemService struct {
	itemRepo     repositories.ItemRepository
	categoryRepo repositories.CategoryRepository
	imageRepo    repositories.ImageRepository
	files        storage.FileStore
}

// NewItemService creates a new ItemService.
func NewItemService(
	itemRepo repositories.ItemRepository,
	categoryRepo repositories.CategoryRepository,
	imageRepo repositories.ImageRepository,
	files storage.FileStore,
) *ItemService {
	return &ItemService{
		itemRepo:     itemRepo,
		categoryRepo: categoryRepo,
		imageRepo:    imageRepo,
		files:        files,
	}
}

// GetAllItems retrieves all items.
func (s *ItemService) GetAllItems() ([]models.Item, error) {
	return s.itemRepo.GetAll()
}

// GetItemByID retrieves a single item by its ID.
func (s *ItemService) GetItemByID(id string) (*models.Item, error) {
	item, err := s.itemRepo.GetByID(id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("item %s: %w", id, ErrNotFound)
		}
		return nil, err
	}
	return item, nil
}

// GetItemsByUser retrieves all items owned by the user.
func (s *ItemService) GetItemsByUser(userID string) ([]models.Item, error) {
	return s.itemRepo.GetByUser(userID)
}

// GetItemsByCategory retrieves all items in a category.
func (s *ItemService) GetItemsByCategory(categoryID string) ([]models.Item, error) {
	if _, err := s.categoryRepo.GetByID(categoryID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("category %s: %w", categoryID, ErrNotFound)
		}
		return nil, err
	}
	return s.itemRepo.GetByCategory(categoryID)
}

// SearchItems retrieves items whose descriptions contain the keyword.
func (s *ItemService) SearchItems(keyword string) ([]models.Item, error) {
	return s.itemRepo.SearchByDescription(keyword)
}

// GetItemsByPriceRange retrieves items priced within [minPrice, maxPrice].
func (s *ItemService) GetItemsByPriceRange(minPrice, maxPrice float64) ([]models.Item, error) {
	return s.itemRepo.GetByPriceRange(minPrice, maxPrice)
}

// CreateItem publishes a new listing with its images. Image files are
// written to the file store and metadata rows persisted; if any image
// fails, the already-written files and the item row are removed again so a
// half-created listing never survives the request.
func (s *ItemService) CreateItem(params models.ItemParams, uploads []Upload) (*models.Item, error) {
	if _, err := s.categoryRepo.GetByID(params.CategoryID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("category %s: %w", params.CategoryID, ErrBadCategory)
		}
		return nil, err
	}

	for _, upload := range uploads {
		if len(upload.Data) == 0 {
			return nil, fmt.Errorf("file %s is empty: %w", upload.Filename, ErrInvalidImage)
		}
		if !strings.HasPrefix(upload.ContentType, "image/") {
			return nil, fmt.Errorf("file %s has content type %s: %w",
				upload.Filename, upload.ContentType, ErrInvalidImage)
		}
	}

	item := models.NewItem(params)
	if err := s.itemRepo.Create(item); err != nil {
		return nil, err
	}

	var savedURLs []string
	for _, upload := range uploads {
		url, err := s.saveUpload(item.ID, upload)
		if err != nil {
			// Compensating action: a failed image write undoes the whole
			// listing rather than leaving it half-created.
			s.rollbackItem(item.ID, savedURLs)
			return nil, err
		}
		savedURLs = append(savedURLs, url)
	}

	return s.GetItemByID(item.ID)
}

func (s *ItemService) saveUpload(itemID string, upload Upload) (string, error) {
	url, err := s.files.Save(upload.Filename, upload.Data)
	if err != nil {
		return "", fmt.Errorf("failed to store image %s: %w", upload.Filename, err)
	}

	altText := upload.AltText
	if altText == "" {
		altText = upload.Filename
	}
	image := &models.Image{
		ItemID:   itemID,
		ImageURL: url,
		AltText:  altText,
	}
	if err := s.imageRepo.Create(image); err != nil {
		if removeErr := s.files.Remove(url); removeErr != nil {
			logrus.Printf("Failed to remove orphaned upload %s: %v", url, removeErr)
		}
		return "", err
	}
	return url, nil
}

func (s *ItemService) rollbackItem(itemID string, savedURLs []string) {
	for _, url := range savedURLs {
		if err := s.files.Remove(url); err != nil {
			logrus.Printf("Failed to remove upload %s during rollback: %v", url, err)
		}
	}
	if err := s.imageRepo.DeleteByItem(itemID); err != nil {
		logrus.Printf("Failed to delete image rows for item %s during rollback: %v", itemID, err)
	}
	if err := s.itemRepo.Delete(itemID); err != nil {
		logrus.Printf("Failed to delete item %s during rollback: %v", itemID, err)
	}
}

// DeleteItem removes a listing. Only the owning user or an admin may
// delete; image files are removed from the file store as well.
func (s *ItemService) DeleteItem(itemID string, caller *models.User) error {
	item, err := s.GetItemByID(itemID)
	if err != nil {
		return err
	}
	if item.UserID != caller.ID && caller.Role != models.RoleAdmin {
		return fmt.Errorf("item %s belongs to another user: %w", itemID, ErrForbidden)
	}

	for _, image := range item.Images {
		if err := s.files.Remove(image.ImageURL); err != nil {
			logrus.Printf("Failed to remove image file %s: %v", image.ImageURL, err)
		}
	}
	if err := s.imageRepo.DeleteByItem(itemID); err != nil {
		return err
	}
	return s.itemRepo.Delete(itemID)
}

// AssignCategory re-binds an existing item to another category.
func (s *ItemService) AssignCategory(itemID, categoryID string) (*models.Item, error) {
	item, err := s.GetItemByID(itemID)
	if err != nil {
		return nil, err
	}
	if _, err := s.categoryRepo.GetByID(categoryID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("category %s: %w", categoryID, ErrNotFound)
		}
		return nil, err
	}
	item.CategoryID = categoryID
	if err := s.itemRepo.Update(item); err != nil {
		return nil, err
	}
	return item, nil
}

// ReserveItem places a one-hour hold on the item for the user. A live hold
// by anyone (including the caller) is a conflict; an expired hold is taken
// over. There is no background sweep: expired reservations are only reset
// here, on the next attempt.
func (s *ItemService) ReserveItem(itemID, userID string) (*models.Item, error) {
	if _, err := s.GetItemByID(itemID); err != nil {
		return nil, err
	}

	ok, err := s.itemRepo.Reserve(itemID, userID, time.Now())
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("item %s: %w", itemID, ErrAlreadyReserved)
	}

	return s.GetItemByID(itemID)
}

// CancelReservation releases the hold on an item. Only the reserving user
// may cancel.
func (s *ItemService) CancelReservation(itemID, userID string) (*models.Item, error) {
	item, err := s.GetItemByID(itemID)
	if err != nil {
		return nil, err
	}
	if item.ReservedByID == nil || *item.ReservedByID != userID {
		return nil, fmt.Errorf("item %s: %w", itemID, ErrNotReserver)
	}

	if err := s.itemRepo.ClearReservation(itemID); err != nil {
		return nil, err
	}
	return s.GetItemByID(itemID)
}
