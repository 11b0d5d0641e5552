package services

import (
	"errors"
	"time"

	"marketplace/internal/models"
	"marketplace/internal/repositories"
)

// FavoriteService handles users bookmarking items.
type FavoriteService struct {
	favoriteRepo repositories.FavoriteRepository
	itemRepo     repositories.ItemRepository
}

// NewFavoriteService creates a new FavoriteService.
func NewFavoriteService(favoriteRepo repositories.FavoriteRepository, itemRepo repositories.ItemRepository) *FavoriteService {
	return &FavoriteService{
		favoriteRepo: favoriteRepo,
		itemRepo:     itemRepo,
	}
}

// AddFavorite bookmarks an item for the user. Adding an already-favorited
// item is idempotent and returns the existing row.
func (s *FavoriteService) AddFavorite(userID, itemID string) (*models.Favorite, error) {
	existing, err := s.favoriteRepo.GetByUserAndItem(userID, itemID)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, repositories.ErrNotFound) {
		return nil, err
	}

	favorite := &models.Favorite{
		UserID:    userID,
		ItemID:    itemID,
		DateAdded: time.Now(),
	}
	if err := s.favoriteRepo.Create(favorite); err != nil {
		return nil, err
	}
	return favorite, nil
}

// RemoveFavorite deletes the bookmark if present; removing an absent
// bookmark is a no-op.
func (s *FavoriteService) RemoveFavorite(userID, itemID string) error {
	return s.favoriteRepo.Delete(userID, itemID)
}

// IsFavorited reports whether the user has bookmarked the item.
func (s *FavoriteService) IsFavorited(userID, itemID string) (bool, error) {
	_, err := s.favoriteRepo.GetByUserAndItem(userID, itemID)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, repositories.ErrNotFound) {
		return false, nil
	}
	return false, err
}

// GetUserFavoriteItems returns the items behind the user's bookmarks.
// Bookmarks whose item has since been deleted are skipped.
func (s *FavoriteService) GetUserFavoriteItems(userID string) ([]models.Item, error) {
	favorites, err := s.favoriteRepo.GetByUser(userID)
	if err != nil {
		return nil, err
	}

	items := make([]models.Item, 0, len(favorites))
	for _, favorite := range favorites {
		item, err := s.itemRepo.GetByID(favorite.ItemID)
		if err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				continue
			}
			return nil, err
		}
		items = append(items, *item)
	}
	return items, nil
}
