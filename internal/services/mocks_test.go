package services_test

import (
	"time"

	"marketplace/internal/models"

	"github.com/stretchr/testify/mock"
)

// Shared testify mocks for the repository interfaces. Several services
// depend on the same repositories, so the mocks live here instead of in the
// individual test files.

// MockUserRepository is a mock implementation of repositories.UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(user *models.User) error {
	args := m.Called(user)
	return args.Error(0)
}

func (m *MockUserRepository) GetByUsername(username string) (*models.User, error) {
	args := m.Called(username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetByEmail(email string) (*models.User, error) {
	args := m.Called(email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetByID(id string) (*models.User, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) Update(user *models.User) error {
	args := m.Called(user)
	return args.Error(0)
}

func (m *MockUserRepository) Delete(id string) error {
	args := m.Called(id)
	return args.Error(0)
}

// MockItemRepository is a mock implementation of repositories.ItemRepository
type MockItemRepository struct {
	mock.Mock
}

func (m *MockItemRepository) GetAll() ([]models.Item, error) {
	args := m.Called()
	return args.Get(0).([]models.Item), args.Error(1)
}

func (m *MockItemRepository) GetByID(id string) (*models.Item, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Item), args.Error(1)
}

func (m *MockItemRepository) GetByUser(userID string) ([]models.Item, error) {
	args := m.Called(userID)
	return args.Get(0).([]models.Item), args.Error(1)
}

func (m *MockItemRepository) GetByCategory(categoryID string) ([]models.Item, error) {
	args := m.Called(categoryID)
	return args.Get(0).([]models.Item), args.Error(1)
}

func (m *MockItemRepository) SearchByDescription(keyword string) ([]models.Item, error) {
	args := m.Called(keyword)
	return args.Get(0).([]models.Item), args.Error(1)
}

func (m *MockItemRepository) GetByPriceRange(minPrice, maxPrice float64) ([]models.Item, error) {
	args := m.Called(minPrice, maxPrice)
	return args.Get(0).([]models.Item), args.Error(1)
}

func (m *MockItemRepository) Create(item *models.Item) error {
	args := m.Called(item)
	return args.Error(0)
}

func (m *MockItemRepository) Update(item *models.Item) error {
	args := m.Called(item)
	return args.Error(0)
}

func (m *MockItemRepository) Delete(id string) error {
	args := m.Called(id)
	return args.Error(0)
}

func (m *MockItemRepository) Reserve(id, userID string, now time.Time) (bool, error) {
	args := m.Called(id, userID, now)
	return args.Bool(0), args.Error(1)
}

func (m *MockItemRepository) ClearReservation(id string) error {
	args := m.Called(id)
	return args.Error(0)
}

func (m *MockItemRepository) SetStatus(id string, status models.ItemStatus) error {
	args := m.Called(id, status)
	return args.Error(0)
}

// MockCategoryRepository is a mock implementation of repositories.CategoryRepository
type MockCategoryRepository struct {
	mock.Mock
}

func (m *MockCategoryRepository) GetAll() ([]models.Category, error) {
	args := m.Called()
	return args.Get(0).([]models.Category), args.Error(1)
}

func (m *MockCategoryRepository) GetByID(id string) (*models.Category, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Category), args.Error(1)
}

func (m *MockCategoryRepository) GetByName(name string) (*models.Category, error) {
	args := m.Called(name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Category), args.Error(1)
}

func (m *MockCategoryRepository) Create(category *models.Category) error {
	args := m.Called(category)
	return args.Error(0)
}

// MockImageRepository is a mock implementation of repositories.ImageRepository
type MockImageRepository struct {
	mock.Mock
}

func (m *MockImageRepository) Create(image *models.Image) error {
	args := m.Called(image)
	return args.Error(0)
}

func (m *MockImageRepository) GetByItem(itemID string) ([]models.Image, error) {
	args := m.Called(itemID)
	return args.Get(0).([]models.Image), args.Error(1)
}

func (m *MockImageRepository) DeleteByItem(itemID string) error {
	args := m.Called(itemID)
	return args.Error(0)
}

// MockFavoriteRepository is a mock implementation of repositories.FavoriteRepository
type MockFavoriteRepository struct {
	mock.Mock
}

func (m *MockFavoriteRepository) Create(favorite *models.Favorite) error {
	args := m.Called(favorite)
	return args.Error(0)
}

func (m *MockFavoriteRepository) GetByUserAndItem(userID, itemID string) (*models.Favorite, error) {
	args := m.Called(userID, itemID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Favorite), args.Error(1)
}

func (m *MockFavoriteRepository) GetByUser(userID string) ([]models.Favorite, error) {
	args := m.Called(userID)
	return args.Get(0).([]models.Favorite), args.Error(1)
}

func (m *MockFavoriteRepository) Delete(userID, itemID string) error {
	args := m.Called(userID, itemID)
	return args.Error(0)
}

// MockMessageRepository is a mock implementation of repositories.MessageRepository
type MockMessageRepository struct {
	mock.Mock
}

func (m *MockMessageRepository) Create(message *models.Message) error {
	args := m.Called(message)
	return args.Error(0)
}

func (m *MockMessageRepository) GetConversation(userID1, userID2, itemID string) ([]models.Message, error) {
	args := m.Called(userID1, userID2, itemID)
	return args.Get(0).([]models.Message), args.Error(1)
}

func (m *MockMessageRepository) GetByUser(userID string) ([]models.Message, error) {
	args := m.Called(userID)
	return args.Get(0).([]models.Message), args.Error(1)
}

// MockOrderRepository is a mock implementation of repositories.OrderRepository
type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) Create(order *models.Order) error {
	args := m.Called(order)
	return args.Error(0)
}

func (m *MockOrderRepository) GetByID(id string) (*models.Order, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Order), args.Error(1)
}

func (m *MockOrderRepository) GetByBuyer(buyerID string) ([]models.Order, error) {
	args := m.Called(buyerID)
	return args.Get(0).([]models.Order), args.Error(1)
}

func (m *MockOrderRepository) UpdateStatus(id string, status models.OrderStatus, transactionID string) error {
	args := m.Called(id, status, transactionID)
	return args.Error(0)
}

// MockFileStore is a mock implementation of storage.FileStore
type MockFileStore struct {
	mock.Mock
}

func (m *MockFileStore) Save(originalName string, data []byte) (string, error) {
	args := m.Called(originalName, data)
	return args.String(0), args.Error(1)
}

func (m *MockFileStore) Path(filename string) (string, error) {
	args := m.Called(filename)
	return args.String(0), args.Error(1)
}

func (m *MockFileStore) Remove(url string) error {
	args := m.Called(url)
	return args.Error(0)
}
