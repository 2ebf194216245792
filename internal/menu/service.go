package menu

import (
	"errors"
	"fmt"
	"time"

	"kot-system/internal/logger"
	"kot-system/internal/models"
)

var (
	ErrNameRequired  = errors.New("food item name is required")
	ErrInvalidPrice  = errors.New("price must be greater than 0")
	ErrBadCategory   = errors.New("category must be food or cafe")
	ErrBadStock      = errors.New("invalid stock status")
	ErrBadTimeWindow = errors.New("serving window must be HH:MM times, both or neither")
)

type DBLayer interface {
	CreateFoodItem(item *models.FoodItem) error
	GetFoodItemByID(id int64) (*models.FoodItem, error)
	ListFoodItems() ([]*models.FoodItem, error)
	ListFoodItemsByCategory(category models.FoodCategory) ([]*models.FoodItem, error)
	UpdateFoodItem(item *models.FoodItem) error
	UpdateStockStatus(id int64, status models.StockStatus) error
	DeleteFoodItem(id int64) error
	CreateSubCategory(sub *models.SubCategory) error
	ListSubCategories() ([]*models.SubCategory, error)
}

// MenuService manages the food catalogue the cashier orders against.
type MenuService struct {
	DB     DBLayer
	logger *logger.Logger
	now    func() time.Time
}

func NewMenuService(db DBLayer, log *logger.Logger) *MenuService {
	return &MenuService{DB: db, logger: log, now: time.Now}
}

func (s *MenuService) CreateItem(item *models.FoodItem) error {
	if err := validateItem(item); err != nil {
		return err
	}
	if item.StockStatus == "" {
		item.StockStatus = models.StockIn
	}
	item.CreatedAt = s.now().UTC()
	item.UpdatedAt = item.CreatedAt

	if err := s.DB.CreateFoodItem(item); err != nil {
		return fmt.Errorf("create food item: %w", err)
	}
	s.logger.Info("MENU", fmt.Sprintf("created item #%d %q (%s)", item.ID, item.Name, item.Category))
	return nil
}

func (s *MenuService) UpdateItem(item *models.FoodItem) error {
	if err := validateItem(item); err != nil {
		return err
	}
	if _, err := s.DB.GetFoodItemByID(item.ID); err != nil {
		return fmt.Errorf("food item %d not found: %w", item.ID, err)
	}
	item.UpdatedAt = s.now().UTC()

	if err := s.DB.UpdateFoodItem(item); err != nil {
		return fmt.Errorf("update food item %d: %w", item.ID, err)
	}
	s.logger.Info("MENU", fmt.Sprintf("updated item #%d %q", item.ID, item.Name))
	return nil
}

// SetStockStatus flips an item's stock flag. out_of_stock items stay on the
// menu but cannot be ordered.
func (s *MenuService) SetStockStatus(id int64, status models.StockStatus) error {
	switch status {
	case models.StockIn, models.StockLow, models.StockOut:
	default:
		return ErrBadStock
	}
	if _, err := s.DB.GetFoodItemByID(id); err != nil {
		return fmt.Errorf("food item %d not found: %w", id, err)
	}
	if err := s.DB.UpdateStockStatus(id, status); err != nil {
		return fmt.Errorf("update stock for item %d: %w", id, err)
	}
	s.logger.Info("MENU", fmt.Sprintf("item #%d stock -> %s", id, status))
	return nil
}

func (s *MenuService) DeleteItem(id int64) error {
	if _, err := s.DB.GetFoodItemByID(id); err != nil {
		return fmt.Errorf("food item %d not found: %w", id, err)
	}
	if err := s.DB.DeleteFoodItem(id); err != nil {
		return fmt.Errorf("delete food item %d: %w", id, err)
	}
	s.logger.Info("MENU", fmt.Sprintf("deleted item #%d", id))
	return nil
}

func (s *MenuService) GetItem(id int64) (*models.FoodItem, error) {
	return s.DB.GetFoodItemByID(id)
}

func (s *MenuService) ListItems(category models.FoodCategory) ([]*models.FoodItem, error) {
	if category == "" {
		return s.DB.ListFoodItems()
	}
	if category != models.CategoryFood && category != models.CategoryCafe {
		return nil, ErrBadCategory
	}
	return s.DB.ListFoodItemsByCategory(category)
}

// OrderableItems filters the menu down to what can go on a ticket right now:
// in stock (or low) and inside the serving window.
func (s *MenuService) OrderableItems(category models.FoodCategory) ([]*models.FoodItem, error) {
	items, err := s.ListItems(category)
	if err != nil {
		return nil, err
	}
	now := s.now()
	orderable := make([]*models.FoodItem, 0, len(items))
	for _, item := range items {
		if item.Orderable(now) {
			orderable = append(orderable, item)
		}
	}
	return orderable, nil
}

func (s *MenuService) CreateSubCategory(sub *models.SubCategory) error {
	if sub.Name == "" {
		return ErrNameRequired
	}
	if sub.Category != models.CategoryFood && sub.Category != models.CategoryCafe {
		return ErrBadCategory
	}
	if err := validateWindow(sub.AvailableFrom, sub.AvailableUntil); err != nil {
		return err
	}
	return s.DB.CreateSubCategory(sub)
}

func (s *MenuService) ListSubCategories() ([]*models.SubCategory, error) {
	return s.DB.ListSubCategories()
}

func validateItem(item *models.FoodItem) error {
	if item.Name == "" {
		return ErrNameRequired
	}
	if !item.Price.IsPositive() {
		return ErrInvalidPrice
	}
	if item.Category != models.CategoryFood && item.Category != models.CategoryCafe {
		return ErrBadCategory
	}
	return validateWindow(item.AvailableFrom, item.AvailableUntil)
}

// validateWindow accepts either an empty window or a pair of HH:MM times.
func validateWindow(from, until string) error {
	if from == "" && until == "" {
		return nil
	}
	if from == "" || until == "" {
		return ErrBadTimeWindow
	}
	for _, v := range []string{from, until} {
		if _, err := time.Parse("15:04", v); err != nil {
			return fmt.Errorf("%w: %q", ErrBadTimeWindow, v)
		}
	}
	return nil
}
