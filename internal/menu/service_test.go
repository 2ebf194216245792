package menu_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"kot-system/internal/logger"
	"kot-system/internal/menu"
	"kot-system/internal/models"
)

type MockDBLayer struct {
	mock.Mock
}

func (m *MockDBLayer) CreateFoodItem(item *models.FoodItem) error {
	args := m.Called(item)
	return args.Error(0)
}

func (m *MockDBLayer) GetFoodItemByID(id int64) (*models.FoodItem, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.FoodItem), args.Error(1)
}

func (m *MockDBLayer) ListFoodItems() ([]*models.FoodItem, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.FoodItem), args.Error(1)
}

func (m *MockDBLayer) ListFoodItemsByCategory(category models.FoodCategory) ([]*models.FoodItem, error) {
	args := m.Called(category)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.FoodItem), args.Error(1)
}

func (m *MockDBLayer) UpdateFoodItem(item *models.FoodItem) error {
	args := m.Called(item)
	return args.Error(0)
}

func (m *MockDBLayer) UpdateStockStatus(id int64, status models.StockStatus) error {
	args := m.Called(id, status)
	return args.Error(0)
}

func (m *MockDBLayer) DeleteFoodItem(id int64) error {
	args := m.Called(id)
	return args.Error(0)
}

func (m *MockDBLayer) CreateSubCategory(sub *models.SubCategory) error {
	args := m.Called(sub)
	return args.Error(0)
}

func (m *MockDBLayer) ListSubCategories() ([]*models.SubCategory, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.SubCategory), args.Error(1)
}

func validItem() *models.FoodItem {
	return &models.FoodItem{
		Name:     "Paneer Tikka",
		Price:    decimal.RequireFromString("180"),
		Category: models.CategoryFood,
	}
}

func TestCreateItemValidation(t *testing.T) {
	mockDB := new(MockDBLayer)
	svc := menu.NewMenuService(mockDB, logger.NewTestLogger())

	item := validItem()
	item.Name = ""
	assert.ErrorIs(t, svc.CreateItem(item), menu.ErrNameRequired)

	item = validItem()
	item.Price = decimal.Zero
	assert.ErrorIs(t, svc.CreateItem(item), menu.ErrInvalidPrice)

	item = validItem()
	item.Category = "dessert"
	assert.ErrorIs(t, svc.CreateItem(item), menu.ErrBadCategory)

	item = validItem()
	item.AvailableFrom = "07:00"
	assert.ErrorIs(t, svc.CreateItem(item), menu.ErrBadTimeWindow)

	item = validItem()
	item.AvailableFrom = "7am"
	item.AvailableUntil = "11:00"
	assert.ErrorIs(t, svc.CreateItem(item), menu.ErrBadTimeWindow)

	mockDB.AssertNotCalled(t, "CreateFoodItem", mock.Anything)
}

func TestCreateItemDefaultsStock(t *testing.T) {
	mockDB := new(MockDBLayer)
	svc := menu.NewMenuService(mockDB, logger.NewTestLogger())

	mockDB.On("CreateFoodItem", mock.AnythingOfType("*models.FoodItem")).Return(nil)

	item := validItem()
	assert.NoError(t, svc.CreateItem(item))
	assert.Equal(t, models.StockIn, item.StockStatus)
	assert.False(t, item.CreatedAt.IsZero())
	mockDB.AssertExpectations(t)
}

func TestSetStockStatus(t *testing.T) {
	mockDB := new(MockDBLayer)
	svc := menu.NewMenuService(mockDB, logger.NewTestLogger())

	mockDB.On("GetFoodItemByID", int64(3)).Return(validItem(), nil)
	mockDB.On("UpdateStockStatus", int64(3), models.StockOut).Return(nil)

	assert.NoError(t, svc.SetStockStatus(3, models.StockOut))
	assert.ErrorIs(t, svc.SetStockStatus(3, "sold_out"), menu.ErrBadStock)
	mockDB.AssertExpectations(t)
}

func TestOrderableItemsFiltersStockAndWindow(t *testing.T) {
	mockDB := new(MockDBLayer)
	svc := menu.NewMenuService(mockDB, logger.NewTestLogger())

	items := []*models.FoodItem{
		{Name: "All Day", Category: models.CategoryFood, StockStatus: models.StockIn},
		{Name: "Out Of Stock", Category: models.CategoryFood, StockStatus: models.StockOut},
		{Name: "Breakfast Only", Category: models.CategoryFood, StockStatus: models.StockIn, AvailableFrom: "07:00", AvailableUntil: "11:00"},
		{Name: "Low Stock", Category: models.CategoryFood, StockStatus: models.StockLow},
	}
	mockDB.On("ListFoodItems").Return(items, nil)

	got, err := svc.OrderableItems("")
	assert.NoError(t, err)

	names := make([]string, 0, len(got))
	for _, item := range got {
		names = append(names, item.Name)
	}
	// Out-of-stock is never orderable. Low stock still is.
	assert.Contains(t, names, "All Day")
	assert.Contains(t, names, "Low Stock")
	assert.NotContains(t, names, "Out Of Stock")
}

func TestAvailableAtWindow(t *testing.T) {
	at := func(hhmm string) time.Time {
		parsed, _ := time.Parse("15:04", hhmm)
		return time.Date(2026, 3, 14, parsed.Hour(), parsed.Minute(), 0, 0, time.UTC)
	}

	breakfast := &models.FoodItem{AvailableFrom: "07:00", AvailableUntil: "11:00"}
	assert.True(t, breakfast.AvailableAt(at("08:30")))
	assert.False(t, breakfast.AvailableAt(at("12:00")))
	assert.True(t, breakfast.AvailableAt(at("11:00")), "window end is inclusive")

	// Window wrapping midnight.
	lateNight := &models.FoodItem{AvailableFrom: "22:00", AvailableUntil: "02:00"}
	assert.True(t, lateNight.AvailableAt(at("23:30")))
	assert.True(t, lateNight.AvailableAt(at("01:00")))
	assert.False(t, lateNight.AvailableAt(at("12:00")))

	// Empty window means always available.
	always := &models.FoodItem{}
	assert.True(t, always.AvailableAt(at("03:00")))
}
