package tables_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"kot-system/internal/logger"
	"kot-system/internal/models"
	"kot-system/internal/tables"
)

type MockDBLayer struct {
	mock.Mock
}

func (m *MockDBLayer) CreateTable(table *models.RestaurantTable) error {
	args := m.Called(table)
	return args.Error(0)
}

func (m *MockDBLayer) GetTableByID(id int64) (*models.RestaurantTable, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.RestaurantTable), args.Error(1)
}

func (m *MockDBLayer) GetTableByNumber(number int) (*models.RestaurantTable, error) {
	args := m.Called(number)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.RestaurantTable), args.Error(1)
}

func (m *MockDBLayer) ListTables() ([]*models.RestaurantTable, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.RestaurantTable), args.Error(1)
}

func (m *MockDBLayer) DeleteTable(id int64) error {
	args := m.Called(id)
	return args.Error(0)
}

func (m *MockDBLayer) SetSeatAvailability(tableNumber int, seatNumber string, available bool) error {
	args := m.Called(tableNumber, seatNumber, available)
	return args.Error(0)
}

func (m *MockDBLayer) GetSeat(tableNumber int, seatNumber string) (*models.TableSeat, error) {
	args := m.Called(tableNumber, seatNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.TableSeat), args.Error(1)
}

func newService(db *MockDBLayer) *tables.TableService {
	return tables.NewTableService(db, logger.NewTestLogger(), "http://localhost:3000")
}

func TestGenerateSeats(t *testing.T) {
	seats := tables.GenerateSeats(6, 3)
	assert.Len(t, seats, 6)

	labels := make([]string, 0, len(seats))
	for _, seat := range seats {
		labels = append(labels, seat.SeatNumber)
		assert.True(t, seat.IsAvailable, "new seats start available")
	}
	assert.Equal(t, []string{"A1", "A2", "A3", "B1", "B2", "B3"}, labels)
	assert.Equal(t, 1, seats[0].RowNumber)
	assert.Equal(t, 2, seats[3].RowNumber)

	// A partial last row still gets its seats.
	seats = tables.GenerateSeats(5, 4)
	assert.Len(t, seats, 5)
	assert.Equal(t, "B1", seats[4].SeatNumber)
}

func TestCreateTableValidation(t *testing.T) {
	mockDB := new(MockDBLayer)
	svc := newService(mockDB)

	_, err := svc.CreateTable(models.CreateTableRequest{TableNumber: 0, TotalSeats: 4, SeatsPerRow: 2})
	assert.ErrorIs(t, err, tables.ErrInvalidTableNumber)

	_, err = svc.CreateTable(models.CreateTableRequest{TableNumber: 1, TotalSeats: 0, SeatsPerRow: 2})
	assert.ErrorIs(t, err, tables.ErrInvalidSeatCount)

	_, err = svc.CreateTable(models.CreateTableRequest{TableNumber: 1, TotalSeats: 4, SeatsPerRow: 0})
	assert.ErrorIs(t, err, tables.ErrInvalidSeatsPerRow)

	mockDB.AssertNotCalled(t, "CreateTable", mock.Anything)
}

func TestCreateTableBuildsGrid(t *testing.T) {
	mockDB := new(MockDBLayer)
	svc := newService(mockDB)

	mockDB.On("CreateTable", mock.AnythingOfType("*models.RestaurantTable")).Return(nil)

	table, err := svc.CreateTable(models.CreateTableRequest{TableNumber: 7, TotalSeats: 4, SeatsPerRow: 2})
	assert.NoError(t, err)
	assert.Len(t, table.Seats, 4)
	assert.Equal(t, "B2", table.Seats[3].SeatNumber)
	mockDB.AssertExpectations(t)
}

func TestToggleSeat(t *testing.T) {
	mockDB := new(MockDBLayer)
	svc := newService(mockDB)

	seat := &models.TableSeat{SeatID: 1, SeatNumber: "A1", IsAvailable: true}
	mockDB.On("GetSeat", 4, "A1").Return(seat, nil)
	mockDB.On("SetSeatAvailability", 4, "A1", false).Return(nil)

	got, err := svc.ToggleSeat(models.SeatAvailabilityRequest{TableNumber: 4, SeatNumber: "A1"})
	assert.NoError(t, err)
	assert.False(t, got.IsAvailable)
	mockDB.AssertExpectations(t)
}

func TestOccupiedTables(t *testing.T) {
	mockDB := new(MockDBLayer)
	svc := newService(mockDB)

	all := []*models.RestaurantTable{
		{TableNumber: 1, Seats: []*models.TableSeat{{SeatNumber: "A1", IsAvailable: true}}},
		{TableNumber: 2, Seats: []*models.TableSeat{
			{SeatNumber: "A1", IsAvailable: true},
			{SeatNumber: "A2", IsAvailable: false},
		}},
	}
	mockDB.On("ListTables").Return(all, nil)

	occupied, err := svc.OccupiedTables()
	assert.NoError(t, err)
	assert.Len(t, occupied, 1)
	assert.Equal(t, 2, occupied[0].TableNumber)
}

func TestTableQR(t *testing.T) {
	mockDB := new(MockDBLayer)
	svc := newService(mockDB)

	mockDB.On("GetTableByID", int64(9)).Return(&models.RestaurantTable{TableID: 9, TableNumber: 9}, nil)

	png, err := svc.TableQR(9, 0)
	assert.NoError(t, err)
	assert.NotEmpty(t, png)
	// PNG magic bytes
	assert.True(t, bytes.HasPrefix(png, []byte{0x89, 'P', 'N', 'G'}))
}
