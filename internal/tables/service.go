package tables

import (
	"errors"
	"fmt"

	qrcode "github.com/skip2/go-qrcode"

	"kot-system/internal/logger"
	"kot-system/internal/models"
)

var (
	ErrInvalidTableNumber = errors.New("table number must be at least 1")
	ErrInvalidSeatCount   = errors.New("total seats must be at least 1")
	ErrInvalidSeatsPerRow = errors.New("seats per row must be at least 1")
	ErrSeatNotFound       = errors.New("seat not found on table")
)

type DBLayer interface {
	CreateTable(table *models.RestaurantTable) error
	GetTableByID(id int64) (*models.RestaurantTable, error)
	GetTableByNumber(number int) (*models.RestaurantTable, error)
	ListTables() ([]*models.RestaurantTable, error)
	DeleteTable(id int64) error
	SetSeatAvailability(tableNumber int, seatNumber string, available bool) error
	GetSeat(tableNumber int, seatNumber string) (*models.TableSeat, error)
}

// TableService manages the floor layout: tables, their seat grids and seat
// availability.
type TableService struct {
	DB          DBLayer
	logger      *logger.Logger
	menuBaseURL string
}

func NewTableService(db DBLayer, log *logger.Logger, menuBaseURL string) *TableService {
	return &TableService{DB: db, logger: log, menuBaseURL: menuBaseURL}
}

// CreateTable builds the seat grid from the requested layout. Rows are
// lettered A, B, C... and seats within a row are numbered, so a 6-seat table
// with 3 per row gets A1 A2 A3 B1 B2 B3.
func (s *TableService) CreateTable(req models.CreateTableRequest) (*models.RestaurantTable, error) {
	if req.TableNumber < 1 {
		return nil, ErrInvalidTableNumber
	}
	if req.TotalSeats < 1 {
		return nil, ErrInvalidSeatCount
	}
	if req.SeatsPerRow < 1 {
		return nil, ErrInvalidSeatsPerRow
	}

	table := &models.RestaurantTable{
		TableNumber: req.TableNumber,
		TotalSeats:  req.TotalSeats,
		SeatsPerRow: req.SeatsPerRow,
		Seats:       GenerateSeats(req.TotalSeats, req.SeatsPerRow),
	}

	if err := s.DB.CreateTable(table); err != nil {
		return nil, fmt.Errorf("create table %d: %w", req.TableNumber, err)
	}
	s.logger.Info("TABLES", fmt.Sprintf("created table %d with %d seats", table.TableNumber, table.TotalSeats))
	return table, nil
}

// GenerateSeats lays out the seat labels for a table.
func GenerateSeats(totalSeats, seatsPerRow int) []*models.TableSeat {
	seats := make([]*models.TableSeat, 0, totalSeats)
	for i := 0; i < totalSeats; i++ {
		row := i / seatsPerRow
		col := i % seatsPerRow
		seats = append(seats, &models.TableSeat{
			RowNumber:   row + 1,
			SeatNumber:  fmt.Sprintf("%c%d", 'A'+row, col+1),
			IsAvailable: true,
		})
	}
	return seats
}

func (s *TableService) GetTable(id int64) (*models.RestaurantTable, error) {
	return s.DB.GetTableByID(id)
}

func (s *TableService) ListTables() ([]*models.RestaurantTable, error) {
	return s.DB.ListTables()
}

// OccupiedTables returns tables with at least one unavailable seat, for the
// floor overview.
func (s *TableService) OccupiedTables() ([]*models.RestaurantTable, error) {
	tables, err := s.DB.ListTables()
	if err != nil {
		return nil, err
	}
	occupied := []*models.RestaurantTable{}
	for _, table := range tables {
		for _, seat := range table.Seats {
			if !seat.IsAvailable {
				occupied = append(occupied, table)
				break
			}
		}
	}
	return occupied, nil
}

func (s *TableService) DeleteTable(id int64) error {
	if _, err := s.DB.GetTableByID(id); err != nil {
		return fmt.Errorf("table %d not found: %w", id, err)
	}
	if err := s.DB.DeleteTable(id); err != nil {
		return fmt.Errorf("delete table %d: %w", id, err)
	}
	s.logger.Info("TABLES", fmt.Sprintf("deleted table #%d", id))
	return nil
}

// ToggleSeat flips a seat between available and occupied and returns the new
// state. Freeing seats after a cancelled order is this same manual action.
func (s *TableService) ToggleSeat(req models.SeatAvailabilityRequest) (*models.TableSeat, error) {
	seat, err := s.DB.GetSeat(req.TableNumber, req.SeatNumber)
	if err != nil {
		return nil, fmt.Errorf("%w: %s on table %d", ErrSeatNotFound, req.SeatNumber, req.TableNumber)
	}

	seat.IsAvailable = !seat.IsAvailable
	if err := s.DB.SetSeatAvailability(req.TableNumber, req.SeatNumber, seat.IsAvailable); err != nil {
		return nil, fmt.Errorf("toggle seat %s on table %d: %w", req.SeatNumber, req.TableNumber, err)
	}

	s.logger.Info("TABLES", fmt.Sprintf("seat %s on table %d -> available=%t", req.SeatNumber, req.TableNumber, seat.IsAvailable))
	return seat, nil
}

// TableQR renders the PNG QR code that links a physical table to the menu
// page. Scanning it opens the menu with the table preselected.
func (s *TableService) TableQR(id int64, size int) ([]byte, error) {
	table, err := s.DB.GetTableByID(id)
	if err != nil {
		return nil, fmt.Errorf("table %d not found: %w", id, err)
	}
	if size <= 0 {
		size = 256
	}
	url := fmt.Sprintf("%s/menu?table=%d", s.menuBaseURL, table.TableNumber)
	png, err := qrcode.Encode(url, qrcode.Medium, size)
	if err != nil {
		return nil, fmt.Errorf("encode QR for table %d: %w", table.TableNumber, err)
	}
	return png, nil
}
