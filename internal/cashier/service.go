package cashier

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"kot-system/internal/logger"
	"kot-system/internal/models"
	"kot-system/internal/utils"
)

var (
	ErrInvalidTable      = errors.New("table number is required")
	ErrEmptyCart         = errors.New("cart must contain at least one item")
	ErrInvalidQuantity   = errors.New("item quantity must be at least 1")
	ErrShortPayment      = errors.New("received amount is less than the total")
	ErrAlreadyPaid       = errors.New("order already paid")
	ErrOrderNotPending   = errors.New("order is not pending")
	ErrOrderNotPaid      = errors.New("refunds require a paid order")
	ErrInvalidRefund     = errors.New("refund amount must be greater than 0")
	ErrRefundExceedsMax  = errors.New("refund amount exceeds the remaining refundable amount")
	ErrAlreadyCancelled  = errors.New("order already cancelled")
)

type DBLayer interface {
	CreateOrder(order *models.Order) error
	GetOrderByID(id int64) (*models.Order, error)
	ListOrders() ([]*models.Order, error)
	ListOrdersByStatus(status models.OrderStatus) ([]*models.Order, error)
	ListPaidSince(cutoff time.Time) ([]*models.Order, error)
	UpdateOrderStatus(order *models.Order) error
	ApplyRefund(order *models.Order) error
	OccupySeats(tableNumber int, seatNumbers []string) error
}

type SeatHolder interface {
	ReleaseSeats(tableNumber int, seatNumbers []string) error
}

type KafkaPublisher interface {
	PublishOrderCreated(order *models.Order) error
	PublishOrderPaid(order *models.Order) error
	PublishOrderCancelled(order *models.Order) error
	PublishOrderRefunded(order *models.Order) error
}

type TicketPrinter interface {
	PrintPaidOrder(order *models.Order) error
}

type EventEmitter interface {
	Emit(event models.OrderEvent)
}

// OrderService owns the order lifecycle: pending on create, paid on cashier
// confirmation, refunds tracked as a running total while paid.
type OrderService struct {
	DB      DBLayer
	Seats   SeatHolder
	Kafka   KafkaPublisher
	Printer TicketPrinter
	Emitter EventEmitter
	logger  *logger.Logger
	now     func() time.Time
}

func NewOrderService(db DBLayer, seats SeatHolder, kafka KafkaPublisher, printer TicketPrinter, emitter EventEmitter, log *logger.Logger) *OrderService {
	return &OrderService{
		DB:      db,
		Seats:   seats,
		Kafka:   kafka,
		Printer: printer,
		Emitter: emitter,
		logger:  log,
		now:     time.Now,
	}
}

// PlaceOrder validates the request, snapshots item prices, computes the
// authoritative amounts and stores the order as pending. The client's
// total_amount is advisory; the stored total is recomputed here.
func (s *OrderService) PlaceOrder(req models.CreateOrderRequest) (*models.Order, error) {
	if req.TableNumber < 1 {
		return nil, ErrInvalidTable
	}
	if len(req.Cart) == 0 {
		return nil, ErrEmptyCart
	}

	items := make([]*models.OrderItem, 0, len(req.Cart))
	total := decimal.Zero
	for _, line := range req.Cart {
		if line.Quantity < 1 {
			return nil, fmt.Errorf("%w: %s", ErrInvalidQuantity, line.Name)
		}
		item := &models.OrderItem{
			FoodID:   line.FoodID,
			Name:     line.Name,
			Quantity: line.Quantity,
			Price:    line.Price,
			Category: line.Category,
		}
		if item.Category == "" {
			item.Category = models.CategoryFood
		}
		total = total.Add(item.Subtotal())
		items = append(items, item)
	}

	mode := req.PaymentMode
	if mode == "" {
		mode = models.PaymentCash
	}

	received := req.ReceivedAmount
	if mode != models.PaymentCash {
		// Online payments are always for the exact total.
		received = total
	}
	if received.LessThan(total) {
		return nil, ErrShortPayment
	}

	order := &models.Order{
		TableNumber:    req.TableNumber,
		TableID:        req.TableID,
		SelectedSeats:  req.SelectedSeats,
		TotalAmount:    total,
		ReceivedAmount: received,
		BalanceAmount:  models.Balance(received, total),
		RefundedAmount: decimal.Zero,
		PaymentMode:    mode,
		Status:         models.StatusPending,
		WaiterID:       req.Waiter,
		WaiterName:     req.WaiterName,
		Items:          items,
		CreatedAt:      s.now().UTC(),
	}

	if err := s.DB.CreateOrder(order); err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}

	if len(order.SelectedSeats) > 0 {
		if err := s.DB.OccupySeats(order.TableNumber, order.SelectedSeats); err != nil {
			s.logger.Error("ORDER", fmt.Sprintf("occupy seats for order #%d: %v", order.OrderID, err))
		}
		if s.Seats != nil {
			if err := s.Seats.ReleaseSeats(order.TableNumber, order.SelectedSeats); err != nil {
				s.logger.Warn("ORDER", fmt.Sprintf("release seat holds for order #%d: %v", order.OrderID, err))
			}
		}
	}

	s.logger.LogOrder("CREATE", order.OrderID, fmt.Sprintf("table %d, %s, total %s", order.TableNumber, order.PaymentMode, order.TotalAmount))
	s.publishCreated(order)
	s.emit("order_created", order)

	return order, nil
}

// MarkPaid transitions exactly one pending order to paid. Printing the KOT
// tickets is a side effect: a printer failure is logged, never rolled back.
func (s *OrderService) MarkPaid(id int64) (*models.Order, error) {
	order, err := s.DB.GetOrderByID(id)
	if err != nil {
		return nil, fmt.Errorf("order %d not found: %w", id, err)
	}
	if order.Status == models.StatusPaid {
		return nil, ErrAlreadyPaid
	}
	if order.Status != models.StatusPending {
		return nil, ErrOrderNotPending
	}

	paidAt := s.now().UTC()
	order.Status = models.StatusPaid
	order.PaidAt = &paidAt
	order.BalanceAmount = models.Balance(order.ReceivedAmount, order.TotalAmount)

	if err := s.DB.UpdateOrderStatus(order); err != nil {
		return nil, fmt.Errorf("mark order %d paid: %w", id, err)
	}

	s.logger.LogOrder("PAID", order.OrderID, fmt.Sprintf("total %s received %s", order.TotalAmount, order.ReceivedAmount))
	s.publishPaid(order)
	s.emit("order_paid", order)

	if s.Printer != nil {
		if err := s.Printer.PrintPaidOrder(order); err != nil {
			s.logger.Error("PRINT", fmt.Sprintf("order #%d: %v", order.OrderID, err))
		}
	}

	return order, nil
}

// CancelOrder voids a pending order. Seats stay as toggled; freeing them is a
// manual cashier action.
func (s *OrderService) CancelOrder(id int64) (*models.Order, error) {
	order, err := s.DB.GetOrderByID(id)
	if err != nil {
		return nil, fmt.Errorf("order %d not found: %w", id, err)
	}
	if order.Status == models.StatusCancelled {
		return nil, ErrAlreadyCancelled
	}
	if order.Status != models.StatusPending {
		return nil, ErrOrderNotPending
	}

	cancelledAt := s.now().UTC()
	order.Status = models.StatusCancelled
	order.CancelledAt = &cancelledAt

	if err := s.DB.UpdateOrderStatus(order); err != nil {
		return nil, fmt.Errorf("cancel order %d: %w", id, err)
	}

	s.logger.LogOrder("CANCEL", order.OrderID, "order cancelled")
	s.publishCancelled(order)
	s.emit("order_cancelled", order)

	return order, nil
}

// Refund adds amount to the order's refund running total. Only paid orders
// can be refunded, and never past the total. There is no refund history,
// only the running total; full-vs-partial is derived from the amounts.
func (s *OrderService) Refund(id int64, amount decimal.Decimal, reason string) (*models.RefundResponse, error) {
	order, err := s.DB.GetOrderByID(id)
	if err != nil {
		return nil, fmt.Errorf("order %d not found: %w", id, err)
	}
	if order.Status != models.StatusPaid {
		return nil, ErrOrderNotPaid
	}
	if !amount.IsPositive() {
		return nil, ErrInvalidRefund
	}
	remaining := order.RemainingRefundable()
	if amount.GreaterThan(remaining) {
		return nil, fmt.Errorf("%w: max refundable %s", ErrRefundExceedsMax, remaining)
	}

	if reason == "" {
		reason = "Customer request"
	}

	refundedAt := s.now().UTC()
	order.RefundedAmount = order.RefundedAmount.Add(amount)
	order.RefundReason = reason
	order.RefundedAt = &refundedAt

	if err := s.DB.ApplyRefund(order); err != nil {
		return nil, fmt.Errorf("refund order %d: %w", id, err)
	}

	s.logger.LogOrder("REFUND", order.OrderID,
		fmt.Sprintf("%s refunded %s of %s (%s)", utils.GenerateRefundRef(), amount, order.TotalAmount, reason))
	s.publishRefunded(order)
	s.emit("order_refunded", order)

	return &models.RefundResponse{
		Message:         "Refund processed successfully",
		RefundedAmount:  order.RefundedAmount,
		RemainingAmount: order.RemainingRefundable(),
		IsFullyRefunded: order.RefundState() == models.RefundFull,
	}, nil
}

func (s *OrderService) GetOrder(id int64) (*models.Order, error) {
	return s.DB.GetOrderByID(id)
}

func (s *OrderService) ListOrders() ([]*models.Order, error) {
	return s.DB.ListOrders()
}

func (s *OrderService) PendingOrders() ([]*models.Order, error) {
	return s.DB.ListOrdersByStatus(models.StatusPending)
}

// TodayCollection sums today's paid totals per payment mode. The day boundary
// is the server's local midnight, matching the cashier's shift.
func (s *OrderService) TodayCollection() (*models.CollectionSummary, error) {
	now := s.now()
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	orders, err := s.DB.ListPaidSince(midnight)
	if err != nil {
		return nil, fmt.Errorf("load today's paid orders: %w", err)
	}

	summary := &models.CollectionSummary{
		Total: decimal.Zero,
		Cash:  decimal.Zero,
		Card:  decimal.Zero,
		UPI:   decimal.Zero,
	}
	for _, order := range orders {
		summary.Total = summary.Total.Add(order.TotalAmount)
		switch order.PaymentMode {
		case models.PaymentCash:
			summary.Cash = summary.Cash.Add(order.TotalAmount)
		case models.PaymentCard:
			summary.Card = summary.Card.Add(order.TotalAmount)
		case models.PaymentUPI:
			summary.UPI = summary.UPI.Add(order.TotalAmount)
		}
	}
	return summary, nil
}

// Kafka publish failures are logged, never surfaced to the user action.
// A nil publisher means kafka is disabled in config.
func (s *OrderService) publishCreated(order *models.Order) {
	if s.Kafka == nil {
		return
	}
	if err := s.Kafka.PublishOrderCreated(order); err != nil {
		s.logger.Error("KAFKA", fmt.Sprintf("publish order created for #%d: %v", order.OrderID, err))
	}
}

func (s *OrderService) publishPaid(order *models.Order) {
	if s.Kafka == nil {
		return
	}
	if err := s.Kafka.PublishOrderPaid(order); err != nil {
		s.logger.Error("KAFKA", fmt.Sprintf("publish order paid for #%d: %v", order.OrderID, err))
	}
}

func (s *OrderService) publishCancelled(order *models.Order) {
	if s.Kafka == nil {
		return
	}
	if err := s.Kafka.PublishOrderCancelled(order); err != nil {
		s.logger.Error("KAFKA", fmt.Sprintf("publish order cancelled for #%d: %v", order.OrderID, err))
	}
}

func (s *OrderService) publishRefunded(order *models.Order) {
	if s.Kafka == nil {
		return
	}
	if err := s.Kafka.PublishOrderRefunded(order); err != nil {
		s.logger.Error("KAFKA", fmt.Sprintf("publish order refunded for #%d: %v", order.OrderID, err))
	}
}

func (s *OrderService) emit(eventType string, order *models.Order) {
	if s.Emitter == nil {
		return
	}
	s.Emitter.Emit(models.OrderEvent{
		Type:      eventType,
		Order:     order,
		Timestamp: s.now().UTC(),
	})
}
