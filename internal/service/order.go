package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/greenleaf/plant-store-api/internal/dto"
	"github.com/greenleaf/plant-store-api/internal/model"
	"github.com/greenleaf/plant-store-api/internal/repository"
)

// notifyTimeout bounds the post-commit confirmation publish so a slow broker
// can never hold up the response to the client.
const notifyTimeout = 5 * time.Second

// Actor is the request-scoped identity passed into order operations.
// A nil *Actor means an unauthenticated (guest) caller.
type Actor struct {
	ID   uuid.UUID
	Role model.Role
}

func (a *Actor) isAdmin() bool { return a != nil && a.Role == model.RoleAdmin }

// NotificationPublisher delivers mail events to the notification queue.
// Publishing is best-effort: failures are logged by the caller and swallowed.
type NotificationPublisher interface {
	Publish(ctx context.Context, msg model.MailMessage) error
}

type OrderService struct {
	orderRepo repository.OrderRepository
	plantRepo repository.PlantRepository
	catalog   *PlantService
	notifier  NotificationPublisher
	log       *slog.Logger
}

func NewOrderService(
	orderRepo repository.OrderRepository,
	plantRepo repository.PlantRepository,
	catalog *PlantService,
	notifier NotificationPublisher,
	log *slog.Logger,
) *OrderService {
	return &OrderService{
		orderRepo: orderRepo,
		plantRepo: plantRepo,
		catalog:   catalog,
		notifier:  notifier,
		log:       log,
	}
}

// PlaceOrder validates the requested lines against live stock, resolves
// authoritative pricing, and persists the order while decrementing stock in a
// single transaction. Validation failures are evaluated in a fixed order and
// the first one wins; the catalog is never mutated on any failure path.
func (s *OrderService) PlaceOrder(
	ctx context.Context,
	lines []dto.OrderLineRequest,
	info model.DeliveryInfo,
	actor *Actor,
) (*model.Order, error) {
	if len(lines) == 0 {
		return nil, ErrEmptyCart
	}

	plants := make([]*model.Plant, len(lines))
	for i, line := range lines {
		plant, err := s.plantRepo.GetByID(ctx, line.PlantID)
		if err != nil {
			return nil, fmt.Errorf("get plant: %w", err)
		}
		if plant == nil {
			return nil, fmt.Errorf("%w: %s", ErrPlantNotFound, line.PlantID)
		}
		plants[i] = plant
	}

	for i, line := range lines {
		if line.Quantity > plants[i].Stock {
			return nil, &repository.InsufficientStockError{
				PlantID:   line.PlantID,
				Available: plants[i].Stock,
				Requested: line.Quantity,
			}
		}
	}

	if err := validateDeliveryInfo(info); err != nil {
		return nil, err
	}

	total := decimal.Zero
	orderLines := make([]model.OrderLine, len(lines))
	for i, line := range lines {
		unit := ResolveUnitPrice(plants[i])
		var image string
		if len(plants[i].Images) > 0 {
			image = plants[i].Images[0]
		}
		orderLines[i] = model.OrderLine{
			PlantID:   plants[i].ID,
			Name:      plants[i].Name,
			Quantity:  line.Quantity,
			UnitPrice: unit,
			Image:     image,
		}
		total = total.Add(orderLines[i].Subtotal())
	}

	now := time.Now()
	order := &model.Order{
		IsGuestOrder:   actor == nil,
		Lines:          orderLines,
		DeliveryInfo:   info,
		TotalPrice:     total,
		Status:         model.OrderStatusPending,
		DeliveryStatus: model.DeliveryNotAssigned,
		PaidAt:         &now,
	}
	if actor != nil {
		id := actor.ID
		order.UserID = &id
	}

	// The transaction re-checks stock with a conditional decrement, so a
	// concurrent order racing past the validation above still cannot oversell.
	if err := s.orderRepo.Place(ctx, order); err != nil {
		return nil, err
	}

	if s.catalog != nil {
		for _, l := range order.Lines {
			s.catalog.InvalidatePlant(ctx, l.PlantID)
		}
	}

	s.sendConfirmation(order)
	return order, nil
}

// sendConfirmation publishes the order-confirmation event. The order is already
// committed at this point, so a dispatch failure is logged and swallowed.
func (s *OrderService) sendConfirmation(order *model.Order) {
	if s.notifier == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
	defer cancel()

	id := order.ID
	msg := model.MailMessage{
		Kind:      model.MailOrderConfirmation,
		Email:     order.DeliveryInfo.Email,
		FirstName: order.DeliveryInfo.FirstName,
		OrderID:   &id,
	}
	if err := s.notifier.Publish(ctx, msg); err != nil {
		s.log.Error("publish order confirmation", "order_id", order.ID, "error", err)
	}
}

// GetByID enforces order visibility: guest orders are readable by anyone
// holding the id, owned orders only by their owner or an admin.
func (s *OrderService) GetByID(ctx context.Context, orderID uuid.UUID, actor *Actor) (*model.Order, error) {
	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("get order: %w", err)
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	if order.UserID != nil && !actor.isAdmin() {
		if actor == nil || actor.ID != *order.UserID {
			return nil, ErrOrderAccessDenied
		}
	}
	return order, nil
}

func (s *OrderService) ListMine(ctx context.Context, actor Actor) ([]model.Order, error) {
	return s.orderRepo.ListByUserID(ctx, actor.ID)
}

func (s *OrderService) ListAll(ctx context.Context) ([]model.Order, error) {
	return s.orderRepo.ListAll(ctx, 0)
}

// SetStatus applies an admin status change. Transitions are deliberately
// unrestricted; moving to delivered also stamps the delivery timestamp and
// forces the delivery lifecycle to delivered.
func (s *OrderService) SetStatus(ctx context.Context, orderID uuid.UUID, status model.OrderStatus) (*model.Order, error) {
	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("get order: %w", err)
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}

	order.Status = status
	if status == model.OrderStatusDelivered {
		now := time.Now()
		order.DeliveredAt = &now
		order.DeliveryStatus = model.DeliveryDelivered
	}

	if err := s.orderRepo.Update(ctx, order); err != nil {
		return nil, fmt.Errorf("update order: %w", err)
	}
	return order, nil
}

func (s *OrderService) SetDelivery(ctx context.Context, orderID uuid.UUID, req dto.UpdateDeliveryRequest) (*model.Order, error) {
	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("get order: %w", err)
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}

	if req.DeliveryStatus != "" {
		order.DeliveryStatus = req.DeliveryStatus
	}
	if req.DeliveryDriver != nil {
		order.DeliveryDriver = *req.DeliveryDriver
	}
	if req.DeliveryNotes != nil {
		order.DeliveryNotes = *req.DeliveryNotes
	}

	if err := s.orderRepo.Update(ctx, order); err != nil {
		return nil, fmt.Errorf("update order: %w", err)
	}
	return order, nil
}

func (s *OrderService) Dashboard(ctx context.Context) (*repository.DashboardStats, []model.Order, error) {
	stats, err := s.orderRepo.Stats(ctx)
	if err != nil {
		return nil, nil, err
	}
	recent, err := s.orderRepo.ListAll(ctx, 10)
	if err != nil {
		return nil, nil, err
	}
	return stats, recent, nil
}

func validateDeliveryInfo(info model.DeliveryInfo) error {
	switch {
	case info.Email == "":
		return fmt.Errorf("%w: email is required", ErrInvalidDeliveryInfo)
	case info.FirstName == "":
		return fmt.Errorf("%w: first name is required", ErrInvalidDeliveryInfo)
	case info.LastName == "":
		return fmt.Errorf("%w: last name is required", ErrInvalidDeliveryInfo)
	case info.Phone == "":
		return fmt.Errorf("%w: phone is required", ErrInvalidDeliveryInfo)
	case info.Address.Street == "":
		return fmt.Errorf("%w: street is required", ErrInvalidDeliveryInfo)
	case info.Address.City == "":
		return fmt.Errorf("%w: city is required", ErrInvalidDeliveryInfo)
	case info.Address.PostalCode == "":
		return fmt.Errorf("%w: postal code is required", ErrInvalidDeliveryInfo)
	case info.Address.Country == "":
		return fmt.Errorf("%w: country is required", ErrInvalidDeliveryInfo)
	}
	return nil
}
