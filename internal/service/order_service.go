package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/storefront/backend/internal/apperr"
	"github.com/storefront/backend/internal/events"
	"github.com/storefront/backend/internal/models"
	"github.com/storefront/backend/internal/pricing"
	"github.com/storefront/backend/internal/repository"
)

// OrderService handles order business logic
type OrderService struct {
	products  repository.ProductRepository
	orders    repository.OrderRepository
	users     repository.UserRepository
	publisher events.Publisher
	log       *slog.Logger
	now       func() time.Time

	// publishTimeout bounds one event publication. Publishing runs after
	// the response is decided and never holds up the caller.
	publishTimeout time.Duration
	pending        sync.WaitGroup
}

// DefaultPublishTimeout bounds how long an order event may wait on the broker.
const DefaultPublishTimeout = 5 * time.Second

// NewOrderService creates a new order service
func NewOrderService(products repository.ProductRepository, orders repository.OrderRepository, users repository.UserRepository, publisher events.Publisher, log *slog.Logger) *OrderService {
	if publisher == nil {
		publisher = events.Noop{}
	}
	return &OrderService{
		products:  products,
		orders:    orders,
		users:     users,
		publisher: publisher,
		log:       log,
		now:       func() time.Time { return time.Now().UTC() },

		publishTimeout: DefaultPublishTimeout,
	}
}

// CreateOrder places an order for userID: normalize items, check stock,
// price from product records, then store the order and take the stock in one
// unit of work.
func (s *OrderService) CreateOrder(ctx context.Context, userID string, req models.OrderRequest) (*models.Order, error) {
	if err := validateCheckout(req); err != nil {
		return nil, err
	}

	items, err := NormalizeItems(req.OrderItems)
	if err != nil {
		return nil, err
	}

	orderItems, err := s.validateStock(ctx, items)
	if err != nil {
		return nil, err
	}

	lines := make([]pricing.Line, 0, len(orderItems))
	for _, item := range orderItems {
		lines = append(lines, pricing.Line{
			UnitPrice: decimal.NewFromFloat(item.Price),
			Quantity:  item.Qty,
		})
	}
	prices := pricing.Calculate(lines)

	now := s.now()
	order := &models.Order{
		ID:              generateID(),
		User:            userID,
		OrderItems:      orderItems,
		ShippingAddress: req.ShippingAddress,
		PaymentMethod:   req.PaymentMethod,
		ItemsPrice:      pricing.Format(prices.Items),
		ShippingPrice:   pricing.Format(prices.Shipping),
		TaxPrice:        pricing.Format(prices.Tax),
		TotalPrice:      pricing.Format(prices.Total),
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := s.orders.Place(ctx, order); err != nil {
		return nil, s.placementError(ctx, err, orderItems)
	}

	s.log.Info("order placed",
		"order_id", order.ID,
		"user_id", userID,
		"items_count", len(order.OrderItems),
		"total_price", order.TotalPrice,
	)
	s.publish(ctx, events.TopicOrderPlaced, order)

	return order, nil
}

// placementError maps a failed commit. A stock conflict here means another
// order took the units after validation passed.
func (s *OrderService) placementError(ctx context.Context, err error, items []models.OrderItem) error {
	var conflict *repository.StockConflictError
	if !errors.As(err, &conflict) {
		return apperr.Persistence(err, "failed to place order")
	}

	name := conflict.ProductID
	for _, item := range items {
		if item.Product == conflict.ProductID {
			name = item.Name
			break
		}
	}

	available := 0
	if p, getErr := s.products.GetByID(ctx, conflict.ProductID); getErr == nil {
		available = p.CountInStock
	}

	s.log.Warn("stock taken by a concurrent order", "product_id", conflict.ProductID, "available", available)
	return apperr.InsufficientStock(name, available)
}

func validateCheckout(req models.OrderRequest) error {
	if len(req.OrderItems) == 0 {
		return apperr.InvalidRequest("No order items provided.")
	}
	if strings.TrimSpace(req.PaymentMethod) == "" {
		return apperr.InvalidRequest("Payment method is required")
	}

	addr := req.ShippingAddress
	for _, field := range []string{addr.Address, addr.City, addr.PostalCode, addr.Country} {
		if strings.TrimSpace(field) == "" {
			return apperr.InvalidRequest("Shipping address must include address, city, postal code and country")
		}
	}
	return nil
}

// GetOrder returns the order by id with the ordering user's name and email.
// Non-admin callers only see their own orders.
func (s *OrderService) GetOrder(ctx context.Context, caller *models.User, id string) (*models.OrderDetails, error) {
	order, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return nil, orderLookupError(err)
	}
	if !caller.IsAdmin && order.User != caller.ID {
		return nil, apperr.NotFound("Order not found")
	}

	details := &models.OrderDetails{Order: *order}
	u, err := s.orderUser(ctx, order.User)
	if err != nil {
		return nil, err
	}
	if u != nil {
		details.User = &models.OrderUser{ID: u.ID, Username: u.Username, Email: u.Email}
	}
	return details, nil
}

// ListUserOrders returns the orders placed by userID.
func (s *OrderService) ListUserOrders(ctx context.Context, userID string) ([]models.Order, error) {
	orders, err := s.orders.ListByUser(ctx, userID)
	if err != nil {
		return nil, apperr.Persistence(err, "failed to list orders")
	}
	return orders, nil
}

// ListOrders returns every order with the ordering user's id and name.
func (s *OrderService) ListOrders(ctx context.Context) ([]models.OrderDetails, error) {
	orders, err := s.orders.ListAll(ctx)
	if err != nil {
		return nil, apperr.Persistence(err, "failed to list orders")
	}

	users := make(map[string]*models.User)
	details := make([]models.OrderDetails, len(orders))
	for i, order := range orders {
		u, seen := users[order.User]
		if !seen {
			if u, err = s.orderUser(ctx, order.User); err != nil {
				return nil, err
			}
			users[order.User] = u
		}

		details[i] = models.OrderDetails{Order: order}
		if u != nil {
			details[i].User = &models.OrderUser{ID: u.ID, Username: u.Username}
		}
	}
	return details, nil
}

// orderUser loads the account that placed an order. A deleted account
// yields nil.
func (s *OrderService) orderUser(ctx context.Context, id string) (*models.User, error) {
	u, err := s.users.GetByID(ctx, id)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return nil, nil
	case err != nil:
		return nil, apperr.Persistence(err, "failed to load order user")
	}
	return u, nil
}

// CountOrders returns the number of orders.
func (s *OrderService) CountOrders(ctx context.Context) (int64, error) {
	n, err := s.orders.Count(ctx)
	if err != nil {
		return 0, apperr.Persistence(err, "failed to count orders")
	}
	return n, nil
}

// TotalSales sums totalPrice over all orders.
func (s *OrderService) TotalSales(ctx context.Context) (string, error) {
	total, err := s.orders.TotalSales(ctx)
	if err != nil {
		return "", apperr.Persistence(err, "failed to sum sales")
	}
	return pricing.Format(total), nil
}

// SalesByDate sums paid orders per calendar day of payment.
func (s *OrderService) SalesByDate(ctx context.Context) ([]models.DailySales, error) {
	sales, err := s.orders.SalesByDate(ctx)
	if err != nil {
		return nil, apperr.Persistence(err, "failed to aggregate sales")
	}
	return sales, nil
}

// MarkPaid records the payment confirmation. Paying again overwrites the
// previous confirmation.
func (s *OrderService) MarkPaid(ctx context.Context, id string, req models.PaymentRequest) (*models.Order, error) {
	result := models.PaymentResult{
		ID:           req.ID,
		Status:       req.Status,
		UpdateTime:   req.UpdateTime,
		EmailAddress: req.Payer.EmailAddress,
	}

	order, err := s.orders.MarkPaid(ctx, id, result, s.now())
	if err != nil {
		return nil, orderLookupError(err)
	}

	s.log.Info("order paid", "order_id", order.ID, "payment_id", result.ID, "status", result.Status)
	s.publish(ctx, events.TopicOrderPaid, order)
	return order, nil
}

// MarkDelivered flags the order delivered. Delivering again refreshes
// deliveredAt.
func (s *OrderService) MarkDelivered(ctx context.Context, id string) (*models.Order, error) {
	order, err := s.orders.MarkDelivered(ctx, id, s.now())
	if err != nil {
		return nil, orderLookupError(err)
	}

	s.log.Info("order delivered", "order_id", order.ID)
	s.publish(ctx, events.TopicOrderDelivered, order)
	return order, nil
}

// publish is best effort: the order is already committed. The event is sent
// in the background on a context detached from the request.
func (s *OrderService) publish(ctx context.Context, topic string, order *models.Order) {
	event := events.OrderEvent{
		OrderID:    order.ID,
		UserID:     order.User,
		TotalPrice: order.TotalPrice,
		Items:      len(order.OrderItems),
		OccurredAt: s.now(),
	}
	ctx = context.WithoutCancel(ctx)

	s.pending.Add(1)
	go func() {
		defer s.pending.Done()

		ctx, cancel := context.WithTimeout(ctx, s.publishTimeout)
		defer cancel()

		if err := s.publisher.Publish(ctx, topic, event.OrderID, event); err != nil {
			s.log.Error("failed to publish order event", "topic", topic, "order_id", event.OrderID, "error", err)
		}
	}()
}

// Wait blocks until every event publication in flight has finished.
func (s *OrderService) Wait() {
	s.pending.Wait()
}

func orderLookupError(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return apperr.NotFound("Order not found")
	}
	return apperr.Persistence(err, "failed to load order")
}

// generateID generates a unique document ID using UUID
func generateID() string {
	return uuid.New().String()
}
