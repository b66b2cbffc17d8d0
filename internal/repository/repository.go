package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/storefront/backend/internal/models"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("duplicate record")
	// ErrStockConflict means a conditional stock decrement found fewer units
	// than requested at commit time.
	ErrStockConflict = errors.New("insufficient stock at commit")
	// ErrInvalidQuantity rejects an order line that would not take stock.
	ErrInvalidQuantity = errors.New("order line quantity must be positive")
)

// StockConflictError names the product whose decrement failed.
type StockConflictError struct {
	ProductID string
}

func (e *StockConflictError) Error() string {
	return fmt.Sprintf("%v: product %s", ErrStockConflict, e.ProductID)
}

func (e *StockConflictError) Is(target error) bool {
	return target == ErrStockConflict
}

// ProductRepository defines the interface for product data access
type ProductRepository interface {
	GetAll(ctx context.Context) ([]models.Product, error)
	GetByID(ctx context.Context, id string) (*models.Product, error)
	// GetByIDs returns the products that exist among ids, in no particular order.
	GetByIDs(ctx context.Context, ids []string) ([]models.Product, error)
	Create(ctx context.Context, p *models.Product) error
	Update(ctx context.Context, p *models.Product) error
	Delete(ctx context.Context, id string) error
}

// OrderRepository defines the interface for order data access
type OrderRepository interface {
	// Place stores the order and decrements stock for every line item as one
	// unit of work. A decrement that would take stock below zero aborts the
	// whole placement with a *StockConflictError.
	Place(ctx context.Context, order *models.Order) error
	GetByID(ctx context.Context, id string) (*models.Order, error)
	ListByUser(ctx context.Context, userID string) ([]models.Order, error)
	ListAll(ctx context.Context) ([]models.Order, error)
	Count(ctx context.Context) (int64, error)
	TotalSales(ctx context.Context) (decimal.Decimal, error)
	SalesByDate(ctx context.Context) ([]models.DailySales, error)
	MarkPaid(ctx context.Context, id string, result models.PaymentResult, at time.Time) (*models.Order, error)
	MarkDelivered(ctx context.Context, id string, at time.Time) (*models.Order, error)
}

// UserRepository defines the interface for user data access. Emails are
// stored lower-cased and are unique.
type UserRepository interface {
	Create(ctx context.Context, u *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Update(ctx context.Context, u *models.User) error
	Delete(ctx context.Context, id string) error
	ListEmails(ctx context.Context) ([]string, error)
}

// CategoryRepository defines the interface for category data access. Names
// are unique.
type CategoryRepository interface {
	Create(ctx context.Context, c *models.Category) error
	GetByID(ctx context.Context, id string) (*models.Category, error)
	List(ctx context.Context) ([]models.Category, error)
	Update(ctx context.Context, c *models.Category) error
	Delete(ctx context.Context, id string) error
}

// Store bundles the repositories of one backing database.
type Store interface {
	Products() ProductRepository
	Orders() OrderRepository
	Users() UserRepository
	Categories() CategoryRepository
	Ping(ctx context.Context) error
}

const salesDateLayout = "2006-01-02"

// SalesDay formats the calendar day an order was paid on.
func SalesDay(t time.Time) string {
	return t.UTC().Format(salesDateLayout)
}
