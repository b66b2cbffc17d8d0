package repository

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/storefront/backend/internal/models"
)

// MemoryStore keeps every collection in process memory behind one lock, so
// order placement is trivially atomic. Used by tests and STORE=memory.
type MemoryStore struct {
	mu         sync.RWMutex
	products   map[string]models.Product
	orders     map[string]models.Order
	users      map[string]models.User
	categories map[string]models.Category
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		products:   make(map[string]models.Product),
		orders:     make(map[string]models.Order),
		users:      make(map[string]models.User),
		categories: make(map[string]models.Category),
	}
}

func (s *MemoryStore) Products() ProductRepository    { return memoryProducts{s} }
func (s *MemoryStore) Orders() OrderRepository        { return memoryOrders{s} }
func (s *MemoryStore) Users() UserRepository          { return memoryUsers{s} }
func (s *MemoryStore) Categories() CategoryRepository { return memoryCategories{s} }

func (s *MemoryStore) Ping(ctx context.Context) error { return ctx.Err() }

type memoryProducts struct{ s *MemoryStore }

func (r memoryProducts) GetAll(ctx context.Context) ([]models.Product, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	products := make([]models.Product, 0, len(r.s.products))
	for _, p := range r.s.products {
		products = append(products, p)
	}
	sort.Slice(products, func(i, j int) bool { return products[i].Name < products[j].Name })
	return products, nil
}

func (r memoryProducts) GetByID(ctx context.Context, id string) (*models.Product, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	p, ok := r.s.products[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &p, nil
}

func (r memoryProducts) GetByIDs(ctx context.Context, ids []string) ([]models.Product, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	products := make([]models.Product, 0, len(ids))
	for _, id := range ids {
		if p, ok := r.s.products[id]; ok {
			products = append(products, p)
		}
	}
	return products, nil
}

func (r memoryProducts) Create(ctx context.Context, p *models.Product) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, exists := r.s.products[p.ID]; exists {
		return ErrDuplicate
	}
	r.s.products[p.ID] = *p
	return nil
}

func (r memoryProducts) Update(ctx context.Context, p *models.Product) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, exists := r.s.products[p.ID]; !exists {
		return ErrNotFound
	}
	r.s.products[p.ID] = *p
	return nil
}

func (r memoryProducts) Delete(ctx context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, exists := r.s.products[id]; !exists {
		return ErrNotFound
	}
	delete(r.s.products, id)
	return nil
}

type memoryOrders struct{ s *MemoryStore }

func (r memoryOrders) Place(ctx context.Context, order *models.Order) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, exists := r.s.orders[order.ID]; exists {
		return ErrDuplicate
	}

	// Check every decrement before applying any of them.
	remaining := make(map[string]int, len(order.OrderItems))
	for _, item := range order.OrderItems {
		if item.Qty <= 0 {
			return fmt.Errorf("%w: product %s", ErrInvalidQuantity, item.Product)
		}
		p, ok := r.s.products[item.Product]
		if !ok {
			return &StockConflictError{ProductID: item.Product}
		}
		left, seen := remaining[item.Product]
		if !seen {
			left = p.CountInStock
		}
		if left < item.Qty {
			return &StockConflictError{ProductID: item.Product}
		}
		remaining[item.Product] = left - item.Qty
	}

	for id, left := range remaining {
		p := r.s.products[id]
		p.CountInStock = left
		p.UpdatedAt = order.CreatedAt
		r.s.products[id] = p
	}
	r.s.orders[order.ID] = cloneOrder(*order)
	return nil
}

func (r memoryOrders) GetByID(ctx context.Context, id string) (*models.Order, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	o, ok := r.s.orders[id]
	if !ok {
		return nil, ErrNotFound
	}
	o = cloneOrder(o)
	return &o, nil
}

func (r memoryOrders) ListByUser(ctx context.Context, userID string) ([]models.Order, error) {
	return r.list(func(o models.Order) bool { return o.User == userID }), nil
}

func (r memoryOrders) ListAll(ctx context.Context) ([]models.Order, error) {
	return r.list(func(models.Order) bool { return true }), nil
}

func (r memoryOrders) list(keep func(models.Order) bool) []models.Order {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	orders := make([]models.Order, 0)
	for _, o := range r.s.orders {
		if keep(o) {
			orders = append(orders, cloneOrder(o))
		}
	}
	sort.Slice(orders, func(i, j int) bool {
		if orders[i].CreatedAt.Equal(orders[j].CreatedAt) {
			return orders[i].ID < orders[j].ID
		}
		return orders[i].CreatedAt.Before(orders[j].CreatedAt)
	})
	return orders
}

func (r memoryOrders) Count(ctx context.Context) (int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return int64(len(r.s.orders)), nil
}

func (r memoryOrders) TotalSales(ctx context.Context) (decimal.Decimal, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	total := decimal.Zero
	for _, o := range r.s.orders {
		amount, err := decimal.NewFromString(o.TotalPrice)
		if err != nil {
			return decimal.Zero, err
		}
		total = total.Add(amount)
	}
	return total, nil
}

func (r memoryOrders) SalesByDate(ctx context.Context) ([]models.DailySales, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	byDay := make(map[string]decimal.Decimal)
	for _, o := range r.s.orders {
		if !o.IsPaid || o.PaidAt == nil {
			continue
		}
		amount, err := decimal.NewFromString(o.TotalPrice)
		if err != nil {
			return nil, err
		}
		day := SalesDay(*o.PaidAt)
		byDay[day] = byDay[day].Add(amount)
	}

	sales := make([]models.DailySales, 0, len(byDay))
	for day, total := range byDay {
		sales = append(sales, models.DailySales{Date: day, TotalSales: total.StringFixed(2)})
	}
	sort.Slice(sales, func(i, j int) bool { return sales[i].Date < sales[j].Date })
	return sales, nil
}

func (r memoryOrders) MarkPaid(ctx context.Context, id string, result models.PaymentResult, at time.Time) (*models.Order, error) {
	return r.update(id, func(o *models.Order) {
		o.IsPaid = true
		o.PaidAt = &at
		o.PaymentResult = &result
		o.UpdatedAt = at
	})
}

func (r memoryOrders) MarkDelivered(ctx context.Context, id string, at time.Time) (*models.Order, error) {
	return r.update(id, func(o *models.Order) {
		o.IsDelivered = true
		o.DeliveredAt = &at
		o.UpdatedAt = at
	})
}

func (r memoryOrders) update(id string, apply func(*models.Order)) (*models.Order, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	o, ok := r.s.orders[id]
	if !ok {
		return nil, ErrNotFound
	}
	apply(&o)
	r.s.orders[id] = o

	out := cloneOrder(o)
	return &out, nil
}

func cloneOrder(o models.Order) models.Order {
	o.OrderItems = append([]models.OrderItem(nil), o.OrderItems...)
	if o.PaymentResult != nil {
		pr := *o.PaymentResult
		o.PaymentResult = &pr
	}
	return o
}

type memoryUsers struct{ s *MemoryStore }

func (r memoryUsers) Create(ctx context.Context, u *models.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if r.emailTaken(u.Email, u.ID) {
		return ErrDuplicate
	}
	if _, exists := r.s.users[u.ID]; exists {
		return ErrDuplicate
	}
	r.s.users[u.ID] = *u
	return nil
}

func (r memoryUsers) GetByID(ctx context.Context, id string) (*models.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	u, ok := r.s.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &u, nil
}

func (r memoryUsers) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, u := range r.s.users {
		if strings.EqualFold(u.Email, email) {
			return &u, nil
		}
	}
	return nil, ErrNotFound
}

func (r memoryUsers) Update(ctx context.Context, u *models.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, exists := r.s.users[u.ID]; !exists {
		return ErrNotFound
	}
	if r.emailTaken(u.Email, u.ID) {
		return ErrDuplicate
	}
	r.s.users[u.ID] = *u
	return nil
}

func (r memoryUsers) Delete(ctx context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, exists := r.s.users[id]; !exists {
		return ErrNotFound
	}
	delete(r.s.users, id)
	return nil
}

func (r memoryUsers) ListEmails(ctx context.Context) ([]string, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	emails := make([]string, 0, len(r.s.users))
	for _, u := range r.s.users {
		emails = append(emails, u.Email)
	}
	return emails, nil
}

// emailTaken must be called with the lock held.
func (r memoryUsers) emailTaken(email, exceptID string) bool {
	for id, u := range r.s.users {
		if id != exceptID && strings.EqualFold(u.Email, email) {
			return true
		}
	}
	return false
}

type memoryCategories struct{ s *MemoryStore }

func (r memoryCategories) Create(ctx context.Context, c *models.Category) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if r.nameTaken(c.Name, c.ID) {
		return ErrDuplicate
	}
	r.s.categories[c.ID] = *c
	return nil
}

func (r memoryCategories) GetByID(ctx context.Context, id string) (*models.Category, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	c, ok := r.s.categories[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &c, nil
}

func (r memoryCategories) List(ctx context.Context) ([]models.Category, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	categories := make([]models.Category, 0, len(r.s.categories))
	for _, c := range r.s.categories {
		categories = append(categories, c)
	}
	sort.Slice(categories, func(i, j int) bool { return categories[i].Name < categories[j].Name })
	return categories, nil
}

func (r memoryCategories) Update(ctx context.Context, c *models.Category) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, exists := r.s.categories[c.ID]; !exists {
		return ErrNotFound
	}
	if r.nameTaken(c.Name, c.ID) {
		return ErrDuplicate
	}
	r.s.categories[c.ID] = *c
	return nil
}

func (r memoryCategories) Delete(ctx context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, exists := r.s.categories[id]; !exists {
		return ErrNotFound
	}
	delete(r.s.categories, id)
	return nil
}

func (r memoryCategories) nameTaken(name, exceptID string) bool {
	for id, c := range r.s.categories {
		if id != exceptID && c.Name == name {
			return true
		}
	}
	return false
}
