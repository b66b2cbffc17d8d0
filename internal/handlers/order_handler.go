package handlers

import (
	"log/slog"
	"net/http"

	"github.com/storefront/backend/internal/middleware"
	"github.com/storefront/backend/internal/models"
	"github.com/storefront/backend/internal/service"
)

// OrderHandler handles order-related HTTP requests
type OrderHandler struct {
	orderService *service.OrderService
	log          *slog.Logger
}

// NewOrderHandler creates a new order handler
func NewOrderHandler(orderService *service.OrderService, log *slog.Logger) *OrderHandler {
	return &OrderHandler{
		orderService: orderService,
		log:          log,
	}
}

// CreateOrder handles POST /api/orders
func (h *OrderHandler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	caller, _ := middleware.UserFromContext(r.Context())

	var req models.OrderRequest
	if !decodeJSON(w, r, &req, h.log) {
		return
	}

	order, err := h.orderService.CreateOrder(r.Context(), caller.ID, req)
	if err != nil {
		writeServiceError(w, r, err, h.log)
		return
	}

	WriteJSON(w, http.StatusCreated, order, h.log)
}

// ListOrders handles GET /api/orders (admin)
func (h *OrderHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.orderService.ListOrders(r.Context())
	if err != nil {
		writeServiceError(w, r, err, h.log)
		return
	}
	WriteJSON(w, http.StatusOK, orders, h.log)
}

// ListMyOrders handles GET /api/orders/mine
func (h *OrderHandler) ListMyOrders(w http.ResponseWriter, r *http.Request) {
	caller, _ := middleware.UserFromContext(r.Context())

	orders, err := h.orderService.ListUserOrders(r.Context(), caller.ID)
	if err != nil {
		writeServiceError(w, r, err, h.log)
		return
	}
	WriteJSON(w, http.StatusOK, orders, h.log)
}

// CountOrders handles GET /api/orders/total-orders
func (h *OrderHandler) CountOrders(w http.ResponseWriter, r *http.Request) {
	n, err := h.orderService.CountOrders(r.Context())
	if err != nil {
		writeServiceError(w, r, err, h.log)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]int64{"totalOrders": n}, h.log)
}

// TotalSales handles GET /api/orders/total-sales
func (h *OrderHandler) TotalSales(w http.ResponseWriter, r *http.Request) {
	total, err := h.orderService.TotalSales(r.Context())
	if err != nil {
		writeServiceError(w, r, err, h.log)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{"totalSales": total}, h.log)
}

// SalesByDate handles GET /api/orders/total-sales-by-date
func (h *OrderHandler) SalesByDate(w http.ResponseWriter, r *http.Request) {
	sales, err := h.orderService.SalesByDate(r.Context())
	if err != nil {
		writeServiceError(w, r, err, h.log)
		return
	}
	WriteJSON(w, http.StatusOK, sales, h.log)
}

// GetOrder handles GET /api/orders/{id}
func (h *OrderHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id", h.log)
	if !ok {
		return
	}
	caller, _ := middleware.UserFromContext(r.Context())

	order, err := h.orderService.GetOrder(r.Context(), caller, id)
	if err != nil {
		writeServiceError(w, r, err, h.log)
		return
	}
	WriteJSON(w, http.StatusOK, order, h.log)
}

// MarkPaid handles PUT /api/orders/{id}/pay
func (h *OrderHandler) MarkPaid(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id", h.log)
	if !ok {
		return
	}

	var req models.PaymentRequest
	if !decodeJSON(w, r, &req, h.log) {
		return
	}

	order, err := h.orderService.MarkPaid(r.Context(), id, req)
	if err != nil {
		writeServiceError(w, r, err, h.log)
		return
	}
	WriteJSON(w, http.StatusOK, order, h.log)
}

// MarkDelivered handles PUT /api/orders/{id}/deliver (admin)
func (h *OrderHandler) MarkDelivered(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id", h.log)
	if !ok {
		return
	}

	order, err := h.orderService.MarkDelivered(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err, h.log)
		return
	}
	WriteJSON(w, http.StatusOK, order, h.log)
}
