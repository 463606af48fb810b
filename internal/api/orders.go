package api

import (
	"errors"
	"net/http"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/erazemk/narocila/internal/logging"
	"github.com/erazemk/narocila/internal/metrics"
	"github.com/erazemk/narocila/internal/model"
	"github.com/erazemk/narocila/internal/store"
)

// OrdersHandler handles order endpoints.
type OrdersHandler struct {
	Orders store.OrderRepository
	// Items is used to refresh stock gauges after an order is placed.
	Items store.ItemRepository
}

type orderLineRequest struct {
	ItemID   *int64 `json:"item_id" validate:"required"`
	Quantity *int   `json:"quantity" validate:"required,min=1"`
}

type createOrderRequest struct {
	CustomerID string             `json:"customer_id" validate:"required"`
	Items      []orderLineRequest `json:"items" validate:"required,dive"`
}

type updateOrderRequest struct {
	Status string `json:"status" validate:"required"`
}

// List handles GET /orders.
func (h *OrdersHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, offset, ok := pageParams(w, r)
	if !ok {
		return
	}

	orders, err := h.Orders.ListOrders(r.Context(), limit, offset)
	if err != nil {
		logging.FromContext(r.Context()).WithError(err).Error("failed to list orders")
		jsonError(w, http.StatusInternalServerError, "failed to list orders")
		return
	}
	jsonResponse(w, http.StatusOK, orders)
}

// Create handles POST /orders.
func (h *OrdersHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createOrderRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	lines := make([]model.OrderLine, len(req.Items))
	for i, l := range req.Items {
		lines[i] = model.OrderLine{ItemID: *l.ItemID, Quantity: *l.Quantity}
	}

	order, err := h.Orders.CreateOrder(r.Context(), req.CustomerID, lines)
	if err != nil {
		var notFound *store.ItemNotFoundError
		var noStock *store.InsufficientStockError
		switch {
		case errors.As(err, &notFound):
			jsonError(w, http.StatusNotFound, notFound.Error())
		case errors.As(err, &noStock):
			logging.FromContext(r.Context()).WithFields(log.Fields{
				"item_id":   noStock.ItemID,
				"requested": noStock.Requested,
				"available": noStock.Available,
			}).Warn("order rejected")
			jsonError(w, http.StatusBadRequest, noStock.Error())
		case errors.Is(err, store.ErrInvalidQuantity):
			jsonError(w, http.StatusBadRequest, err.Error())
		default:
			logging.FromContext(r.Context()).WithError(err).Error("failed to create order")
			jsonError(w, http.StatusInternalServerError, "failed to create order")
		}
		return
	}

	metrics.OrdersTotal.WithLabelValues(string(order.Status)).Inc()
	metrics.OrderAmount.Observe(order.TotalAmount)
	h.refreshStock(r, lines)

	logging.FromContext(r.Context()).WithFields(log.Fields{
		"order_id":    order.ID,
		"customer_id": order.CustomerID,
		"total":       order.TotalAmount,
	}).Info("order created")
	jsonResponse(w, http.StatusCreated, order)
}

// refreshStock updates the stock gauge of every item touched by an order.
func (h *OrdersHandler) refreshStock(r *http.Request, lines []model.OrderLine) {
	if h.Items == nil {
		return
	}
	seen := make(map[int64]bool, len(lines))
	for _, l := range lines {
		if seen[l.ItemID] {
			continue
		}
		seen[l.ItemID] = true

		item, err := h.Items.GetItem(r.Context(), l.ItemID)
		if err != nil {
			logging.FromContext(r.Context()).WithError(err).WithField("item_id", l.ItemID).Warn("failed to refresh stock gauge")
			continue
		}
		metrics.SetItemStock(item.ID, item.Stock)
	}
}

// Get handles GET /orders/{id}.
func (h *OrdersHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid order id")
		return
	}

	order, err := h.Orders.GetOrder(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		jsonError(w, http.StatusNotFound, "Order not found")
		return
	}
	if err != nil {
		logging.FromContext(r.Context()).WithError(err).Error("failed to get order")
		jsonError(w, http.StatusInternalServerError, "failed to get order")
		return
	}
	jsonResponse(w, http.StatusOK, order)
}

// UpdateStatus handles PUT /orders/{id}. Any status may replace any other.
func (h *OrdersHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid order id")
		return
	}

	var req updateOrderRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	status, err := model.ParseOrderStatus(req.Status)
	if err != nil {
		validationError(w, map[string]string{"status": "oneof=" + statusList()})
		return
	}

	order, err := h.Orders.UpdateOrderStatus(r.Context(), id, status)
	if errors.Is(err, store.ErrNotFound) {
		jsonError(w, http.StatusNotFound, "Order not found")
		return
	}
	if err != nil {
		logging.FromContext(r.Context()).WithError(err).Error("failed to update order")
		jsonError(w, http.StatusInternalServerError, "failed to update order")
		return
	}

	metrics.OrdersTotal.WithLabelValues(string(order.Status)).Inc()
	logging.FromContext(r.Context()).WithFields(log.Fields{"order_id": order.ID, "status": order.Status}).Info("order status changed")
	jsonResponse(w, http.StatusOK, order)
}

// statusList returns the accepted statuses, space separated.
func statusList() string {
	names := make([]string, len(model.OrderStatuses))
	for i, s := range model.OrderStatuses {
		names[i] = string(s)
	}
	return strings.Join(names, " ")
}

// Delete handles DELETE /orders/{id}. Stock is not restored.
func (h *OrdersHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid order id")
		return
	}

	err = h.Orders.DeleteOrder(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		jsonError(w, http.StatusNotFound, "Order not found")
		return
	}
	if err != nil {
		logging.FromContext(r.Context()).WithError(err).Error("failed to delete order")
		jsonError(w, http.StatusInternalServerError, "failed to delete order")
		return
	}

	logging.FromContext(r.Context()).WithField("order_id", id).Info("order deleted")
	w.WriteHeader(http.StatusNoContent)
}
