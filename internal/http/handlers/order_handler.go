package handlers

import (
	"github.com/gofiber/fiber/v2"

	"bukroadmin/internal/domain"
	applog "bukroadmin/internal/log"
	"bukroadmin/internal/services"
	"bukroadmin/internal/validate"
)

type OrderHandler struct {
	Orders *services.OrderService
}

// GET /orders
func (h *OrderHandler) List(c *fiber.Ctx) error {
	orders, err := h.Orders.List(c.Context())
	if err != nil {
		applog.Error(c, "orders.list.fail", err, nil)
		return renderFail(c, 502, "Could not load orders from the store backend")
	}
	return render(c, "orders", fiber.Map{
		"Orders":   orders,
		"Statuses": domain.OrderStatuses,
	})
}

// POST /orders/:id/status
func (h *OrderHandler) UpdateStatus(c *fiber.Ctx) error {
	id, okID := validate.ID(c.Params("id"))
	status, okStatus := validate.OrderStatus(c.FormValue("status"))
	if !okID || !okStatus {
		applog.Security(c, "validation.fail", map[string]any{"field": "order_status"})
		return c.Status(400).SendString("invalid order id or status")
	}
	if err := h.Orders.UpdateStatus(c.Context(), id, status); err != nil {
		applog.Error(c, "orders.status.fail", err, map[string]any{"order_id": id})
		return renderFail(c, 502, "Could not update the order status")
	}
	applog.Audit(c, "orders.status", map[string]any{"order_id": id, "status": status})
	return c.Redirect("/orders")
}
