package handlers

import (
	"errors"
	"strconv"

	"marketplace/internal/middleware"
	"marketplace/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

// VippsHandler handles HTTP requests for orders and the Vipps payment
// proxy. Payment initiation and refunds require a session; the callback is
// public because the gateway calls it.
type VippsHandler struct {
	orderService *services.OrderService
	validate     *validator.Validate
}

// NewVippsHandler creates a new VippsHandler.
func NewVippsHandler(orderService *services.OrderService) *VippsHandler {
	return &VippsHandler{
		orderService: orderService,
		validate:     validator.New(),
	}
}

// RegisterRoutes registers the payment routes with the Fiber app.
func (h *VippsHandler) RegisterRoutes(router fiber.Router, authRequired fiber.Handler) {
	vippsRoutes := router.Group("/vipps")
	vippsRoutes.Post("/order", authRequired, h.HandleCreateOrder)
	vippsRoutes.Get("/orders", authRequired, h.HandleGetOrders)
	vippsRoutes.Post("/payment", authRequired, h.HandleInitiatePayment)
	vippsRoutes.Post("/refund", authRequired, h.HandleRefundPayment)
	vippsRoutes.Post("/callback", h.HandleCallback)
}

// CreateOrderRequest is the body for starting a purchase.
type CreateOrderRequest struct {
	ItemID        string `json:"itemId" validate:"required"`
	PaymentMethod string `json:"paymentMethod" validate:"required"`
}

// HandleCreateOrder creates an order for the caller.
func (h *VippsHandler) HandleCreateOrder(c *fiber.Ctx) error {
	var req CreateOrderRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}
	if err := h.validate.Struct(req); err != nil {
		return validationErrorResponse(c, err)
	}

	order, err := h.orderService.CreateOrder(middleware.CurrentUserID(c), req.ItemID, req.PaymentMethod)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"message": "Item not found",
			})
		}
		logrus.Printf("Error creating order: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not create order",
		})
	}
	return c.Status(fiber.StatusCreated).JSON(order)
}

// HandleGetOrders returns the caller's orders, newest first.
func (h *VippsHandler) HandleGetOrders(c *fiber.Ctx) error {
	orders, err := h.orderService.GetOrdersByBuyer(middleware.CurrentUserID(c))
	if err != nil {
		logrus.Printf("Error getting orders: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not retrieve orders",
		})
	}
	return c.JSON(orders)
}

// HandleInitiatePayment proxies a payment initiation to the gateway and
// returns the gateway's JSON response untranslated.
func (h *VippsHandler) HandleInitiatePayment(c *fiber.Ctx) error {
	orderID := c.Query("orderId")
	if orderID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Query parameter 'orderId' is required",
		})
	}
	amount, err := strconv.ParseFloat(c.Query("amount"), 64)
	if err != nil || amount <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Query parameter 'amount' must be a positive number",
		})
	}
	description := c.Query("description", "Marketplace purchase")

	response, err := h.orderService.InitiatePayment(orderID, amount, description)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"message": "Order not found",
			})
		}
		logrus.Printf("Error initiating payment for order %s: %v", orderID, err)
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"message": "Payment initiation failed",
			"error":   err.Error(),
		})
	}
	return c.JSON(response)
}

// HandleRefundPayment proxies a refund to the gateway.
func (h *VippsHandler) HandleRefundPayment(c *fiber.Ctx) error {
	orderID := c.Query("orderId")
	if orderID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Query parameter 'orderId' is required",
		})
	}
	amount, err := strconv.ParseFloat(c.Query("amount"), 64)
	if err != nil || amount <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Query parameter 'amount' must be a positive number",
		})
	}

	response, err := h.orderService.RefundPayment(orderID, amount)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"message": "Order not found",
			})
		}
		logrus.Printf("Error refunding order %s: %v", orderID, err)
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"message": "Refund failed",
			"error":   err.Error(),
		})
	}
	return c.JSON(response)
}

// CallbackRequest is the gateway's asynchronous payment notification.
type CallbackRequest struct {
	OrderID       string `json:"orderId" validate:"required"`
	Status        string `json:"status" validate:"required"`
	TransactionID string `json:"transactionId"`
}

// HandleCallback applies a payment result pushed by the gateway.
func (h *VippsHandler) HandleCallback(c *fiber.Ctx) error {
	var req CallbackRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid callback body",
			"error":   err.Error(),
		})
	}
	if err := h.validate.Struct(req); err != nil {
		return validationErrorResponse(c, err)
	}

	order, err := h.orderService.HandlePaymentCallback(req.OrderID, req.Status, req.TransactionID)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"message": "Order not found",
			})
		}
		logrus.Printf("Error handling payment callback for order %s: %v", req.OrderID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not process callback",
		})
	}
	return c.JSON(order)
}
