package services

import (
	"encoding/json"
	"errors"
	"fmt"

	"marketplace/internal/models"
	"marketplace/internal/repositories"
	"marketplace/pkg/rabbitmq"

	"github.com/sirupsen/logrus"
)

// PaymentGateway is the outbound payment provider surface. The production
// implementation is payment.VippsClient.
type PaymentGateway interface {
	InitiatePayment(orderID string, amount float64, description string) (map[string]interface{}, error)
	RefundPayment(orderID string, amount float64) (map[string]interface{}, error)
}

// OrderService handles purchases: creating orders, proxying payment calls
// to the gateway, and applying asynchronous payment results.
type OrderService struct {
	orderRepo repositories.OrderRepository
	itemRepo  repositories.ItemRepository
	gateway   PaymentGateway
	mqClient  *rabbitmq.Client // nil when RabbitMQ is unavailable
}

// NewOrderService creates a new OrderService.
func NewOrderService(
	orderRepo repositories.OrderRepository,
	itemRepo repositories.ItemRepository,
	gateway PaymentGateway,
	mqClient *rabbitmq.Client,
) *OrderService {
	return &OrderService{
		orderRepo: orderRepo,
		itemRepo:  itemRepo,
		gateway:   gateway,
		mqClient:  mqClient,
	}
}

// CreateOrder starts a purchase of an item in the RESERVED state.
func (s *OrderService) CreateOrder(buyerID, itemID, paymentMethod string) (*models.Order, error) {
	if _, err := s.itemRepo.GetByID(itemID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("item %s: %w", itemID, ErrNotFound)
		}
		return nil, err
	}

	order := models.NewOrder(buyerID, itemID, paymentMethod)
	if err := s.orderRepo.Create(order); err != nil {
		return nil, err
	}

	s.publishOrderEvent("order.created", order)
	return order, nil
}

// GetOrderByID retrieves a single order.
func (s *OrderService) GetOrderByID(id string) (*models.Order, error) {
	order, err := s.orderRepo.GetByID(id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("order %s: %w", id, ErrNotFound)
		}
		return nil, err
	}
	return order, nil
}

// GetOrdersByBuyer retrieves the buyer's orders, newest first.
func (s *OrderService) GetOrdersByBuyer(buyerID string) ([]models.Order, error) {
	return s.orderRepo.GetByBuyer(buyerID)
}

// InitiatePayment proxies a payment-initiation call for an existing order
// and passes the gateway's response back untranslated.
func (s *OrderService) InitiatePayment(orderID string, amount float64, description string) (map[string]interface{}, error) {
	if _, err := s.GetOrderByID(orderID); err != nil {
		return nil, err
	}
	return s.gateway.InitiatePayment(orderID, amount, description)
}

// RefundPayment proxies a refund call for an existing order.
func (s *OrderService) RefundPayment(orderID string, amount float64) (map[string]interface{}, error) {
	if _, err := s.GetOrderByID(orderID); err != nil {
		return nil, err
	}
	return s.gateway.RefundPayment(orderID, amount)
}

// HandlePaymentCallback applies an asynchronous payment result from the
// gateway. A completed payment marks the item SOLD; a cancelled or rejected
// one cancels the order and releases the item back to ACTIVE. Unknown
// statuses are logged and ignored.
func (s *OrderService) HandlePaymentCallback(orderID, gatewayStatus, transactionID string) (*models.Order, error) {
	order, err := s.GetOrderByID(orderID)
	if err != nil {
		return nil, err
	}

	var status models.OrderStatus
	switch gatewayStatus {
	case "SALE", "CAPTURED", "RESERVE_CAPTURED":
		status = models.OrderStatusCompleted
	case "CANCELLED", "REJECTED", "SALE_FAILED":
		status = models.OrderStatusCancelled
	default:
		logrus.Printf("Ignoring unknown gateway status %q for order %s", gatewayStatus, orderID)
		return order, nil
	}

	if err := s.orderRepo.UpdateStatus(orderID, status, transactionID); err != nil {
		return nil, err
	}

	switch status {
	case models.OrderStatusCompleted:
		if err := s.itemRepo.SetStatus(order.ItemID, models.ItemStatusSold); err != nil {
			logrus.Printf("Failed to mark item %s sold for order %s: %v", order.ItemID, orderID, err)
		}
	case models.OrderStatusCancelled:
		if err := s.itemRepo.ClearReservation(order.ItemID); err != nil {
			logrus.Printf("Failed to release item %s for cancelled order %s: %v", order.ItemID, orderID, err)
		}
	}

	order, err = s.GetOrderByID(orderID)
	if err != nil {
		return nil, err
	}

	s.publishOrderEvent("order.updated", order)
	return order, nil
}

func (s *OrderService) publishOrderEvent(event string, order *models.Order) {
	if s.mqClient == nil {
		logrus.Println("RabbitMQ client is not initialized. Skipping order event publication.")
		return
	}

	body, err := json.Marshal(map[string]interface{}{
		"event":   event,
		"orderID": order.ID,
		"itemID":  order.ItemID,
		"buyerID": order.BuyerID,
		"status":  order.Status,
	})
	if err != nil {
		logrus.Printf("Failed to marshal order event: %v", err)
		return
	}
	if err := s.mqClient.PublishOrderEvent(body); err != nil {
		logrus.Printf("Warning: failed to publish %s event for order %s: %v", event, order.ID, err)
	}
}
