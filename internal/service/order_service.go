package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"github.com/go-redis/redis/v8"
	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"
	"net/http"
	"os"
	"storefront-service/internal/entity"
	"storefront-service/internal/repository"
	"time"
)

var logger = zerolog.New(os.Stdout).With().Timestamp().Logger()

// OrderService is a service that provides checkout and the account-area
// order reads.
type OrderService struct {
	orderRepo         repository.OrderRepository
	paymentRepo       repository.PaymentRepository
	catalogServiceURL string
	kafkaWriter       *kafka.Writer
	rdb               *redis.Client
}

// NewOrderService creates a new instance of OrderService
func NewOrderService(orderRepo repository.OrderRepository, paymentRepo repository.PaymentRepository, catalogServiceURL string, kafkaWriter *kafka.Writer, rdb *redis.Client) *OrderService {
	return &OrderService{
		orderRepo:         orderRepo,
		paymentRepo:       paymentRepo,
		catalogServiceURL: catalogServiceURL,
		kafkaWriter:       kafkaWriter,
		rdb:               rdb,
	}
}

// CreateOrder materializes an order from a checkout submission: product
// name and unit price are snapshotted from the catalog at time of sale,
// and a pending payment row is created alongside the order.
func (s *OrderService) CreateOrder(ctx context.Context, order *entity.Order, method, idempotentKey string) (*entity.Order, *entity.Payment, error) {
	validate, err := s.validateIdempotentKey(ctx, idempotentKey)
	if err != nil {
		return nil, nil, err
	}

	if !validate {
		return nil, nil, errors.New("idempotent key already exists")
	}

	if len(order.Items) == 0 {
		return nil, nil, errors.New("order has no items")
	}

	productCh := make(chan struct {
		Index   int
		Product *entity.Product
		Error   error
	}, len(order.Items))

	for i, item := range order.Items {
		go func(index, productID int) {
			product, err := s.fetchProduct(ctx, productID)
			productCh <- struct {
				Index   int
				Product *entity.Product
				Error   error
			}{
				Index:   index,
				Product: product,
				Error:   err,
			}
		}(i, item.ProductID)
	}

	for range order.Items {
		result := <-productCh
		if result.Error != nil {
			logger.Error().Err(result.Error).Msgf("Error fetching product %d", order.Items[result.Index].ProductID)
			return nil, nil, result.Error
		}
		order.Items[result.Index].ProductName = result.Product.Name
		order.Items[result.Index].UnitPrice = result.Product.Price
	}

	order.Status = entity.OrderStatusPlaced

	createdOrder, err := s.orderRepo.CreateOrder(ctx, order)
	if err != nil {
		logger.Error().Err(err).Msg("Error creating order")
		return nil, nil, err
	}

	if method == "" {
		method = "bkash"
	}
	payment, err := s.paymentRepo.CreatePayment(ctx, &entity.Payment{
		OrderID: createdOrder.ID,
		Method:  method,
		Status:  entity.PaymentStatusPending,
	})
	if err != nil {
		logger.Error().Err(err).Msgf("Error creating payment for order %d", createdOrder.ID)
		return nil, nil, err
	}

	// if env is set to test, return
	if os.Getenv("ENV") == "test" {
		return createdOrder, payment, nil
	}
	err = s.publishOrderEvent(ctx, createdOrder, "created")
	if err != nil {
		return nil, nil, err
	}

	return createdOrder, payment, nil
}

// GetOrderStatus is the authorization-scoped status read polled by the
// client after the payment redirect. The order lookup filters by both id
// and owning user; an order belonging to someone else is a not-found.
func (s *OrderService) GetOrderStatus(ctx context.Context, orderID, userID int) (*entity.OrderStatus, error) {
	if userID <= 0 {
		return nil, entity.ErrUnauthorized
	}

	order, err := s.orderRepo.GetOrderByIDAndUser(ctx, orderID, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, entity.ErrNotFound
		}
		logger.Error().Err(err).Msgf("Error getting order %d", orderID)
		return nil, fmt.Errorf("%w: %v", entity.ErrStorage, err)
	}

	status := &entity.OrderStatus{Order: order}

	payment, err := s.paymentRepo.GetPaymentByOrderID(ctx, orderID)
	if err != nil {
		// No payment row yet is a valid state: order placed, payment not
		// recorded.
		if !errors.Is(err, sql.ErrNoRows) {
			logger.Error().Err(err).Msgf("Error getting payment for order %d", orderID)
			return nil, fmt.Errorf("%w: %v", entity.ErrStorage, err)
		}
	} else {
		status.Payment = payment
	}

	return status, nil
}

// GetOrdersForUser returns the user's orders newest first with items
// attached. No session resolves to an empty list, not an error.
func (s *OrderService) GetOrdersForUser(ctx context.Context, userID int) ([]entity.Order, error) {
	if userID <= 0 {
		return []entity.Order{}, nil
	}

	orders, err := s.orderRepo.GetOrdersByUser(ctx, userID)
	if err != nil {
		logger.Error().Err(err).Msgf("Error getting orders for user %d", userID)
		return nil, fmt.Errorf("%w: %v", entity.ErrStorage, err)
	}
	if orders == nil {
		orders = []entity.Order{}
	}

	return orders, nil
}

func (s *OrderService) fetchProduct(ctx context.Context, productID int) (*entity.Product, error) {
	// if env is set to test, return a default product
	if os.Getenv("ENV") == "test" {
		return &entity.Product{
			ID:    productID,
			Name:  "test-product",
			Price: 100,
		}, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s/products/%d", s.catalogServiceURL, productID), nil)
	if err != nil {
		return nil, err
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("product not available")
	}

	var product entity.Product
	if err := json.NewDecoder(resp.Body).Decode(&product); err != nil {
		return nil, err
	}

	return &product, nil
}

func (s *OrderService) publishOrderEvent(ctx context.Context, order *entity.Order, key string) error {
	orderJSON, err := json.Marshal(order)
	if err != nil {
		return err
	}

	// order-created-1
	msg := kafka.Message{
		Key:   []byte(fmt.Sprintf("order-%s-%d", key, order.ID)),
		Value: orderJSON,
	}

	return s.kafkaWriter.WriteMessages(ctx, msg)
}

func (s *OrderService) validateIdempotentKey(ctx context.Context, key string) (bool, error) {
	// if env is set to test, return true
	if os.Getenv("ENV") == "test" {
		return true, nil
	}

	redisKey := fmt.Sprintf("idempotent-key:%s", key)
	val, err := s.rdb.Get(ctx, redisKey).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return false, err
	}

	if val != "" {
		return false, errors.New("idempotent key already exists")
	}

	err = s.rdb.Set(ctx, redisKey, "exists", 24*time.Hour).Err()
	if err != nil {
		return false, err
	}

	return true, nil
}
