package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"order-placement-service/internal/models"
	"order-placement-service/internal/store"
	"order-placement-service/internal/util"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// OrderPlacedMessage is returned to the caller on success.
const OrderPlacedMessage = "Order Placed"

// priceScale matches the NUMERIC(19, 2) price column; finer prices would be
// rounded silently on insert.
const priceScale = 2

// StockChecker looks up stock for a set of SKUs
type StockChecker interface {
	CheckStock(ctx context.Context, skuCodes []string) ([]models.InventoryResponse, error)
}

// OrderRepository persists orders. SaveOrder must be atomic: either the order
// and all of its line items are committed, or nothing is.
type OrderRepository interface {
	SaveOrder(ctx context.Context, order *models.Order) error
	GetOrderByNumber(ctx context.Context, orderNumber string) (*models.Order, error)
}

// OrderService places orders
type OrderService struct {
	repo      OrderRepository
	inventory StockChecker
	logger    *zap.Logger
}

// NewOrderService creates a new order service
func NewOrderService(repo OrderRepository, inventory StockChecker) *OrderService {
	return &OrderService{
		repo:      repo,
		inventory: inventory,
		logger:    util.GetLogger(),
	}
}

// PlaceOrderResult is the outcome of a successful placement. Event must be
// handed to the notification relay by the caller.
type PlaceOrderResult struct {
	Message     string
	OrderNumber string
	Event       *models.OrderPlacedEvent
}

// PlaceOrder checks stock for every requested SKU and persists the order only
// if all of them are in stock. The event is built after the commit returns,
// so a failed write never produces a notification.
func (s *OrderService) PlaceOrder(ctx context.Context, req *models.OrderRequest) (*PlaceOrderResult, error) {
	ctx, span := util.StartSpan(ctx, "OrderService.PlaceOrder")
	defer span.End()

	if err := validateOrderRequest(req); err != nil {
		util.OrdersRejectedTotal.WithLabelValues(util.ReasonInvalidRequest).Inc()
		return nil, err
	}

	items := make([]models.OrderLineItem, 0, len(req.LineItems))
	for _, item := range req.LineItems {
		items = append(items, item.ToLineItem())
	}
	order := models.NewOrder(items)
	skuCodes := order.SKUCodes()
	span.SetAttributes(attribute.String("order.number", order.OrderNumber))

	stock, err := s.lookupInventory(ctx, skuCodes)
	if err != nil {
		reason := util.ReasonInventoryUnavailable
		if errors.Is(err, ErrMalformedInventoryResponse) {
			reason = util.ReasonMalformedInventory
		}
		util.OrdersRejectedTotal.WithLabelValues(reason).Inc()
		s.logger.Error("Inventory lookup failed",
			append(util.TraceFields(ctx),
				zap.String("order_number", order.OrderNumber),
				zap.Strings("sku_codes", skuCodes),
				zap.Error(err))...)
		return nil, err
	}

	if missing := unavailableSKUs(skuCodes, stock); len(missing) > 0 {
		util.OrdersRejectedTotal.WithLabelValues(util.ReasonOutOfStock).Inc()
		s.logger.Info("Order rejected, products not in stock",
			zap.String("order_number", order.OrderNumber),
			zap.Strings("sku_codes", missing))
		return nil, fmt.Errorf("%w: %s", ErrOutOfStock, strings.Join(missing, ", "))
	}

	if err := s.repo.SaveOrder(ctx, order); err != nil {
		util.OrdersRejectedTotal.WithLabelValues(util.ReasonPersistence).Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, "persist order")
		return nil, fmt.Errorf("%w: %w", ErrPersistenceFailure, err)
	}

	util.OrdersPlacedTotal.Inc()
	s.logger.Info("Order placed",
		zap.String("order_number", order.OrderNumber),
		zap.Int64("order_id", order.ID),
		zap.Int("line_items", len(order.LineItems)))

	return &PlaceOrderResult{
		Message:     OrderPlacedMessage,
		OrderNumber: order.OrderNumber,
		Event:       models.NewOrderPlacedEvent(order.OrderNumber),
	}, nil
}

// lookupInventory performs the single blocking stock query
func (s *OrderService) lookupInventory(ctx context.Context, skuCodes []string) ([]models.InventoryResponse, error) {
	ctx, span := util.StartSpan(ctx, "inventory-service-lookup",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attribute.String("call", "inventory-service")))
	defer span.End()

	start := time.Now()
	defer func() {
		util.InventoryLookupLatency.Observe(time.Since(start).Seconds())
	}()

	stock, err := s.inventory.CheckStock(ctx, skuCodes)
	if err != nil {
		if !errors.Is(err, ErrInventoryUnavailable) && !errors.Is(err, ErrMalformedInventoryResponse) {
			err = fmt.Errorf("%w: %w", ErrInventoryUnavailable, err)
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "inventory lookup failed")
		return nil, err
	}

	if len(stock) == 0 {
		err := fmt.Errorf("%w: no stock entries for %d requested SKUs", ErrMalformedInventoryResponse, len(skuCodes))
		span.RecordError(err)
		span.SetStatus(codes.Error, "empty inventory response")
		return nil, err
	}

	return stock, nil
}

// unavailableSKUs returns the requested SKUs that were not reported in stock.
// A SKU missing from the response counts as not in stock.
func unavailableSKUs(skuCodes []string, stock []models.InventoryResponse) []string {
	inStock := make(map[string]bool, len(stock))
	for _, s := range stock {
		prev, seen := inStock[s.SKUCode]
		inStock[s.SKUCode] = s.InStock && (!seen || prev)
	}

	var missing []string
	for _, sku := range skuCodes {
		if !inStock[sku] {
			missing = append(missing, sku)
		}
	}
	return missing
}

func validateOrderRequest(req *models.OrderRequest) error {
	if req == nil || len(req.LineItems) == 0 {
		return fmt.Errorf("%w: at least one line item is required", ErrInvalidOrderRequest)
	}
	for i, item := range req.LineItems {
		if strings.TrimSpace(item.SKUCode) == "" {
			return fmt.Errorf("%w: line item %d has no skuCode", ErrInvalidOrderRequest, i)
		}
		if item.Quantity <= 0 {
			return fmt.Errorf("%w: line item %d quantity must be positive", ErrInvalidOrderRequest, i)
		}
		if item.Price.IsNegative() {
			return fmt.Errorf("%w: line item %d price must not be negative", ErrInvalidOrderRequest, i)
		}
		if !item.Price.Equal(item.Price.Round(priceScale)) {
			return fmt.Errorf("%w: line item %d price has more than %d decimal places", ErrInvalidOrderRequest, i, priceScale)
		}
	}
	return nil
}

// GetOrder retrieves a placed order by its order number
func (s *OrderService) GetOrder(ctx context.Context, orderNumber string) (*models.Order, error) {
	ctx, span := util.StartSpan(ctx, "OrderService.GetOrder")
	defer span.End()

	order, err := s.repo.GetOrderByNumber(ctx, orderNumber)
	if errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrOrderNotFound, orderNumber)
	}
	if err != nil {
		return nil, err
	}
	return order, nil
}
