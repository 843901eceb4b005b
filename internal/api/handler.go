package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"order-placement-service/internal/models"
	"order-placement-service/internal/service"
	"order-placement-service/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

const (
	idempotencyHeader = "Idempotency-Key"

	releaseTimeout = 2 * time.Second
)

// OrderPlacer is the order workflow as seen by the HTTP layer
type OrderPlacer interface {
	PlaceOrder(ctx context.Context, req *models.OrderRequest) (*service.PlaceOrderResult, error)
	GetOrder(ctx context.Context, orderNumber string) (*models.Order, error)
}

// EventDispatcher hands order-placed events to the notification relay
type EventDispatcher interface {
	Dispatch(ctx context.Context, event *models.OrderPlacedEvent) error
}

// IdempotencyGuard claims request keys so a retried request is not placed twice
type IdempotencyGuard interface {
	ClaimIdempotencyKey(ctx context.Context, key string) (bool, error)
	ReleaseIdempotencyKey(ctx context.Context, key string) error
}

// Pinger reports whether a dependency is reachable
type Pinger interface {
	Ping(ctx context.Context) error
}

// Handler contains HTTP handlers
type Handler struct {
	orders     OrderPlacer
	dispatcher EventDispatcher
	guard      IdempotencyGuard
	deps       map[string]Pinger
	logger     *zap.Logger
}

// NewHandler creates a new HTTP handler. guard may be nil, in which case the
// Idempotency-Key header is ignored.
func NewHandler(orders OrderPlacer, dispatcher EventDispatcher, guard IdempotencyGuard, deps map[string]Pinger) *Handler {
	return &Handler{
		orders:     orders,
		dispatcher: dispatcher,
		guard:      guard,
		deps:       deps,
		logger:     util.GetLogger(),
	}
}

// SetupRoutes sets up HTTP routes
func (h *Handler) SetupRoutes(router *gin.Engine) {
	router.Use(gin.Recovery())
	router.Use(prometheusMiddleware())
	router.Use(gin.Logger())

	router.GET("/health", h.healthCheck)
	router.GET("/ready", h.readinessCheck)

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/api/v1")
	{
		v1.POST("/orders", h.placeOrder)
		v1.GET("/orders/:orderNumber", h.getOrder)
	}
}

// healthCheck handles health check requests
func (h *Handler) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
		"time":   time.Now().Unix(),
	})
}

// readinessCheck pings every dependency
func (h *Handler) readinessCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	failed := gin.H{}
	for name, dep := range h.deps {
		if err := dep.Ping(ctx); err != nil {
			failed[name] = err.Error()
		}
	}

	if len(failed) > 0 {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "not ready",
			"errors": failed,
			"time":   time.Now().Unix(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "ready",
		"time":   time.Now().Unix(),
	})
}

// placeOrder handles order placement
func (h *Handler) placeOrder(c *gin.Context) {
	var req models.OrderRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	ctx, span := util.StartSpan(c.Request.Context(), "POST /api/v1/orders")
	defer span.End()

	key := c.GetHeader(idempotencyHeader)

	if key != "" && h.guard != nil {
		claimed, err := h.guard.ClaimIdempotencyKey(ctx, key)
		if err != nil {
			h.logger.Warn("Idempotency check unavailable", zap.String("key", key), zap.Error(err))
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"error":   "Idempotency check unavailable",
				"details": err.Error(),
			})
			return
		}
		if !claimed {
			c.JSON(http.StatusConflict, gin.H{
				"error": "Duplicate request",
			})
			return
		}
	}

	result, err := h.orders.PlaceOrder(ctx, &req)
	if err != nil {
		if key != "" && h.guard != nil {
			h.releaseKey(ctx, key)
		}
		c.JSON(statusFor(err), gin.H{
			"error":   "Failed to place order",
			"details": err.Error(),
		})
		return
	}

	// the order is committed; its notification must not depend on the client connection
	if err := h.dispatcher.Dispatch(context.WithoutCancel(ctx), result.Event); err != nil {
		util.NotificationsFailedTotal.Inc()
		h.logger.Error("Failed to dispatch order placed event",
			zap.String("order_number", result.OrderNumber),
			zap.Error(err))
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":     result.Message,
		"orderNumber": result.OrderNumber,
	})
}

// releaseKey frees the claim even when the request context is already done,
// which is the usual reason a client retries.
func (h *Handler) releaseKey(ctx context.Context, key string) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), releaseTimeout)
	defer cancel()

	if err := h.guard.ReleaseIdempotencyKey(ctx, key); err != nil {
		h.logger.Warn("Failed to release idempotency key", zap.String("key", key), zap.Error(err))
	}
}

// getOrder handles get order by order number
func (h *Handler) getOrder(c *gin.Context) {
	order, err := h.orders.GetOrder(c.Request.Context(), c.Param("orderNumber"))
	if err != nil {
		c.JSON(statusFor(err), gin.H{
			"error":   "Failed to get order",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, order)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrInvalidOrderRequest):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrOrderNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrOutOfStock):
		return http.StatusUnprocessableEntity
	case errors.Is(err, service.ErrMalformedInventoryResponse):
		return http.StatusBadGateway
	case errors.Is(err, service.ErrInventoryUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// prometheusMiddleware collects HTTP metrics
func prometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Writer.Status())

		util.HTTPRequestDuration.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Observe(duration)

		util.HTTPRequestsTotal.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Inc()
	}
}
