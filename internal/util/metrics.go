package util

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	OrdersPlacedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "orders_placed_total",
		Help: "Total number of orders placed",
	})

	OrdersRejectedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "orders_rejected_total",
		Help: "Total number of order placements that did not persist an order",
	}, []string{"reason"})

	InventoryLookupLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "inventory_lookup_latency_seconds",
		Help:    "Latency of inventory stock lookups",
		Buckets: prometheus.DefBuckets,
	})

	NotificationsSentTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "notifications_sent_total",
		Help: "Total number of order-placed notifications acknowledged by the broker",
	})

	NotificationsFailedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "notifications_failed_total",
		Help: "Total number of order-placed notifications that failed to send",
	})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})
)

// Rejection reasons for OrdersRejectedTotal
const (
	ReasonInvalidRequest       = "invalid_request"
	ReasonOutOfStock           = "out_of_stock"
	ReasonInventoryUnavailable = "inventory_unavailable"
	ReasonMalformedInventory   = "malformed_inventory_response"
	ReasonPersistence          = "persistence_failure"
)
