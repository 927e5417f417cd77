package order

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ordersCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "orders_created_total",
		Help: "Orders committed.",
	})
	ordersCancelled = promauto.NewCounter(prometheus.CounterOpts{
		Name: "orders_cancelled_total",
		Help: "Orders moved to cancelled.",
	})
	stockConflicts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "stock_conflicts_total",
		Help: "Order creations rejected for stock, by phase (validation, commit).",
	}, []string{"phase"})
	stockRestorations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "stock_restorations_total",
		Help: "Orders whose stock was returned, by cause (cancel, delete).",
	}, []string{"cause"})
	lowStockWarnings = promauto.NewCounter(prometheus.CounterOpts{
		Name: "low_stock_warnings_total",
		Help: "Low stock warnings emitted while placing orders.",
	})
)
