package main

import (
	"context"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog/log"
	kafkago "github.com/segmentio/kafka-go"

	"github.com/albaqer/gemstone-ecom/internal/events"
)

var (
	eventsConsumed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "stock_alerts_events_consumed_total",
		Help: "Order events read from the topic, by type.",
	}, []string{"event_type"})
	lowStockAlerts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "stock_alerts_low_stock_total",
		Help: "Low stock alerts raised, by product.",
	}, []string{"product_id"})
)

// handleEvent decodes one envelope and raises an alert for stock.low.
func handleEvent(_ context.Context, m kafkago.Message) error {
	env, err := events.Decode(m.Value)
	if err != nil {
		return errors.Wrapf(err, "decode offset %d", m.Offset)
	}
	eventsConsumed.WithLabelValues(string(env.EventType)).Inc()

	switch env.EventType {
	case events.StockLow:
		p, err := events.UnwrapPayload[events.StockLowPayload](env)
		if err != nil {
			return errors.Wrap(err, "stock.low payload")
		}
		lowStockAlerts.WithLabelValues(p.ProductID).Inc()
		log.Warn().
			Str("product_id", p.ProductID).
			Str("product_name", p.ProductName).
			Int("remaining", p.RemainingAfterOrder).
			Str("order_id", p.OrderID).
			Str("event_id", env.EventID).
			Msg("low stock")
	case events.OrderStatusChanged:
		p, err := events.UnwrapPayload[events.OrderStatusChangedPayload](env)
		if err != nil {
			return errors.Wrap(err, "status payload")
		}
		log.Debug().Str("order_id", p.OrderID).Str("from", p.From).Str("to", p.To).
			Bool("stock_restored", p.StockRestored).Msg("order status changed")
	default:
		log.Debug().Str("event_type", string(env.EventType)).Str("correlation_id", env.CorrelationID).Msg("event")
	}
	return nil
}
