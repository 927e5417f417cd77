package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/albaqer/gemstone-ecom/internal/config"
	"github.com/albaqer/gemstone-ecom/internal/httpx"
	"github.com/albaqer/gemstone-ecom/internal/kafka"
	"github.com/albaqer/gemstone-ecom/internal/logging"
)

func main() {
	cfg := config.Load()
	logging.Setup("stock-alerts", cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	consumer := kafka.NewConsumer(cfg.KafkaBrokers, cfg.AlertsGroup, cfg.EventsTopic)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info().Strs("brokers", cfg.KafkaBrokers).Str("topic", cfg.EventsTopic).Str("group", cfg.AlertsGroup).Msg("[stock-alerts] consuming")
		return consumer.Start(gctx, handleEvent)
	})
	httpx.Serve(gctx, g, "stock-alerts", httpx.NewServer(cfg.AlertsAddr, httpx.NewRouter("stock-alerts")))
	if err := g.Wait(); err != nil {
		log.Error().Err(err).Msg("stock-alerts stopped")
	}
}
