package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/albaqer/gemstone-ecom/internal/auth"
	"github.com/albaqer/gemstone-ecom/internal/config"
	"github.com/albaqer/gemstone-ecom/internal/httpx"
	"github.com/albaqer/gemstone-ecom/internal/logging"
	"github.com/albaqer/gemstone-ecom/internal/postgres"
	prod "github.com/albaqer/gemstone-ecom/internal/product"
)

func main() {
	cfg := config.Load()
	logging.Setup("product-service", cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := postgres.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("[db] connect failed")
	}
	defer db.Close()
	if err := postgres.Migrate(ctx, db); err != nil {
		log.Fatal().Err(err).Msg("[db] migrate failed")
	}

	r := httpx.NewRouter("product-service")
	registerRoutes(r, prod.NewPGRepo(db), auth.NewTokens(cfg.JWTSecret, cfg.TokenTTL), cfg.LowStockReportThreshold)

	g, gctx := errgroup.WithContext(ctx)
	httpx.Serve(gctx, g, "product-service", httpx.NewServer(cfg.ProductSvcAddr, r))
	if err := g.Wait(); err != nil {
		log.Error().Err(err).Msg("product-service stopped")
	}
}
