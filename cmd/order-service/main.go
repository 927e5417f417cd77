// @title                       Gemstone Orders API
// @version                     1.0
// @description                 Order lifecycle and inventory consistency service.
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"golang.org/x/sync/errgroup"

	_ "github.com/albaqer/gemstone-ecom/docs"
	"github.com/albaqer/gemstone-ecom/internal/auth"
	"github.com/albaqer/gemstone-ecom/internal/config"
	"github.com/albaqer/gemstone-ecom/internal/httpx"
	"github.com/albaqer/gemstone-ecom/internal/kafka"
	"github.com/albaqer/gemstone-ecom/internal/logging"
	"github.com/albaqer/gemstone-ecom/internal/order"
	"github.com/albaqer/gemstone-ecom/internal/postgres"
	"github.com/albaqer/gemstone-ecom/internal/rabbitmq"
	"github.com/albaqer/gemstone-ecom/internal/redisx"
	"github.com/albaqer/gemstone-ecom/internal/tracing"
)

const serviceName = "order-service"

// newPublisher picks the event transport named by EVENT_BROKER.
func newPublisher(cfg config.Config) (order.Publisher, func(), error) {
	switch cfg.EventBroker {
	case "kafka":
		p := kafka.NewProducer(cfg.KafkaBrokers, cfg.EventsTopic, 256)
		return p, p.Close, nil
	case "rabbitmq":
		p, err := rabbitmq.NewPublisher(cfg.RabbitMQURL)
		if err != nil {
			return nil, nil, err
		}
		return p, func() { _ = p.Close() }, nil
	}
	return nil, func() {}, nil
}

func main() {
	cfg := config.Load()
	logger := logging.Setup(serviceName, cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	tp, err := tracing.InitTracerProvider(serviceName, cfg.JaegerEndpoint)
	if err != nil {
		log.Fatal().Err(err).Msg("[tracing] init failed")
	}
	defer func() { _ = tp.Shutdown(context.Background()) }()

	db, err := postgres.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("[db] connect failed")
	}
	defer db.Close()
	if err := postgres.Migrate(ctx, db); err != nil {
		log.Fatal().Err(err).Msg("[db] migrate failed")
	}

	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	ext, err := order.NewExt(cfg.UserSvcAddr)
	if err != nil {
		log.Fatal().Err(err).Msg("[grpc] user directory client")
	}
	defer ext.Close()

	pub, closePub, err := newPublisher(cfg)
	if err != nil {
		log.Fatal().Err(err).Str("broker", cfg.EventBroker).Msg("[events] publisher")
	}
	defer closePub()

	opts := []order.Option{
		order.WithCache(redisx.NewStatusCache(rdb)),
		order.WithLowStockThreshold(cfg.LowStockWarningThreshold),
		order.WithLogger(logger),
		order.WithProducer(serviceName),
	}
	if pub != nil {
		opts = append(opts, order.WithPublisher(pub))
	}
	svc := order.NewService(order.NewPGRepo(db), ext, opts...)

	r := httpx.NewRouter(serviceName)
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	registerRoutes(r, svc, auth.NewTokens(cfg.JWTSecret, cfg.TokenTTL))

	g, gctx := errgroup.WithContext(ctx)
	httpx.Serve(gctx, g, serviceName, httpx.NewServer(cfg.OrderSvcAddr, r))
	if err := g.Wait(); err != nil {
		log.Error().Err(err).Msg("order-service stopped")
	}
}
