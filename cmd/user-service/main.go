package main

import (
	"context"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"

	"github.com/albaqer/gemstone-ecom/internal/auth"
	"github.com/albaqer/gemstone-ecom/internal/config"
	"github.com/albaqer/gemstone-ecom/internal/httpx"
	"github.com/albaqer/gemstone-ecom/internal/logging"
	"github.com/albaqer/gemstone-ecom/internal/postgres"
	"github.com/albaqer/gemstone-ecom/internal/user"
	pb "github.com/albaqer/gemstone-ecom/internal/userpb"
)

// grpcListenAddr turns a client address such as localhost:50051 into :50051.
func grpcListenAddr(addr string) string {
	if _, port, err := net.SplitHostPort(addr); err == nil {
		return ":" + port
	}
	return addr
}

func main() {
	cfg := config.Load()
	logging.Setup("user-service", cfg.LogLevel)

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

	tokens := auth.NewTokens(cfg.JWTSecret, cfg.TokenTTL)
	svc := user.NewService(user.NewPGRepo(db), tokens)

	lis, err := net.Listen("tcp", grpcListenAddr(cfg.UserSvcAddr))
	if err != nil {
		log.Fatal().Err(err).Msg("[grpc] listen failed")
	}
	gs := grpc.NewServer()
	pb.RegisterUserDirectoryServer(gs, svc)

	r := httpx.NewRouter("user-service")
	registerRoutes(r, svc, tokens)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info().Str("addr", lis.Addr().String()).Msg("[user-service] grpc listening")
		return gs.Serve(lis)
	})
	g.Go(func() error {
		<-gctx.Done()
		gs.GracefulStop()
		return nil
	})
	httpx.Serve(gctx, g, "user-service", httpx.NewServer(cfg.UserSvcHTTPAddr, r))
	if err := g.Wait(); err != nil {
		log.Error().Err(err).Msg("user-service stopped")
	}
}
