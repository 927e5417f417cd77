package httpx

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

const ShutdownGrace = 5 * time.Second

// NewServer wraps a handler with the timeouts every service uses.
func NewServer(addr string, h http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
}

// Serve runs srv on g and shuts it down gracefully once ctx is done.
func Serve(ctx context.Context, g *errgroup.Group, name string, srv *http.Server) {
	g.Go(func() error {
		log.Info().Str("addr", srv.Addr).Msgf("[%s] listening", name)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		sctx, cancel := context.WithTimeout(context.Background(), ShutdownGrace)
		defer cancel()
		log.Info().Msgf("[%s] shutting down", name)
		return srv.Shutdown(sctx)
	})
}
