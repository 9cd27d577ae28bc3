package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	router "github.com/havenapp/haven/internal/adapters/http"
	"github.com/havenapp/haven/internal/app"
	"github.com/havenapp/haven/internal/config"
	"github.com/havenapp/haven/internal/store"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Initialize zerolog global logger early so config.Load can use it.
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	// Human-friendly output for terminal; in production you may want JSON only.
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	cfg, err := config.Load()
	if err != nil {
		log.Error().Err(err).Msg("failed to load config")
	}

	st := openStore(cfg)
	defer st.Close()

	relay := app.NewRelay(app.NewBestEffort(st, cfg.ScyllaTimeout))

	r := router.SetupRouter(ctx, cfg, relay, st)
	addr := fmt.Sprintf(":%d", cfg.Port)

	srv := &http.Server{
		Addr:    addr,
		Handler: r,
	}

	go func() {
		log.Info().Str("addr", addr).Msg("Haven relay started")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("server error")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("Shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	relay.Shutdown()
	log.Info().Msg("Server exited gracefully")
}

// openStore prefers Scylla when hosts are configured and degrades to the
// in-memory store when the cluster is unreachable. The relay keeps
// working either way; only history suffers.
func openStore(cfg *config.Config) store.Store {
	if len(cfg.ScyllaHosts) == 0 {
		log.Info().Msg("no scylla hosts configured, using in-memory store")
		return store.NewMemoryStore()
	}
	st, err := store.NewScyllaStore(cfg.ScyllaHosts, cfg.ScyllaKeyspace, cfg.ScyllaTimeout)
	if err != nil {
		log.Warn().Err(err).Msg("scylla unavailable, degrading to in-memory store")
		return store.NewMemoryStore()
	}
	log.Info().Strs("hosts", cfg.ScyllaHosts).Str("keyspace", cfg.ScyllaKeyspace).Msg("connected to scylla")
	return st
}
