// Command server runs the motorcover API: coverage validation, policy
// management, claims, and the recurring expiration sweep. main wires
// high-level dependencies and keeps the lifecycle small; business logic
// lives in internal service packages.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	claimshandler "motorcover/internal/claims/handler"
	claimsservice "motorcover/internal/claims/service"
	claimsstore "motorcover/internal/claims/store"
	"motorcover/internal/expiration"
	fleethandler "motorcover/internal/fleet/handler"
	fleetservice "motorcover/internal/fleet/service"
	fleetstore "motorcover/internal/fleet/store"
	"motorcover/internal/platform/config"
	"motorcover/internal/platform/httpserver"
	"motorcover/internal/platform/logger"
	"motorcover/internal/platform/metrics"
	"motorcover/internal/platform/postgres"
	policyhandler "motorcover/internal/policy/handler"
	policyservice "motorcover/internal/policy/service"
	policystore "motorcover/internal/policy/store"
	httptransport "motorcover/internal/transport/http"
)

func main() {
	cfg := config.FromEnv()
	log := logger.New()
	m := metrics.New()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	deps, err := buildStorage(ctx, cfg, log)
	if err != nil {
		log.Error("storage init failed", "error", err.Error())
		os.Exit(1)
	}
	defer deps.close()

	fleetSvc := fleetservice.New(deps.fleet, log)
	policySvc := policyservice.New(deps.fleet, deps.policies,
		policyservice.WithLogger(log),
		policyservice.WithMetrics(m),
	)
	claimsSvc := claimsservice.New(deps.fleet, deps.claims, deps.policies, log)

	sweeper := expiration.NewSweeper(deps.policies, log, expiration.WithMetrics(m))
	scheduler := expiration.NewScheduler(sweeper, cfg.SweepInterval, log, m)

	router := httptransport.NewRouter(log, m,
		fleethandler.New(fleetSvc, log, m),
		policyhandler.New(policySvc, log),
		claimshandler.New(claimsSvc, log),
		expiration.NewHandler(sweeper, log),
	)
	srv := httpserver.New(cfg.Addr, router)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info("starting motorcover", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		if err := scheduler.Run(gctx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error("server exited with error", "error", err.Error())
		os.Exit(1)
	}
	log.Info("server stopped")
}

// storage bundles the store implementations behind the service interfaces so
// the postgres and in-memory engines wire identically.
type storage struct {
	fleet    fleetservice.Store
	policies policyFullStore
	claims   claimsservice.ClaimStore
	close    func()
}

// policyFullStore is everything the policy service, claims history, and the
// sweep together require from policy storage.
type policyFullStore interface {
	policyservice.PolicyStore
	expiration.Store
}

func buildStorage(ctx context.Context, cfg config.Server, log *slog.Logger) (*storage, error) {
	if cfg.DatabaseURL == "" {
		log.Info("no database configured, using in-memory stores with seed data")
		fleet := fleetstore.NewInMemory()
		policies := policystore.NewInMemory(fleet)
		claims := claimsstore.NewInMemory()
		if err := seedDemoData(ctx, fleet, policies, claims); err != nil {
			return nil, err
		}
		return &storage{
			fleet:    fleet,
			policies: policies,
			claims:   claims,
			close:    func() {},
		}, nil
	}

	db, err := postgres.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	if err := postgres.EnsureSchema(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &storage{
		fleet:    fleetstore.NewPostgres(db),
		policies: policystore.NewPostgres(db),
		claims:   claimsstore.NewPostgres(db),
		close:    func() { _ = db.Close() },
	}, nil
}
