package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"

	"credverify/internal/callertoken"
	"credverify/internal/credential/guard"
	"credverify/internal/credential/handler"
	"credverify/internal/credential/ledger"
	"credverify/internal/credential/metrics"
	"credverify/internal/credential/service"
	"credverify/internal/platform/config"
	"credverify/internal/platform/health"
	"credverify/internal/platform/logger"
	httptransport "credverify/internal/transport/http"
	"credverify/pkg/domain"
	"credverify/pkg/platform/circuit"
	"credverify/pkg/platform/middleware/request"
	"credverify/pkg/platform/tracer"
)

const shutdownTimeout = 10 * time.Second

// main wires dependencies, exposes the HTTP router and keeps the server
// lifecycle small. Business logic lives in internal/credential.
func main() {
	cfg := config.FromEnv()
	log := logger.New()

	if err := run(cfg, log); err != nil {
		log.Error("server exited with error", "error", err)
		os.Exit(1)
	}
	log.Info("server stopped")
}

func run(cfg config.Server, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cfg.Validate(); err != nil {
		return err
	}

	log.Info("initializing credverify",
		"addr", cfg.Addr,
		"environment", cfg.Environment,
		"registry_backend", cfg.Registry.Backend,
		"admin", cfg.Issuer.AdminAddress,
		"service_account", cfg.Issuer.ServiceAddress,
	)

	admin, err := domain.ParseAddress(cfg.Issuer.AdminAddress)
	if err != nil {
		return errors.New("ISSUER_ADMIN_ADDRESS or ISSUER_DEPLOYER_ADDRESS must name the admin")
	}
	account, err := domain.ParseAddress(cfg.Issuer.ServiceAddress)
	if err != nil {
		return errors.New("ISSUER_SERVICE_ADDRESS is invalid")
	}
	g, err := guard.New(admin)
	if err != nil {
		return err
	}

	healthHandler := health.New(cfg.Environment)
	group, gctx := errgroup.WithContext(ctx)

	registry, closeRegistry, err := openRegistry(ctx, cfg, healthHandler, group, gctx, log)
	if err != nil {
		return err
	}
	defer closeRegistry()

	auditor, closeAudit, err := openAudit(cfg, healthHandler, log)
	if err != nil {
		return err
	}
	defer closeAudit()

	// Numbering resumes past the registry so a restarted ledger never reissues an id
	// that a persistent registry already maps to an earlier credential.
	chain, err := ledger.ResumeInMemory(ctx, account, domain.CredentialID(cfg.Ledger.FirstAssetID), registry)
	if err != nil {
		return err
	}
	if cfg.Registry.Backend != config.BackendMemory {
		log.Warn("ledger is the in-process model; assets issued before this start are not reachable",
			"first_asset_id", cfg.Ledger.FirstAssetID,
		)
	}
	breaker := circuit.New("ledger",
		circuit.WithFailureThreshold(cfg.Ledger.FailureThreshold),
		circuit.WithCooldown(cfg.Ledger.Cooldown),
	)

	svc, err := service.New(g, registry, ledger.NewResilient(chain, breaker, log), account,
		service.WithAuditor(auditor),
		service.WithLogger(log),
		service.WithMetrics(metrics.New(prometheus.DefaultRegisterer)),
		service.WithTracer(tracer.NewOTel(nil)),
		service.WithHoldingsReader(chain),
	)
	if err != nil {
		return err
	}

	tokens, err := callertoken.New(cfg.CallerSigningKey, cfg.CallerTokenTTL)
	if err != nil {
		return err
	}
	tokens.SetEnv(cfg.Environment)

	var optIn handler.OptInLedger
	if cfg.DevOptInEnabled && cfg.IsDev() {
		optIn = chain
		log.Warn("development opt-in route enabled")
	}

	router := httptransport.NewRouter(httptransport.Deps{
		Logger:   log,
		Verifier: tokens,
		Health:   healthHandler,
		Gatherer: prometheus.DefaultGatherer,
		Metrics:  request.NewMetrics(prometheus.DefaultRegisterer),
		Handlers: []httptransport.RouteRegistrar{handler.New(svc, optIn, log)},
	})

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	group.Go(func() error {
		log.Info("starting http server", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	group.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down server gracefully")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return group.Wait()
}
