package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"github.com/go-co-op/gocron/v2"
	"gorm.io/gorm"

	"github.com/entitygraph/core/pkg/api"
	"github.com/entitygraph/core/pkg/auth"
	"github.com/entitygraph/core/pkg/authz"
	"github.com/entitygraph/core/pkg/config"
	"github.com/entitygraph/core/pkg/database"
	"github.com/entitygraph/core/pkg/domain"
	"github.com/entitygraph/core/pkg/health"
	"github.com/entitygraph/core/pkg/middlewares"
	"github.com/fulcrumproject/utils/confbuilder"
	"github.com/fulcrumproject/utils/logging"
)

func main() {
	configPath := flag.String("config", "", "Path to configuration file")
	flag.Parse()

	cfg, err := confbuilder.New(config.Default).
		EnvPrefix(config.EnvPrefix).
		EnvFiles(".env").
		File(configPath).
		Build()
	if err != nil {
		slog.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}

	logger := logging.NewLogger(&cfg.LogConfig)
	slog.SetDefault(logger)

	slog.Debug("API_SERVER", "value", cfg.ApiServer)

	db, err := database.NewConnection(&cfg.DBConfig)
	if err != nil {
		slog.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}

	store := database.NewGormStore(db)

	// Initialize commanders
	classCmd := domain.NewClassCommander(store, cfg.Limits)
	curatorGroupCmd := domain.NewCuratorGroupCommander(store, cfg.Limits)
	entityCmd := domain.NewEntityCommander(store, cfg.Limits)
	voucherCmd := domain.NewVoucherCommander(store)
	transferCmd := domain.NewTransferCommander(store)
	transactionCmd := domain.NewTransactionCommander(store, cfg.Limits, entityCmd)

	// Initialize authenticators
	authenticators := []auth.Authenticator{}
	for _, authType := range cfg.Authenticators {
		switch strings.TrimSpace(authType) {
		case "static":
			authenticators = append(authenticators, auth.NewStaticAuthenticator(cfg.LeadSecret))
			slog.Info("Static authentication enabled")
		default:
			slog.Warn("Unknown authenticator type in config", "type", authType)
		}
	}
	if len(authenticators) == 0 {
		slog.Warn("No authenticators enabled in configuration. API will be unprotected.")
	}
	authenticator := auth.NewCompositeAuthenticator(authenticators...)
	authorizer := authz.NewRuleBasedAuthorizer(authz.Rules)

	// Initialize handlers
	classHandlers := api.NewClassHandlers(classCmd, store.ClassRepo(), authorizer)
	curatorGroupHandlers := api.NewCuratorGroupHandlers(curatorGroupCmd, store.CuratorGroupRepo(), authorizer)
	entityHandlers := api.NewEntityHandlers(entityCmd, store.EntityRepo(), transferCmd, authorizer)
	voucherHandlers := api.NewVoucherHandlers(voucherCmd, store.VoucherRepo(), authorizer)
	transactionHandlers := api.NewTransactionHandlers(transactionCmd, authorizer)

	serverError := make(chan error, 1)

	var server *http.Server
	var healthServer *http.Server
	if cfg.ApiServer {
		server = BuildHttpServer(&cfg, authenticator, classHandlers, curatorGroupHandlers, entityHandlers, voucherHandlers, transactionHandlers, logger)
		go func() {
			slog.Info("Server starting", "port", cfg.Port)
			if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				slog.Error("Failed to start server", "error", err)
				serverError <- err
			}
		}()

		healthServer = buildHealthServer(&cfg, db, authenticators)
		go func() {
			slog.Info("Health server starting", "port", cfg.HealthPort)
			if err := healthServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				slog.Error("Failed to start health server", "error", err)
				serverError <- err
			}
		}()
	}

	var wg sync.WaitGroup

	scheduler, err := gocron.NewScheduler()
	if err != nil {
		slog.Error("Failed to create scheduler", "error", err)
		serverError <- err
	}

	task := VoucherReconciliationTask(store, &wg)
	if err := ScheduleWork(task, &scheduler, 15*time.Minute, "voucher_reconciliation"); err != nil {
		slog.Error("Failed to schedule work", "error", err)
		serverError <- err
	}
	go func() {
		scheduler.Start()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverError:
		slog.Error("Server error", "error", err)
		os.Exit(1)
	case <-stop:
		slog.Info("Shutting down server...")
	}

	if server != nil {
		serverCtx, serverStopCtx := context.WithCancel(context.Background())
		go func() {
			shutdownCtx, shutdownStopCtx := context.WithTimeout(serverCtx, cfg.ShutdownTimeout)
			go func() {
				<-shutdownCtx.Done()
				if shutdownCtx.Err() == context.DeadlineExceeded {
					slog.Error("Server shutdown timed out")
				}
			}()
			slog.Debug("HTTP Server shutdown started")
			if err := server.Shutdown(shutdownCtx); err != nil {
				slog.Error("Failed to shutdown server", "error", err)
			}
			serverStopCtx()
			shutdownStopCtx()
		}()
		<-serverCtx.Done()
		slog.Debug("HTTP Server shutdown completed")
	}

	if healthServer != nil {
		serverCtx, serverStopCtx := context.WithCancel(context.Background())
		go func() {
			shutdownCtx, shutdownStopCtx := context.WithTimeout(serverCtx, cfg.ShutdownTimeout)
			go func() {
				<-shutdownCtx.Done()
				if shutdownCtx.Err() == context.DeadlineExceeded {
					slog.Error("Health Server shutdown timed out")
				}
			}()
			slog.Debug("HEALTH Server shutdown started")
			if err := healthServer.Shutdown(shutdownCtx); err != nil {
				slog.Error("Failed to shutdown health server", "error", err)
			}
			serverStopCtx()
			shutdownStopCtx()
		}()
		<-serverCtx.Done()
		slog.Debug("HEALTH Server shutdown completed")
	}

	wg.Wait()
}

func BuildHttpServer(
	cfg *config.Config,
	ath auth.Authenticator,
	classHandlers *api.ClassHandlers,
	curatorGroupHandlers *api.CuratorGroupHandlers,
	entityHandlers *api.EntityHandlers,
	voucherHandlers *api.VoucherHandlers,
	transactionHandlers *api.TransactionHandlers,
	logger *slog.Logger,
) *http.Server {
	r := chi.NewRouter()

	r.Use(
		middleware.RequestID,
		middleware.RequestLogger(&logging.SlogFormatter{Logger: logger}),
		middleware.RealIP,
		middleware.Recoverer,
		render.SetContentType(render.ContentTypeJSON),
	)

	authMiddleware := middlewares.Auth(ath)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(authMiddleware)
		r.Route("/classes", func(r chi.Router) {
			classHandlers.Routes(r, curatorGroupHandlers.MaintainerRoutes, voucherHandlers.Routes)
		})
		r.Route("/curator-groups", curatorGroupHandlers.Routes)
		r.Route("/entities", entityHandlers.Routes)
		r.Route("/transactions", transactionHandlers.Routes)
	})

	return &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: r,
	}
}

func buildHealthServer(cfg *config.Config, db *gorm.DB, authenticators []auth.Authenticator) *http.Server {
	healthDeps := &health.PrimaryDependencies{
		DB:             db,
		Authenticators: authenticators,
	}
	healthChecker := health.NewHealthChecker(healthDeps)
	healthHandler := health.NewHandler(healthChecker)

	healthRouter := chi.NewRouter()
	healthRouter.Use(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Recoverer,
		render.SetContentType(render.ContentTypeJSON),
	)
	healthRouter.Get("/healthz", healthHandler.HealthHandler)
	healthRouter.Get("/ready", healthHandler.ReadinessHandler)

	return &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.HealthPort),
		Handler: healthRouter,
	}
}

func ScheduleWork(task gocron.Task, scheduler *gocron.Scheduler, duration time.Duration, jobName string) error {
	j, err := (*scheduler).NewJob(
		gocron.DurationJob(duration),
		task,
		gocron.WithName(jobName),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		slog.Error("Failed to create job", "error", err)
		return err
	}

	slog.Info("Job ID", "id", j.ID())
	return nil
}

// VoucherReconciliationTask periodically scans every entity creation voucher
// and logs any that somehow exceeded its own ceiling. EntitiesCreated can
// never outrun MaximumEntitiesCount when UpdateCeiling and Create run
// through the same store.Atomic transaction, so this is a self-check rather
// than a corrective pass: a hit here means a bug upstream, not an expected
// steady-state event.
func VoucherReconciliationTask(store domain.Store, wg *sync.WaitGroup) gocron.Task {
	task := gocron.NewTask(
		func(store domain.Store, wg *sync.WaitGroup) {
			wg.Add(1)
			defer wg.Done()
			ctx := context.Background()

			slog.Info("Reconciling entity creation vouchers")
			page := &domain.PageReq{Page: 1, PageSize: 200}
			overCeiling := 0
			for {
				res, err := store.VoucherRepo().List(ctx, page)
				if err != nil {
					slog.Error("Failed to list vouchers", "error", err)
					return
				}
				for _, v := range res.Items {
					if v.EntitiesCreated > v.MaximumEntitiesCount {
						overCeiling++
						slog.Error("Voucher exceeds its own ceiling",
							"classId", v.ClassID, "controllerKind", v.ControllerKind,
							"entitiesCreated", v.EntitiesCreated, "maximumEntitiesCount", v.MaximumEntitiesCount)
					}
				}
				if !res.HasNext {
					break
				}
				page.Page++
			}
			if overCeiling == 0 {
				slog.Info("Voucher reconciliation complete", "overCeiling", 0)
			}
		},
		store,
		wg,
	)

	return task
}
