package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/serialpm/serialpm-api/internal/auth"
	"github.com/serialpm/serialpm-api/internal/config"
	"github.com/serialpm/serialpm-api/internal/database"
	"github.com/serialpm/serialpm-api/internal/handlers"
	"github.com/serialpm/serialpm-api/internal/logging"
	"github.com/serialpm/serialpm-api/internal/middleware"
	"github.com/serialpm/serialpm-api/internal/realtime"
	"github.com/serialpm/serialpm-api/internal/repository"
	"github.com/serialpm/serialpm-api/internal/services"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

const shutdownTimeout = 15 * time.Second

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "serialpm",
		Short:         "SerialPM project management API",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context())
		},
	}

	root.AddCommand(
		&cobra.Command{
			Use:   "serve",
			Short: "Run the HTTP and websocket server (default)",
			RunE: func(cmd *cobra.Command, args []string) error {
				return runServe(cmd.Context())
			},
		},
		&cobra.Command{
			Use:   "migrate",
			Short: "Apply database migrations and exit",
			RunE: func(cmd *cobra.Command, args []string) error {
				_, db, err := bootstrap()
				if err != nil {
					return err
				}
				defer closeDB(db)
				return database.Migrate(db)
			},
		},
	)
	return root
}

// bootstrap loads configuration, configures logging and connects to the
// database.
func bootstrap() (*config.Config, *gorm.DB, error) {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return nil, nil, fmt.Errorf("invalid configuration: %w", err)
	}

	if err := logging.Setup(logging.Options{
		Level:       cfg.LogLevel,
		Format:      cfg.LogFormat,
		SentryDSN:   cfg.SentryDSN,
		Environment: cfg.GinMode,
	}); err != nil {
		return nil, nil, err
	}

	db, err := database.Connect(cfg)
	if err != nil {
		return nil, nil, err
	}
	return cfg, db, nil
}

func runServe(ctx context.Context) error {
	cfg, db, err := bootstrap()
	if err != nil {
		return err
	}
	defer logging.Flush()
	defer closeDB(db)

	if err := database.Migrate(db); err != nil {
		return err
	}

	gin.SetMode(cfg.GinMode)

	issuer := auth.NewIssuer(cfg.JWTSecret, cfg.TokenTTL)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	pushMetrics := realtime.NewMetrics(reg)

	registry := realtime.NewMemoryRegistry(pushMetrics)
	pushRouter := realtime.NewRouter(registry, pushMetrics)
	pushServer := realtime.NewServer(registry, pushRouter, pushMetrics, realtime.ServerOptions{
		BufferSize:     cfg.PushBufferSize,
		AllowedOrigins: cfg.CORSOrigins,
		Verifier:       issuer,
		RequireToken:   cfg.PushRequireToken,
	})

	userRepo := repository.NewUserRepository(db)
	orgRepo := repository.NewOrganizationRepository(db)
	projectRepo := repository.NewProjectRepository(db)
	taskRepo := repository.NewTaskRepository(db)
	messageRepo := repository.NewMessageRepository(db)

	// AI task drafting stays disabled without an API key
	aiService := services.NewAIService(cfg.OpenAIAPIKey, "")

	cors := middleware.DefaultCORSConfig()
	cors.AllowedOrigins = cfg.CORSOrigins

	engine := handlers.NewRouter(handlers.Dependencies{
		Issuer:         issuer,
		AuthService:    services.NewAuthService(userRepo, orgRepo, issuer, pushRouter),
		UserService:    services.NewUserService(userRepo),
		OrgService:     services.NewOrganizationService(orgRepo, userRepo, issuer),
		ProjectService: services.NewProjectService(projectRepo, userRepo),
		TaskService:    services.NewTaskService(taskRepo, projectRepo, userRepo, aiService),
		MessageService: services.NewMessageService(messageRepo, userRepo, pushRouter),
		Notifier:       pushRouter,
		PushServer:     pushServer,
		Gatherer:       reg,
		HTTPMetrics:    middleware.NewHTTPMetrics(reg),
		CORS:           cors,
		UploadDir:      cfg.UploadDir,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logrus.WithField("port", cfg.ServerPort).Info("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
	case <-ctx.Done():
		logrus.Info("shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logging.LogError("server_shutdown", err, nil)
	}
	// Hijacked websocket connections are not tracked by Shutdown.
	if err := registry.Close(); err != nil {
		logging.LogError("push_registry_close", err, nil)
	}

	logrus.Info("server stopped")
	return nil
}

func closeDB(db *gorm.DB) {
	sqlDB, err := db.DB()
	if err != nil {
		return
	}
	if err := sqlDB.Close(); err != nil {
		logrus.WithError(err).Warn("failed to close database")
	}
}
