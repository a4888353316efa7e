package app

import (
	"context"
	"database/sql"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"newsletter-go/internal/config"
	"newsletter-go/internal/handlers"
	"newsletter-go/internal/logging"
	"newsletter-go/internal/middleware"
	"newsletter-go/internal/repository"
	"newsletter-go/internal/service"
)

type Config struct {
	Settings *config.Config
	Logger   *logging.ContextLogger
	// DB backs the Postgres repository when Repository is nil.
	DB *sql.DB
	// Repository overrides the persistence gateway. With neither DB nor
	// Repository set, an in-memory repository is used.
	Repository repository.SubscriptionRepository
	Clock      func() time.Time
}

type Application struct {
	server *http.Server
	config *Config
	repo   repository.SubscriptionRepository
}

func Build(cfg *Config) *Application {
	settings := cfg.Settings
	if settings.Application.GinMode != "" {
		gin.SetMode(settings.Application.GinMode)
	}

	var repo repository.SubscriptionRepository
	switch {
	case cfg.Repository != nil:
		repo = cfg.Repository
	case cfg.DB != nil:
		repo = repository.NewPostgresSubscriptionRepository(cfg.DB)
	default:
		repo = repository.NewInMemorySubscriptionRepository()
	}

	var opts []service.Option
	if cfg.Clock != nil {
		opts = append(opts, service.WithClock(cfg.Clock))
	}
	subscriptionService := service.NewSubscriptionService(repo, cfg.Logger, opts...)
	subscriptionHandler := handlers.NewSubscriptionHandler(subscriptionService, cfg.Logger)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(otelgin.Middleware(settings.Telemetry.ServiceName))
	router.Use(middleware.RequestLogger(cfg.Logger))

	router.GET("/health_check", handlers.HealthCheck)
	router.POST("/subscriptions",
		middleware.RateLimit(settings.RateLimit.RequestsPerSecond, settings.RateLimit.Burst),
		subscriptionHandler.Subscribe,
	)

	server := &http.Server{
		Addr:              settings.Application.Addr(),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	return &Application{
		server: server,
		config: cfg,
		repo:   repo,
	}
}

// Run binds the configured address and serves until Shutdown.
func (app *Application) Run() error {
	ln, err := net.Listen("tcp", app.server.Addr)
	if err != nil {
		return err
	}
	return app.Serve(ln)
}

// Serve accepts connections on an already bound listener until Shutdown.
func (app *Application) Serve(ln net.Listener) error {
	app.config.Logger.Info("Starting server on " + ln.Addr().String())
	if err := app.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (app *Application) Shutdown(ctx context.Context) error {
	app.config.Logger.Info("Shutting down server...")
	return app.server.Shutdown(ctx)
}

func (app *Application) GetRepo() repository.SubscriptionRepository {
	return app.repo
}
