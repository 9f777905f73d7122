package app

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/reservo/reservo/internal/accounts"
	"github.com/reservo/reservo/internal/auth"
	"github.com/reservo/reservo/internal/booking"
	"github.com/reservo/reservo/internal/observability"
	"github.com/reservo/reservo/internal/shared"
	"github.com/reservo/reservo/jobs"
)

// SessionCookieName is the cookie carrying the session token.
const SessionCookieName = "reservo_session"

// Deps are the infrastructure handles the application is assembled from.
// Pool may be nil when the memory storage driver is configured.
type Deps struct {
	Config    *Config
	Logger    *slog.Logger
	Redis     *redis.Client
	Pool      *pgxpool.Pool
	Notifier  booking.Notifier
	Inspector jobs.QueueInspector
	AccessLog bool
}

// Application is the assembled object graph.
type Application struct {
	Accounts *accounts.Service
	Auth     *auth.Service
	Booking  *booking.Service
	Metrics  *observability.Metrics
	Router   http.Handler
}

// Build wires repositories, services and handlers.
func Build(deps Deps) (*Application, error) {
	cfg := deps.Config
	if cfg == nil {
		return nil, errors.New("app: config required")
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	var (
		accountRepo accounts.RepositoryPort
		store       booking.Store
	)
	switch cfg.StorageDriver {
	case DriverMemory:
		accountRepo = accounts.NewMemoryRepository()
		store = booking.NewMemoryLedger()
	case DriverPostgres:
		if deps.Pool == nil {
			return nil, errors.New("app: postgres driver requires a pool")
		}
		accountRepo = accounts.NewRepository(deps.Pool)
		store = booking.NewRepository(deps.Pool)
	default:
		return nil, errors.New("app: unknown storage driver " + cfg.StorageDriver)
	}

	accountsService, err := accounts.NewService(accountRepo, cfg.BcryptCost)
	if err != nil {
		return nil, err
	}

	sessions := shared.NewSessionStore(deps.Redis, SessionCookieName, cfg.SessionSecret, cfg.SessionTTL, cfg.IsProduction())
	csrfManager := shared.NewCSRFManager(cfg.CSRFSecret)
	authService := auth.NewService(accountsService, sessions)
	authHandler := auth.NewHandler(logger, authService, sessions, csrfManager, cfg.LoginRateLimit)

	metrics := observability.NewMetrics()
	opts := []booking.Option{booking.WithLogger(logger), booking.WithRecorder(metrics)}
	if cfg.NotifyEnabled && deps.Notifier != nil {
		opts = append(opts, booking.WithNotifier(deps.Notifier))
	}
	bookingService := booking.NewService(authService, store, cfg.BookingPolicy(), opts...)
	bookingHandler := booking.NewHandler(logger, bookingService)

	router := NewRouter(RouterParams{
		Logger:         logger,
		Config:         cfg,
		Sessions:       sessions,
		CSRFManager:    csrfManager,
		AuthHandler:    authHandler,
		BookingHandler: bookingHandler,
		JobHandler:     jobs.NewHandler(deps.Inspector, logger),
		Metrics:        metrics,
		AccessLog:      deps.AccessLog,
	})

	return &Application{
		Accounts: accountsService,
		Auth:     authService,
		Booking:  bookingService,
		Metrics:  metrics,
		Router:   router,
	}, nil
}

// BootstrapAdmin provisions the configured admin account. It is a no-op
// without a password and tolerates an account that already exists.
func BootstrapAdmin(ctx context.Context, svc *accounts.Service, cfg *Config, logger *slog.Logger) error {
	if cfg.BootstrapAdminPassword == "" {
		return nil
	}
	account, err := svc.Provision(ctx, cfg.BootstrapAdminID, cfg.BootstrapAdminName, cfg.BootstrapAdminPassword, shared.RoleAdmin)
	if errors.Is(err, shared.ErrDuplicateIdentifier) {
		logger.Debug("admin account already present", slog.String("identifier", cfg.BootstrapAdminID))
		return nil
	}
	if err != nil {
		return err
	}
	logger.Info("admin account provisioned", slog.String("identifier", account.Identifier))
	return nil
}
