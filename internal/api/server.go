// Package api provides the HTTP API server implementation.
package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/captcha-dashboard/internal/adapter"
	"github.com/captcha-dashboard/internal/circuitbreaker"
	"github.com/captcha-dashboard/internal/logging"
	"github.com/captcha-dashboard/internal/metrics"
	"github.com/captcha-dashboard/internal/models"
	"github.com/captcha-dashboard/internal/service"
	"github.com/gorilla/mux"
)

// Service interfaces for dependency injection and testing

// StatsServiceInterface defines the dashboard summary operation
type StatsServiceInterface interface {
	GetDashboardStats(ctx context.Context) (*models.DashboardStats, error)
}

// JobServiceInterface defines the job lifecycle operations
type JobServiceInterface interface {
	CreateJob(ctx context.Context, req *service.CreateJobRequest) (*models.Job, error)
	GetJob(ctx context.Context, id string) (*models.Job, error)
	ListJobs(ctx context.Context, status string) ([]*models.Job, error)
	DeleteJob(ctx context.Context, id string) error
	ProcessJob(ctx context.Context, id string) (*models.Job, error)
}

// PlatformServiceInterface defines the platform operations
type PlatformServiceInterface interface {
	CreatePlatform(ctx context.Context, req *service.CreatePlatformRequest) (*models.Platform, error)
	GetPlatform(ctx context.Context, id string) (*models.Platform, error)
	ListPlatforms(ctx context.Context) ([]*models.Platform, error)
	UpdatePlatform(ctx context.Context, id string, req *service.UpdatePlatformRequest) (*models.Platform, error)
	DeletePlatform(ctx context.Context, id string) error
}

// TransactionServiceInterface defines the ledger read operations
type TransactionServiceInterface interface {
	ListTransactions(ctx context.Context) ([]*models.Transaction, error)
	GetTransaction(ctx context.Context, id string) (*models.Transaction, error)
}

// WithdrawalServiceInterface defines the payout operations
type WithdrawalServiceInterface interface {
	RequestWithdrawal(ctx context.Context, req *service.WithdrawalRequest) (*models.Transaction, error)
	ListWithdrawalMethods() []service.WithdrawalMethod
}

// ActivityServiceInterface defines the audit trail read operation
type ActivityServiceInterface interface {
	ListActivityLogs(ctx context.Context, limit int) ([]*models.ActivityLog, error)
}

// SettingsServiceInterface defines the settings operations
type SettingsServiceInterface interface {
	GetAutoProcess(ctx context.Context) (bool, error)
	SetAutoProcess(ctx context.Context, enabled bool) (bool, error)
}

// UserServiceInterface defines the account read operation
type UserServiceInterface interface {
	GetCurrentUser(ctx context.Context) (*models.User, error)
}

// Services bundles the handlers' dependencies. Payments is optional; when
// nil the /paypal routes are not registered. Breakers are reported on /health.
type Services struct {
	Stats        StatsServiceInterface
	Jobs         JobServiceInterface
	Platforms    PlatformServiceInterface
	Transactions TransactionServiceInterface
	Withdrawals  WithdrawalServiceInterface
	Activity     ActivityServiceInterface
	Settings     SettingsServiceInterface
	Users        UserServiceInterface
	Payments     adapter.PaymentProvider
	Breakers     []adapter.BreakerReporter
}

// Server represents the HTTP API server.
type Server struct {
	router     *mux.Router
	handler    http.Handler
	httpServer *http.Server
	services   *Services
	config     *ServerConfig
}

// ServerConfig holds server configuration.
type ServerConfig struct {
	Host              string
	Port              string
	ReadTimeout       time.Duration
	WriteTimeout      time.Duration
	IdleTimeout       time.Duration
	ShutdownTimeout   time.Duration
	RequestsPerSecond float64
	Burst             int
	AllowedOrigins    []string
}

// NewServer creates a new API server instance.
func NewServer(config *ServerConfig, services *Services) *Server {
	s := &Server{
		router:   mux.NewRouter(),
		services: services,
		config:   config,
	}

	s.setupRouter()

	return s
}

// setupRouter configures the router with middleware and routes
func (s *Server) setupRouter() {
	rateLimiter := NewRateLimiter(s.config.RequestsPerSecond, s.config.Burst)

	// Set up middleware (order matters!)
	s.router.Use(LoggingMiddleware)
	s.router.Use(RecoveryMiddleware)
	s.router.Use(metrics.InstrumentHandler)
	s.router.Use(RateLimitMiddleware(rateLimiter))
	s.router.Use(CompressionMiddleware)

	s.router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, http.StatusNotFound, "NOT_FOUND", "route not found", nil)
	})
	s.router.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "method not allowed", nil)
	})

	s.setupRoutes()

	s.handler = CORSMiddleware(s.config.AllowedOrigins)(s.router)

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%s", s.config.Host, s.config.Port),
		Handler:      s.handler,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
		IdleTimeout:  s.config.IdleTimeout,
	}
}

// setupRoutes configures all API routes.
func (s *Server) setupRoutes() {
	s.router.HandleFunc("/health", s.handleHealth).Methods("GET")
	s.router.Handle("/metrics", metrics.Handler()).Methods("GET")

	api := s.router.PathPrefix("/api").Subrouter()

	api.HandleFunc("/stats", s.handleGetStats).Methods("GET")
	api.HandleFunc("/user", s.handleGetUser).Methods("GET")

	// Job endpoints
	api.HandleFunc("/jobs", s.handleListJobs).Methods("GET")
	api.HandleFunc("/jobs", s.handleCreateJob).Methods("POST")
	api.HandleFunc("/jobs/{id}", s.handleGetJob).Methods("GET")
	api.HandleFunc("/jobs/{id}", s.handleDeleteJob).Methods("DELETE")
	api.HandleFunc("/jobs/{id}/process", s.handleProcessJob).Methods("POST")

	// Platform endpoints
	api.HandleFunc("/platforms", s.handleListPlatforms).Methods("GET")
	api.HandleFunc("/platforms", s.handleCreatePlatform).Methods("POST")
	api.HandleFunc("/platforms/{id}", s.handleGetPlatform).Methods("GET")
	api.HandleFunc("/platforms/{id}", s.handleUpdatePlatform).Methods("PATCH")
	api.HandleFunc("/platforms/{id}", s.handleDeletePlatform).Methods("DELETE")

	// Ledger endpoints
	api.HandleFunc("/transactions", s.handleListTransactions).Methods("GET")
	api.HandleFunc("/transactions/{id}", s.handleGetTransaction).Methods("GET")
	api.HandleFunc("/withdrawals/methods", s.handleListWithdrawalMethods).Methods("GET")
	api.HandleFunc("/withdrawals", s.handleCreateWithdrawal).Methods("POST")

	api.HandleFunc("/activity-logs", s.handleListActivityLogs).Methods("GET")

	api.HandleFunc("/settings/auto-process", s.handleGetAutoProcess).Methods("GET")
	api.HandleFunc("/settings/auto-process", s.handleSetAutoProcess).Methods("POST")

	// Payment endpoints exist only when a provider is configured
	if s.services.Payments != nil {
		s.router.HandleFunc("/paypal/setup", s.handlePayPalSetup).Methods("GET")
		s.router.HandleFunc("/paypal/order", s.handlePayPalCreateOrder).Methods("POST")
		s.router.HandleFunc("/paypal/order/{orderID}/capture", s.handlePayPalCaptureOrder).Methods("POST")
	}
}

// handleHealth handles health check requests. An open breaker marks the
// service degraded but the check still answers 200.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := "healthy"
	breakers := make(map[string]*circuitbreaker.Stats, len(s.services.Breakers))
	for _, reporter := range s.services.Breakers {
		cb := reporter.Breaker()
		if cb.GetState() == circuitbreaker.StateOpen {
			status = "degraded"
		}
		breakers[cb.Name()] = cb.GetStats()
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":   status,
		"service":  "captcha-dashboard",
		"payments": s.services.Payments != nil,
		"breakers": breakers,
	})
}

// Handler returns the fully wrapped HTTP handler
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	logging.WithField("addr", s.httpServer.Addr).Info("Starting API server")
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	logging.Info("Shutting down API server...")
	return s.httpServer.Shutdown(ctx)
}
