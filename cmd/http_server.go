package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/rbcalderon/attendance-management/internal"
	"github.com/rbcalderon/attendance-management/internal/accountrequest"
	accountrequestpg "github.com/rbcalderon/attendance-management/internal/accountrequest/postgres"
	"github.com/rbcalderon/attendance-management/internal/attendance"
	attendancepg "github.com/rbcalderon/attendance-management/internal/attendance/postgres"
	"github.com/rbcalderon/attendance-management/internal/auth"
	"github.com/rbcalderon/attendance-management/internal/certificate"
	certificatepg "github.com/rbcalderon/attendance-management/internal/certificate/postgres"
	"github.com/rbcalderon/attendance-management/internal/core/events"
	"github.com/rbcalderon/attendance-management/internal/department"
	departmentpg "github.com/rbcalderon/attendance-management/internal/department/postgres"
	"github.com/rbcalderon/attendance-management/internal/event"
	eventpg "github.com/rbcalderon/attendance-management/internal/event/postgres"
	"github.com/rbcalderon/attendance-management/internal/excuseletter"
	excuseletterpg "github.com/rbcalderon/attendance-management/internal/excuseletter/postgres"
	"github.com/rbcalderon/attendance-management/internal/identity"
	identitypg "github.com/rbcalderon/attendance-management/internal/identity/postgres"
	"github.com/rbcalderon/attendance-management/internal/mail"
	"github.com/rbcalderon/attendance-management/internal/transport"
	"github.com/rbcalderon/attendance-management/internal/transport/rest"
	"github.com/rbcalderon/attendance-management/internal/user"
	userpg "github.com/rbcalderon/attendance-management/internal/user/postgres"
	"github.com/rbcalderon/attendance-management/pkg/logger"
)

var httpServerCmd = &cobra.Command{
	Use:   "server",
	Short: "Start HTTP server",
	Long:  `Start the HTTP server to handle API requests`,
	Run: func(cmd *cobra.Command, args []string) {
		startHTTPServer()
	},
}

type Dependencies struct {
	Config      *internal.Config
	DB          *sqlx.DB
	Router      *chi.Mux
	Handlers    rest.Handlers
	AuthService *auth.Service
	Logger      *slog.Logger
}

func startHTTPServer() {
	deps, err := initializeDependencies()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}

	rest.RegisterAllRoutes(deps.Router, deps.DB.DB, deps.Handlers, deps.AuthService,
		deps.Config.Server.AllowedOrigins, deps.Logger)

	addr := fmt.Sprintf(":%d", deps.Config.Server.Port)
	deps.Logger.Info("starting HTTP server", "address", addr)

	server := &http.Server{
		Addr:              addr,
		Handler:           deps.Router,
		ReadHeaderTimeout: deps.Config.Server.ReadHeaderTimeout,
		ReadTimeout:       deps.Config.Server.ReadTimeout,
		WriteTimeout:      deps.Config.Server.WriteTimeout,
		IdleTimeout:       deps.Config.Server.IdleTimeout,
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrChan := make(chan error, 1)
	go func() {
		serverErrChan <- server.ListenAndServe()
	}()

	select {
	case sig := <-sigChan:
		deps.Logger.Info("received signal, shutting down", "signal", sig.String())
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			deps.Logger.Error("server shutdown error", "error", err)
		}
		if err := deps.DB.Close(); err != nil {
			deps.Logger.Error("database close error", "error", err)
		}
	case err := <-serverErrChan:
		if err != nil && err != http.ErrServerClosed {
			deps.Logger.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}

	deps.Logger.Info("server stopped")
}

func initializeDependencies() (*Dependencies, error) {
	config, err := loadConfig(".")
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger.Init(config.Observability.Logging.Format, config.Observability.Logging.Level)
	appLogger := logger.LoggerWrapper()

	db, err := initDB(config.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	gormDB, err := initGorm(db)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize orm: %w", err)
	}

	eventBus := events.NewEventBus(appLogger)
	baseHandler := transport.NewBaseHandler(appLogger)

	mailer := mail.NewClient(mail.Config{
		APIURL:      config.Mail.APIURL,
		APIKey:      config.Mail.APIKey,
		SenderName:  config.Mail.SenderName,
		SenderEmail: config.Mail.SenderEmail,
		SendTimeout: config.Mail.SendTimeout,
	}, appLogger)

	tokenGen := identity.NewJWTTokenGenerator(
		config.Security.AccessTokenSecret,
		config.Security.RefreshTokenSecret,
		config.Security.AccessTokenDuration,
		config.Security.RefreshTokenDuration,
	)
	identityService := identity.NewService(identitypg.NewAccountRepository(gormDB), tokenGen, appLogger)
	authService := auth.NewService(identityService, appLogger)

	departmentService := department.NewService(departmentpg.NewDepartmentRepository(gormDB), appLogger)
	userService := user.NewService(userpg.NewUserRepository(gormDB), identityService, departmentService, appLogger)

	accountRequestService := accountrequest.NewService(
		accountrequestpg.NewAccountRequestRepository(gormDB),
		identityService,
		userService,
		departmentService,
		mailer,
		eventBus,
		accountrequest.ServiceConfig{
			BCryptCost:                 config.Security.BCryptCost,
			StrictDepartmentResolution: config.Workflow.StrictDepartmentResolution,
		},
		appLogger,
	)

	eventService := event.NewService(eventpg.NewEventRepository(gormDB), appLogger)
	attendanceService := attendance.NewService(
		attendancepg.NewAttendanceRepository(gormDB), eventService, eventBus, appLogger)

	certificateService := certificate.NewService(
		certificatepg.NewCertificateRepository(gormDB),
		userService,
		eventService,
		mailer,
		eventBus,
		certificate.ServiceConfig{
			IssuerName:    config.Certificate.IssuerName,
			SignatoryName: config.Certificate.SignatoryName,
			SignatoryRole: config.Certificate.SignatoryRole,
		},
		appLogger,
	)
	certificate.NewEventHandler(certificateService, appLogger).RegisterEventHandlers(eventBus)

	excuseLetterService := excuseletter.NewService(
		excuseletterpg.NewExcuseLetterRepository(gormDB), eventService, appLogger)

	handlers := rest.Handlers{
		Auth:           auth.NewHandler(baseHandler, authService),
		AccountRequest: accountrequest.NewHandler(baseHandler, accountRequestService),
		User:           user.NewHandler(baseHandler, userService),
		Department:     department.NewHandler(baseHandler, departmentService),
		Event:          event.NewHandler(baseHandler, eventService),
		Attendance:     attendance.NewHandler(baseHandler, attendanceService),
		Certificate:    certificate.NewHandler(baseHandler, certificateService),
		ExcuseLetter:   excuseletter.NewHandler(baseHandler, excuseLetterService),
	}

	return &Dependencies{
		Config:      config,
		DB:          db,
		Router:      chi.NewRouter(),
		Handlers:    handlers,
		AuthService: authService,
		Logger:      appLogger,
	}, nil
}

// initDB opens the pgx-backed connection pool shared by the ORM, the health
// check and the seeder.
func initDB(cfg internal.DatabaseConfig) (*sqlx.DB, error) {
	const driver = "pgx"

	dbConn, err := sqlx.Connect(driver, cfg.Source)
	if err != nil {
		return nil, fmt.Errorf("failed to open db connection: %w", err)
	}

	dbConn.SetMaxIdleConns(cfg.MaxIdleConns)
	dbConn.SetMaxOpenConns(cfg.MaxOpenConns)
	dbConn.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	dbConn.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	if err := dbConn.Ping(); err != nil {
		_ = dbConn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return dbConn, nil
}

// initGorm wraps the existing pool. TranslateError turns driver duplicate-key
// errors into gorm.ErrDuplicatedKey, which the repositories rely on.
func initGorm(db *sqlx.DB) (*gorm.DB, error) {
	return gorm.Open(gormpostgres.New(gormpostgres.Config{Conn: db.DB}), &gorm.Config{
		TranslateError: true,
	})
}
