package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/httplog/v3"

	"github.com/cmlabs-hris/attendance-backend-go/internal/config"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-backend-go/internal/fixtures"
	appHTTP "github.com/cmlabs-hris/attendance-backend-go/internal/handler/http"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/clock"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/cron"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/database"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/telemetry"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/utils"
	"github.com/cmlabs-hris/attendance-backend-go/internal/repository/postgresql"
	attendanceService "github.com/cmlabs-hris/attendance-backend-go/internal/service/attendance"
	serviceAuth "github.com/cmlabs-hris/attendance-backend-go/internal/service/auth"
	leaveService "github.com/cmlabs-hris/attendance-backend-go/internal/service/leave"
	notificationService "github.com/cmlabs-hris/attendance-backend-go/internal/service/notification"
	overtimeService "github.com/cmlabs-hris/attendance-backend-go/internal/service/overtime"
	reportService "github.com/cmlabs-hris/attendance-backend-go/internal/service/report"
	scheduleService "github.com/cmlabs-hris/attendance-backend-go/internal/service/schedule"
)

func newLogger(cfg config.AppConfig) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToUpper(cfg.LogLevel))); err != nil {
		level = slog.LevelInfo
	}

	logFormat := httplog.SchemaECS.Concise(cfg.Env != "production")
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level:       level,
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", cfg.Name),
		slog.String("version", cfg.Version),
		slog.String("env", cfg.Env),
	)
}

func main() {
	if err := run(); err != nil {
		slog.Error("Server exited with error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("error loading config: %w", err)
	}

	logger := newLogger(cfg.App)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracer, err := telemetry.InitTracer(ctx, cfg.Telemetry, cfg.App.Version)
	if err != nil {
		return fmt.Errorf("failed to init tracer: %w", err)
	}
	defer func() {
		if err := shutdownTracer(context.Background()); err != nil {
			slog.Error("Tracer shutdown failed", "error", err)
		}
	}()

	db, err := database.NewPostgreSQLDB(ctx, cfg.DatabaseURL(), database.PoolOptions{
		MaxConns: cfg.Database.MaxConns,
		MinConns: cfg.Database.MinConns,
	})
	if err != nil {
		return fmt.Errorf("error connecting to database: %w", err)
	}
	defer db.Close()

	if err := database.Migrate(ctx, db); err != nil {
		return fmt.Errorf("error running migrations: %w", err)
	}

	if _, err := fixtures.SeedAccounts(ctx, postgresql.NewAccountStore(db), fixtures.AccountsFromConfig(cfg.Bootstrap)); err != nil {
		return fmt.Errorf("error seeding accounts: %w", err)
	}

	clk, err := clock.NewFromName(cfg.Attendance.Timezone)
	if err != nil {
		return err
	}
	loc := clk.Location()

	// Repositories
	transactor := postgresql.NewTransactor(db)
	userRepo := postgresql.NewUserRepository(db)
	employeeRepo := postgresql.NewEmployeeRepository(db)
	slotRepo := postgresql.NewSlotRepository(db, loc)
	attendanceRepo := postgresql.NewAttendanceRepository(db, loc)
	historyRepo := postgresql.NewHistoryRepository(db, loc)
	balanceRepo := postgresql.NewBalanceRepository(db)
	leaveRequestRepo := postgresql.NewLeaveRequestRepository(db, loc)
	overtimeRepo := postgresql.NewOvertimeRepository(db, loc)

	// Notifications
	notifier, err := newNotifier(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize notifier: %w", err)
	}
	notificationSvc := notificationService.NewNotificationService(userRepo, notifier, notificationService.Config{
		BreakerName: cfg.Notifier.Backend + "-notifier",
		Timeout:     cfg.Notifier.BreakerTimeout,
	})

	// Services
	JWTService := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration)
	authSvc := serviceAuth.NewAuthService(userRepo, JWTService)
	scheduleSvc := scheduleService.NewScheduleService(transactor, slotRepo, employeeRepo, clk)
	attendanceSvc := attendanceService.NewAttendanceService(
		transactor,
		authSvc,
		employeeRepo,
		scheduleSvc,
		attendanceRepo,
		historyRepo,
		clk,
		attendance.Policy{
			GracePeriodWindow:  cfg.Attendance.GracePeriodWindow,
			OvertimeThreshold:  cfg.Attendance.OvertimeThreshold,
			UndertimeThreshold: cfg.Attendance.UndertimeThreshold,
		},
		utils.Geofence{
			Latitude:     cfg.Attendance.GeofenceLatitude,
			Longitude:    cfg.Attendance.GeofenceLongitude,
			RadiusMeters: cfg.Attendance.GeofenceRadiusMeters,
		},
	)
	sweeper := attendanceService.NewAbsenceSweeper(slotRepo, attendanceRepo, leaveRequestRepo, clk)
	leaveSvc := leaveService.NewLeaveService(
		transactor,
		userRepo,
		employeeRepo,
		notificationSvc,
		leaveService.NewBalanceService(balanceRepo, clk),
		leaveService.NewRequestService(leaveRequestRepo, clk),
		clk,
	)
	overtimeSvc := overtimeService.NewOvertimeService(
		transactor,
		overtimeRepo,
		attendanceRepo,
		userRepo,
		employeeRepo,
		notificationSvc,
		clk,
		cfg.Notifier.OvertimeStrict,
	)
	reportSvc := reportService.NewReportService(employeeRepo, attendanceRepo, clk)

	// Cron
	scheduler := cron.NewScheduler()
	attendanceJobs := cron.NewAttendanceJobs(sweeper, clk, cfg.Attendance.SweepAt)
	if err := attendanceJobs.RegisterJobs(scheduler); err != nil {
		return fmt.Errorf("failed to register cron jobs: %w", err)
	}
	scheduler.Start()
	defer scheduler.Stop()

	// HTTP
	router := appHTTP.NewRouter(appHTTP.RouterOptions{
		Logger:         logger,
		AllowedOrigins: cfg.App.AllowedOrigins,
		ServiceName:    cfg.Telemetry.ServiceName,
	}, JWTService, appHTTP.Handlers{
		Auth:       appHTTP.NewAuthHandler(authSvc),
		Attendance: appHTTP.NewAttendanceHandler(attendanceSvc, overtimeSvc, sweeper, clk),
		Leave:      appHTTP.NewLeaveHandler(leaveSvc),
		Schedule:   appHTTP.NewScheduleHandler(scheduleSvc, clk),
		Overtime:   appHTTP.NewOvertimeHandler(overtimeSvc),
		Report:     appHTTP.NewReportHandler(reportSvc, clk),
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		slog.Info("Server running", "addr", srv.Addr, "timezone", loc.String(), "notifier", cfg.Notifier.Backend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		return err
	case <-ctx.Done():
	}

	slog.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	slog.Info("Server exited")
	return nil
}
