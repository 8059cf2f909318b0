package cmd

import (
	"database/sql"
	"net"

	"github.com/vibast-solutions/ms-go-sleep/app/controller"
	"github.com/vibast-solutions/ms-go-sleep/app/database"
	"github.com/vibast-solutions/ms-go-sleep/app/metrics"
	"github.com/vibast-solutions/ms-go-sleep/app/middleware"
	"github.com/vibast-solutions/ms-go-sleep/app/repository"
	"github.com/vibast-solutions/ms-go-sleep/app/service"
	"github.com/vibast-solutions/ms-go-sleep/config"

	_ "github.com/go-sql-driver/mysql"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long:  `Start the HTTP (Echo) server for the sleep tracking service.`,
	Run:   runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(_ *cobra.Command, _ []string) {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("Failed to load configuration")
	}
	if err := cfg.ConfigureLogging(); err != nil {
		logrus.WithError(err).Fatal("Failed to configure logging")
	}

	if err := database.RunMigrations(cfg.DSN()); err != nil {
		logrus.WithError(err).Fatal("Failed to run migrations")
	}

	db, err := sql.Open("mysql", cfg.DSN())
	if err != nil {
		logrus.WithError(err).Fatal("Failed to connect to database")
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		logrus.WithError(err).Fatal("Failed to ping database")
	}

	userRepo := repository.NewUserRepository(db)
	authService := service.NewAuthService(userRepo, cfg)
	sleepService := service.NewSleepService(userRepo)

	startHTTPServer(cfg, authService, sleepService)
}

func startHTTPServer(cfg *config.Config, authService *service.AuthService, sleepService *service.SleepService) {
	e := echo.New()
	defer e.Close()
	e.HideBanner = true

	registry := prometheus.NewRegistry()
	collector := metrics.NewCollector(registry)

	e.Use(echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogURI:       true,
		LogStatus:    true,
		LogMethod:    true,
		LogRemoteIP:  true,
		LogLatency:   true,
		LogUserAgent: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			fields := logrus.Fields{
				"remote_ip":  v.RemoteIP,
				"host":       v.Host,
				"method":     v.Method,
				"uri":        v.URI,
				"status":     v.Status,
				"latency":    v.Latency.String(),
				"latency_ns": v.Latency.Nanoseconds(),
				"user_agent": v.UserAgent,
			}
			entry := logrus.WithFields(fields)
			if v.Error != nil {
				entry = entry.WithError(v.Error)
			}
			entry.Info("http_request")
			return nil
		},
	}))
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORS())
	e.Use(collector.Middleware())

	authController := controller.NewAuthController(authService)
	sleepController := controller.NewSleepController(sleepService)
	authMiddleware := middleware.NewAuthMiddleware(authService)

	e.POST("/register", authController.Register)
	e.POST("/refresh-token", authController.RefreshToken)
	e.GET("/metrics", echo.WrapHandler(metrics.Handler(registry)))

	protected := e.Group("", authMiddleware.RequireAuth)
	protected.POST("/logout", authController.Logout)
	protected.PATCH("/weekSleeping", sleepController.UpdateWeekSleeping)
	protected.PATCH("/noOfWeeks", sleepController.UpdateNoOfWeeks)
	protected.PATCH("/sleepTime", sleepController.UpdateSleepTime)
	protected.PATCH("/sleepOut", sleepController.UpdateSleepOut)
	protected.PATCH("/hours", sleepController.UpdateHours)
	protected.GET("/sleepEfficiency", sleepController.GetSleepEfficiency)

	httpAddr := net.JoinHostPort(cfg.HTTPHost, cfg.HTTPPort)
	logrus.WithField("addr", httpAddr).Info("Starting HTTP server")
	if err := e.Start(httpAddr); err != nil {
		logrus.WithError(err).Fatal("Failed to start HTTP server")
	}
}
