package cmd

import (
	"context"
	"database/sql"
	"net"
	"time"

	"github.com/vibast-solutions/ms-go-signup/app/controller"
	"github.com/vibast-solutions/ms-go-signup/app/mailer"
	"github.com/vibast-solutions/ms-go-signup/app/repository"
	"github.com/vibast-solutions/ms-go-signup/app/service"
	"github.com/vibast-solutions/ms-go-signup/config"

	_ "github.com/go-sql-driver/mysql"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long:  `Start the web server for registration, email confirmation, and login.`,
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
	if err := configureLogging(cfg); err != nil {
		logrus.WithError(err).Fatal("Failed to configure logging")
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
	confirmationRepo := repository.NewConfirmationRepository(db)
	smtpMailer := mailer.NewSMTPMailer(cfg.SMTPHost, cfg.SMTPAddr(), cfg.SMTPUsername, cfg.SMTPPassword, cfg.SMTPFrom)
	signupService := service.NewSignupService(db, userRepo, confirmationRepo, smtpMailer, cfg)

	if cfg.PruneInterval > 0 {
		go runPruneLoop(signupService, cfg.PruneInterval)
	}

	startHTTPServer(cfg, signupService)
}

func startHTTPServer(cfg *config.Config, signupService *service.SignupService) {
	e := echo.New()
	defer e.Close()
	e.HideBanner = true

	renderer, err := controller.NewRenderer(cfg.TemplatesDir)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to parse templates")
	}
	e.Renderer = renderer
	e.HTTPErrorHandler = controller.HTTPErrorHandler

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

	signupController := controller.NewSignupController(signupService)

	e.GET("/", signupController.Index)
	e.GET("/a", signupController.LoginPage)
	e.GET("/register", signupController.RegisterPage)
	e.POST("/register", signupController.Register)
	e.GET("/confirm-email/:code", signupController.ConfirmEmail)
	e.POST("/confirm-email/:code", signupController.ConfirmEmail)
	e.POST("/login", signupController.Login)
	e.POST("/resend-confirmation", signupController.ResendConfirmation)

	httpAddr := net.JoinHostPort(cfg.HTTPHost, cfg.HTTPPort)
	logrus.WithField("addr", httpAddr).Info("Starting HTTP server")
	if err := e.Start(httpAddr); err != nil {
		logrus.WithError(err).Fatal("Failed to start HTTP server")
	}
}

func runPruneLoop(signupService *service.SignupService, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for range ticker.C {
		removed, err := signupService.PruneConfirmations(context.Background())
		if err != nil {
			logrus.WithError(err).Error("Confirmation pruning failed")
			continue
		}
		if removed > 0 {
			logrus.WithField("removed", removed).Info("Pruned confirmation records")
		}
	}
}
