package main

import (
	"net/http"
	"os"
	"time"

	"passvault/api/handler"
	apiMiddleware "passvault/api/middleware"
	"passvault/api/routes"
	"passvault/config"
	"passvault/internal/repository"
	"passvault/internal/service"
	"passvault/internal/utils"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/sirupsen/logrus"
)

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetOutput(os.Stdout)

	db := config.ConnectDB(logger)
	validate := validator.New()

	sessionSecret := []byte(os.Getenv("SESSION_SECRET"))
	if len(sessionSecret) == 0 {
		logger.Fatal("SESSION_SECRET is required")
	}
	issuer := os.Getenv("TOKEN_ISSUER")
	if issuer == "" {
		issuer = "passvault"
	}

	sessionTokens := &utils.JWTManager{
		Secret:     sessionSecret,
		Issuer:     issuer,
		SessionTTL: time.Hour,
	}

	userRepo := repository.NewUserRepository(db)
	backupCodeRepo := repository.NewBackupCodeRepository(db)
	oauthRepo := repository.NewOAuthAccountRepository(db)
	verificationRepo := repository.NewVerificationTokenRepository(db)
	vaultRepo := repository.NewVaultItemRepository(db)
	securityRepo := repository.NewSecurityLogRepository(db)

	passwordHasher := service.BcryptPasswordHasher{}
	clock := service.RealClock{}
	totpProvider := service.NewTOTPProvider(os.Getenv("TOTP_ISSUER"))
	backupCodes := service.NewBackupCodeService(backupCodeRepo, passwordHasher, clock)
	emailSender := service.NewResendEmailSender(
		os.Getenv("RESEND_API_KEY"),
		os.Getenv("MAIL_FROM"),
		os.Getenv("APP_BASE_URL"),
	)

	authService := service.NewAuthService(
		userRepo,
		verificationRepo,
		securityRepo,
		backupCodes,
		emailSender,
		passwordHasher,
		totpProvider,
		logger,
		clock,
		service.AuthConfig{
			VerificationTokenTTL: 24 * time.Hour,
			ResetTokenTTL:        30 * time.Minute,
		},
	)
	sessionService := service.NewSessionService(userRepo, oauthRepo, sessionTokens)
	vaultService := service.NewVaultService(vaultRepo)

	authHandler := handler.NewAuthHandler(authService, sessionService, validate)
	authHandler.CookieDomain = os.Getenv("COOKIE_DOMAIN")
	authHandler.SecureCookies = os.Getenv("COOKIE_SECURE") != "false"
	vaultHandler := handler.NewVaultHandler(vaultService, validate)

	app := echo.New()
	app.HideBanner = true
	app.HidePort = true
	app.Use(echoMiddleware.Recover())
	app.Use(echoMiddleware.RequestLoggerWithConfig(echoMiddleware.RequestLoggerConfig{
		LogStatus:   true,
		LogMethod:   true,
		LogURI:      true,
		LogRemoteIP: true,
		LogError:    true,
		HandleError: true,
		LogValuesFunc: func(c echo.Context, v echoMiddleware.RequestLoggerValues) error {
			entry := logger.WithFields(logrus.Fields{
				"status": v.Status,
				"method": v.Method,
				"uri":    v.URI,
				"ip":     v.RemoteIP,
			})
			if v.Error != nil {
				entry.WithError(v.Error).Error("request")
				return nil
			}
			entry.Info("request")
			return nil
		},
	}))

	authMiddleware := apiMiddleware.AuthMiddleware{
		JWT:               sessionTokens,
		SessionCookieName: authHandler.SessionCookieName,
	}
	router := routes.NewRouter(app, authHandler, vaultHandler, authMiddleware)
	router.RegisterRoutes()

	addr := os.Getenv("HTTP_ADDR")
	if addr == "" {
		addr = ":8080"
	}
	server := &http.Server{
		Addr:              addr,
		ReadHeaderTimeout: 5 * time.Second,
	}

	logger.WithField("addr", addr).Info("server started")
	if err := app.StartServer(server); err != nil {
		logger.WithError(err).Fatal("server stopped")
	}
}
