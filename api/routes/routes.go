package routes

import (
	"time"

	"passvault/api/handler"
	"passvault/api/middleware"

	"github.com/labstack/echo/v4"
	"golang.org/x/time/rate"
)

type Router struct {
	Echo           *echo.Echo
	Auth           *handler.AuthHandler
	Vault          *handler.VaultHandler
	AuthMiddleware middleware.AuthMiddleware
	AuthRate       *middleware.RateLimiter
	LoginRate      *middleware.RateLimiter
}

func NewRouter(e *echo.Echo, authHandler *handler.AuthHandler, vaultHandler *handler.VaultHandler, authMiddleware middleware.AuthMiddleware) *Router {
	return &Router{
		Echo:           e,
		Auth:           authHandler,
		Vault:          vaultHandler,
		AuthMiddleware: authMiddleware,
		AuthRate:       middleware.NewRateLimiter(rate.Limit(5), 10, 5*time.Minute),
		LoginRate:      middleware.NewRateLimiter(rate.Limit(2), 4, 10*time.Minute),
	}
}

func (r *Router) RegisterRoutes() {
	e := r.Echo

	e.POST("/auth/register", r.Auth.Register, r.AuthRate.Middleware())
	e.POST("/auth/verify-email", r.Auth.VerifyEmail, r.AuthRate.Middleware())
	e.POST("/auth/login", r.Auth.Login, r.LoginRate.Middleware())
	e.POST("/auth/logout", r.Auth.Logout, r.AuthMiddleware.RequireAuth)
	e.POST("/auth/password/forgot", r.Auth.PasswordForgot, r.LoginRate.Middleware())
	e.POST("/auth/password/reset", r.Auth.PasswordReset, r.AuthRate.Middleware())

	e.POST("/2fa/setup", r.Auth.SetupTwoFactor, r.AuthMiddleware.RequireAuth)
	e.POST("/2fa/verify", r.Auth.VerifyTwoFactor, r.AuthMiddleware.RequireAuth)
	e.POST("/2fa/disable", r.Auth.DisableTwoFactor, r.AuthMiddleware.RequireAuth)

	e.POST("/session/introspect", r.Auth.IntrospectSession, r.AuthRate.Middleware())
	e.POST("/session/refresh", r.Auth.RenewSession, r.AuthRate.Middleware())

	e.GET("/me", r.Auth.Me, r.AuthMiddleware.RequireAuth)
	e.GET("/admin/users", r.Auth.AdminListUsers, r.AuthMiddleware.RequireAuth, middleware.RequireRole("admin"))

	e.GET("/vault", r.Vault.List, r.AuthMiddleware.RequireAuth)
	e.POST("/vault", r.Vault.Create, r.AuthMiddleware.RequireAuth)
	e.DELETE("/vault/:id", r.Vault.Delete, r.AuthMiddleware.RequireAuth)
}
