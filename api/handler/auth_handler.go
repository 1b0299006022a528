package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"passvault/api/middleware"
	"passvault/internal/dto"
	"passvault/internal/service"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

type AuthHandler struct {
	Service           *service.AuthService
	Sessions          *service.SessionService
	Validate          *validator.Validate
	SessionCookieName string
	CookieDomain      string
	SecureCookies     bool
	SameSite          http.SameSite
}

func NewAuthHandler(svc *service.AuthService, sessions *service.SessionService, validate *validator.Validate) *AuthHandler {
	return &AuthHandler{
		Service:           svc,
		Sessions:          sessions,
		Validate:          validate,
		SessionCookieName: "session_token",
		SecureCookies:     true,
		SameSite:          http.SameSiteStrictMode,
	}
}

func (h *AuthHandler) Register(c echo.Context) error {
	var req dto.RegisterRequest
	if err := decodeJSON(c, &req); err != nil {
		return writeError(c, http.StatusBadRequest, err)
	}
	if err := h.validate(req); err != nil {
		return writeError(c, http.StatusBadRequest, err)
	}
	input := service.RegisterInput{Name: req.Name, Email: req.Email, Password: req.Password}
	if err := h.Service.Register(c.Request().Context(), input); err != nil {
		return writeServiceError(c, err)
	}
	return c.NoContent(http.StatusCreated)
}

func (h *AuthHandler) VerifyEmail(c echo.Context) error {
	var req dto.VerifyEmailRequest
	if err := decodeJSON(c, &req); err != nil {
		return writeError(c, http.StatusBadRequest, err)
	}
	if err := h.validate(req); err != nil {
		return writeError(c, http.StatusBadRequest, err)
	}
	if err := h.Service.VerifyEmail(c.Request().Context(), req.Token); err != nil {
		return writeServiceError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// Login surfaces the tri-state authorization outcome: 401 on any rejection
// (one generic message regardless of cause), a two_factor signal when the
// second factor is still missing, or a minted session token.
func (h *AuthHandler) Login(c echo.Context) error {
	var req dto.LoginRequest
	if err := decodeJSON(c, &req); err != nil {
		return writeInvalidCredentials(c)
	}
	if err := h.validate(req); err != nil {
		// Malformed credential input collapses to the same rejection as a
		// wrong password; field detail would aid enumeration.
		return writeInvalidCredentials(c)
	}

	input := service.AuthorizeInput{
		Email:         req.Email,
		Password:      req.Password,
		TwoFactorCode: req.TwoFactorCode,
		BackupCode:    req.BackupCode,
	}
	outcome := h.Service.Authorize(c.Request().Context(), input, stringPtr(c.RealIP()))

	switch outcome.Status {
	case service.OutcomePendingTwoFactor:
		return c.JSON(http.StatusOK, dto.LoginResponse{TwoFactor: true})
	case service.OutcomeAuthorized:
		token, expiresAt, err := h.Sessions.Issue(c.Request().Context(), outcome.User)
		if err != nil {
			return writeServiceError(c, err)
		}
		h.setSessionCookie(c, token, expiresAt)
		return c.JSON(http.StatusOK, dto.LoginResponse{
			Token:     token,
			ExpiresIn: int64(time.Until(expiresAt).Seconds()),
		})
	default:
		return writeInvalidCredentials(c)
	}
}

func (h *AuthHandler) Logout(c echo.Context) error {
	userID, ok := middleware.UserIDFromContext(c)
	if !ok {
		return writeError(c, http.StatusUnauthorized, errors.New("unauthorized"))
	}
	h.Service.RecordLogout(c.Request().Context(), userID, stringPtr(c.RealIP()))
	h.clearSessionCookie(c)
	return c.NoContent(http.StatusNoContent)
}

func (h *AuthHandler) PasswordForgot(c echo.Context) error {
	var req dto.PasswordForgotRequest
	if err := decodeJSON(c, &req); err != nil {
		return writeError(c, http.StatusBadRequest, err)
	}
	if err := h.validate(req); err != nil {
		return writeError(c, http.StatusBadRequest, err)
	}
	if err := h.Service.RequestPasswordReset(c.Request().Context(), req.Email); err != nil {
		return writeServiceError(c, err)
	}
	return c.NoContent(http.StatusAccepted)
}

func (h *AuthHandler) PasswordReset(c echo.Context) error {
	var req dto.PasswordResetRequest
	if err := decodeJSON(c, &req); err != nil {
		return writeError(c, http.StatusBadRequest, err)
	}
	if err := h.validate(req); err != nil {
		return writeError(c, http.StatusBadRequest, err)
	}
	if err := h.Service.ResetPassword(c.Request().Context(), req.Token, req.NewPassword); err != nil {
		return writeServiceError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *AuthHandler) SetupTwoFactor(c echo.Context) error {
	userID, ok := middleware.UserIDFromContext(c)
	if !ok {
		return writeError(c, http.StatusUnauthorized, errors.New("unauthorized"))
	}
	setup, err := h.Service.SetupTwoFactor(c.Request().Context(), userID)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, dto.TwoFactorSetupResponse{
		Secret:     setup.Secret,
		OtpauthURL: setup.OtpauthURL,
	})
}

// VerifyTwoFactor confirms the pending secret and returns the backup codes.
// The codes are shown exactly once; only their hashes survive.
func (h *AuthHandler) VerifyTwoFactor(c echo.Context) error {
	userID, ok := middleware.UserIDFromContext(c)
	if !ok {
		return writeError(c, http.StatusUnauthorized, errors.New("unauthorized"))
	}
	var req dto.TwoFactorVerifyRequest
	if err := decodeJSON(c, &req); err != nil {
		return writeError(c, http.StatusBadRequest, err)
	}
	if err := h.validate(req); err != nil {
		return writeError(c, http.StatusBadRequest, err)
	}
	codes, err := h.Service.ConfirmTwoFactor(c.Request().Context(), userID, req.Token)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, dto.TwoFactorVerifyResponse{Enabled: true, BackupCodes: codes})
}

func (h *AuthHandler) DisableTwoFactor(c echo.Context) error {
	userID, ok := middleware.UserIDFromContext(c)
	if !ok {
		return writeError(c, http.StatusUnauthorized, errors.New("unauthorized"))
	}
	if err := h.Service.DisableTwoFactor(c.Request().Context(), userID); err != nil {
		return writeServiceError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// IntrospectSession is a pure read over the presented token.
func (h *AuthHandler) IntrospectSession(c echo.Context) error {
	token := middleware.ExtractSessionToken(c, h.SessionCookieName)
	if token == "" {
		return c.JSON(http.StatusUnauthorized, dto.IntrospectResponse{Valid: false})
	}
	introspection := h.Sessions.Introspect(token)
	if !introspection.Valid {
		return c.JSON(http.StatusUnauthorized, dto.IntrospectResponse{Valid: false})
	}
	return c.JSON(http.StatusOK, dto.IntrospectResponse{
		Valid:   true,
		Expires: introspection.ExpiresAt.Format(time.RFC3339),
		User: &dto.IntrospectUser{
			ID:    introspection.Claims.Subject,
			Email: introspection.Claims.Email,
			Name:  introspection.Claims.Name,
		},
	})
}

// RenewSession exchanges a still-valid token for a fresh one with claims
// recomputed from the current user record.
func (h *AuthHandler) RenewSession(c echo.Context) error {
	token := middleware.ExtractSessionToken(c, h.SessionCookieName)
	if token == "" {
		return writeError(c, http.StatusUnauthorized, errors.New("missing session token"))
	}
	renewed, expiresAt, err := h.Sessions.Renew(c.Request().Context(), token)
	if err != nil {
		return writeServiceError(c, err)
	}
	h.setSessionCookie(c, renewed, expiresAt)
	return c.JSON(http.StatusOK, dto.LoginResponse{
		Token:     renewed,
		ExpiresIn: int64(time.Until(expiresAt).Seconds()),
	})
}

func (h *AuthHandler) Me(c echo.Context) error {
	userID, ok := middleware.UserIDFromContext(c)
	if !ok {
		return writeError(c, http.StatusUnauthorized, errors.New("unauthorized"))
	}
	view, err := h.Sessions.RefreshClaims(c.Request().Context(), userID)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, dto.SessionUserFromView(view))
}

func (h *AuthHandler) AdminListUsers(c echo.Context) error {
	limit, offset := parseLimitOffset(c)
	users, err := h.Service.ListUsers(c.Request().Context(), limit, offset)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, dto.UserResponsesFromEntities(users))
}

func (h *AuthHandler) validate(payload any) error {
	if h.Validate == nil {
		return nil
	}
	return h.Validate.Struct(payload)
}

func (h *AuthHandler) setSessionCookie(c echo.Context, token string, expiresAt time.Time) {
	if token == "" {
		return
	}
	maxAge := int(time.Until(expiresAt).Seconds())
	if maxAge < 0 {
		maxAge = 0
	}
	c.SetCookie(&http.Cookie{
		Name:     h.SessionCookieName,
		Value:    token,
		Path:     "/",
		Domain:   h.CookieDomain,
		MaxAge:   maxAge,
		Expires:  expiresAt,
		HttpOnly: true,
		Secure:   h.SecureCookies,
		SameSite: h.SameSite,
	})
}

func (h *AuthHandler) clearSessionCookie(c echo.Context) {
	c.SetCookie(&http.Cookie{
		Name:     h.SessionCookieName,
		Value:    "",
		Path:     "/",
		Domain:   h.CookieDomain,
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.SecureCookies,
		SameSite: h.SameSite,
	})
}

func decodeJSON(c echo.Context, target any) error {
	decoder := json.NewDecoder(c.Request().Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(target)
}

func writeError(c echo.Context, status int, err error) error {
	return c.JSON(status, map[string]string{"message": err.Error()})
}

func writeInvalidCredentials(c echo.Context) error {
	return writeError(c, http.StatusUnauthorized, service.ErrInvalidCredentials)
}

func writeServiceError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, service.ErrInvalidInput):
		return writeError(c, http.StatusBadRequest, err)
	case errors.Is(err, service.ErrInvalidCredentials):
		return writeError(c, http.StatusUnauthorized, err)
	case errors.Is(err, service.ErrInvalidToken):
		return writeError(c, http.StatusUnauthorized, err)
	case errors.Is(err, service.ErrEmailAlreadyRegistered):
		return writeError(c, http.StatusConflict, err)
	case errors.Is(err, service.ErrTwoFactorAlreadyEnabled),
		errors.Is(err, service.ErrTwoFactorNotConfigured),
		errors.Is(err, service.ErrInvalidTwoFactorCode):
		return writeError(c, http.StatusBadRequest, err)
	case errors.Is(err, service.ErrUserNotFound), errors.Is(err, service.ErrItemNotFound):
		return writeError(c, http.StatusNotFound, err)
	}
	// Internal causes stay in the server log.
	return writeError(c, http.StatusInternalServerError, errors.New("something went wrong"))
}

func parseLimitOffset(c echo.Context) (int, int) {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	offset, _ := strconv.Atoi(c.QueryParam("offset"))
	return limit, offset
}

func stringPtr(value string) *string {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	return &value
}
