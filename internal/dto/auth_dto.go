package dto

import (
	"time"

	"passvault/internal/entity"
	"passvault/internal/service"
)

type RegisterRequest struct {
	Name     string `json:"name" validate:"omitempty,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

type VerifyEmailRequest struct {
	Token string `json:"token" validate:"required"`
}

type LoginRequest struct {
	Email         string `json:"email" validate:"required,email"`
	Password      string `json:"password" validate:"required"`
	TwoFactorCode string `json:"two_factor_code" validate:"omitempty"`
	BackupCode    string `json:"backup_code" validate:"omitempty"`
}

// LoginResponse carries one of two shapes: a session token, or the
// pending-second-factor signal. TwoFactor true never comes with a token.
type LoginResponse struct {
	Token     string `json:"token,omitempty"`
	ExpiresIn int64  `json:"expires_in,omitempty"`
	TwoFactor bool   `json:"two_factor,omitempty"`
}

type PasswordForgotRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type PasswordResetRequest struct {
	Token       string `json:"token" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,min=8"`
}

type TwoFactorSetupResponse struct {
	Secret     string `json:"secret"`
	OtpauthURL string `json:"otpauth_url"`
}

type TwoFactorVerifyRequest struct {
	Token string `json:"token" validate:"required"`
}

type TwoFactorVerifyResponse struct {
	Enabled     bool     `json:"enabled"`
	BackupCodes []string `json:"backup_codes"`
}

type IntrospectUser struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

type IntrospectResponse struct {
	Valid   bool            `json:"valid"`
	Expires string          `json:"expires,omitempty"`
	User    *IntrospectUser `json:"user,omitempty"`
}

type SessionUserResponse struct {
	ID               string `json:"id"`
	Email            string `json:"email"`
	Name             string `json:"name,omitempty"`
	Role             string `json:"role"`
	TwoFactorEnabled bool   `json:"two_factor_enabled"`
	OAuth            bool   `json:"oauth"`
}

func SessionUserFromView(view *service.SessionView) SessionUserResponse {
	return SessionUserResponse{
		ID:               view.UserID.String(),
		Email:            view.Email,
		Name:             view.Name,
		Role:             string(view.Role),
		TwoFactorEnabled: view.TwoFactorEnabled,
		OAuth:            view.OAuth,
	}
}

type UserResponse struct {
	ID               string     `json:"id"`
	Email            string     `json:"email"`
	Name             string     `json:"name,omitempty"`
	Role             string     `json:"role"`
	TwoFactorEnabled bool       `json:"two_factor_enabled"`
	EmailVerifiedAt  *time.Time `json:"email_verified_at,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
}

func UserResponseFromEntity(user *entity.User) UserResponse {
	return UserResponse{
		ID:               user.ID.String(),
		Email:            user.Email,
		Name:             user.Name,
		Role:             string(user.Role),
		TwoFactorEnabled: user.IsTwoFactorEnabled,
		EmailVerifiedAt:  user.EmailVerifiedAt,
		CreatedAt:        user.CreatedAt,
	}
}

func UserResponsesFromEntities(users []entity.User) []UserResponse {
	responses := make([]UserResponse, 0, len(users))
	for i := range users {
		responses = append(responses, UserResponseFromEntity(&users[i]))
	}
	return responses
}
