package service

import "errors"

var (
	ErrInvalidInput            = errors.New("invalid input")
	ErrEmailAlreadyRegistered  = errors.New("email already registered")
	ErrInvalidCredentials      = errors.New("invalid credentials")
	ErrInvalidToken            = errors.New("invalid or expired token")
	ErrTwoFactorAlreadyEnabled = errors.New("two-factor already enabled")
	ErrTwoFactorNotConfigured  = errors.New("two-factor not configured")
	ErrInvalidTwoFactorCode    = errors.New("invalid two-factor code")
	ErrUserNotFound            = errors.New("user not found")
	ErrItemNotFound            = errors.New("item not found")
)
