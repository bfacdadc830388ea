package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"food_marketplace/internal/apiclient"
	"food_marketplace/internal/model"
)

var (
	ErrPhoneRequired = errors.New("phone number is required")
	ErrCodeRequired  = errors.New("verification code is required")
)

// OTPBackend is the part of the API client the login flow needs
type OTPBackend interface {
	SendOTP(ctx context.Context, phone string) (*apiclient.SendOTPResponse, error)
	VerifyOTP(ctx context.Context, phone, code string) (*apiclient.VerifyOTPResponse, error)
}

// SessionWriter is the part of the session store the login flow mutates
type SessionWriter interface {
	Login(ctx context.Context, token string, user model.UserProfile) error
	Logout(ctx context.Context)
}

// AuthService runs the phone + one-time-code login flow
type AuthService interface {
	SendOTP(ctx context.Context, phone string) (*apiclient.SendOTPResponse, error)
	VerifyOTP(ctx context.Context, phone, code string) (*model.UserProfile, error)
	Logout(ctx context.Context)
}

type authService struct {
	backend  OTPBackend
	sessions SessionWriter
}

// NewAuthService creates a new AuthService
func NewAuthService(backend OTPBackend, sessions SessionWriter) AuthService {
	return &authService{backend: backend, sessions: sessions}
}

// SendOTP requests a code for phone
func (s *authService) SendOTP(ctx context.Context, phone string) (*apiclient.SendOTPResponse, error) {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return nil, ErrPhoneRequired
	}
	resp, err := s.backend.SendOTP(ctx, phone)
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// VerifyOTP checks the code with the backend and, on success, logs the user in.
// On failure the session is left untouched.
func (s *authService) VerifyOTP(ctx context.Context, phone, code string) (*model.UserProfile, error) {
	phone, code = strings.TrimSpace(phone), strings.TrimSpace(code)
	if phone == "" {
		return nil, ErrPhoneRequired
	}
	if code == "" {
		return nil, ErrCodeRequired
	}

	resp, err := s.backend.VerifyOTP(ctx, phone, code)
	if err != nil {
		return nil, err
	}

	if err := s.sessions.Login(ctx, resp.Token, resp.User); err != nil {
		return nil, fmt.Errorf("failed to start session: %w", err)
	}
	log.Printf("INFO: user %s logged in as %s", resp.User.ID, resp.User.Role)
	return &resp.User, nil
}

// Logout ends the session
func (s *authService) Logout(ctx context.Context) {
	s.sessions.Logout(ctx)
}
