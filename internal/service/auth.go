package service

import (
	"context"
	"fmt"
	"strings"

	"staybook/internal/domain"
)

// AuthAPI is the slice of the upstream client the auth service depends on.
type AuthAPI interface {
	Login(ctx context.Context, creds domain.Credentials) (domain.AuthResult, error)
	Register(ctx context.Context, reg domain.Registration) (domain.AuthResult, error)
}

// AuthService validates credentials locally before forwarding them, so
// obviously-bad requests never leave the building. The platform remains the
// authority on everything else.
type AuthService struct {
	api AuthAPI
}

// NewAuthService constructs an AuthService.
func NewAuthService(api AuthAPI) *AuthService {
	return &AuthService{api: api}
}

// Login exchanges credentials for an opaque bearer token.
func (s *AuthService) Login(ctx context.Context, creds domain.Credentials) (domain.AuthResult, error) {
	creds.Email = strings.TrimSpace(creds.Email)
	if creds.Email == "" || creds.Password == "" {
		return domain.AuthResult{}, fmt.Errorf("service.AuthService.Login: %w: email and password are required", domain.ErrValidation)
	}

	res, err := s.api.Login(ctx, creds)
	if err != nil {
		return domain.AuthResult{}, fmt.Errorf("service.AuthService.Login: %w", err)
	}
	return res, nil
}

// Register creates a new account with the given role.
func (s *AuthService) Register(ctx context.Context, reg domain.Registration) (domain.AuthResult, error) {
	reg.Email = strings.TrimSpace(reg.Email)
	reg.Name = strings.TrimSpace(reg.Name)

	switch {
	case reg.Role != "host" && reg.Role != "traveller":
		return domain.AuthResult{}, fmt.Errorf("service.AuthService.Register: %w: role must be host or traveller", domain.ErrValidation)
	case reg.Name == "" || reg.Email == "" || reg.Password == "":
		return domain.AuthResult{}, fmt.Errorf("service.AuthService.Register: %w: name, email and password are required", domain.ErrValidation)
	case reg.Password != reg.PasswordConfirmation:
		return domain.AuthResult{}, fmt.Errorf("service.AuthService.Register: %w: password confirmation does not match", domain.ErrValidation)
	}

	res, err := s.api.Register(ctx, reg)
	if err != nil {
		return domain.AuthResult{}, fmt.Errorf("service.AuthService.Register: %w", err)
	}
	return res, nil
}
