package service

import (
	"context"
	"errors"
	"time"

	"github.com/fixdesk/maintenance-service/internal/auth"
	"github.com/fixdesk/maintenance-service/internal/config"
	"github.com/fixdesk/maintenance-service/internal/domain"
	"github.com/fixdesk/maintenance-service/internal/repository"
	apperrors "github.com/fixdesk/maintenance-service/pkg/util"
)

// AuthService authenticates sub-admins and vendors and issues tokens.
type AuthService struct {
	subAdmins repository.SubAdminRepository
	vendors   repository.VendorRepository
	tokens    *auth.TokenManager
}

// AuthDependencies bundles repositories for the auth service.
type AuthDependencies struct {
	SubAdminRepo repository.SubAdminRepository
	VendorRepo   repository.VendorRepository
}

// NewAuthService constructs the service.
func NewAuthService(cfg config.Config, deps AuthDependencies) *AuthService {
	return &AuthService{
		subAdmins: deps.SubAdminRepo,
		vendors:   deps.VendorRepo,
		tokens:    auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes),
	}
}

// TokenManager exposes the token manager for middleware construction.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokens
}

// LoginResult carries an issued token.
type LoginResult struct {
	Token     string
	ExpiresAt time.Time
	SubjectID string
	Role      domain.Role
}

// LoginSubAdmin authenticates a sub-admin by email and password. The issued
// token carries the sub-admin's flat permission list.
func (s *AuthService) LoginSubAdmin(ctx context.Context, email, password string) (*LoginResult, error) {
	sub, err := s.subAdmins.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewUnauthorized("invalid credentials")
		}
		return nil, apperrors.MapError(err)
	}
	if !sub.Active {
		return nil, apperrors.NewUnauthorized("account disabled")
	}
	if err := auth.ComparePassword(sub.PasswordHash, password); err != nil {
		return nil, apperrors.NewUnauthorized("invalid credentials")
	}
	token, expiresAt, err := s.tokens.GenerateToken(sub.ID, domain.RoleSubAdmin, sub.Permissions)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return &LoginResult{Token: token, ExpiresAt: expiresAt, SubjectID: sub.ID, Role: domain.RoleSubAdmin}, nil
}

// LoginVendor authenticates a vendor by email and password.
func (s *AuthService) LoginVendor(ctx context.Context, email, password string) (*LoginResult, error) {
	vendor, err := s.vendors.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewUnauthorized("invalid credentials")
		}
		return nil, apperrors.MapError(err)
	}
	if vendor.Status != domain.VendorStatusActive {
		return nil, apperrors.NewUnauthorized("account disabled")
	}
	if err := auth.ComparePassword(vendor.PasswordHash, password); err != nil {
		return nil, apperrors.NewUnauthorized("invalid credentials")
	}
	token, expiresAt, err := s.tokens.GenerateToken(vendor.ID, domain.RoleVendor, nil)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return &LoginResult{Token: token, ExpiresAt: expiresAt, SubjectID: vendor.ID, Role: domain.RoleVendor}, nil
}
