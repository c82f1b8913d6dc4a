// internal/service/auth_service.go
package service

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/sanbara234/fiadoapp/internal/models"
	"github.com/sanbara234/fiadoapp/internal/repository"
	"github.com/sanbara234/fiadoapp/pkg/password"
)

const sessionTokenBytes = 32

// AuthService handles registration, login, session resolution and
// business selection.
type AuthService struct {
	store  repository.Store
	hasher password.Hasher
	logger *zap.Logger
}

func NewAuthService(store repository.Store, hasher password.Hasher, logger *zap.Logger) *AuthService {
	return &AuthService{
		store:  store,
		hasher: hasher,
		logger: logger,
	}
}

// Register creates a user, their first business and a session. The first
// business is auto-selected on the new session.
func (s *AuthService) Register(ctx context.Context, req *models.RegisterRequest) (*models.AuthResponse, error) {
	if _, err := s.store.GetUserByEmail(ctx, req.Email); err == nil {
		return nil, models.ErrDuplicateEmail
	} else if !errors.Is(err, models.ErrNotFound) {
		return nil, err
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user, err := s.store.CreateUser(ctx, req.Email, hash, req.Name)
	if err != nil {
		return nil, err
	}

	business, err := s.store.CreateBusiness(ctx, user.ID, req.BusinessName)
	if err != nil {
		return nil, err
	}

	token, err := newSessionToken()
	if err != nil {
		return nil, err
	}
	if err := s.store.CreateSession(ctx, token, user.ID, &business.ID); err != nil {
		return nil, err
	}

	s.logger.Info("user registered",
		zap.Int64("user_id", user.ID),
		zap.Int64("business_id", business.ID))

	return &models.AuthResponse{
		Token:        token,
		BusinessID:   &business.ID,
		BusinessName: business.Name,
		UserName:     user.Name,
	}, nil
}

// Login creates a fresh session without touching existing ones. The
// user's first business, if any, is auto-selected.
func (s *AuthService) Login(ctx context.Context, req *models.LoginRequest) (*models.AuthResponse, error) {
	user, err := s.store.GetUserByEmail(ctx, req.Email)
	if errors.Is(err, models.ErrNotFound) {
		return nil, models.ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if !s.hasher.Check(req.Password, user.PasswordHash) {
		return nil, models.ErrInvalidCredentials
	}

	businesses, err := s.store.ListBusinesses(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	resp := &models.AuthResponse{UserName: user.Name}
	if len(businesses) > 0 {
		resp.BusinessID = &businesses[0].ID
		resp.BusinessName = businesses[0].Name
	}

	token, err := newSessionToken()
	if err != nil {
		return nil, err
	}
	if err := s.store.CreateSession(ctx, token, user.ID, resp.BusinessID); err != nil {
		return nil, err
	}
	resp.Token = token

	s.logger.Info("user logged in", zap.Int64("user_id", user.ID))
	return resp, nil
}

// Logout invalidates every session belonging to the user, not just the
// presented token.
func (s *AuthService) Logout(ctx context.Context, userID int64) error {
	return s.store.DeleteUserSessions(ctx, userID)
}

// ResolveSession maps a bearer token to its session. An empty token is an
// authentication failure, an unknown one an invalid session.
func (s *AuthService) ResolveSession(ctx context.Context, token string) (*models.Session, error) {
	if token == "" {
		return nil, models.ErrUnauthenticated
	}
	session, err := s.store.GetSession(ctx, token)
	if errors.Is(err, models.ErrNotFound) {
		return nil, models.ErrInvalidSession
	}
	if err != nil {
		return nil, err
	}
	return session, nil
}

// Me describes the current identity and the businesses it owns.
func (s *AuthService) Me(ctx context.Context, session *models.Session) (*models.MeResponse, error) {
	businesses, err := s.store.ListBusinesses(ctx, session.UserID)
	if err != nil {
		return nil, err
	}
	return &models.MeResponse{
		UserName:   session.UserName,
		BusinessID: session.BusinessID,
		Businesses: businesses,
	}, nil
}

func (s *AuthService) ListBusinesses(ctx context.Context, userID int64) ([]models.Business, error) {
	return s.store.ListBusinesses(ctx, userID)
}

func (s *AuthService) CreateBusiness(ctx context.Context, userID int64, name string) (*models.Business, error) {
	return s.store.CreateBusiness(ctx, userID, name)
}

// SelectBusiness marks a business as active on the presented session.
// Only the session row changes. Businesses not owned by the session's
// user are reported as absent.
func (s *AuthService) SelectBusiness(ctx context.Context, session *models.Session, businessID int64) (*models.Business, error) {
	business, err := s.store.GetBusiness(ctx, businessID, session.UserID)
	if err != nil {
		return nil, err
	}
	if err := s.store.SetSessionBusiness(ctx, session.Token, businessID); err != nil {
		return nil, err
	}
	return business, nil
}

func newSessionToken() (string, error) {
	buf := make([]byte, sessionTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate session token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
