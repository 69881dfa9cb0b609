package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/tiaadeals/server/internal/denylist"
	"github.com/tiaadeals/server/internal/hash"
	"github.com/tiaadeals/server/internal/logging"
	"github.com/tiaadeals/server/internal/models"
	"github.com/tiaadeals/server/internal/repo"
	"github.com/tiaadeals/server/internal/tokens"
)

type RegisterParams struct {
	FirstName   string
	LastName    string
	Email       string
	Username    string
	Password    string
	PhoneNumber string
	Address     string
}

type LoginResult struct {
	AccessToken  string
	RefreshToken string
	AccessExp    time.Time
	RefreshExp   time.Time
	User         *models.User
}

// AuthService owns the account lifecycle and the bearer-token lifecycle.
// Tokens are stateless; with a nil Denylist, logout revokes nothing and a
// token stays valid until its natural expiry.
type AuthService struct {
	Repo     *repo.GormRepo
	Tokens   *tokens.Issuer
	Denylist *denylist.Denylist
}

func (s *AuthService) Register(ctx context.Context, p RegisterParams) (*models.User, error) {
	l := logging.FromContext(ctx).With("svc", "auth.register")

	if p.Email == "" || p.Password == "" {
		return nil, fmt.Errorf("email and password are required: %w", ErrValidation)
	}
	if p.Username == "" {
		p.Username = p.Email
	}

	pwHash, err := hash.HashPassword(p.Password)
	if err != nil {
		l.Error("register_error", "reason", "cannot hash password", "error", err)
		return nil, err
	}

	user := &models.User{
		FirstName:    p.FirstName,
		LastName:     p.LastName,
		Email:        p.Email,
		Username:     p.Username,
		PasswordHash: pwHash,
		PhoneNumber:  p.PhoneNumber,
		Address:      p.Address,
		Role:         models.RoleUser,
		IsActive:     true,
	}

	created, err := s.Repo.CreateUserIfNotExists(ctx, user)
	if err != nil {
		l.Error("register_error", "error", err)
		return nil, err
	}
	if !created {
		l.Warn("register_conflict", "email", p.Email)
		return nil, fmt.Errorf("user with email %s: %w", p.Email, ErrAlreadyExists)
	}

	l.Info("user_registered", "user_id", user.ID)
	return user, nil
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	l := logging.FromContext(ctx).With("svc", "auth.login")

	if email == "" || password == "" {
		return nil, fmt.Errorf("email and password are required: %w", ErrValidation)
	}

	user, err := s.Repo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !user.IsActive {
		l.Warn("login_rejected", "reason", "inactive account", "user_id", user.ID)
		return nil, ErrInvalidCredentials
	}
	if !hash.CheckPassword(user.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}

	return s.issuePair(user)
}

// Refresh exchanges a valid refresh token for a fresh access+refresh pair.
// Any token-shaped failure, including an access token presented in place of
// a refresh token, is ErrInvalidRefreshToken.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*LoginResult, error) {
	claims, err := s.Tokens.ParseRefresh(refreshToken)
	if err != nil {
		return nil, tokens.ErrInvalidRefreshToken
	}

	if revoked, err := s.Denylist.Contains(ctx, claims.ID); err != nil {
		return nil, err
	} else if revoked {
		return nil, tokens.ErrInvalidRefreshToken
	}

	user, err := s.Repo.GetUser(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, tokens.ErrInvalidRefreshToken
		}
		return nil, err
	}
	if !user.IsActive {
		return nil, tokens.ErrInvalidRefreshToken
	}

	return s.issuePair(user)
}

// Logout denylists both token IDs for their remaining lifetime. With
// revocation disabled (nil denylist) this is a no-op and the tokens remain
// valid until expiry, matching the default stateless-logout behavior.
func (s *AuthService) Logout(ctx context.Context, accessToken, refreshToken string) error {
	if s.Denylist == nil {
		return nil
	}

	if claims, err := s.Tokens.ParseAccess(accessToken); err == nil {
		if err := s.Denylist.Add(ctx, claims.ID, claims.ExpiresAt.Time); err != nil {
			return err
		}
	}
	if claims, err := s.Tokens.ParseRefresh(refreshToken); err == nil {
		if err := s.Denylist.Add(ctx, claims.ID, claims.ExpiresAt.Time); err != nil {
			return err
		}
	}
	return nil
}

func (s *AuthService) issuePair(user *models.User) (*LoginResult, error) {
	access, accessExp, err := s.Tokens.IssueAccessToken(user)
	if err != nil {
		return nil, err
	}
	refresh, refreshExp, err := s.Tokens.IssueRefreshToken(user)
	if err != nil {
		return nil, err
	}
	return &LoginResult{
		AccessToken:  access,
		RefreshToken: refresh,
		AccessExp:    accessExp,
		RefreshExp:   refreshExp,
		User:         user,
	}, nil
}
