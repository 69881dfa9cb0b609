package tokens

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/tiaadeals/server/internal/models"
)

var (
	ErrInvalidToken        = errors.New("invalid token")
	ErrExpiredToken        = errors.New("token expired")
	ErrInvalidRefreshToken = errors.New("invalid refresh token")
)

const (
	typeAccess  = "access"
	typeRefresh = "refresh"
)

type AccessClaims struct {
	UserID    uint   `json:"user_id"`
	Email     string `json:"email"`
	Role      string `json:"role"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
	TokenType string `json:"typ"`
	jwt.RegisteredClaims
}

type RefreshClaims struct {
	UserID    uint   `json:"user_id"`
	Email     string `json:"email"`
	TokenType string `json:"typ"`
	jwt.RegisteredClaims
}

// Issuer mints and verifies the bearer tokens. Both token kinds are signed
// with the same HS256 secret; the typ claim tells them apart, so a refresh
// token never passes as an access token and vice versa.
type Issuer struct {
	Secret     []byte
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

func NewIssuer(secret []byte, accessTTL, refreshTTL time.Duration) *Issuer {
	if accessTTL <= 0 {
		accessTTL = 24 * time.Hour
	}
	if refreshTTL <= 0 {
		refreshTTL = 7 * 24 * time.Hour
	}
	return &Issuer{Secret: secret, AccessTTL: accessTTL, RefreshTTL: refreshTTL}
}

func (i *Issuer) IssueAccessToken(user *models.User) (string, time.Time, error) {
	exp := time.Now().Add(i.AccessTTL)
	claims := AccessClaims{
		UserID:    user.ID,
		Email:     user.Email,
		Role:      user.Role,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		TokenType: typeAccess,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.Email,
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(exp),
			ID:        uuid.NewString(),
		},
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString(i.Secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, exp, nil
}

func (i *Issuer) IssueRefreshToken(user *models.User) (string, time.Time, error) {
	exp := time.Now().Add(i.RefreshTTL)
	claims := RefreshClaims{
		UserID:    user.ID,
		Email:     user.Email,
		TokenType: typeRefresh,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.Email,
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(exp),
			ID:        uuid.NewString(),
		},
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString(i.Secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, exp, nil
}

func (i *Issuer) keyFunc(t *jwt.Token) (any, error) {
	if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
		return nil, jwt.ErrTokenSignatureInvalid
	}
	return i.Secret, nil
}

// ParseAccess verifies an access token and fails closed: any parse or
// signature problem is ErrInvalidToken, expiry is ErrExpiredToken.
func (i *Issuer) ParseAccess(raw string) (*AccessClaims, error) {
	var claims AccessClaims
	tkn, err := jwt.ParseWithClaims(raw, &claims, i.keyFunc)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}
	if !tkn.Valid || claims.TokenType != typeAccess {
		return nil, ErrInvalidToken
	}
	return &claims, nil
}

// ParseRefresh verifies a refresh token. Every failure mode, including a
// well-signed access token presented in its place, is ErrInvalidRefreshToken.
func (i *Issuer) ParseRefresh(raw string) (*RefreshClaims, error) {
	var claims RefreshClaims
	tkn, err := jwt.ParseWithClaims(raw, &claims, i.keyFunc)
	if err != nil || !tkn.Valid {
		return nil, ErrInvalidRefreshToken
	}
	if claims.TokenType != typeRefresh {
		return nil, ErrInvalidRefreshToken
	}
	return &claims, nil
}
