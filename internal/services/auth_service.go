package services

import (
	"context"
	"fmt"
	"time"

	"jobfair-live/internal/domain/user"
	"jobfair-live/internal/repository"
	jobfair_errors "jobfair-live/pkg/errors"
	"jobfair-live/pkg/logger"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// AuthService verifies the portal-issued bearer tokens. Login and refresh
// live in the portal; this service only turns a token into an Identity.
type AuthService struct {
	users     repository.UserRepository
	jwtSecret []byte
	tokenTTL  time.Duration
	clock     func() time.Time
}

func NewAuthService(users repository.UserRepository, secret string, tokenTTL time.Duration) *AuthService {
	if tokenTTL <= 0 {
		tokenTTL = 12 * time.Hour
	}
	return &AuthService{
		users:     users,
		jwtSecret: []byte(secret),
		tokenTTL:  tokenTTL,
		clock:     time.Now,
	}
}

type AccessClaims struct {
	Role    string `json:"role"`
	Name    string `json:"name,omitempty"`
	BoothID string `json:"booth_id,omitempty"`
	jwt.RegisteredClaims
}

// IssueAccessToken signs a token for u. Used by the seed command and tests.
func (s *AuthService) IssueAccessToken(u user.User) (string, int64, error) {
	now := s.clock()
	expiresAt := now.Add(s.tokenTTL)
	claims := AccessClaims{
		Role: string(u.Role),
		Name: u.Name,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.ID.String(),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	if u.BoothID.Valid {
		claims.BoothID = u.BoothID.UUID.String()
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", 0, err
	}
	return signed, int64(s.tokenTTL.Seconds()), nil
}

func (s *AuthService) ParseAccessToken(tokenString string) (AccessClaims, error) {
	if tokenString == "" {
		return AccessClaims{}, jobfair_errors.ErrUnauthorized
	}

	parsed, err := jwt.ParseWithClaims(tokenString, &AccessClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jobfair_errors.ErrUnauthorized
		}
		return s.jwtSecret, nil
	}, jwt.WithTimeFunc(s.clock))
	if err != nil {
		return AccessClaims{}, jobfair_errors.ErrUnauthorized
	}

	claims, ok := parsed.Claims.(*AccessClaims)
	if !ok || !parsed.Valid {
		return AccessClaims{}, jobfair_errors.ErrUnauthorized
	}

	return *claims, nil
}

// Authenticate resolves a bearer token to the caller's identity. Role and
// booth come from the user directory, not the token, so a demoted account
// loses access without waiting for token expiry.
func (s *AuthService) Authenticate(ctx context.Context, tokenString string) (Identity, error) {
	claims, err := s.ParseAccessToken(tokenString)
	if err != nil {
		return Identity{}, err
	}
	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return Identity{}, jobfair_errors.ErrUnauthorized
	}

	u, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return Identity{}, fmt.Errorf("%w: unknown user", jobfair_errors.ErrUnauthorized)
	}
	if !u.Active {
		return Identity{}, fmt.Errorf("%w: account disabled", jobfair_errors.ErrUnauthorized)
	}

	return Identity{UserID: u.ID, Role: u.Role, BoothID: u.BoothID, Name: u.Name}, nil
}

// Identity is the authenticated caller.
type Identity struct {
	UserID  uuid.UUID
	Role    user.Role
	BoothID uuid.NullUUID
	Name    string
}

type ctxKey string

var identityKey ctxKey = "identity"

func WithIdentity(ctx context.Context, id Identity) context.Context {
	ctx = context.WithValue(ctx, identityKey, id)
	return context.WithValue(ctx, logger.UserIdKey, id.UserID.String())
}

func IdentityFromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey).(Identity)
	return id, ok
}
