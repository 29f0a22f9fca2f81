package services

import (
	"context"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"relay-chat/config"
	"relay-chat/internal/domain/user"
	"relay-chat/internal/repository"
	relay_errors "relay-chat/pkg/errors"
)

// IdentityService issues caller tokens and resolves them back to users.
// Tokens are signed JWTs carrying the user id; resolution is a parse
// followed by a user lookup, so a token for a vanished user is rejected.
type IdentityService struct {
	users     repository.UserRepository
	jwtSecret []byte
	tokenTTL  time.Duration
}

func NewIdentityService(users repository.UserRepository, cfg *config.Config) *IdentityService {
	return &IdentityService{
		users:     users,
		jwtSecret: []byte(cfg.JWTSecret),
		tokenTTL:  time.Duration(cfg.JWTExpiryMin) * time.Minute,
	}
}

type AccessClaims struct {
	UserID string `json:"sub"`
	jwt.RegisteredClaims
}

func (s *IdentityService) Register(ctx context.Context, name, password string) (user.User, string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return user.User{}, "", relay_errors.Validation("name must not be empty")
	}
	if len(password) < 8 {
		return user.User{}, "", relay_errors.Validation("password must be at least 8 characters")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return user.User{}, "", err
	}

	u := user.User{
		ID:           uuid.New(),
		Name:         name,
		PasswordHash: string(hash),
		CreatedAt:    time.Now(),
	}
	if err := s.users.Create(ctx, &u); err != nil {
		return user.User{}, "", err
	}

	token, err := s.issueToken(u)
	if err != nil {
		return user.User{}, "", err
	}
	return u, token, nil
}

func (s *IdentityService) Login(ctx context.Context, name, password string) (user.User, string, error) {
	u, err := s.users.GetByName(ctx, name)
	if err != nil {
		if relay_errors.IsKind(err, relay_errors.KindNotFound) {
			return user.User{}, "", relay_errors.Authentication("invalid credentials")
		}
		return user.User{}, "", err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return user.User{}, "", relay_errors.Authentication("invalid credentials")
	}

	token, err := s.issueToken(u)
	if err != nil {
		return user.User{}, "", err
	}
	return u, token, nil
}

// Resolve maps a caller token to its user. Every failure mode, absent
// token, bad signature, expiry, unknown user, comes back as an
// authentication error.
func (s *IdentityService) Resolve(ctx context.Context, token string) (user.User, error) {
	if token == "" {
		return user.User{}, relay_errors.Authentication("missing caller token")
	}

	claims := &AccessClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, relay_errors.Authentication("unexpected signing method")
		}
		return s.jwtSecret, nil
	})
	if err != nil || !parsed.Valid {
		return user.User{}, relay_errors.Authentication("invalid caller token")
	}

	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		return user.User{}, relay_errors.Authentication("invalid caller token")
	}

	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if relay_errors.IsKind(err, relay_errors.KindNotFound) {
			return user.User{}, relay_errors.Authentication("no such user found")
		}
		return user.User{}, err
	}
	return u, nil
}

func (s *IdentityService) issueToken(u user.User) (string, error) {
	now := time.Now()
	claims := AccessClaims{
		UserID: u.ID.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.jwtSecret)
}
