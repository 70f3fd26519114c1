package service

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"course-api/config"
	"course-api/dto"
	"course-api/repository"
)

const denylistPrefix = "session:denylist:"

type Claims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// TokenDenylist remembers signed-out token ids until they would have
// expired anyway.
type TokenDenylist interface {
	Set(ctx context.Context, key, value string, expiration time.Duration) error
	Exists(ctx context.Context, key string) (bool, error)
}

// AuthService issues and resolves admin sessions. The token itself is the
// session; sign-out denylists its id since nothing else is held server-side.
type AuthService struct {
	repo     repository.CatalogRepository
	denylist TokenDenylist
	secret   []byte
	ttl      time.Duration
}

func NewAuthService(repo repository.CatalogRepository, denylist TokenDenylist, cfg config.Auth) *AuthService {
	return &AuthService{
		repo:     repo,
		denylist: denylist,
		secret:   []byte(cfg.JWTSecret),
		ttl:      cfg.TokenTTL,
	}
}

func (s *AuthService) Login(ctx context.Context, req dto.LoginRequest) (string, *dto.Session, error) {
	if err := dto.Validate(req); err != nil {
		return "", nil, err
	}

	user, err := s.repo.FindUserByEmail(ctx, req.Email)
	if err != nil {
		if repository.IsNotFound(err) {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, &QueryError{Op: "user", Err: err}
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		return "", nil, ErrInvalidCredentials
	}

	expiresAt := time.Now().Add(s.ttl)
	claims := &Claims{
		Email: user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.String(),
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", nil, err
	}

	return token, &dto.Session{
		UserID:    user.ID,
		Email:     user.Email,
		ExpiresAt: expiresAt,
	}, nil
}

// Parse resolves a bearer token into its claims, rejecting expired, forged
// and signed-out tokens alike with ErrNoSession.
func (s *AuthService) Parse(ctx context.Context, raw string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrNoSession
	}

	banned, err := s.denylist.Exists(ctx, denylistPrefix+claims.ID)
	if err != nil {
		return nil, &QueryError{Op: "session denylist", Err: err}
	}
	if banned {
		return nil, ErrNoSession
	}

	return claims, nil
}

func (s *AuthService) Logout(ctx context.Context, claims *Claims) error {
	remaining := time.Until(claims.ExpiresAt.Time)
	if remaining <= 0 {
		return nil
	}
	if err := s.denylist.Set(ctx, denylistPrefix+claims.ID, "revoked", remaining); err != nil {
		return &WriteError{Op: "sign out", Err: err}
	}
	return nil
}

func (s *AuthService) Session(claims *Claims) dto.Session {
	userID, _ := uuid.Parse(claims.Subject)
	return dto.Session{
		UserID:    userID,
		Email:     claims.Email,
		ExpiresAt: claims.ExpiresAt.Time,
	}
}

func HashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}
