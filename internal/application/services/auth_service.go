package services

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/nacl/secretbox"

	"github.com/acrylic/tracker/internal/domain/entities"
	"github.com/acrylic/tracker/internal/infrastructure/config"
	"github.com/acrylic/tracker/internal/infrastructure/logger"
	"github.com/acrylic/tracker/internal/ports"
)

const nonceSize = 24

// ErrNoSecretKey is returned when a token must be sealed but no key is configured
var ErrNoSecretKey = errors.New("security.secret_key must be set to store a canvas token")

// Claims represents the JWT claims of an API token
type Claims struct {
	Surface string `json:"surface"`
	jwt.RegisteredClaims
}

// AuthService resolves the Canvas token and issues API tokens
type AuthService struct {
	store       ports.Store
	canvasToken string
	secretKey   *[32]byte
	jwtConfig   config.JWTConfig
	logger      *logger.Logger
	now         func() time.Time
}

// NewAuthService creates a new auth service
func NewAuthService(store ports.Store, cfg *config.Config, appLogger *logger.Logger) *AuthService {
	s := &AuthService{
		store:       store,
		canvasToken: strings.TrimSpace(cfg.Canvas.Token),
		jwtConfig:   cfg.JWT,
		logger:      appLogger.WithComponent("auth"),
		now:         time.Now,
	}
	if cfg.Security.SecretKey != "" {
		key := sha256.Sum256([]byte(cfg.Security.SecretKey))
		s.secretKey = &key
	}
	return s
}

var _ ports.TokenSource = (*AuthService)(nil)

// CanvasToken returns the configured token, falling back to the sealed
// token saved in the store.
func (s *AuthService) CanvasToken(ctx context.Context) (string, error) {
	if s.canvasToken != "" {
		return s.canvasToken, nil
	}

	box, err := s.store.Get(ctx, ports.KeyToken)
	if errors.Is(err, entities.ErrKeyNotFound) {
		return "", entities.ErrNoToken
	}
	if err != nil {
		return "", fmt.Errorf("load canvas token: %w", err)
	}
	if s.secretKey == nil {
		return "", ErrNoSecretKey
	}

	token, err := open(box, s.secretKey)
	if err != nil {
		return "", fmt.Errorf("load canvas token: %w", err)
	}
	return token, nil
}

// SaveCanvasToken seals the token and stores it for later runs
func (s *AuthService) SaveCanvasToken(ctx context.Context, token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return entities.ErrNoToken
	}
	if s.secretKey == nil {
		return ErrNoSecretKey
	}

	box, err := seal(token, s.secretKey)
	if err != nil {
		return err
	}
	if err := s.store.Set(ctx, ports.KeyToken, box); err != nil {
		return fmt.Errorf("save canvas token: %w", err)
	}

	s.logger.LogUserAction("save_canvas_token", nil)
	return nil
}

// ForgetCanvasToken deletes the stored token
func (s *AuthService) ForgetCanvasToken(ctx context.Context) error {
	if err := s.store.Delete(ctx, ports.KeyToken); err != nil {
		return fmt.Errorf("forget canvas token: %w", err)
	}
	s.logger.LogUserAction("forget_canvas_token", nil)
	return nil
}

func seal(plain string, key *[32]byte) ([]byte, error) {
	var nonce [nonceSize]byte
	if _, err := io.ReadFull(rand.Reader, nonce[:]); err != nil {
		return nil, fmt.Errorf("failed to generate nonce: %w", err)
	}
	return secretbox.Seal(nonce[:], []byte(plain), &nonce, key), nil
}

func open(box []byte, key *[32]byte) (string, error) {
	if len(box) < nonceSize+secretbox.Overhead {
		return "", errors.New("sealed token is truncated")
	}

	var nonce [nonceSize]byte
	copy(nonce[:], box[:nonceSize])
	plain, ok := secretbox.Open(nil, box[nonceSize:], &nonce, key)
	if !ok {
		return "", errors.New("sealed token cannot be opened with the configured key")
	}
	return string(plain), nil
}

// IssueToken signs an API token for a surface (for example "widget")
func (s *AuthService) IssueToken(surface string, ttl time.Duration) (string, error) {
	if ttl <= 0 {
		ttl = s.jwtConfig.ExpiresIn
	}

	now := s.now()
	claims := &Claims{
		Surface: surface,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    s.jwtConfig.Issuer,
			Subject:   surface,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(s.jwtConfig.Secret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return tokenString, nil
}

// ValidateToken validates an API token and returns its claims
func (s *AuthService) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.jwtConfig.Secret), nil
	}, jwt.WithIssuer(s.jwtConfig.Issuer), jwt.WithTimeFunc(s.now))

	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token claims")
	}

	return claims, nil
}
