package services

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"forkful/internal/config"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

var ErrInvalidToken = errors.New("invalid token")

const denylistPrefix = "token:denylist:"

// TokenService issues and verifies the API bearer tokens. Revocation is
// backed by redis when available and degrades to expiry-only without it.
type TokenService struct {
	secret []byte
	ttl    time.Duration
	rdb    *redis.Client
}

func NewTokenService(cfg config.Config, rdb *redis.Client) *TokenService {
	ttl := time.Duration(cfg.TokenTTLHours) * time.Hour
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &TokenService{
		secret: []byte(cfg.SecretKey),
		ttl:    ttl,
		rdb:    rdb,
	}
}

// Issue signs a token for the user.
func (s *TokenService) Issue(userID uint) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": userID,
		"exp":     time.Now().Add(s.ttl).Unix(),
		"jti":     uuid.New().String(),
	})
	return token.SignedString(s.secret)
}

// keyfunc refuses any signing method other than HMAC before handing out
// the secret.
func (s *TokenService) keyfunc(token *jwt.Token) (interface{}, error) {
	if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
		return nil, ErrInvalidToken
	}
	return s.secret, nil
}

// Parse verifies the signature and expiry and rejects revoked tokens.
func (s *TokenService) Parse(ctx context.Context, tokenStr string) (uint, error) {
	token, err := jwt.Parse(tokenStr, s.keyfunc)
	if err != nil || !token.Valid {
		return 0, ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return 0, ErrInvalidToken
	}
	userID, ok := claims["user_id"].(float64)
	if !ok {
		return 0, ErrInvalidToken
	}

	if jti, ok := claims["jti"].(string); ok && s.revoked(ctx, jti) {
		return 0, ErrInvalidToken
	}

	return uint(userID), nil
}

// Revoke denylists the token until its natural expiry. Without redis this
// is a no-op and the token stays valid until it expires.
func (s *TokenService) Revoke(ctx context.Context, tokenStr string) error {
	if s.rdb == nil {
		slog.Warn("token revocation skipped, redis not configured")
		return nil
	}

	token, err := jwt.Parse(tokenStr, s.keyfunc)
	if err != nil || !token.Valid {
		return ErrInvalidToken
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return ErrInvalidToken
	}
	jti, _ := claims["jti"].(string)
	if jti == "" {
		return ErrInvalidToken
	}

	ttl := s.ttl
	if exp, ok := claims["exp"].(float64); ok {
		if remaining := time.Until(time.Unix(int64(exp), 0)); remaining > 0 {
			ttl = remaining
		}
	}

	return s.rdb.Set(ctx, denylistPrefix+jti, 1, ttl).Err()
}

func (s *TokenService) revoked(ctx context.Context, jti string) bool {
	if s.rdb == nil {
		return false
	}
	n, err := s.rdb.Exists(ctx, denylistPrefix+jti).Result()
	if err != nil {
		// fail open, revocation degrades to expiry-only
		slog.Warn("denylist check failed", "error", err)
		return false
	}
	return n > 0
}
