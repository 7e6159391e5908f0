package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/katalis-id/psikotes-backend/internal/config"
	"github.com/katalis-id/psikotes-backend/internal/model"
	"github.com/katalis-id/psikotes-backend/internal/repository"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"
)

// Common auth errors.
var (
	ErrInvalidCredentials   = errors.New("invalid credentials")
	ErrSessionAlreadyActive = errors.New("another session is already active, please contact admin to reset")
)

// TokenType distinguishes participant vs admin tokens.
type TokenType string

const (
	TokenTypeParticipant TokenType = "participant"
	TokenTypeAdmin       TokenType = "admin"
)

// Claims extends JWT standard claims with app-specific fields.
type Claims struct {
	jwt.RegisteredClaims
	TokenType TokenType `json:"token_type"`
	UserID    int       `json:"user_id"`
}

// AuthService handles the identity boundary: JWT issue/validation, bcrypt
// checks, and the single-device participant session in Redis. Account
// management itself is owned by the external auth collaborator.
type AuthService struct {
	cfg          *config.Config
	rdb          *redis.Client
	participants *repository.ParticipantRepository
	authSessions *repository.AuthSessionRepository
}

// NewAuthService creates a new AuthService.
func NewAuthService(cfg *config.Config, rdb *redis.Client, participants *repository.ParticipantRepository, authSessions *repository.AuthSessionRepository) *AuthService {
	return &AuthService{cfg: cfg, rdb: rdb, participants: participants, authSessions: authSessions}
}

// LoginParticipant authenticates a participant and issues a token bound to a
// fresh single-device session.
func (s *AuthService) LoginParticipant(ctx context.Context, email, password string) (*model.Participant, string, error) {
	participant, err := s.participants.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", fmt.Errorf("load participant: %w", err)
	}
	if err := s.CheckPassword(participant.PasswordHash, password); err != nil {
		return nil, "", err
	}

	token, err := s.GenerateParticipantToken(ctx, participant.ID)
	if err != nil {
		return nil, "", err
	}
	return participant, token, nil
}

// LoginAdmin authenticates an admin and issues a token.
func (s *AuthService) LoginAdmin(ctx context.Context, email, password string) (*model.Admin, string, error) {
	admin, err := s.participants.GetAdminByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", fmt.Errorf("load admin: %w", err)
	}
	if err := s.CheckPassword(admin.PasswordHash, password); err != nil {
		return nil, "", err
	}

	token, err := s.GenerateAdminToken(ctx, admin.ID)
	if err != nil {
		return nil, "", err
	}
	return admin, token, nil
}

// GetParticipant retrieves the participant profile for an authenticated user.
func (s *AuthService) GetParticipant(ctx context.Context, userID int) (*model.Participant, error) {
	return s.participants.GetByID(ctx, userID)
}

// GetAdmin retrieves the admin profile for an authenticated operator.
func (s *AuthService) GetAdmin(ctx context.Context, adminID int) (*model.Admin, error) {
	return s.participants.GetAdminByID(ctx, adminID)
}

// HashPassword hashes a password with the configured bcrypt cost.
// Default cost is 6 for high-concurrency performance. Adjustable via BCRYPT_COST env.
func (s *AuthService) HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cfg.BcryptCost)
	return string(hash), err
}

// CheckPassword compares a plaintext password against a bcrypt hash.
func (s *AuthService) CheckPassword(hash, password string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return ErrInvalidCredentials
	}
	return nil
}

// GenerateParticipantToken creates a JWT for a participant and registers the
// session in Redis. Returns an error if a session already exists (new logins
// are rejected until the admin resets or the session expires).
func (s *AuthService) GenerateParticipantToken(ctx context.Context, userID int) (string, error) {
	sessionKey := config.CacheKey.ParticipantSessionKey(userID)

	existing, err := s.rdb.Get(ctx, sessionKey).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return "", fmt.Errorf("check session: %w", err)
	}
	if existing != "" {
		return "", ErrSessionAlreadyActive
	}

	jti := uuid.New().String()
	now := time.Now()
	expiresAt := now.Add(s.cfg.JWTExpiry)

	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        jti,
			Subject:   strconv.Itoa(userID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		TokenType: TokenTypeParticipant,
		UserID:    userID,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.cfg.JWTSecret))
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}

	// Store session in Redis with same expiry as JWT.
	if err := s.rdb.Set(ctx, sessionKey, jti, s.cfg.JWTExpiry).Err(); err != nil {
		return "", fmt.Errorf("store session: %w", err)
	}

	// Audit row; cleaned up by the scheduler's housekeeping job.
	if err := s.authSessions.Record(ctx, userID, string(TokenTypeParticipant), jti, expiresAt); err != nil {
		return "", fmt.Errorf("record session: %w", err)
	}

	return signed, nil
}

// GenerateAdminToken creates a JWT for an admin.
func (s *AuthService) GenerateAdminToken(ctx context.Context, adminID int) (string, error) {
	jti := uuid.New().String()
	now := time.Now()
	expiresAt := now.Add(s.cfg.JWTExpiry)

	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        jti,
			Subject:   strconv.Itoa(adminID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		TokenType: TokenTypeAdmin,
		UserID:    adminID,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.cfg.JWTSecret))
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}

	if err := s.authSessions.Record(ctx, adminID, string(TokenTypeAdmin), jti, expiresAt); err != nil {
		return "", fmt.Errorf("record session: %w", err)
	}

	return signed, nil
}

// ValidateToken parses and validates a JWT, returning the claims.
func (s *AuthService) ValidateToken(tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(s.cfg.JWTSecret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token claims")
	}

	return claims, nil
}

// ValidateParticipantSession checks that the token's JTI matches the active
// session in Redis.
func (s *AuthService) ValidateParticipantSession(ctx context.Context, userID int, jti string) error {
	sessionKey := config.CacheKey.ParticipantSessionKey(userID)
	stored, err := s.rdb.Get(ctx, sessionKey).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return errors.New("no active session")
		}
		return fmt.Errorf("check session: %w", err)
	}
	if stored != jti {
		return errors.New("session invalidated")
	}
	return nil
}

// ResetParticipantSession removes a participant's session from Redis,
// allowing a new login.
func (s *AuthService) ResetParticipantSession(ctx context.Context, userID int) error {
	sessionKey := config.CacheKey.ParticipantSessionKey(userID)
	return s.rdb.Del(ctx, sessionKey).Err()
}
