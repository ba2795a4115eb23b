package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/skillforge/account-service/config"
	"github.com/skillforge/account-service/internal/dto"
	apperrors "github.com/skillforge/account-service/internal/errors"
	"github.com/skillforge/account-service/internal/repository"
	ctxutil "github.com/skillforge/account-service/pkg/context"
	"github.com/skillforge/account-service/pkg/logger"
)

// TokenService manages the credential session lifecycle: it mints signed
// access/refresh token pairs and validates presented tokens. Access tokens
// are stateless; refresh tokens are checked against the single slot stored
// on the user record, so issuing a new pair invalidates the previous
// refresh token.
type TokenService struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
	repoUser      *repository.UserRepository
}

func NewTokenService(cfg config.JWTConfig, repo *repository.UserRepository) *TokenService {
	return &TokenService{
		accessSecret:  []byte(cfg.AccessSecret),
		refreshSecret: []byte(cfg.RefreshSecret),
		accessTTL:     cfg.AccessTTL,
		refreshTTL:    cfg.RefreshTTL,
		repoUser:      repo,
	}
}

// MintPair produces a fresh access/refresh token pair for a user. Each token
// carries only the user id as claim and is signed with its own secret. No
// storage side effect; persisting the refresh token is the caller's job.
func (s *TokenService) MintPair(userID string) (accessToken, refreshToken string, err error) {
	now := time.Now()

	accessToken, err = signToken(userID, s.accessSecret, now, s.accessTTL)
	if err != nil {
		return "", "", fmt.Errorf("failed to sign access token: %w", err)
	}

	refreshToken, err = signToken(userID, s.refreshSecret, now, s.refreshTTL)
	if err != nil {
		return "", "", fmt.Errorf("failed to sign refresh token: %w", err)
	}

	return accessToken, refreshToken, nil
}

// VerifyAccess validates a presented access token and returns the
// authenticated user id. The check is purely signature + expiry against the
// access secret; storage is never consulted.
func (s *TokenService) VerifyAccess(tokenString string) (string, error) {
	if tokenString == "" {
		return "", apperrors.ErrAuthRequired
	}

	userID, err := verifyToken(tokenString, s.accessSecret)
	if err != nil {
		return "", apperrors.WrapError(apperrors.ErrInvalidAccessToken, err)
	}

	return userID, nil
}

// Refresh validates a presented refresh token, rotates the stored slot and
// returns a new pair. The presented token must verify against the refresh
// secret AND equal the slot value; a superseded token fails the second
// check even before its natural expiry.
func (s *TokenService) Refresh(ctx context.Context, presented string) (*dto.TokenPairResponse, error) {
	ctx = ctxutil.WithOperation(ctx, "service", "Refresh")

	if presented == "" {
		logger.WarnWithContext(ctx, "Refresh attempt without token").
			Log()
		return nil, apperrors.ErrMissingRefreshToken
	}

	userID, err := verifyToken(presented, s.refreshSecret)
	if err != nil {
		logger.WarnWithContext(ctx, "Refresh token failed verification").
			Err(err).
			Log()
		return nil, apperrors.WrapError(apperrors.ErrInvalidRefreshToken, err)
	}

	user, err := s.repoUser.GetByID(ctx, userID)
	if err != nil {
		logger.WarnWithContext(ctx, "Refresh token references unknown user").
			String("user_id", userID).
			Err(err).
			Log()
		return nil, apperrors.WrapError(apperrors.ErrInvalidRefreshToken, err)
	}

	if user.RefreshToken != presented {
		logger.WarnWithContext(ctx, "Refresh token superseded by a newer session").
			String("user_id", userID).
			Log()
		return nil, apperrors.ErrInvalidRefreshToken
	}

	accessToken, refreshToken, err := s.MintPair(user.ID)
	if err != nil {
		logger.ErrorWithContext(ctx, "Failed to mint token pair on refresh").
			String("user_id", userID).
			Err(err).
			Log()
		return nil, apperrors.WrapError(apperrors.ErrInvalidRefreshToken, err)
	}

	// Rotation: the presented token is permanently dead after this write,
	// even though its signature would still verify.
	if err := s.repoUser.UpdateRefreshToken(ctx, user.ID, refreshToken); err != nil {
		logger.ErrorWithContext(ctx, "Failed to rotate refresh token").
			String("user_id", userID).
			Err(err).
			Log()
		return nil, apperrors.WrapError(apperrors.ErrInvalidRefreshToken, err)
	}

	logger.InfoWithContext(ctx, "Token pair refreshed").
		String("user_id", userID).
		Log()

	return &dto.TokenPairResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

func signToken(userID string, secret []byte, now time.Time, ttl time.Duration) (string, error) {
	claims := jwt.MapClaims{
		"id":  userID,
		"iat": now.Unix(),
		"exp": now.Add(ttl).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

func verifyToken(tokenString string, secret []byte) (string, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid signing method")
		}
		return secret, nil
	})
	if err != nil {
		return "", err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return "", errors.New("invalid token")
	}

	userID, ok := claims["id"].(string)
	if !ok || userID == "" {
		return "", errors.New("missing user id claim")
	}

	return userID, nil
}
