package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/skillforge/account-service/internal/dto"
	apperrors "github.com/skillforge/account-service/internal/errors"
	"github.com/skillforge/account-service/internal/model"
	"github.com/skillforge/account-service/internal/repository"
	ctxutil "github.com/skillforge/account-service/pkg/context"
	"github.com/skillforge/account-service/pkg/logger"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	bcryptCost           = 10
	premiumPeriod        = 30 * 24 * time.Hour
	progressTicketWeight = 2
	progressScaleDivisor = 100
	progressMax          = 100.0
)

// UserService implements account registration, authentication and profile
// management on top of the user repository and the token service.
type UserService struct {
	repoUser *repository.UserRepository
	tokens   *TokenService
}

func NewUserService(repo *repository.UserRepository, tokens *TokenService) *UserService {
	return &UserService{
		repoUser: repo,
		tokens:   tokens,
	}
}

// Register creates an account, hashes the password and opens the first
// session by minting a token pair and storing the refresh token slot.
// The username is trimmed and the email lowercased before storage so the
// uniqueness check is case-insensitive.
func (s *UserService) Register(ctx context.Context, req *dto.RegisterRequest) (*dto.AuthResponse, error) {
	ctx = ctxutil.WithOperation(ctx, "service", "Register")

	username := strings.TrimSpace(req.Username)
	email := NormalizeEmail(req.Email)

	if _, err := s.repoUser.GetByEmail(ctx, email); err == nil {
		logger.WarnWithContext(ctx, "Registration rejected, email already taken").
			String("email", email).
			Log()
		return nil, apperrors.ErrEmailExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		logger.ErrorWithContext(ctx, "Failed to check email uniqueness").
			Err(err).
			Log()
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcryptCost)
	if err != nil {
		logger.ErrorWithContext(ctx, "Failed to hash password").
			Err(err).
			Log()
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	user := &model.User{
		Username: username,
		Email:    email,
		Password: string(hashed),
	}

	if err := s.repoUser.Create(ctx, user); err != nil {
		logger.ErrorWithContext(ctx, "Failed to create user").
			Err(err).
			Log()
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	accessToken, refreshToken, err := s.tokens.MintPair(user.ID)
	if err != nil {
		logger.ErrorWithContext(ctx, "Failed to mint token pair on registration").
			String("user_id", user.ID).
			Err(err).
			Log()
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	if err := s.repoUser.UpdateRefreshToken(ctx, user.ID, refreshToken); err != nil {
		logger.ErrorWithContext(ctx, "Failed to store refresh token on registration").
			String("user_id", user.ID).
			Err(err).
			Log()
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	logger.InfoWithContext(ctx, "User registered").
		String("user_id", user.ID).
		String("email", user.Email).
		Log()

	return &dto.AuthResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		UserID:       user.ID,
	}, nil
}

// Login authenticates by email and password and replaces the refresh token
// slot, which invalidates any session opened earlier. Unknown email and
// wrong password are reported identically.
func (s *UserService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.AuthResponse, error) {
	ctx = ctxutil.WithOperation(ctx, "service", "Login")

	email := NormalizeEmail(req.Email)

	user, err := s.repoUser.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.WarnWithContext(ctx, "Login rejected, unknown email").
				String("email", email).
				Log()
			return nil, apperrors.ErrInvalidCredentials
		}
		logger.ErrorWithContext(ctx, "Failed to look up user by email").
			Err(err).
			Log()
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		logger.WarnWithContext(ctx, "Login rejected, password mismatch").
			String("user_id", user.ID).
			Log()
		return nil, apperrors.ErrInvalidCredentials
	}

	accessToken, refreshToken, err := s.tokens.MintPair(user.ID)
	if err != nil {
		logger.ErrorWithContext(ctx, "Failed to mint token pair on login").
			String("user_id", user.ID).
			Err(err).
			Log()
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	if err := s.repoUser.UpdateRefreshToken(ctx, user.ID, refreshToken); err != nil {
		logger.ErrorWithContext(ctx, "Failed to store refresh token on login").
			String("user_id", user.ID).
			Err(err).
			Log()
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	logger.InfoWithContext(ctx, "User logged in").
		String("user_id", user.ID).
		Log()

	return &dto.AuthResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		UserID:       user.ID,
	}, nil
}

// GetProfile returns the sanitized account projection.
func (s *UserService) GetProfile(ctx context.Context, userID string) (*dto.UserResponse, error) {
	ctx = ctxutil.WithOperation(ctx, "service", "GetProfile")

	user, err := s.getUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	return dto.NewUserResponse(user), nil
}

// UpdateProfile overwrites the mutable profile fields and returns the
// updated projection.
func (s *UserService) UpdateProfile(ctx context.Context, userID string, req *dto.UpdateProfileRequest) (*dto.UserResponse, error) {
	ctx = ctxutil.WithOperation(ctx, "service", "UpdateProfile")

	if err := s.repoUser.UpdateProfile(ctx, userID, strings.TrimSpace(req.Username), req.Avatar); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		logger.ErrorWithContext(ctx, "Failed to update profile").
			String("user_id", userID).
			Err(err).
			Log()
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	user, err := s.getUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	logger.InfoWithContext(ctx, "Profile updated").
		String("user_id", userID).
		Log()

	return dto.NewUserResponse(user), nil
}

// UpdateSubscription switches the subscription tier. Premium gets an expiry
// 30 days out; any other tier clears the expiry.
func (s *UserService) UpdateSubscription(ctx context.Context, userID string, req *dto.UpdateSubscriptionRequest) (*dto.UserResponse, error) {
	ctx = ctxutil.WithOperation(ctx, "service", "UpdateSubscription")

	var expiresAt *time.Time
	if req.Type == model.SubscriptionPremium {
		t := time.Now().Add(premiumPeriod)
		expiresAt = &t
	}

	if err := s.repoUser.UpdateSubscription(ctx, userID, req.Type, expiresAt, req.AutoRenew); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		logger.ErrorWithContext(ctx, "Failed to update subscription").
			String("user_id", userID).
			Err(err).
			Log()
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	user, err := s.getUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	logger.InfoWithContext(ctx, "Subscription updated").
		String("user_id", userID).
		String("type", req.Type).
		Log()

	return dto.NewUserResponse(user), nil
}

// GetProgress recomputes the completion percentage from the stats counters,
// persists it and returns the fresh value. Tickets weigh double; the result
// saturates at 100.
func (s *UserService) GetProgress(ctx context.Context, userID string) (*dto.ProgressResponse, error) {
	ctx = ctxutil.WithOperation(ctx, "service", "GetProgress")

	user, err := s.getUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	progress := ComputeProgress(user.Stats.Data())

	if progress != user.Progress {
		if err := s.repoUser.UpdateProgress(ctx, userID, progress); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, apperrors.ErrUserNotFound
			}
			logger.ErrorWithContext(ctx, "Failed to persist progress").
				String("user_id", userID).
				Err(err).
				Log()
			return nil, apperrors.WrapError(apperrors.ErrInternal, err)
		}
	}

	return &dto.ProgressResponse{Progress: progress}, nil
}

// NormalizeEmail folds an address into its canonical stored form. Lookups
// and writes both go through this, so addresses differing only in case or
// surrounding whitespace name the same account.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ComputeProgress derives the completion percentage from the raw counters.
func ComputeProgress(stats model.UserStats) float64 {
	weighted := float64(stats.TicketsCompleted*progressTicketWeight + stats.LessonsCompleted)
	progress := weighted / progressScaleDivisor * 100
	if progress > progressMax {
		return progressMax
	}
	return progress
}

func (s *UserService) getUser(ctx context.Context, userID string) (*model.User, error) {
	user, err := s.repoUser.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		logger.ErrorWithContext(ctx, "Failed to load user").
			String("user_id", userID).
			Err(err).
			Log()
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}
	return user, nil
}
