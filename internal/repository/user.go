package repository

import (
	"context"
	"time"

	"github.com/skillforge/account-service/internal/model"
	ctxutil "github.com/skillforge/account-service/pkg/context"
	"github.com/skillforge/account-service/pkg/logger"
	"gorm.io/gorm"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Create inserts a new user record
func (r *UserRepository) Create(ctx context.Context, user *model.User) error {
	ctx = ctxutil.WithOperation(ctx, "repository", "Create")

	logger.DebugWithContext(ctx, "Creating new user").
		String("email", user.Email).
		String("username", user.Username).
		Log()

	start := time.Now()
	result := r.db.WithContext(ctx).Create(user)
	duration := time.Since(start)

	if result.Error != nil {
		logger.ErrorWithContext(ctx, "Failed to create user").
			String("email", user.Email).
			Duration(duration).
			Err(result.Error).
			Log()
		return result.Error
	}

	logger.InfoWithContext(ctx, "User created successfully").
		String("email", user.Email).
		String("user_id", user.ID).
		Duration(duration).
		Log()

	return nil
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*model.User, error) {
	ctx = ctxutil.WithOperation(ctx, "repository", "GetByID")

	start := time.Now()
	var user model.User

	result := r.db.WithContext(ctx).Where("id = ?", id).First(&user)
	duration := time.Since(start)

	if result.Error != nil {
		logger.DebugWithContext(ctx, "Failed to get user by ID").
			String("user_id", id).
			Duration(duration).
			Err(result.Error).
			Log()
		return nil, result.Error
	}

	return &user, nil
}

// GetByEmail finds a user by email
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	ctx = ctxutil.WithOperation(ctx, "repository", "GetByEmail")

	start := time.Now()
	var user model.User

	result := r.db.WithContext(ctx).Where("email = ?", email).First(&user)
	duration := time.Since(start)

	if result.Error != nil {
		logger.DebugWithContext(ctx, "Failed to get user by email").
			String("email", email).
			Duration(duration).
			Err(result.Error).
			Log()
		return nil, result.Error
	}

	return &user, nil
}

// UpdateProfile overwrites the profile fields
func (r *UserRepository) UpdateProfile(ctx context.Context, id, username, avatar string) error {
	ctx = ctxutil.WithOperation(ctx, "repository", "UpdateProfile")

	start := time.Now()
	result := r.db.WithContext(ctx).Model(&model.User{}).Where("id = ?", id).Updates(map[string]interface{}{
		"username": username,
		"avatar":   avatar,
	})
	duration := time.Since(start)

	if result.Error != nil {
		logger.ErrorWithContext(ctx, "Failed to update profile").
			String("user_id", id).
			Duration(duration).
			Err(result.Error).
			Log()
		return result.Error
	}

	if result.RowsAffected == 0 {
		logger.WarnWithContext(ctx, "No user found to update profile").
			String("user_id", id).
			Log()
		return gorm.ErrRecordNotFound
	}

	logger.InfoWithContext(ctx, "Profile updated successfully").
		String("user_id", id).
		Duration(duration).
		Log()

	return nil
}

// UpdateSubscription overwrites the subscription descriptor
func (r *UserRepository) UpdateSubscription(ctx context.Context, id, subscriptionType string, expiresAt *time.Time, autoRenew bool) error {
	ctx = ctxutil.WithOperation(ctx, "repository", "UpdateSubscription")

	start := time.Now()
	result := r.db.WithContext(ctx).Model(&model.User{}).Where("id = ?", id).Updates(map[string]interface{}{
		"subscription_type":       subscriptionType,
		"subscription_expires_at": expiresAt,
		"subscription_auto_renew": autoRenew,
	})
	duration := time.Since(start)

	if result.Error != nil {
		logger.ErrorWithContext(ctx, "Failed to update subscription").
			String("user_id", id).
			Duration(duration).
			Err(result.Error).
			Log()
		return result.Error
	}

	if result.RowsAffected == 0 {
		logger.WarnWithContext(ctx, "No user found to update subscription").
			String("user_id", id).
			Log()
		return gorm.ErrRecordNotFound
	}

	logger.InfoWithContext(ctx, "Subscription updated successfully").
		String("user_id", id).
		String("subscription_type", subscriptionType).
		Duration(duration).
		Log()

	return nil
}

// UpdateProgress persists the last computed progress value
func (r *UserRepository) UpdateProgress(ctx context.Context, id string, progress float64) error {
	ctx = ctxutil.WithOperation(ctx, "repository", "UpdateProgress")

	start := time.Now()
	result := r.db.WithContext(ctx).Model(&model.User{}).Where("id = ?", id).Update("progress", progress)
	duration := time.Since(start)

	if result.Error != nil {
		logger.ErrorWithContext(ctx, "Failed to update progress").
			String("user_id", id).
			Duration(duration).
			Err(result.Error).
			Log()
		return result.Error
	}

	if result.RowsAffected == 0 {
		logger.WarnWithContext(ctx, "No user found to update progress").
			String("user_id", id).
			Log()
		return gorm.ErrRecordNotFound
	}

	return nil
}

// UpdateRefreshToken overwrites the single refresh token slot. The previous
// value is gone after this call, which is what makes rotation stick.
func (r *UserRepository) UpdateRefreshToken(ctx context.Context, id, refreshToken string) error {
	ctx = ctxutil.WithOperation(ctx, "repository", "UpdateRefreshToken")

	logger.DebugWithContext(ctx, "Updating refresh token slot").
		String("user_id", id).
		Bool("has_token", refreshToken != "").
		Log()

	start := time.Now()
	result := r.db.WithContext(ctx).Model(&model.User{}).Where("id = ?", id).Update("refresh_token", refreshToken)
	duration := time.Since(start)

	if result.Error != nil {
		logger.ErrorWithContext(ctx, "Failed to update refresh token").
			String("user_id", id).
			Duration(duration).
			Err(result.Error).
			Log()
		return result.Error
	}

	if result.RowsAffected == 0 {
		logger.WarnWithContext(ctx, "No user found to update refresh token").
			String("user_id", id).
			Log()
		return gorm.ErrRecordNotFound
	}

	return nil
}
