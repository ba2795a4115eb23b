package dto

import (
	"time"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/skillforge/account-service/internal/model"
)

func init() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		err := v.RegisterValidation("subscription_type", func(fl validator.FieldLevel) bool {
			switch fl.Field().String() {
			case model.SubscriptionFree, model.SubscriptionPremium:
				return true
			}
			return false
		})
		// A failed registration would reject every bind that uses the tag,
		// so refuse to start instead.
		if err != nil {
			panic("failed to register subscription_type validation: " + err.Error())
		}
	}
}

type RegisterRequest struct {
	Username string `json:"username" binding:"required,min=2,max=50"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8,max=100"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type UpdateProfileRequest struct {
	Username string `json:"username" binding:"required,min=2,max=50"`
	Avatar   string `json:"avatar" binding:"required"`
}

type UpdateSubscriptionRequest struct {
	Type      string `json:"type" binding:"required,subscription_type"`
	AutoRenew bool   `json:"autoRenew"`
}

// AuthResponse is returned by register and login
type AuthResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	UserID       string `json:"userId"`
}

// TokenPairResponse is returned by refresh
type TokenPairResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

type SubscriptionInfo struct {
	Type      string     `json:"type"`
	ExpiresAt *time.Time `json:"expiresAt"`
	AutoRenew bool       `json:"autoRenew"`
}

// UserResponse is the sanitized account projection. The password hash and
// the refresh token slot never appear here.
type UserResponse struct {
	ID           string           `json:"id"`
	Username     string           `json:"username"`
	Email        string           `json:"email"`
	Avatar       string           `json:"avatar"`
	Progress     float64          `json:"progress"`
	Stats        model.UserStats  `json:"stats"`
	Subscription SubscriptionInfo `json:"subscription"`
	CreatedAt    time.Time        `json:"createdAt"`
}

type ProgressResponse struct {
	Progress float64 `json:"progress"`
}

// NewUserResponse projects a stored user onto the public shape
func NewUserResponse(user *model.User) *UserResponse {
	return &UserResponse{
		ID:       user.ID,
		Username: user.Username,
		Email:    user.Email,
		Avatar:   user.Avatar,
		Progress: user.Progress,
		Stats:    user.Stats.Data(),
		Subscription: SubscriptionInfo{
			Type:      user.SubscriptionType,
			ExpiresAt: user.SubscriptionExpiresAt,
			AutoRenew: user.SubscriptionAutoRenew,
		},
		CreatedAt: user.CreatedAt,
	}
}
