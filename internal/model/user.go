package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Subscription tiers
const (
	SubscriptionFree    = "free"
	SubscriptionPremium = "premium"
)

// DefaultAvatar is assigned to accounts that never uploaded one.
const DefaultAvatar = "default-avatar.png"

// UserStats is the completion counters blob, stored as a single JSON
// document column to keep the record document-shaped.
type UserStats struct {
	TicketsCompleted int `json:"ticketsCompleted"`
	LessonsCompleted int `json:"lessonsCompleted"`
	TotalTimeSpent   int `json:"totalTimeSpent"`
}

// User is the account aggregate. RefreshToken is a single slot: at most one
// refresh token is valid per user, and each login or refresh overwrites it.
type User struct {
	ID        string    `gorm:"column:id;type:uuid;primaryKey"`
	CreatedAt time.Time `gorm:"column:created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at"`

	Username string `gorm:"column:username;not null"`
	Email    string `gorm:"column:email;unique;not null"`
	Password string `gorm:"column:password;not null"`
	Avatar   string `gorm:"column:avatar;not null;default:'default-avatar.png'"`

	Progress float64                       `gorm:"column:progress;not null;default:0"`
	Stats    datatypes.JSONType[UserStats] `gorm:"column:stats"`

	SubscriptionType      string     `gorm:"column:subscription_type;not null;default:'free'"`
	SubscriptionExpiresAt *time.Time `gorm:"column:subscription_expires_at"`
	SubscriptionAutoRenew bool       `gorm:"column:subscription_auto_renew;not null;default:false"`

	RefreshToken string `gorm:"column:refresh_token"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	if u.Avatar == "" {
		u.Avatar = DefaultAvatar
	}
	if u.SubscriptionType == "" {
		u.SubscriptionType = SubscriptionFree
	}
	return nil
}
