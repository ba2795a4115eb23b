package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/skillforge/account-service/internal/model"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func newTestRepo(t *testing.T) *UserRepository {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	if err := db.AutoMigrate(&model.User{}); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	return NewUserRepository(db)
}

func TestCreateAssignsDefaults(t *testing.T) {
	repo := newTestRepo(t)

	user := &model.User{
		Username: "alice",
		Email:    "alice@example.com",
		Password: "hash",
	}
	if err := repo.Create(context.Background(), user); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if user.ID == "" {
		t.Error("expected a generated id")
	}
	if user.Avatar != model.DefaultAvatar {
		t.Errorf("avatar = %q, want %q", user.Avatar, model.DefaultAvatar)
	}
	if user.SubscriptionType != model.SubscriptionFree {
		t.Errorf("subscription = %q, want %q", user.SubscriptionType, model.SubscriptionFree)
	}
}

func TestGetByEmail(t *testing.T) {
	repo := newTestRepo(t)

	user := &model.User{Username: "alice", Email: "alice@example.com", Password: "hash"}
	if err := repo.Create(context.Background(), user); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	found, err := repo.GetByEmail(context.Background(), "alice@example.com")
	if err != nil {
		t.Fatalf("GetByEmail failed: %v", err)
	}
	if found.ID != user.ID {
		t.Errorf("GetByEmail returned id %q, want %q", found.ID, user.ID)
	}

	if _, err := repo.GetByEmail(context.Background(), "nobody@example.com"); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Errorf("GetByEmail(unknown) error = %v, want %v", err, gorm.ErrRecordNotFound)
	}
}

func TestUpdatesOnMissingUser(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	tests := []struct {
		name string
		call func() error
	}{
		{"profile", func() error { return repo.UpdateProfile(ctx, "missing", "name", "avatar.png") }},
		{"subscription", func() error { return repo.UpdateSubscription(ctx, "missing", model.SubscriptionFree, nil, false) }},
		{"progress", func() error { return repo.UpdateProgress(ctx, "missing", 50) }},
		{"refresh token", func() error { return repo.UpdateRefreshToken(ctx, "missing", "token") }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.call(); !errors.Is(err, gorm.ErrRecordNotFound) {
				t.Errorf("error = %v, want %v", err, gorm.ErrRecordNotFound)
			}
		})
	}
}

func TestUpdateRefreshTokenOverwritesSlot(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	user := &model.User{Username: "alice", Email: "alice@example.com", Password: "hash"}
	if err := repo.Create(ctx, user); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	for _, token := range []string{"first-token", "second-token"} {
		if err := repo.UpdateRefreshToken(ctx, user.ID, token); err != nil {
			t.Fatalf("UpdateRefreshToken(%q) failed: %v", token, err)
		}
	}

	stored, err := repo.GetByID(ctx, user.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if stored.RefreshToken != "second-token" {
		t.Errorf("slot = %q, want %q", stored.RefreshToken, "second-token")
	}
}
