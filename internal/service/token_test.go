package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/skillforge/account-service/config"
	apperrors "github.com/skillforge/account-service/internal/errors"
	"github.com/skillforge/account-service/internal/model"
	"github.com/skillforge/account-service/internal/repository"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	// A named shared-cache DSN so every pooled connection sees the same
	// in-memory database.
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

	return db
}

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		AccessSecret:  "test-access-secret",
		RefreshSecret: "test-refresh-secret",
		AccessTTL:     15 * time.Minute,
		RefreshTTL:    7 * 24 * time.Hour,
	}
}

func newTestTokenService(t *testing.T) (*TokenService, *repository.UserRepository) {
	t.Helper()

	repo := repository.NewUserRepository(newTestDB(t))
	return NewTokenService(testJWTConfig(), repo), repo
}

func seedUser(t *testing.T, repo *repository.UserRepository) *model.User {
	t.Helper()

	user := &model.User{
		Username: "alice",
		Email:    "alice@example.com",
		Password: "not-a-real-hash",
	}
	if err := repo.Create(context.Background(), user); err != nil {
		t.Fatalf("failed to seed user: %v", err)
	}
	return user
}

func TestMintPairVerifyAccess(t *testing.T) {
	svc, _ := newTestTokenService(t)

	access, refresh, err := svc.MintPair("user-1")
	if err != nil {
		t.Fatalf("MintPair failed: %v", err)
	}
	if access == "" || refresh == "" {
		t.Fatal("expected both tokens to be non-empty")
	}

	userID, err := svc.VerifyAccess(access)
	if err != nil {
		t.Fatalf("VerifyAccess rejected a fresh access token: %v", err)
	}
	if userID != "user-1" {
		t.Errorf("VerifyAccess returned user id %q, want %q", userID, "user-1")
	}
}

func TestVerifyAccessRejectsRefreshToken(t *testing.T) {
	svc, _ := newTestTokenService(t)

	// A refresh token is signed with the other secret; the access check
	// must not accept it.
	_, refresh, err := svc.MintPair("user-1")
	if err != nil {
		t.Fatalf("MintPair failed: %v", err)
	}

	if _, err := svc.VerifyAccess(refresh); !errors.Is(err, apperrors.ErrInvalidAccessToken) {
		t.Errorf("VerifyAccess(refresh token) error = %v, want %v", err, apperrors.ErrInvalidAccessToken)
	}
}

func TestVerifyAccessMissingToken(t *testing.T) {
	svc, _ := newTestTokenService(t)

	if _, err := svc.VerifyAccess(""); !errors.Is(err, apperrors.ErrAuthRequired) {
		t.Errorf("VerifyAccess(\"\") error = %v, want %v", err, apperrors.ErrAuthRequired)
	}
}

func TestVerifyAccessExpiredToken(t *testing.T) {
	cfg := testJWTConfig()
	cfg.AccessTTL = -time.Minute

	svc := NewTokenService(cfg, repository.NewUserRepository(newTestDB(t)))

	access, _, err := svc.MintPair("user-1")
	if err != nil {
		t.Fatalf("MintPair failed: %v", err)
	}

	if _, err := svc.VerifyAccess(access); !errors.Is(err, apperrors.ErrInvalidAccessToken) {
		t.Errorf("VerifyAccess(expired) error = %v, want %v", err, apperrors.ErrInvalidAccessToken)
	}
}

func TestRefreshMissingToken(t *testing.T) {
	svc, _ := newTestTokenService(t)

	if _, err := svc.Refresh(context.Background(), ""); !errors.Is(err, apperrors.ErrMissingRefreshToken) {
		t.Errorf("Refresh(\"\") error = %v, want %v", err, apperrors.ErrMissingRefreshToken)
	}
}

func TestRefreshRejectsAccessToken(t *testing.T) {
	svc, repo := newTestTokenService(t)
	user := seedUser(t, repo)

	access, refresh, err := svc.MintPair(user.ID)
	if err != nil {
		t.Fatalf("MintPair failed: %v", err)
	}
	if err := repo.UpdateRefreshToken(context.Background(), user.ID, refresh); err != nil {
		t.Fatalf("failed to store refresh token: %v", err)
	}

	if _, err := svc.Refresh(context.Background(), access); !errors.Is(err, apperrors.ErrInvalidRefreshToken) {
		t.Errorf("Refresh(access token) error = %v, want %v", err, apperrors.ErrInvalidRefreshToken)
	}
}

func TestRefreshUnknownUser(t *testing.T) {
	svc, _ := newTestTokenService(t)

	_, refresh, err := svc.MintPair("no-such-user")
	if err != nil {
		t.Fatalf("MintPair failed: %v", err)
	}

	if _, err := svc.Refresh(context.Background(), refresh); !errors.Is(err, apperrors.ErrInvalidRefreshToken) {
		t.Errorf("Refresh(unknown user) error = %v, want %v", err, apperrors.ErrInvalidRefreshToken)
	}
}

func TestRefreshRotatesSlot(t *testing.T) {
	svc, repo := newTestTokenService(t)
	user := seedUser(t, repo)

	_, refresh, err := svc.MintPair(user.ID)
	if err != nil {
		t.Fatalf("MintPair failed: %v", err)
	}
	if err := repo.UpdateRefreshToken(context.Background(), user.ID, refresh); err != nil {
		t.Fatalf("failed to store refresh token: %v", err)
	}

	// Claims carry second-resolution timestamps; cross a second boundary
	// so the rotated token cannot collide with the presented one.
	time.Sleep(1100 * time.Millisecond)

	pair, err := svc.Refresh(context.Background(), refresh)
	if err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}
	if pair.AccessToken == "" || pair.RefreshToken == "" {
		t.Fatal("expected a complete token pair")
	}
	if pair.RefreshToken == refresh {
		t.Fatal("expected refresh to mint a different refresh token")
	}

	stored, err := repo.GetByID(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("failed to reload user: %v", err)
	}
	if stored.RefreshToken != pair.RefreshToken {
		t.Error("stored slot does not hold the rotated refresh token")
	}

	// The presented token is superseded: a second use must fail even
	// though its signature still verifies.
	if _, err := svc.Refresh(context.Background(), refresh); !errors.Is(err, apperrors.ErrInvalidRefreshToken) {
		t.Errorf("Refresh(superseded token) error = %v, want %v", err, apperrors.ErrInvalidRefreshToken)
	}

	// The rotated token works.
	if _, err := svc.Refresh(context.Background(), pair.RefreshToken); err != nil {
		t.Errorf("Refresh(rotated token) failed: %v", err)
	}
}
