package auth

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mateenikhtiyar/cim-backend/internal/logging"
	"gorm.io/gorm"
)

// Context selects which email copy accompanies a verification-token
// issuance. It never changes the token state machine.
type Context string

const (
	ContextInitial       Context = "initial"
	ContextResend        Context = "resend"
	ContextLoginReminder Context = "login-reminder"
)

// VerificationToken proves ownership of an email address. Records are kept
// after use as an audit trail; they are marked used, never deleted.
type VerificationToken struct {
	ID        string    `json:"id" gorm:"primaryKey;size:36"`
	UserID    string    `json:"user_id" gorm:"index;not null"`
	Token     string    `json:"-" gorm:"uniqueIndex;not null"`
	IsUsed    bool      `json:"is_used" gorm:"default:false"`
	ExpiresAt time.Time `json:"expires_at" gorm:"not null"`
	CreatedAt time.Time `json:"created_at"`
}

func (VerificationToken) TableName() string {
	return "verification_tokens"
}

func (t *VerificationToken) BeforeCreate(tx *gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	return nil
}

var errTokenNotFound = errors.New("verification token not found")

// TokenStore owns the verification-token collection. The single-active-token
// invariant is enforced by InvalidateActive-then-Create, not by a uniqueness
// constraint; both steps are individually atomic.
type TokenStore struct {
	db     *gorm.DB
	logger *logging.Service
}

func NewTokenStore(db *gorm.DB, logger *logging.Service) *TokenStore {
	return &TokenStore{db: db, logger: logger}
}

func (ts *TokenStore) Create(ctx context.Context, token *VerificationToken) error {
	if err := ts.db.WithContext(ctx).Create(token).Error; err != nil {
		return fmt.Errorf("failed to create verification token: %w", err)
	}
	return nil
}

func (ts *TokenStore) FindByToken(ctx context.Context, rawToken string) (*VerificationToken, error) {
	var token VerificationToken
	if err := ts.db.WithContext(ctx).Where("token = ?", rawToken).First(&token).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errTokenNotFound
		}
		return nil, fmt.Errorf("verification token lookup failed: %w", err)
	}
	return &token, nil
}

// InvalidateActive flips every unused token for the user to used in one bulk
// UPDATE, guaranteeing at most one active token once a new one is inserted.
func (ts *TokenStore) InvalidateActive(ctx context.Context, userID string) (int64, error) {
	result := ts.db.WithContext(ctx).
		Model(&VerificationToken{}).
		Where("user_id = ? AND is_used = ?", userID, false).
		Update("is_used", true)
	if result.Error != nil {
		return 0, fmt.Errorf("failed to invalidate verification tokens: %w", result.Error)
	}
	return result.RowsAffected, nil
}

// MarkUsed consumes a token with a conditional UPDATE. It reports false when
// the token was already used, which makes consumption single-winner when two
// requests race on the same token.
func (ts *TokenStore) MarkUsed(ctx context.Context, id string) (bool, error) {
	result := ts.db.WithContext(ctx).
		Model(&VerificationToken{}).
		Where("id = ? AND is_used = ?", id, false).
		Update("is_used", true)
	if result.Error != nil {
		return false, fmt.Errorf("failed to mark verification token used: %w", result.Error)
	}
	return result.RowsAffected > 0, nil
}

func (ts *TokenStore) CountActive(ctx context.Context, userID string) (int64, error) {
	var count int64
	err := ts.db.WithContext(ctx).
		Model(&VerificationToken{}).
		Where("user_id = ? AND is_used = ?", userID, false).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count active verification tokens: %w", err)
	}
	return count, nil
}

// generateToken returns a high-entropy opaque token, hex encoded.
func generateToken(length int) (string, error) {
	bytes := make([]byte, length)
	if _, err := rand.Read(bytes); err != nil {
		return "", fmt.Errorf("failed to generate secure token: %w", err)
	}
	return hex.EncodeToString(bytes), nil
}

// hashToken is the one-way digest under which reset tokens are persisted.
// The raw token is only ever embedded in the reset URL.
func hashToken(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}
