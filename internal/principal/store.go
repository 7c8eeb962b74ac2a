package principal

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mateenikhtiyar/cim-backend/internal/logging"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	ErrNotFound        = errors.New("account not found")
	ErrUnsupportedRole = errors.New("unsupported role")
)

// resetExpirySentinel is written when a reset token is consumed so a stale
// hash can never match again, even if the cleared hash were ever compared.
var resetExpirySentinel = time.Unix(0, 0)

// Store provides role-dispatched access to the three disjoint account tables.
// Every mutation is a single UPDATE so concurrent callers never observe
// partially applied state.
type Store struct {
	db     *gorm.DB
	logger *logging.Service
}

func NewStore(db *gorm.DB, logger *logging.Service) *Store {
	return &Store{db: db, logger: logger}
}

func (s *Store) FindByEmail(ctx context.Context, role Role, email string) (*Account, error) {
	switch role {
	case RoleBuyer:
		var b Buyer
		if err := s.db.WithContext(ctx).Where("email = ?", email).First(&b).Error; err != nil {
			return nil, translateErr(err)
		}
		return b.Account(), nil
	case RoleSeller:
		var sel Seller
		if err := s.db.WithContext(ctx).Where("email = ?", email).First(&sel).Error; err != nil {
			return nil, translateErr(err)
		}
		return sel.Account(), nil
	case RoleAdmin:
		var a Admin
		if err := s.db.WithContext(ctx).Where("email = ?", email).First(&a).Error; err != nil {
			return nil, translateErr(err)
		}
		return a.Account(), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnsupportedRole, role)
}

func (s *Store) FindByID(ctx context.Context, role Role, id string) (*Account, error) {
	switch role {
	case RoleBuyer:
		var b Buyer
		if err := s.db.WithContext(ctx).Where("id = ?", id).First(&b).Error; err != nil {
			return nil, translateErr(err)
		}
		return b.Account(), nil
	case RoleSeller:
		var sel Seller
		if err := s.db.WithContext(ctx).Where("id = ?", id).First(&sel).Error; err != nil {
			return nil, translateErr(err)
		}
		return sel.Account(), nil
	case RoleAdmin:
		var a Admin
		if err := s.db.WithContext(ctx).Where("id = ?", id).First(&a).Error; err != nil {
			return nil, translateErr(err)
		}
		return a.Account(), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnsupportedRole, role)
}

func (s *Store) CreateBuyer(ctx context.Context, b *Buyer) error {
	if err := s.db.WithContext(ctx).Create(b).Error; err != nil {
		return fmt.Errorf("failed to create buyer: %w", err)
	}
	return nil
}

func (s *Store) CreateSeller(ctx context.Context, sel *Seller) error {
	if err := s.db.WithContext(ctx).Create(sel).Error; err != nil {
		return fmt.Errorf("failed to create seller: %w", err)
	}
	return nil
}

func (s *Store) CreateAdmin(ctx context.Context, a *Admin) error {
	if err := s.db.WithContext(ctx).Create(a).Error; err != nil {
		return fmt.Errorf("failed to create admin: %w", err)
	}
	return nil
}

// SetResetToken stores a reset-token hash and expiry in one UPDATE,
// overwriting any previously issued token for the account.
func (s *Store) SetResetToken(ctx context.Context, role Role, id, tokenHash string, expiresAt time.Time) error {
	tx, err := s.resettable(ctx, role)
	if err != nil {
		return err
	}
	result := tx.Where("id = ?", id).Updates(map[string]any{
		"reset_password_token_hash": tokenHash,
		"reset_password_expires_at": expiresAt,
	})
	if result.Error != nil {
		return fmt.Errorf("failed to set reset token: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// FindByResetTokenHash matches a non-expired reset token. Hash mismatch and
// expiry collapse into the same ErrNotFound so the caller cannot tell them
// apart.
func (s *Store) FindByResetTokenHash(ctx context.Context, role Role, tokenHash string, now time.Time) (*Account, error) {
	switch role {
	case RoleBuyer:
		var b Buyer
		err := s.db.WithContext(ctx).
			Where("reset_password_token_hash = ? AND reset_password_expires_at > ?", tokenHash, now).
			First(&b).Error
		if err != nil {
			return nil, translateErr(err)
		}
		return b.Account(), nil
	case RoleSeller:
		var sel Seller
		err := s.db.WithContext(ctx).
			Where("reset_password_token_hash = ? AND reset_password_expires_at > ?", tokenHash, now).
			First(&sel).Error
		if err != nil {
			return nil, translateErr(err)
		}
		return sel.Account(), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnsupportedRole, role)
}

// UpdatePasswordAndClearReset replaces the password hash and retires the
// reset token in a single UPDATE. The expiry is pushed to a past sentinel so
// the cleared hash can never match again.
func (s *Store) UpdatePasswordAndClearReset(ctx context.Context, role Role, id, passwordHash string) error {
	tx, err := s.resettable(ctx, role)
	if err != nil {
		return err
	}
	result := tx.Where("id = ?", id).Updates(map[string]any{
		"password":                  passwordHash,
		"reset_password_token_hash": nil,
		"reset_password_expires_at": resetExpirySentinel,
	})
	if result.Error != nil {
		return fmt.Errorf("failed to update password: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// MarkEmailVerified flips the verification flag. Admins are implicitly
// verified, so the call is a no-op for them.
func (s *Store) MarkEmailVerified(ctx context.Context, role Role, id string) error {
	var tx *gorm.DB
	switch role {
	case RoleBuyer:
		tx = s.db.WithContext(ctx).Model(&Buyer{})
	case RoleSeller:
		tx = s.db.WithContext(ctx).Model(&Seller{})
	case RoleAdmin:
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedRole, role)
	}
	result := tx.Where("id = ?", id).Update("is_email_verified", true)
	if result.Error != nil {
		return fmt.Errorf("failed to mark email verified: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// recoveryRoles is the fixed probe order for email-keyed flows. Admins are
// excluded from recovery on purpose.
var recoveryRoles = []Role{RoleBuyer, RoleSeller}

// ResolveByEmail probes the buyer and then the seller table. When the same
// email exists in both, the buyer record wins; that ambiguity is logged but
// deliberately not resolved here.
func (s *Store) ResolveByEmail(ctx context.Context, email string) (*Account, error) {
	var found *Account
	for _, role := range recoveryRoles {
		acct, err := s.FindByEmail(ctx, role, email)
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		if found != nil {
			s.logger.Warn("email present in more than one account table, keeping first match",
				zap.String("email", email),
				zap.String("kept_role", found.Role.String()),
				zap.String("shadowed_role", role.String()))
			return found, nil
		}
		found = acct
	}
	if found == nil {
		return nil, ErrNotFound
	}
	return found, nil
}

// ResolveByID probes the buyer and then the seller table for a role-agnostic
// id reference, such as a verification token's user id.
func (s *Store) ResolveByID(ctx context.Context, id string) (*Account, error) {
	for _, role := range recoveryRoles {
		acct, err := s.FindByID(ctx, role, id)
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		return acct, nil
	}
	return nil, ErrNotFound
}

func (s *Store) resettable(ctx context.Context, role Role) (*gorm.DB, error) {
	switch role {
	case RoleBuyer:
		return s.db.WithContext(ctx).Model(&Buyer{}), nil
	case RoleSeller:
		return s.db.WithContext(ctx).Model(&Seller{}), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnsupportedRole, role)
}

func translateErr(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return fmt.Errorf("account lookup failed: %w", err)
}
