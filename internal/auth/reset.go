package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mateenikhtiyar/cim-backend/internal/mailer"
	"github.com/mateenikhtiyar/cim-backend/internal/principal"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// resetRoles is the fixed probe order for role-agnostic reset calls.
var resetRoles = []principal.Role{principal.RoleBuyer, principal.RoleSeller}

// RequestPasswordReset locates the account across the buyer and seller
// stores and issues a single-use reset token. Only the token's digest is
// persisted; the raw value leaves through the emailed URL and nowhere else.
func (s *Service) RequestPasswordReset(ctx context.Context, email string) error {
	acct, err := s.accounts.ResolveByEmail(ctx, email)
	if errors.Is(err, principal.ErrNotFound) {
		return ErrAccountNotFound
	}
	if err != nil {
		s.logger.Error("password reset lookup failed", zap.Error(err))
		return err
	}
	return s.issueReset(ctx, acct)
}

// RequestPasswordResetForRole is the same state machine parameterized by a
// single store.
func (s *Service) RequestPasswordResetForRole(ctx context.Context, email string, role principal.Role) error {
	if role != principal.RoleBuyer && role != principal.RoleSeller {
		return fmt.Errorf("%w: %q", principal.ErrUnsupportedRole, role)
	}
	acct, err := s.accounts.FindByEmail(ctx, role, email)
	if errors.Is(err, principal.ErrNotFound) {
		return ErrAccountNotFound
	}
	if err != nil {
		s.logger.Error("password reset lookup failed", zap.Error(err), zap.String("role", role.String()))
		return err
	}
	return s.issueReset(ctx, acct)
}

func (s *Service) issueReset(ctx context.Context, acct *principal.Account) error {
	raw, err := generateToken(s.config.Auth.ResetTokenLength)
	if err != nil {
		return err
	}

	expiresAt := time.Now().Add(s.config.Auth.ResetTokenExpiry)
	// Overwriting invalidates any previously issued token for this account.
	if err := s.accounts.SetResetToken(ctx, acct.Role, acct.ID, hashToken(raw), expiresAt); err != nil {
		s.logger.Error("failed to persist reset token", zap.Error(err), zap.String("user_id", acct.ID))
		return err
	}

	subject, body, err := mailer.RenderPasswordReset(mailer.PasswordResetData{
		FullName: acct.FullName,
		ResetURL: fmt.Sprintf("%s/reset-password?token=%s", s.config.App.FrontendURL, raw),
		Expiry:   s.config.Auth.ResetTokenExpiry,
		AppName:  s.config.App.Name,
	})
	if err != nil {
		return err
	}

	// Dispatch strictly after persistence so a mail failure never corrupts
	// token state.
	if err := s.mail.Send(ctx, acct.Email, acct.Role.String(), subject, body); err != nil {
		s.logger.Error("failed to send password reset email", zap.Error(err), zap.String("user_id", acct.ID))
		return err
	}

	s.logger.Info("password reset token issued",
		zap.String("user_id", acct.ID),
		zap.String("role", acct.Role.String()),
		zap.Time("expires_at", expiresAt))
	return nil
}

// ResetPassword consumes a reset token. Unknown and expired tokens are
// indistinguishable to the caller.
func (s *Service) ResetPassword(ctx context.Context, rawToken, newPassword string) error {
	digest := hashToken(rawToken)
	now := time.Now()

	for _, role := range resetRoles {
		acct, err := s.accounts.FindByResetTokenHash(ctx, role, digest, now)
		if errors.Is(err, principal.ErrNotFound) {
			continue
		}
		if err != nil {
			s.logger.Error("reset token lookup failed", zap.Error(err), zap.String("role", role.String()))
			return err
		}

		hashed, err := bcrypt.GenerateFromPassword([]byte(newPassword), s.config.Auth.BcryptCost)
		if err != nil {
			return ErrPasswordHashingFailed
		}

		if err := s.accounts.UpdatePasswordAndClearReset(ctx, role, acct.ID, string(hashed)); err != nil {
			s.logger.Error("failed to store new password", zap.Error(err), zap.String("user_id", acct.ID))
			return err
		}

		s.logger.Info("password reset completed",
			zap.String("user_id", acct.ID),
			zap.String("role", acct.Role.String()))
		return nil
	}

	return ErrResetTokenInvalid
}
