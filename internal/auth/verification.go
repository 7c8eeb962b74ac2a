package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mateenikhtiyar/cim-backend/internal/mailer"
	"github.com/mateenikhtiyar/cim-backend/internal/principal"
	"go.uber.org/zap"
)

// VerifyResult is the observable outcome of consuming a verification token.
// Every negative path (unknown, used, expired, orphaned) produces the same
// shape with Verified false.
type VerifyResult struct {
	Verified    bool           `json:"verified"`
	Role        principal.Role `json:"role,omitempty"`
	AccessToken string         `json:"accessToken,omitempty"`
	UserID      string         `json:"userId,omitempty"`
	FullName    string         `json:"fullName,omitempty"`
}

// IssueVerification creates and dispatches a verification token for the
// principal. For any context other than the initial signup, previously
// active tokens are bulk-invalidated first (invalidate-then-insert), which
// keeps at most one active token per user. Dispatch failure always
// propagates from here; the login-reminder path swallows it at the call
// site.
func (s *Service) IssueVerification(ctx context.Context, p *principal.Principal, emailCtx Context) (*VerificationToken, error) {
	if emailCtx != ContextInitial {
		invalidated, err := s.tokens.InvalidateActive(ctx, p.ID)
		if err != nil {
			s.logger.Error("failed to invalidate prior verification tokens", zap.Error(err), zap.String("user_id", p.ID))
			return nil, err
		}
		if invalidated > 0 {
			s.logger.Debug("invalidated prior verification tokens",
				zap.String("user_id", p.ID),
				zap.Int64("count", invalidated))
		}
	}

	raw, err := generateToken(s.config.Auth.VerificationTokenLength)
	if err != nil {
		return nil, err
	}

	token := &VerificationToken{
		UserID:    p.ID,
		Token:     raw,
		IsUsed:    false,
		ExpiresAt: time.Now().Add(s.config.Auth.VerificationExpiry),
	}
	if err := s.tokens.Create(ctx, token); err != nil {
		s.logger.Error("failed to persist verification token", zap.Error(err), zap.String("user_id", p.ID))
		return nil, err
	}

	subject, body, err := mailer.RenderVerification(string(emailCtx), mailer.VerificationData{
		FullName:  p.FullName,
		VerifyURL: fmt.Sprintf("%s/verify-email?token=%s", s.config.App.FrontendURL, raw),
		Expiry:    s.config.Auth.VerificationExpiry,
		AppName:   s.config.App.Name,
	})
	if err != nil {
		return nil, err
	}

	// Token state is already durable; a mail failure here leaves a valid
	// token behind and is reported to the caller.
	if err := s.mail.Send(ctx, p.Email, p.Role.String(), subject, body); err != nil {
		return nil, err
	}

	s.logger.Info("verification token issued",
		zap.String("user_id", p.ID),
		zap.String("context", string(emailCtx)),
		zap.Time("expires_at", token.ExpiresAt))
	return token, nil
}

// ConsumeVerification validates and consumes a verification token. The
// mark-used mutation is committed before the principal is touched, so a
// token is consumed at most once even when two requests race: the loser
// observes is_used and reports Verified false.
func (s *Service) ConsumeVerification(ctx context.Context, rawToken string) (*VerifyResult, error) {
	token, err := s.tokens.FindByToken(ctx, rawToken)
	if errors.Is(err, errTokenNotFound) {
		return &VerifyResult{Verified: false}, nil
	}
	if err != nil {
		s.logger.Error("verification token lookup failed", zap.Error(err))
		return nil, err
	}

	if token.IsUsed || time.Now().After(token.ExpiresAt) {
		return &VerifyResult{Verified: false}, nil
	}

	won, err := s.tokens.MarkUsed(ctx, token.ID)
	if err != nil {
		return nil, err
	}
	if !won {
		return &VerifyResult{Verified: false}, nil
	}

	acct, err := s.accounts.ResolveByID(ctx, token.UserID)
	if errors.Is(err, principal.ErrNotFound) {
		// Token was valid but its owner exists in neither store. The token
		// stays consumed; surfacing it as unverified is the least bad option.
		s.logger.Warn("verification token references missing account",
			zap.String("token_id", token.ID),
			zap.String("user_id", token.UserID))
		return &VerifyResult{Verified: false}, nil
	}
	if err != nil {
		return nil, err
	}

	if err := s.accounts.MarkEmailVerified(ctx, acct.Role, acct.ID); err != nil {
		s.logger.Error("failed to mark email verified", zap.Error(err), zap.String("user_id", acct.ID))
		return nil, err
	}
	acct.IsEmailVerified = true

	p := acct.Principal
	accessToken, err := s.sessions.Issue(&p)
	if err != nil {
		return nil, err
	}

	s.logger.Info("email verified",
		zap.String("user_id", acct.ID),
		zap.String("role", acct.Role.String()))

	return &VerifyResult{
		Verified:    true,
		Role:        acct.Role,
		AccessToken: accessToken,
		UserID:      acct.ID,
		FullName:    acct.FullName,
	}, nil
}

// ResendVerification issues a fresh token for an unverified account located
// across the buyer and seller stores.
func (s *Service) ResendVerification(ctx context.Context, email string) error {
	acct, err := s.accounts.ResolveByEmail(ctx, email)
	if errors.Is(err, principal.ErrNotFound) {
		return ErrAccountNotFound
	}
	if err != nil {
		s.logger.Error("resend verification lookup failed", zap.Error(err))
		return err
	}

	if acct.IsEmailVerified {
		return ErrAlreadyVerified
	}

	p := acct.Principal
	_, err = s.IssueVerification(ctx, &p, ContextResend)
	return err
}
