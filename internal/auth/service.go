package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/mateenikhtiyar/cim-backend/config"
	"github.com/mateenikhtiyar/cim-backend/internal/logging"
	"github.com/mateenikhtiyar/cim-backend/internal/mailer"
	"github.com/mateenikhtiyar/cim-backend/internal/principal"
	"github.com/mateenikhtiyar/cim-backend/internal/session"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// Service is the identity core. It holds no state of its own beyond
// configuration; every operation is an independent unit of work against the
// stores.
type Service struct {
	config   *config.Config
	accounts *principal.Store
	tokens   *TokenStore
	sessions *session.Service
	mail     mailer.Dispatcher
	logger   *logging.Service
}

func NewService(
	cfg *config.Config,
	accounts *principal.Store,
	tokens *TokenStore,
	sessions *session.Service,
	mail mailer.Dispatcher,
	logger *logging.Service,
) *Service {
	return &Service{
		config:   cfg,
		accounts: accounts,
		tokens:   tokens,
		sessions: sessions,
		mail:     mail,
		logger:   logger,
	}
}

type LoginResult struct {
	AccessToken string              `json:"access_token"`
	User        principal.Principal `json:"user"`
}

// ValidateCredentials checks an email/password pair against the store for
// the given role. It performs no side effects: when the account exists but
// is unverified, the redacted principal is returned alongside
// ErrEmailNotVerified so the caller can react without a second lookup.
func (s *Service) ValidateCredentials(ctx context.Context, email, password string, role principal.Role) (*principal.Principal, error) {
	acct, err := s.accounts.FindByEmail(ctx, role, email)
	if errors.Is(err, principal.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		s.logger.Error("credential lookup failed", zap.Error(err), zap.String("role", role.String()))
		return nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(acct.PasswordHash), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}

	p := acct.Principal
	if role != principal.RoleAdmin && !p.IsEmailVerified {
		return &p, ErrEmailNotVerified
	}

	return &p, nil
}

// Login validates credentials and issues a session token. For an unverified
// account it sends a login-reminder verification email best-effort: dispatch
// failure is logged, never surfaced, and the login still fails with
// ErrEmailNotVerified.
func (s *Service) Login(ctx context.Context, email, password string, role principal.Role) (*LoginResult, error) {
	p, err := s.ValidateCredentials(ctx, email, password, role)
	if errors.Is(err, ErrEmailNotVerified) {
		if p != nil {
			if _, issueErr := s.IssueVerification(ctx, p, ContextLoginReminder); issueErr != nil {
				s.logger.Warn("failed to send login-reminder verification email",
					zap.Error(issueErr),
					zap.String("user_id", p.ID),
					zap.String("role", p.Role.String()))
			}
		}
		return nil, ErrEmailNotVerified
	}
	if err != nil {
		return nil, err
	}

	return s.issueSession(p)
}

// GoogleProfile is the subset of a federated profile the identity core needs.
type GoogleProfile struct {
	Email    string
	FullName string
	Picture  string
}

// LoginWithGoogle upserts a buyer or seller from federated profile data and
// converges on the same session issuing path as password login. Accounts
// created this way are email-verified by definition.
func (s *Service) LoginWithGoogle(ctx context.Context, profile GoogleProfile, role principal.Role) (*LoginResult, error) {
	if role != principal.RoleBuyer && role != principal.RoleSeller {
		return nil, fmt.Errorf("%w: %q", principal.ErrUnsupportedRole, role)
	}

	acct, err := s.accounts.FindByEmail(ctx, role, profile.Email)
	if err != nil && !errors.Is(err, principal.ErrNotFound) {
		return nil, err
	}

	if errors.Is(err, principal.ErrNotFound) {
		acct, err = s.provisionGoogleAccount(ctx, profile, role)
		if err != nil {
			return nil, err
		}
	}

	if !acct.IsEmailVerified {
		if markErr := s.accounts.MarkEmailVerified(ctx, role, acct.ID); markErr != nil {
			return nil, markErr
		}
		acct.IsEmailVerified = true
	}

	p := acct.Principal
	return s.issueSession(&p)
}

func (s *Service) provisionGoogleAccount(ctx context.Context, profile GoogleProfile, role principal.Role) (*principal.Account, error) {
	// Federated accounts never log in with this password; it only keeps the
	// credential column non-empty.
	random, err := generateToken(s.config.Auth.ResetTokenLength)
	if err != nil {
		return nil, err
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(random), s.config.Auth.BcryptCost)
	if err != nil {
		return nil, ErrPasswordHashingFailed
	}

	switch role {
	case principal.RoleBuyer:
		b := &principal.Buyer{
			Email:           profile.Email,
			FullName:        profile.FullName,
			Password:        string(hashed),
			ProfilePicture:  profile.Picture,
			IsEmailVerified: true,
		}
		if err := s.accounts.CreateBuyer(ctx, b); err != nil {
			return nil, err
		}
		s.logger.Info("provisioned buyer from google profile", zap.String("user_id", b.ID))
		return b.Account(), nil
	default:
		sel := &principal.Seller{
			Email:           profile.Email,
			FullName:        profile.FullName,
			Password:        string(hashed),
			ProfilePicture:  profile.Picture,
			IsEmailVerified: true,
		}
		if err := s.accounts.CreateSeller(ctx, sel); err != nil {
			return nil, err
		}
		s.logger.Info("provisioned seller from google profile", zap.String("user_id", sel.ID))
		return sel.Account(), nil
	}
}

func (s *Service) issueSession(p *principal.Principal) (*LoginResult, error) {
	token, err := s.sessions.Issue(p)
	if err != nil {
		return nil, err
	}
	return &LoginResult{AccessToken: token, User: *p}, nil
}
