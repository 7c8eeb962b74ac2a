package auth

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/mateenikhtiyar/cim-backend/internal/principal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestService_IssueVerification(t *testing.T) {
	ctx := context.Background()

	t.Run("initial issuance creates one active token", func(t *testing.T) {
		env := newTestEnv(t)
		buyer := env.createBuyer(t, "alice@example.com", "password", false)
		p := buyer.Account().Principal

		env.mail.On("Send", mock.Anything, "alice@example.com", "buyer", "Please verify your email address", mock.Anything).Return(nil).Once()

		token, err := env.service.IssueVerification(ctx, &p, ContextInitial)
		require.NoError(t, err)
		assert.False(t, token.IsUsed)
		assert.True(t, token.ExpiresAt.After(time.Now().Add(23*time.Hour)))

		active, err := env.tokens.CountActive(ctx, buyer.ID)
		require.NoError(t, err)
		assert.EqualValues(t, 1, active)

		env.mail.AssertExpectations(t)
	})

	t.Run("resend and reminder invalidate every prior active token", func(t *testing.T) {
		env := newTestEnv(t)
		buyer := env.createBuyer(t, "alice@example.com", "password", false)
		p := buyer.Account().Principal

		env.mail.On("Send", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)

		first, err := env.service.IssueVerification(ctx, &p, ContextInitial)
		require.NoError(t, err)
		_, err = env.service.IssueVerification(ctx, &p, ContextResend)
		require.NoError(t, err)
		third, err := env.service.IssueVerification(ctx, &p, ContextLoginReminder)
		require.NoError(t, err)

		active, err := env.tokens.CountActive(ctx, buyer.ID)
		require.NoError(t, err)
		assert.EqualValues(t, 1, active)

		// the survivor is the newest token; the first is now used
		stale, err := env.tokens.FindByToken(ctx, first.Token)
		require.NoError(t, err)
		assert.True(t, stale.IsUsed)

		fresh, err := env.tokens.FindByToken(ctx, third.Token)
		require.NoError(t, err)
		assert.False(t, fresh.IsUsed)
	})

	t.Run("context changes the copy, not the state", func(t *testing.T) {
		env := newTestEnv(t)
		buyer := env.createBuyer(t, "alice@example.com", "password", false)
		p := buyer.Account().Principal

		var subjects []string
		env.mail.On("Send", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
			Run(func(args mock.Arguments) { subjects = append(subjects, args.String(3)) }).
			Return(nil)

		for _, c := range []Context{ContextInitial, ContextResend, ContextLoginReminder} {
			_, err := env.service.IssueVerification(ctx, &p, c)
			require.NoError(t, err)
		}

		require.Len(t, subjects, 3)
		assert.Equal(t, "Please verify your email address", subjects[0])
		assert.Equal(t, "Your new verification link", subjects[1])
		assert.Equal(t, "Verify your email to sign in", subjects[2])
	})

	t.Run("dispatch failure propagates and leaves the token durable", func(t *testing.T) {
		env := newTestEnv(t)
		buyer := env.createBuyer(t, "alice@example.com", "password", false)
		p := buyer.Account().Principal

		env.mail.On("Send", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
			Return(errors.New("smtp down"))

		_, err := env.service.IssueVerification(ctx, &p, ContextInitial)
		require.Error(t, err)

		// persistence happened before dispatch
		active, err := env.tokens.CountActive(ctx, buyer.ID)
		require.NoError(t, err)
		assert.EqualValues(t, 1, active)
	})
}

func TestService_ConsumeVerification(t *testing.T) {
	ctx := context.Background()

	issueFor := func(t *testing.T, env *testEnv, p principal.Principal) *VerificationToken {
		env.mail.On("Send", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)
		token, err := env.service.IssueVerification(ctx, &p, ContextInitial)
		require.NoError(t, err)
		return token
	}

	t.Run("round trip verifies the buyer and is single use", func(t *testing.T) {
		env := newTestEnv(t)
		buyer := env.createBuyer(t, "alice@example.com", "password", false)
		token := issueFor(t, env, buyer.Account().Principal)

		result, err := env.service.ConsumeVerification(ctx, token.Token)
		require.NoError(t, err)
		assert.True(t, result.Verified)
		assert.Equal(t, principal.RoleBuyer, result.Role)
		assert.Equal(t, buyer.ID, result.UserID)
		assert.Equal(t, "Test Buyer", result.FullName)
		require.NotEmpty(t, result.AccessToken)

		claims, err := env.sessions.Verify(result.AccessToken)
		require.NoError(t, err)
		assert.Equal(t, buyer.ID, claims.UserID())

		acct, err := env.accounts.FindByID(ctx, principal.RoleBuyer, buyer.ID)
		require.NoError(t, err)
		assert.True(t, acct.IsEmailVerified)

		// a consumed token never verifies again
		again, err := env.service.ConsumeVerification(ctx, token.Token)
		require.NoError(t, err)
		assert.False(t, again.Verified)
		assert.Empty(t, again.AccessToken)
	})

	t.Run("unknown token yields the same negative shape", func(t *testing.T) {
		env := newTestEnv(t)
		result, err := env.service.ConsumeVerification(ctx, "no-such-token")
		require.NoError(t, err)
		assert.False(t, result.Verified)
	})

	t.Run("expired token yields the same negative shape", func(t *testing.T) {
		env := newTestEnv(t)
		buyer := env.createBuyer(t, "alice@example.com", "password", false)

		expired := &VerificationToken{
			UserID:    buyer.ID,
			Token:     "expired-token",
			ExpiresAt: time.Now().Add(-time.Hour),
		}
		require.NoError(t, env.tokens.Create(ctx, expired))

		result, err := env.service.ConsumeVerification(ctx, "expired-token")
		require.NoError(t, err)
		assert.False(t, result.Verified)
	})

	t.Run("token owned by a missing account stays consumed", func(t *testing.T) {
		env := newTestEnv(t)

		orphan := &VerificationToken{
			UserID:    "gone-user",
			Token:     "orphan-token",
			ExpiresAt: time.Now().Add(time.Hour),
		}
		require.NoError(t, env.tokens.Create(ctx, orphan))

		result, err := env.service.ConsumeVerification(ctx, "orphan-token")
		require.NoError(t, err)
		assert.False(t, result.Verified)

		stored, err := env.tokens.FindByToken(ctx, "orphan-token")
		require.NoError(t, err)
		assert.True(t, stored.IsUsed)
	})

	t.Run("two racing consumers produce exactly one verification", func(t *testing.T) {
		env := newTestEnv(t)
		buyer := env.createBuyer(t, "alice@example.com", "password", false)
		token := issueFor(t, env, buyer.Account().Principal)

		results := make([]*VerifyResult, 2)
		errs := make([]error, 2)
		var wg sync.WaitGroup
		for i := 0; i < 2; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				results[i], errs[i] = env.service.ConsumeVerification(ctx, token.Token)
			}(i)
		}
		wg.Wait()

		verified := 0
		for i := 0; i < 2; i++ {
			require.NoError(t, errs[i])
			if results[i].Verified {
				verified++
				assert.NotEmpty(t, results[i].AccessToken)
			} else {
				assert.Empty(t, results[i].AccessToken)
			}
		}
		assert.Equal(t, 1, verified)
	})
}

func TestService_ResendVerification(t *testing.T) {
	ctx := context.Background()

	t.Run("unknown email", func(t *testing.T) {
		env := newTestEnv(t)
		err := env.service.ResendVerification(ctx, "ghost@example.com")
		assert.ErrorIs(t, err, ErrAccountNotFound)
	})

	t.Run("already verified", func(t *testing.T) {
		env := newTestEnv(t)
		env.createBuyer(t, "alice@example.com", "password", true)

		err := env.service.ResendVerification(ctx, "alice@example.com")
		assert.ErrorIs(t, err, ErrAlreadyVerified)
		env.mail.AssertNotCalled(t, "Send")
	})

	t.Run("replaces the active token", func(t *testing.T) {
		env := newTestEnv(t)
		buyer := env.createBuyer(t, "alice@example.com", "password", false)
		p := buyer.Account().Principal

		env.mail.On("Send", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)

		first, err := env.service.IssueVerification(ctx, &p, ContextInitial)
		require.NoError(t, err)

		require.NoError(t, env.service.ResendVerification(ctx, "alice@example.com"))

		stale, err := env.tokens.FindByToken(ctx, first.Token)
		require.NoError(t, err)
		assert.True(t, stale.IsUsed)

		active, err := env.tokens.CountActive(ctx, buyer.ID)
		require.NoError(t, err)
		assert.EqualValues(t, 1, active)
	})
}
