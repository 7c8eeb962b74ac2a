package session

import (
	"testing"
	"time"

	"github.com/mateenikhtiyar/cim-backend/internal/principal"
	"github.com/mateenikhtiyar/cim-backend/testutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestService_IssueAndVerify(t *testing.T) {
	cfg := testutils.GetTestConfig()
	service := NewService(cfg, nil)

	p := &principal.Principal{
		ID:    "buyer-123",
		Email: "alice@example.com",
		Role:  principal.RoleBuyer,
	}

	t.Run("round trip preserves the claim set", func(t *testing.T) {
		token, err := service.Issue(p)
		require.NoError(t, err)
		require.NotEmpty(t, token)

		claims, err := service.Verify(token)
		require.NoError(t, err)
		assert.Equal(t, "buyer-123", claims.UserID())
		assert.Equal(t, "alice@example.com", claims.Email)
		assert.Equal(t, principal.RoleBuyer, claims.Role)
		assert.Equal(t, cfg.JWT.Issuer, claims.Issuer)
		assert.NotEmpty(t, claims.ID)
	})

	t.Run("fails without a resolvable id", func(t *testing.T) {
		_, err := service.Issue(&principal.Principal{Email: "no-id@example.com"})
		assert.ErrorIs(t, err, ErrMissingSubject)

		_, err = service.Issue(nil)
		assert.ErrorIs(t, err, ErrMissingSubject)
	})

	t.Run("rejects a tampered token", func(t *testing.T) {
		token, err := service.Issue(p)
		require.NoError(t, err)

		tampered := token[:len(token)-4] + "abcd"
		_, err = service.Verify(tampered)
		require.Error(t, err)
	})

	t.Run("rejects a token signed with another secret", func(t *testing.T) {
		otherCfg := testutils.GetTestConfig()
		otherCfg.JWT.SecretKey = "another-secret-key-32-chars-ok!"
		other := NewService(otherCfg, nil)

		token, err := other.Issue(p)
		require.NoError(t, err)

		_, err = service.Verify(token)
		require.Error(t, err)
	})

	t.Run("rejects an expired token", func(t *testing.T) {
		shortCfg := testutils.GetTestConfig()
		shortCfg.JWT.AccessExpiry = -time.Minute
		short := NewService(shortCfg, nil)

		token, err := short.Issue(p)
		require.NoError(t, err)

		_, err = service.Verify(token)
		assert.ErrorIs(t, err, ErrExpiredToken)
	})

	t.Run("rejects garbage", func(t *testing.T) {
		_, err := service.Verify("not-a-token")
		assert.ErrorIs(t, err, ErrMalformedToken)
	})
}
