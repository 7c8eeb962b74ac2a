package principal

import (
	"context"
	"testing"
	"time"

	"github.com/mateenikhtiyar/cim-backend/testutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	db := testutils.SetupTestDB(t, &Buyer{}, &Seller{}, &Admin{}, &DealInvitation{})
	return NewStore(db, nil)
}

func TestStore_FindByEmail(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.CreateBuyer(ctx, &Buyer{Email: "buyer@example.com", FullName: "Buyer One", Password: "hash"}))
	require.NoError(t, store.CreateSeller(ctx, &Seller{Email: "seller@example.com", FullName: "Seller One", Password: "hash", CompanyName: "Acme"}))
	require.NoError(t, store.CreateAdmin(ctx, &Admin{Email: "admin@example.com", FullName: "Admin One", Password: "hash"}))

	t.Run("dispatches to the store selected by role", func(t *testing.T) {
		acct, err := store.FindByEmail(ctx, RoleBuyer, "buyer@example.com")
		require.NoError(t, err)
		assert.Equal(t, RoleBuyer, acct.Role)
		assert.Equal(t, "Buyer One", acct.FullName)

		acct, err = store.FindByEmail(ctx, RoleSeller, "seller@example.com")
		require.NoError(t, err)
		assert.Equal(t, RoleSeller, acct.Role)
		assert.Equal(t, "Acme", acct.CompanyName)
	})

	t.Run("no cross-role lookup", func(t *testing.T) {
		_, err := store.FindByEmail(ctx, RoleSeller, "buyer@example.com")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("admins are always verified", func(t *testing.T) {
		acct, err := store.FindByEmail(ctx, RoleAdmin, "admin@example.com")
		require.NoError(t, err)
		assert.True(t, acct.IsEmailVerified)
	})

	t.Run("unknown role rejected", func(t *testing.T) {
		_, err := store.FindByEmail(ctx, Role("moderator"), "buyer@example.com")
		assert.ErrorIs(t, err, ErrUnsupportedRole)
	})
}

func TestStore_ResetTokenFields(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	buyer := &Buyer{Email: "reset@example.com", FullName: "Reset Buyer", Password: "hash"}
	require.NoError(t, store.CreateBuyer(ctx, buyer))

	now := time.Now()

	t.Run("set and match a non-expired token hash", func(t *testing.T) {
		require.NoError(t, store.SetResetToken(ctx, RoleBuyer, buyer.ID, "digest-1", now.Add(15*time.Minute)))

		acct, err := store.FindByResetTokenHash(ctx, RoleBuyer, "digest-1", now)
		require.NoError(t, err)
		assert.Equal(t, buyer.ID, acct.ID)
	})

	t.Run("overwrite invalidates the previous hash", func(t *testing.T) {
		require.NoError(t, store.SetResetToken(ctx, RoleBuyer, buyer.ID, "digest-2", now.Add(15*time.Minute)))

		_, err := store.FindByResetTokenHash(ctx, RoleBuyer, "digest-1", now)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("expired hash does not match", func(t *testing.T) {
		require.NoError(t, store.SetResetToken(ctx, RoleBuyer, buyer.ID, "digest-3", now.Add(-time.Minute)))

		_, err := store.FindByResetTokenHash(ctx, RoleBuyer, "digest-3", now)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("password update clears the token", func(t *testing.T) {
		require.NoError(t, store.SetResetToken(ctx, RoleBuyer, buyer.ID, "digest-4", now.Add(15*time.Minute)))
		require.NoError(t, store.UpdatePasswordAndClearReset(ctx, RoleBuyer, buyer.ID, "new-hash"))

		_, err := store.FindByResetTokenHash(ctx, RoleBuyer, "digest-4", now)
		assert.ErrorIs(t, err, ErrNotFound)

		acct, err := store.FindByID(ctx, RoleBuyer, buyer.ID)
		require.NoError(t, err)
		assert.Equal(t, "new-hash", acct.PasswordHash)
	})

	t.Run("unknown id reported", func(t *testing.T) {
		err := store.SetResetToken(ctx, RoleBuyer, "missing", "digest", now.Add(time.Minute))
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestStore_MarkEmailVerified(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	seller := &Seller{Email: "verify@example.com", Password: "hash"}
	require.NoError(t, store.CreateSeller(ctx, seller))

	require.NoError(t, store.MarkEmailVerified(ctx, RoleSeller, seller.ID))

	acct, err := store.FindByID(ctx, RoleSeller, seller.ID)
	require.NoError(t, err)
	assert.True(t, acct.IsEmailVerified)

	t.Run("no-op for admins", func(t *testing.T) {
		assert.NoError(t, store.MarkEmailVerified(ctx, RoleAdmin, "any"))
	})
}

func TestStore_ResolveByEmail(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.CreateBuyer(ctx, &Buyer{Email: "both@example.com", Password: "hash"}))
	require.NoError(t, store.CreateSeller(ctx, &Seller{Email: "both@example.com", Password: "hash"}))
	require.NoError(t, store.CreateSeller(ctx, &Seller{Email: "only-seller@example.com", Password: "hash"}))

	t.Run("buyer wins the fixed probe order", func(t *testing.T) {
		acct, err := store.ResolveByEmail(ctx, "both@example.com")
		require.NoError(t, err)
		assert.Equal(t, RoleBuyer, acct.Role)
	})

	t.Run("falls through to seller", func(t *testing.T) {
		acct, err := store.ResolveByEmail(ctx, "only-seller@example.com")
		require.NoError(t, err)
		assert.Equal(t, RoleSeller, acct.Role)
	})

	t.Run("absent in both", func(t *testing.T) {
		_, err := store.ResolveByEmail(ctx, "nobody@example.com")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("admins excluded from recovery resolution", func(t *testing.T) {
		require.NoError(t, store.CreateAdmin(ctx, &Admin{Email: "root@example.com", Password: "hash"}))
		_, err := store.ResolveByEmail(ctx, "root@example.com")
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestStore_ResolveByID(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	seller := &Seller{Email: "id@example.com", Password: "hash"}
	require.NoError(t, store.CreateSeller(ctx, seller))

	acct, err := store.ResolveByID(ctx, seller.ID)
	require.NoError(t, err)
	assert.Equal(t, RoleSeller, acct.Role)

	_, err = store.ResolveByID(ctx, "missing-id")
	assert.ErrorIs(t, err, ErrNotFound)
}
