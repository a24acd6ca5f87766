package memstore

import (
	"context"
	"errors"
	"testing"
	"time"

	adminAuth "github.com/MrEthical07/adminAuth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUsersFetchByEmail(t *testing.T) {
	ctx := context.Background()
	users := NewUsers()

	_, err := users.FetchByEmail(ctx, "a@x.com")
	require.ErrorIs(t, err, adminAuth.ErrNonExistentAdminUser)

	users.Add(adminAuth.AdminUser{UserID: "u1", Email: "a@x.com", Name: "A"})
	u, err := users.FetchByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, "u1", u.UserID)

	users.Add(adminAuth.AdminUser{UserID: "u2", Email: "a@x.com"})
	_, err = users.FetchByEmail(ctx, "a@x.com")
	require.ErrorIs(t, err, adminAuth.ErrDuplicateAdminUser)
}

func TestUsersUpdatePasswordRequiresRecord(t *testing.T) {
	ctx := context.Background()
	users := NewUsers()

	err := users.UpdatePassword(ctx, adminAuth.PasswordUpdate{UserID: "ghost", PasswordHash: "h"})
	require.ErrorIs(t, err, adminAuth.ErrNonExistentAdminUser)
	_, ok := users.Get("ghost")
	assert.False(t, ok)

	users.Add(adminAuth.AdminUser{UserID: "u1", Email: "a@x.com"})
	require.NoError(t, users.UpdatePassword(ctx, adminAuth.PasswordUpdate{UserID: "u1", PasswordHash: "h", PasswordSalt: "s"}))
	u, _ := users.Get("u1")
	assert.True(t, u.Claimed())
	assert.Equal(t, "s", u.PasswordSalt)
}

func TestCodesStampTTL(t *testing.T) {
	ctx := context.Background()
	now := time.Unix(1_700_000_000, 0)
	codes := NewCodes(5*time.Minute, func() time.Time { return now })

	require.NoError(t, codes.Put(ctx, adminAuth.VerificationCode{UserID: "u1", CodeHash: "h"}))
	got, err := codes.Fetch(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, int64(1_700_000_300), got.TTL)

	require.NoError(t, codes.Delete(ctx, "u1"))
	require.NoError(t, codes.Delete(ctx, "u1"))
	_, err = codes.Fetch(ctx, "u1")
	require.ErrorIs(t, err, adminAuth.ErrNoActiveVerificationCode)
}

func TestOutboxLastCode(t *testing.T) {
	ctx := context.Background()
	out := NewOutbox()

	require.NoError(t, out.Send(ctx, "a@x.com", "s", "Your verification code is: AB12CD"))
	code, ok := out.LastCode("a@x.com")
	require.True(t, ok)
	assert.Equal(t, "AB12CD", code)

	boom := errors.New("boom")
	out.FailWith(boom)
	assert.ErrorIs(t, out.Send(ctx, "a@x.com", "s", "b"), boom)
	_, ok = out.LastCode("b@x.com")
	assert.False(t, ok)
}
