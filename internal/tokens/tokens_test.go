package tokens

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func testCodec() *Codec {
	return NewCodec([]byte("access-secret"), []byte("refresh-secret"))
}

func TestIssueAndDecodeAccessToken(t *testing.T) {
	cd := testCodec()

	raw, err := cd.IssueAccessToken(42, true)
	require.NoError(t, err)

	claims, err := cd.DecodeAccess(raw)
	require.NoError(t, err)
	require.Equal(t, TypeAccess, claims.Type)
	require.True(t, claims.Fresh)
	require.False(t, claims.IsAdmin)
	require.Equal(t, uint(42), claims.UserID())
	require.NotEmpty(t, claims.ID)
	require.NotNil(t, claims.ExpiresAt)
	require.NotNil(t, claims.IssuedAt)
}

func TestJTIUniquePerToken(t *testing.T) {
	cd := testCodec()

	first, err := cd.IssueAccessToken(1, true)
	require.NoError(t, err)
	second, err := cd.IssueAccessToken(1, true)
	require.NoError(t, err)

	c1, err := cd.DecodeAccess(first)
	require.NoError(t, err)
	c2, err := cd.DecodeAccess(second)
	require.NoError(t, err)
	require.NotEqual(t, c1.ID, c2.ID)
}

func TestAdminClaimFixedAtIssuance(t *testing.T) {
	cd := testCodec()

	adminRaw, err := cd.IssueAccessToken(1, true)
	require.NoError(t, err)
	admin, err := cd.DecodeAccess(adminRaw)
	require.NoError(t, err)
	require.True(t, admin.IsAdmin)

	plainRaw, err := cd.IssueAccessToken(2, true)
	require.NoError(t, err)
	plain, err := cd.DecodeAccess(plainRaw)
	require.NoError(t, err)
	require.False(t, plain.IsAdmin)
}

func TestRefreshTokenNeverFresh(t *testing.T) {
	cd := testCodec()

	raw, err := cd.IssueRefreshToken(7)
	require.NoError(t, err)

	claims, err := cd.DecodeRefresh(raw)
	require.NoError(t, err)
	require.Equal(t, TypeRefresh, claims.Type)
	require.False(t, claims.Fresh)
	require.Equal(t, uint(7), claims.UserID())
}

func TestRefreshDerivedAccessNotFresh(t *testing.T) {
	cd := testCodec()

	raw, err := cd.IssueAccessToken(7, false)
	require.NoError(t, err)

	claims, err := cd.DecodeAccess(raw)
	require.NoError(t, err)
	require.False(t, claims.Fresh)
}

func TestDecodeWrongSecretFails(t *testing.T) {
	cd := testCodec()
	other := NewCodec([]byte("another-secret"), []byte("another-refresh"))

	raw, err := other.IssueAccessToken(1, true)
	require.NoError(t, err)

	_, err = cd.DecodeAccess(raw)
	require.ErrorIs(t, err, ErrInvalidSignature)
}

func TestDecodeMalformed(t *testing.T) {
	cd := testCodec()

	for _, raw := range []string{"", "garbage", "not.a.token"} {
		_, err := cd.DecodeAccess(raw)
		require.ErrorIs(t, err, ErrMalformed, "input %q", raw)
	}
}

func TestDecodeExpired(t *testing.T) {
	cd := testCodec()
	cd.AccessTTL = -time.Minute

	raw, err := cd.IssueAccessToken(1, true)
	require.NoError(t, err)

	_, err = cd.DecodeAccess(raw)
	require.ErrorIs(t, err, ErrExpired)
}

func TestDecodeWrongType(t *testing.T) {
	// Same secret on both sides so only the type claim differs.
	cd := NewCodec([]byte("shared"), []byte("shared"))

	refresh, err := cd.IssueRefreshToken(1)
	require.NoError(t, err)
	_, err = cd.DecodeAccess(refresh)
	require.ErrorIs(t, err, ErrWrongType)

	access, err := cd.IssueAccessToken(1, true)
	require.NoError(t, err)
	_, err = cd.DecodeRefresh(access)
	require.ErrorIs(t, err, ErrWrongType)
}
