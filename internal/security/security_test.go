package security

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-that-is-long-enough-123456"

func newTestProvider(t *testing.T) *TokenProvider {
	t.Helper()
	p, err := NewTokenProvider(testSecret, "test-issuer", "test-audience", 15*time.Minute)
	require.NoError(t, err)
	return p
}

func TestAccessTokenRoundTrip(t *testing.T) {
	p := newTestProvider(t)

	token, exp, err := p.IssueAccess("sess-1", "user-1", "org-1")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(15*time.Minute), exp, 5*time.Second)

	got, err := p.ValidateAccess(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", got.UserID)
	assert.Equal(t, "org-1", got.OrgID)
	assert.Equal(t, "sess-1", got.SessionID)
}

func TestRefreshTokenIsNotAnAccessToken(t *testing.T) {
	p := newTestProvider(t)

	refresh, jti, err := p.IssueRefresh("sess-1", "user-1", "org-1", time.Now().Add(time.Hour))
	require.NoError(t, err)
	assert.Len(t, jti, 32)

	_, err = p.ValidateAccess(refresh)
	assert.ErrorIs(t, err, ErrInvalidToken)

	got, err := p.ValidateRefresh(refresh)
	require.NoError(t, err)
	assert.Equal(t, jti, got.JTI)
}

func TestExpiredTokenRejected(t *testing.T) {
	p := newTestProvider(t)
	p.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }

	token, _, err := p.IssueAccess("sess-1", "user-1", "org-1")
	require.NoError(t, err)

	p.now = time.Now
	_, err = p.ValidateAccess(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestForeignSecretRejected(t *testing.T) {
	p := newTestProvider(t)
	other, err := NewTokenProvider("another-secret-another-secret-000", "test-issuer", "test-audience", time.Minute)
	require.NoError(t, err)

	token, _, err := other.IssueAccess("sess-1", "user-1", "org-1")
	require.NoError(t, err)

	_, err = p.ValidateAccess(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestWrongAudienceRejected(t *testing.T) {
	p := newTestProvider(t)
	other, err := NewTokenProvider(testSecret, "test-issuer", "someone-else", time.Minute)
	require.NoError(t, err)

	token, _, err := other.IssueAccess("sess-1", "user-1", "org-1")
	require.NoError(t, err)

	_, err = p.ValidateAccess(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestEmptySecretRejected(t *testing.T) {
	_, err := NewTokenProvider("", "i", "a", time.Minute)
	assert.Error(t, err)
}

func TestHasher(t *testing.T) {
	h := NewHasher(4)
	hash, err := h.Hash([]byte("correct horse"))
	require.NoError(t, err)

	assert.NoError(t, h.Compare(hash, []byte("correct horse")))
	assert.ErrorIs(t, h.Compare(hash, []byte("battery staple")), ErrPasswordMismatch)
}

func TestHasherCorruptStoredHash(t *testing.T) {
	err := NewHasher(4).Compare("not-a-bcrypt-hash", []byte("correct horse"))

	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrPasswordMismatch)
}

func TestNewHasherClampsCost(t *testing.T) {
	assert.Equal(t, 10, NewHasher(0).Cost)
	assert.Equal(t, 4, NewHasher(1).Cost)
	assert.Equal(t, 31, NewHasher(99).Cost)
}

func TestRefreshTokenHash(t *testing.T) {
	hash := HashRefreshToken("tok")
	assert.True(t, RefreshTokenHashEqual("tok", hash))
	assert.False(t, RefreshTokenHashEqual("tok2", hash))
	assert.False(t, RefreshTokenHashEqual("tok", "zz-not-hex"))
	assert.False(t, RefreshTokenHashEqual("tok", hash[:10]))
}
