package tokens

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCodec() Codec {
	return Codec{
		Secret:   []byte("test-jwt-secret"),
		Issuer:   "factory-auth",
		Audience: "factory-services",
	}
}

func TestCodec_AccessRoundTrip(t *testing.T) {
	t.Parallel()

	codec := newTestCodec()
	accountID := uuid.NewString()
	now := time.Now().UTC()

	token, err := codec.IssueAccess(accountID, "customer", now)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := codec.ParseAccess(token)
	require.NoError(t, err)

	assert.Equal(t, accountID, claims.Subject)
	assert.Equal(t, "customer", claims.Role)
	assert.Equal(t, "factory-auth", claims.Issuer)
	require.NotNil(t, claims.ExpiresAt)
	assert.WithinDuration(t, now.Add(AccessTokenTTL), claims.ExpiresAt.Time, time.Second)
}

func TestCodec_RefreshRoundTrip(t *testing.T) {
	t.Parallel()

	codec := newTestCodec()
	accountID := uuid.NewString()

	token, err := codec.IssueRefresh(accountID, time.Now().UTC())
	require.NoError(t, err)

	claims, err := codec.ParseRefresh(token)
	require.NoError(t, err)

	assert.Equal(t, accountID, claims.Subject)
	assert.Equal(t, "refresh", claims.TokenType)
	assert.Contains(t, claims.Audience, "factory-services")
}

func TestCodec_ParseRefresh_RejectsAccessToken(t *testing.T) {
	t.Parallel()

	codec := newTestCodec()
	access, err := codec.IssueAccess(uuid.NewString(), "customer", time.Now().UTC())
	require.NoError(t, err)

	claims, err := codec.ParseRefresh(access)
	assert.Nil(t, claims)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestCodec_ParseAccess_RejectsRefreshToken(t *testing.T) {
	t.Parallel()

	codec := newTestCodec()
	refresh, err := codec.IssueRefresh(uuid.NewString(), time.Now().UTC())
	require.NoError(t, err)

	claims, err := codec.ParseAccess(refresh)
	assert.Nil(t, claims)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestCodec_Parse_BitFlip(t *testing.T) {
	t.Parallel()

	codec := newTestCodec()
	token, err := codec.IssueAccess(uuid.NewString(), "customer", time.Now().UTC())
	require.NoError(t, err)

	for i := 0; i < len(token); i += 7 {
		mutated := []byte(token)
		mutated[i] ^= 0x01
		if string(mutated) == token {
			continue
		}
		claims, err := codec.ParseAccess(string(mutated))
		assert.Nil(t, claims, "bit flip at %d accepted", i)
		assert.Error(t, err)
	}
}

func TestCodec_Parse_WrongSecret(t *testing.T) {
	t.Parallel()

	codec := newTestCodec()
	token, err := codec.IssueAccess(uuid.NewString(), "customer", time.Now().UTC())
	require.NoError(t, err)

	other := codec
	other.Secret = []byte("another-secret")
	_, err = other.ParseAccess(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestCodec_Parse_WrongIssuerOrAudience(t *testing.T) {
	t.Parallel()

	codec := newTestCodec()
	token, err := codec.IssueAccess(uuid.NewString(), "customer", time.Now().UTC())
	require.NoError(t, err)

	badIssuer := codec
	badIssuer.Issuer = "someone-else"
	_, err = badIssuer.ParseAccess(token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	badAudience := codec
	badAudience.Audience = "other-audience"
	_, err = badAudience.ParseAccess(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestCodec_Parse_Expired(t *testing.T) {
	t.Parallel()

	codec := newTestCodec()
	issued := time.Now().UTC().Add(-AccessTokenTTL - time.Minute)
	token, err := codec.IssueAccess(uuid.NewString(), "customer", issued)
	require.NoError(t, err)

	_, err = codec.ParseAccess(token)
	assert.ErrorIs(t, err, ErrExpiredToken)
}
