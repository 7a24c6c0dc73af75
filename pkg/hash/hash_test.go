package hash

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPassword_RoundTrip(t *testing.T) {
	t.Parallel()

	h, err := Password("Passw0rd!")
	require.NoError(t, err)
	require.NotEmpty(t, h)

	assert.True(t, Check(h, "Passw0rd!"))
	assert.False(t, Check(h, "passw0rd!"))
}

func TestPassword_DistinctSalts(t *testing.T) {
	t.Parallel()

	h1, err := Password("Passw0rd!")
	require.NoError(t, err)
	h2, err := Password("Passw0rd!")
	require.NoError(t, err)

	assert.NotEqual(t, h1, h2)
	assert.True(t, Check(h1, "Passw0rd!"))
	assert.True(t, Check(h2, "Passw0rd!"))
}

func TestCheck_MalformedHash(t *testing.T) {
	t.Parallel()

	assert.False(t, Check("not-a-bcrypt-hash", "whatever"))
	assert.False(t, Check("", "whatever"))
}

func TestIsStrong(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		password string
		want     bool
	}{
		{name: "strong", password: "Passw0rd!", want: true},
		{name: "too short", password: "P0r!", want: false},
		{name: "no upper", password: "passw0rd!", want: false},
		{name: "no lower", password: "PASSW0RD!", want: false},
		{name: "no digit", password: "Password!", want: false},
		{name: "no special", password: "Passw0rd1", want: false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, IsStrong(tt.password))
		})
	}
}
