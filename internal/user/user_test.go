package user

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewHashesThePassword(t *testing.T) {
	usr, err := New("John", "Doe", "johndoe@gmail.com", "Mumbai", "test@123")
	require.NoError(t, err)
	require.NotNil(t, usr)

	assert.NotEqual(t, "test@123", usr.PasswordHash, "the plaintext password must never be stored")
	assert.NotEmpty(t, usr.PasswordHash)
}

func TestCheckPassword(t *testing.T) {
	usr, err := New("John", "", "johndoe@gmail.com", "", "secret1")
	require.NoError(t, err)

	assert.True(t, usr.CheckPassword("secret1"))
	assert.False(t, usr.CheckPassword("secret2"))
	assert.False(t, usr.CheckPassword(""))
}

func TestNewAppliesDefaultLocation(t *testing.T) {
	usr, err := New("John", "", "johndoe@gmail.com", "", "secret1")
	require.NoError(t, err)
	assert.Equal(t, DefaultLocation, usr.Location)

	usr, err = New("John", "", "johndoe@gmail.com", "Mumbai", "secret1")
	require.NoError(t, err)
	assert.Equal(t, "Mumbai", usr.Location)
}

func TestPasswordHashIsNeverSerialized(t *testing.T) {
	usr, err := New("John", "Doe", "johndoe@gmail.com", "Mumbai", "test@123")
	require.NoError(t, err)

	serialized, err := json.Marshal(usr)
	require.NoError(t, err)

	assert.False(t, strings.Contains(strings.ToLower(string(serialized)), "password"))
	assert.NotContains(t, string(serialized), usr.PasswordHash)
}

func TestSanitizedStripsTheHash(t *testing.T) {
	usr, err := New("John", "Doe", "johndoe@gmail.com", "Mumbai", "test@123")
	require.NoError(t, err)

	sanitized := usr.Sanitized()
	assert.Empty(t, sanitized.PasswordHash)
	assert.Equal(t, usr.Email, sanitized.Email)
	assert.NotEmpty(t, usr.PasswordHash, "the original must keep its hash")
}
