package credential

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/99designs/keyring"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func useMemoryKeyring(t *testing.T) {
	t.Helper()

	ring := keyring.NewArrayKeyring(nil)
	orig := openKeyring
	openKeyring = func() (keyring.Keyring, error) { return ring, nil }
	t.Cleanup(func() { openKeyring = orig })
}

func TestSecretRedaction(t *testing.T) {
	s := NewSecret("ntn_1234567890abcdefghij")

	assert.Equal(t, "ntn_1234567890abcdefghij", s.Reveal())
	assert.Equal(t, "[redacted]", s.String())
	assert.Equal(t, "[redacted]", fmt.Sprintf("%v", s))
	assert.NotContains(t, fmt.Sprintf("%#v", s), "ntn_")
	assert.Equal(t, "ntn_1234...ghij", s.Preview())

	data, err := json.Marshal(struct {
		Token Secret `json:"token"`
	}{Token: s})
	require.NoError(t, err)
	assert.JSONEq(t, `{"token":"[redacted]"}`, string(data))
}

func TestSecretPreviewShortValue(t *testing.T) {
	assert.Equal(t, "***", NewSecret("short").Preview())
	assert.Equal(t, "***", NewSecret("").Preview())
	assert.True(t, NewSecret("").IsZero())
	assert.Equal(t, "", NewSecret("").String())
}

func TestKeyringRoundTrip(t *testing.T) {
	useMemoryKeyring(t)

	key := TokenKey("work")
	assert.Equal(t, "notion-work", key)

	require.NoError(t, Set(key, NewSecret("secret_abc")))

	got, err := Get(key)
	require.NoError(t, err)
	assert.Equal(t, "secret_abc", got.Reveal())

	require.NoError(t, Delete(key))
	_, err = Get(key)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLoadTokenPrefersEnvironment(t *testing.T) {
	useMemoryKeyring(t)
	require.NoError(t, Set(TokenKey(""), NewSecret("from-keyring")))

	t.Setenv(TokenEnvVar, "from-env")
	got, err := LoadToken("")
	require.NoError(t, err)
	assert.Equal(t, "from-env", got.Reveal())

	t.Setenv(TokenEnvVar, "")
	got, err = LoadToken("")
	require.NoError(t, err)
	assert.Equal(t, "from-keyring", got.Reveal())
}

func TestLoadTokenMissing(t *testing.T) {
	useMemoryKeyring(t)
	t.Setenv(TokenEnvVar, "")

	_, err := LoadToken("nobody")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bugtriage login")
}
