package credential

import (
	"errors"
	"fmt"
	"os"

	"github.com/99designs/keyring"
)

const serviceName = "bugtriage"

// TokenEnvVar overrides the keyring-stored integration token when set.
const TokenEnvVar = "NOTION_TOKEN"

// ErrNotFound is returned when no credential is stored under a key.
var ErrNotFound = keyring.ErrKeyNotFound

// openKeyring returns a configured keyring instance. Tests swap it for an
// in-memory ring.
var openKeyring = func() (keyring.Keyring, error) {
	ring, err := keyring.Open(keyring.Config{
		ServiceName: serviceName,
		AllowedBackends: []keyring.BackendType{
			keyring.KeychainBackend,
			keyring.SecretServiceBackend,
			keyring.WinCredBackend,
			keyring.PassBackend,
			keyring.FileBackend,
		},
		FileDir:                  "~/.config/bugtriage/credentials",
		FilePasswordFunc:         keyring.FixedStringPrompt("bugtriage-file-key"),
		KeychainTrustApplication: true,
	})
	if err != nil {
		return nil, fmt.Errorf("opening keyring: %w", err)
	}
	return ring, nil
}

// TokenKey returns the keyring key holding the integration token for a
// configuration profile.
func TokenKey(profile string) string {
	if profile == "" {
		profile = "default"
	}
	return "notion-" + profile
}

// Get retrieves a credential by key from the system keyring.
func Get(key string) (Secret, error) {
	ring, err := openKeyring()
	if err != nil {
		return Secret{}, err
	}

	item, err := ring.Get(key)
	if err != nil {
		return Secret{}, fmt.Errorf("getting credential %q: %w", key, err)
	}

	return NewSecret(string(item.Data)), nil
}

// Set stores a credential by key in the system keyring.
func Set(key string, value Secret) error {
	ring, err := openKeyring()
	if err != nil {
		return err
	}

	err = ring.Set(keyring.Item{
		Key:         key,
		Data:        []byte(value.Reveal()),
		Label:       "bugtriage integration token",
		Description: "Notion internal integration secret",
	})
	if err != nil {
		return fmt.Errorf("setting credential %q: %w", key, err)
	}

	return nil
}

// Delete removes a credential by key from the system keyring.
func Delete(key string) error {
	ring, err := openKeyring()
	if err != nil {
		return err
	}

	err = ring.Remove(key)
	if err != nil {
		return fmt.Errorf("deleting credential %q: %w", key, err)
	}

	return nil
}

// LoadToken resolves the integration token for profile, preferring the
// NOTION_TOKEN environment variable over the keyring.
func LoadToken(profile string) (Secret, error) {
	if v := os.Getenv(TokenEnvVar); v != "" {
		return NewSecret(v), nil
	}

	token, err := Get(TokenKey(profile))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Secret{}, fmt.Errorf(
				"no token for profile %q: run `bugtriage login` or set %s",
				profile, TokenEnvVar,
			)
		}
		return Secret{}, err
	}
	return token, nil
}
