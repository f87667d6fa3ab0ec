package config

import (
	"errors"
	"os"
	"strings"

	"github.com/zalando/go-keyring"
)

const (
	keyringService = "earthwall"
	keyringField   = "api-token"

	// TokenEnv is the fallback token source for headless machines where
	// no keyring backend is available.
	TokenEnv = "EARTHWALL_TOKEN"
)

// Indirections for tests: the real keyring pops OS prompts.
var (
	keyringSet    = keyring.Set
	keyringGet    = keyring.Get
	keyringDelete = keyring.Delete
)

// Token resolves the composite API token: OS keyring first, then the
// environment. An absent token is not an error — it returns "" and the
// scheduler stays idle.
func Token() (string, error) {
	tok, err := keyringGet(keyringService, keyringField)
	if err == nil {
		return strings.TrimSpace(tok), nil
	}
	if !errors.Is(err, keyring.ErrNotFound) && !errors.Is(err, keyring.ErrUnsupportedPlatform) {
		// Keyring exists but is unreadable; fall through to env with a
		// usable token rather than hard-failing the daemon.
		if env := strings.TrimSpace(os.Getenv(TokenEnv)); env != "" {
			return env, nil
		}
		return "", err
	}
	return strings.TrimSpace(os.Getenv(TokenEnv)), nil
}

// SetToken stores the token in the OS keyring.
func SetToken(token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return errors.New("token is empty")
	}
	return keyringSet(keyringService, keyringField, token)
}

// ClearToken removes the token from the OS keyring. Clearing an absent
// token is a no-op.
func ClearToken() error {
	err := keyringDelete(keyringService, keyringField)
	if errors.Is(err, keyring.ErrNotFound) {
		return nil
	}
	return err
}
