package config

import (
	"errors"
	"testing"

	"github.com/zalando/go-keyring"
)

// fakeKeyring swaps the keyring function vars for an in-memory map.
func fakeKeyring(t *testing.T) map[string]string {
	t.Helper()
	store := make(map[string]string)
	oldSet, oldGet, oldDelete := keyringSet, keyringGet, keyringDelete
	keyringSet = func(service, user, password string) error {
		store[service+"/"+user] = password
		return nil
	}
	keyringGet = func(service, user string) (string, error) {
		v, ok := store[service+"/"+user]
		if !ok {
			return "", keyring.ErrNotFound
		}
		return v, nil
	}
	keyringDelete = func(service, user string) error {
		key := service + "/" + user
		if _, ok := store[key]; !ok {
			return keyring.ErrNotFound
		}
		delete(store, key)
		return nil
	}
	t.Cleanup(func() {
		keyringSet, keyringGet, keyringDelete = oldSet, oldGet, oldDelete
	})
	return store
}

func TestToken_FromKeyring(t *testing.T) {
	fakeKeyring(t)
	t.Setenv(TokenEnv, "")

	if err := SetToken("  secret-token  "); err != nil {
		t.Fatal(err)
	}
	tok, err := Token()
	if err != nil {
		t.Fatal(err)
	}
	if tok != "secret-token" {
		t.Errorf("expected trimmed keyring token, got %q", tok)
	}
}

func TestToken_EnvFallback(t *testing.T) {
	fakeKeyring(t)
	t.Setenv(TokenEnv, " env-token ")

	tok, err := Token()
	if err != nil {
		t.Fatal(err)
	}
	if tok != "env-token" {
		t.Errorf("expected env fallback, got %q", tok)
	}
}

func TestToken_KeyringWinsOverEnv(t *testing.T) {
	fakeKeyring(t)
	t.Setenv(TokenEnv, "env-token")

	if err := SetToken("keyring-token"); err != nil {
		t.Fatal(err)
	}
	tok, err := Token()
	if err != nil {
		t.Fatal(err)
	}
	if tok != "keyring-token" {
		t.Errorf("keyring must take precedence, got %q", tok)
	}
}

func TestToken_Absent(t *testing.T) {
	fakeKeyring(t)
	t.Setenv(TokenEnv, "")

	tok, err := Token()
	if err != nil {
		t.Fatal(err)
	}
	if tok != "" {
		t.Errorf("expected empty token, got %q", tok)
	}
}

func TestToken_KeyringErrorFallsBackToEnv(t *testing.T) {
	fakeKeyring(t)
	keyringGet = func(service, user string) (string, error) {
		return "", errors.New("dbus: connection refused")
	}
	t.Setenv(TokenEnv, "env-token")

	tok, err := Token()
	if err != nil {
		t.Fatal(err)
	}
	if tok != "env-token" {
		t.Errorf("expected env fallback on keyring failure, got %q", tok)
	}
}

func TestSetToken_RejectsEmpty(t *testing.T) {
	fakeKeyring(t)
	if err := SetToken("   "); err == nil {
		t.Fatal("expected error for blank token")
	}
}

func TestClearToken_AbsentIsNoop(t *testing.T) {
	fakeKeyring(t)
	if err := ClearToken(); err != nil {
		t.Fatalf("clearing absent token must be a no-op, got %v", err)
	}
}

func TestClearToken_RemovesStored(t *testing.T) {
	store := fakeKeyring(t)
	t.Setenv(TokenEnv, "")

	if err := SetToken("tok"); err != nil {
		t.Fatal(err)
	}
	if err := ClearToken(); err != nil {
		t.Fatal(err)
	}
	if len(store) != 0 {
		t.Errorf("expected keyring emptied, got %v", store)
	}
	tok, err := Token()
	if err != nil || tok != "" {
		t.Errorf("expected no token after clear, got %q, %v", tok, err)
	}
}
