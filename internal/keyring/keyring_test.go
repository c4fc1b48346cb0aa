package keyring

import (
	"errors"
	"testing"

	gokeyring "github.com/zalando/go-keyring"

	"github.com/julianstephens/streakly/internal/constants"
)

func TestSetAndGet(t *testing.T) {
	gokeyring.MockInit()

	if err := Set(constants.KeyringUserSecret, "hunter2"); err != nil {
		t.Fatalf("Set() failed: %v", err)
	}

	got, err := Get(constants.KeyringUserSecret)
	if err != nil {
		t.Fatalf("Get() failed: %v", err)
	}
	if got != "hunter2" {
		t.Errorf("Get() = %q, want %q", got, "hunter2")
	}
}

func TestSetEmpty(t *testing.T) {
	gokeyring.MockInit()

	if err := Set(constants.KeyringUserDBPass, ""); err == nil {
		t.Error("Set() with empty value should return an error")
	}
}

func TestGetNotFound(t *testing.T) {
	gokeyring.MockInit()

	_, err := Get(constants.KeyringUserGenAIKey)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Get() error = %v, want %v", err, ErrNotFound)
	}
	if got := Lookup(constants.KeyringUserGenAIKey); got != "" {
		t.Errorf("Lookup() = %q, want empty", got)
	}
}

func TestDelete(t *testing.T) {
	gokeyring.MockInit()

	if err := Set(constants.KeyringUserDBPass, "pw"); err != nil {
		t.Fatalf("Set() failed: %v", err)
	}
	if err := Delete(constants.KeyringUserDBPass); err != nil {
		t.Fatalf("Delete() failed: %v", err)
	}
	if _, err := Get(constants.KeyringUserDBPass); !errors.Is(err, ErrNotFound) {
		t.Errorf("after Delete(), Get() error = %v, want %v", err, ErrNotFound)
	}
	if err := Delete(constants.KeyringUserDBPass); !errors.Is(err, ErrNotFound) {
		t.Errorf("second Delete() error = %v, want %v", err, ErrNotFound)
	}
}

func TestIsManagedKey(t *testing.T) {
	if !IsManagedKey(constants.KeyringUserDBPass) {
		t.Error("database password should be managed")
	}
	if IsManagedKey(constants.KeyringUserSession) {
		t.Error("session key must not be managed from the CLI")
	}
}

func TestIsAvailable(t *testing.T) {
	gokeyring.MockInit()

	if !IsAvailable() {
		t.Error("IsAvailable() = false with mock keyring, want true")
	}
}
