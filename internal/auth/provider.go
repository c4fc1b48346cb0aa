package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/julianstephens/streakly/internal/constants"
	"github.com/julianstephens/streakly/internal/keyring"
	"github.com/julianstephens/streakly/internal/logger"
)

// SecretStore is the slice of the keyring the provider needs.
type SecretStore interface {
	Get(key string) (string, error)
	Set(key, value string) error
	Delete(key string) error
}

type osKeyring struct{}

func (osKeyring) Get(key string) (string, error) { return keyring.Get(key) }
func (osKeyring) Set(key, value string) error    { return keyring.Set(key, value) }
func (osKeyring) Delete(key string) error        { return keyring.Delete(key) }

// KeyringProvider keeps the signed-in identity in the OS keyring so it survives between commands.
type KeyringProvider struct {
	store SecretStore

	mu     sync.Mutex
	nextID int
	subs   map[int]func(*Identity)
}

func NewKeyringProvider() *KeyringProvider {
	return NewProviderWithStore(osKeyring{})
}

func NewProviderWithStore(store SecretStore) *KeyringProvider {
	return &KeyringProvider{
		store: store,
		subs:  make(map[int]func(*Identity)),
	}
}

func (p *KeyringProvider) Current(ctx context.Context) (*Identity, error) {
	raw, err := p.store.Get(constants.KeyringUserSession)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return nil, ErrSignedOut
		}
		return nil, fmt.Errorf("failed to read session: %w", err)
	}

	var id Identity
	if err := json.Unmarshal([]byte(raw), &id); err != nil || id.UserID == "" {
		logger.Warn("Discarding unreadable session", "error", err)
		return nil, ErrSignedOut
	}
	return &id, nil
}

// SignIn persists a new identity and notifies subscribers.
func (p *KeyringProvider) SignIn(email, displayName string) (*Identity, error) {
	id, err := NewIdentity(email, displayName)
	if err != nil {
		return nil, err
	}

	raw, err := json.Marshal(id)
	if err != nil {
		return nil, fmt.Errorf("failed to encode session: %w", err)
	}
	if err := p.store.Set(constants.KeyringUserSession, string(raw)); err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}

	logger.Info("Signed in", "user", id.UserID)
	p.notify(&id)
	return &id, nil
}

// SignOut forgets the stored identity and notifies subscribers. Signing out twice is not an error.
func (p *KeyringProvider) SignOut() error {
	if err := p.store.Delete(constants.KeyringUserSession); err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	logger.Info("Signed out")
	p.notify(nil)
	return nil
}

func (p *KeyringProvider) Subscribe(fn func(*Identity)) func() {
	p.mu.Lock()
	id := p.nextID
	p.nextID++
	p.subs[id] = fn
	p.mu.Unlock()

	return func() {
		p.mu.Lock()
		delete(p.subs, id)
		p.mu.Unlock()
	}
}

func (p *KeyringProvider) notify(id *Identity) {
	p.mu.Lock()
	fns := make([]func(*Identity), 0, len(p.subs))
	for i := 0; i < p.nextID; i++ {
		if fn, ok := p.subs[i]; ok {
			fns = append(fns, fn)
		}
	}
	p.mu.Unlock()

	for _, fn := range fns {
		fn(id)
	}
}
