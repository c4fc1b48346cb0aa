package session

import (
	"context"
	"errors"
	"sync"

	"github.com/julianstephens/streakly/internal/auth"
	"github.com/julianstephens/streakly/internal/logger"
)

// Factory builds the options for a user's session.
type Factory func(id auth.Identity) Options

// Manager keeps exactly one session alive for whoever the provider says is signed in.
type Manager struct {
	provider auth.Provider
	factory  Factory

	mu          sync.Mutex
	ctx         context.Context
	current     *Session
	unsubscribe func()
	listeners   []func(*Session)
}

func NewManager(provider auth.Provider, factory Factory) *Manager {
	return &Manager{provider: provider, factory: factory}
}

// Start opens a session for the current identity, if any, and follows later sign-ins and sign-outs.
func (m *Manager) Start(ctx context.Context) error {
	m.mu.Lock()
	m.ctx = ctx
	m.mu.Unlock()

	id, err := m.provider.Current(ctx)
	if err != nil && !errors.Is(err, auth.ErrSignedOut) {
		return err
	}

	var loadErr error
	if id != nil {
		loadErr = m.switchTo(id)
	}

	unsubscribe := m.provider.Subscribe(func(id *auth.Identity) {
		if err := m.switchTo(id); err != nil {
			logger.Warn("Session started with empty state", "error", err)
		}
	})
	m.mu.Lock()
	m.unsubscribe = unsubscribe
	m.mu.Unlock()

	return loadErr
}

// Current returns the live session, or nil when signed out.
func (m *Manager) Current() *Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current
}

// OnChange registers fn to be called with the new session (nil on sign-out).
func (m *Manager) OnChange(fn func(*Session)) {
	m.mu.Lock()
	m.listeners = append(m.listeners, fn)
	m.mu.Unlock()
}

// Close ends the current session and stops following the provider.
func (m *Manager) Close() {
	m.mu.Lock()
	unsubscribe := m.unsubscribe
	m.unsubscribe = nil
	m.mu.Unlock()

	if unsubscribe != nil {
		unsubscribe()
	}
	_ = m.switchTo(nil)
}

func (m *Manager) switchTo(id *auth.Identity) error {
	m.mu.Lock()
	prev := m.current
	if prev != nil && id != nil && prev.Identity().UserID == id.UserID {
		m.mu.Unlock()
		return nil
	}
	m.current = nil
	ctx := m.ctx
	m.mu.Unlock()

	if prev != nil {
		prev.Close()
	}

	var (
		next *Session
		err  error
	)
	if id != nil {
		if ctx == nil {
			ctx = context.Background()
		}
		next = New(m.factory(*id))
		err = next.Start(ctx)

		m.mu.Lock()
		m.current = next
		m.mu.Unlock()
	}

	m.mu.Lock()
	listeners := append([]func(*Session){}, m.listeners...)
	m.mu.Unlock()
	for _, fn := range listeners {
		fn(next)
	}
	return err
}
