// Package auth tracks who is signed in and issues the bearer tokens used by the document server.
package auth

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"github.com/google/uuid"
)

// ErrSignedOut is returned by Current when nobody is signed in.
var ErrSignedOut = errors.New("not signed in")

// userNamespace scopes the name-based user ids so they never collide with other uuid v5 users.
var userNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://github.com/julianstephens/streakly/users"))

// Identity is the authenticated user as seen by the rest of the application.
type Identity struct {
	UserID      string `json:"userId"`
	Email       string `json:"email"`
	DisplayName string `json:"displayName,omitempty"`
}

// NewIdentity validates email and derives a stable user id from it.
func NewIdentity(email, displayName string) (Identity, error) {
	addr, err := mail.ParseAddress(strings.TrimSpace(email))
	if err != nil {
		return Identity{}, fmt.Errorf("invalid email %q: %w", email, err)
	}
	normalized := strings.ToLower(addr.Address)

	name := strings.TrimSpace(displayName)
	if name == "" {
		name = addr.Name
	}
	if name == "" {
		name = strings.SplitN(normalized, "@", 2)[0]
	}

	return Identity{
		UserID:      UserIDFor(normalized),
		Email:       normalized,
		DisplayName: name,
	}, nil
}

// UserIDFor returns the deterministic user id for an email address.
func UserIDFor(email string) string {
	return uuid.NewSHA1(userNamespace, []byte(strings.ToLower(strings.TrimSpace(email)))).String()
}

// Provider reports the signed-in identity and notifies on changes.
type Provider interface {
	// Current returns the signed-in identity, or ErrSignedOut.
	Current(ctx context.Context) (*Identity, error)
	// Subscribe registers fn for sign-in (non-nil) and sign-out (nil) events.
	// The returned function unregisters it.
	Subscribe(fn func(*Identity)) func()
}
