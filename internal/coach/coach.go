// Package coach asks a generative model for encouragement based on the user's habits and goals.
package coach

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
)

// ErrNotConfigured is returned when no API key is available.
var ErrNotConfigured = errors.New("coach is not configured: set an API key")

const (
	overviewInstruction = "You are a friendly habit coach. Using the user's data below, write a short overview " +
		"of how they are doing: one thing going well, one thing to focus on next, and one concrete suggestion. " +
		"Keep it under 120 words."
	chatInstruction = "You are a friendly habit coach chatting with the user. Answer briefly and ground your advice " +
		"in the user's data below. Do not invent habits or goals they do not have."
)

// Role identifies who said a turn.
type Role string

const (
	RoleUser  Role = "user"
	RoleModel Role = "model"
)

// Turn is one message in a conversation.
type Turn struct {
	Role Role
	Text string
}

// Model is the generative backend.
type Model interface {
	Generate(ctx context.Context, system string, history []Turn) (string, error)
	// Speak returns 16-bit little-endian mono PCM at SampleRate.
	Speak(ctx context.Context, text string) ([]byte, error)
}

type Coach struct {
	model Model
}

// NewWithModel wraps an existing backend.
func NewWithModel(m Model) *Coach {
	return &Coach{model: m}
}

// Overview returns a short progress summary for the snapshot.
func (c *Coach) Overview(ctx context.Context, s Snapshot) (string, error) {
	system := overviewInstruction + "\n\n" + BuildContext(s)
	text, err := c.model.Generate(ctx, system, []Turn{{Role: RoleUser, Text: "How am I doing?"}})
	if err != nil {
		return "", fmt.Errorf("failed to generate overview: %w", err)
	}
	return strings.TrimSpace(text), nil
}

// Chat is a conversation whose system context is fixed when it is created.
type Chat struct {
	model  Model
	system string

	mu      sync.Mutex
	history []Turn
}

// NewChat starts a conversation, optionally continuing from earlier turns.
func (c *Coach) NewChat(s Snapshot, history []Turn) *Chat {
	return &Chat{
		model:   c.model,
		system:  chatInstruction + "\n\n" + BuildContext(s),
		history: append([]Turn(nil), history...),
	}
}

// Send appends msg, asks the model and records its reply. A failed turn is not kept.
func (ch *Chat) Send(ctx context.Context, msg string) (string, error) {
	msg = strings.TrimSpace(msg)
	if msg == "" {
		return "", errors.New("message is empty")
	}

	ch.mu.Lock()
	defer ch.mu.Unlock()

	turns := append(append([]Turn(nil), ch.history...), Turn{Role: RoleUser, Text: msg})
	reply, err := ch.model.Generate(ctx, ch.system, turns)
	if err != nil {
		return "", fmt.Errorf("failed to get reply: %w", err)
	}
	reply = strings.TrimSpace(reply)

	ch.history = append(turns, Turn{Role: RoleModel, Text: reply})
	return reply, nil
}

// History returns a copy of the conversation so far.
func (ch *Chat) History() []Turn {
	ch.mu.Lock()
	defer ch.mu.Unlock()
	return append([]Turn(nil), ch.history...)
}

// Speak converts text to PCM audio.
func (c *Coach) Speak(ctx context.Context, text string) ([]byte, error) {
	if strings.TrimSpace(text) == "" {
		return nil, errors.New("nothing to speak")
	}
	pcm, err := c.model.Speak(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("failed to synthesize speech: %w", err)
	}
	return pcm, nil
}
