package storage

import (
	"context"
	"errors"

	"github.com/julianstephens/streakly/internal/models"
)

// ErrNotFound is returned by Get when no document exists for the user.
var ErrNotFound = errors.New("no rows: document not found")

// DocumentStore persists one whole AppState document per user. Writes overwrite; last writer wins.
type DocumentStore interface {
	Get(ctx context.Context, userID string) (models.Document, error)
	Upsert(ctx context.Context, userID string, doc models.Document) error
	Close() error
}
