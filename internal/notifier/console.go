package notifier

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/julianstephens/streakly/internal/constants"
)

// ConsoleNotifier prints notifications to a writer. It grants permission on request.
type ConsoleNotifier struct {
	w   io.Writer
	now func() time.Time

	mu   sync.Mutex
	perm Permission
}

func NewConsole(w io.Writer) *ConsoleNotifier {
	return &ConsoleNotifier{w: w, now: time.Now, perm: PermissionDefault}
}

func (n *ConsoleNotifier) Permission() Permission {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.perm
}

func (n *ConsoleNotifier) RequestPermission(ctx context.Context) Permission {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.perm == PermissionDefault {
		n.perm = PermissionGranted
	}
	return n.perm
}

func (n *ConsoleNotifier) Show(ctx context.Context, title, body string) error {
	if n.Permission() != PermissionGranted {
		return ErrPermissionDenied
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	_, err := fmt.Fprintf(n.w, "[%s] %s: %s\n", n.now().Format(constants.TimeFormat), title, body)
	return err
}
