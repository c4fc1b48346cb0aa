package system

import (
	"context"
	"errors"

	"github.com/julianstephens/streakly/internal/cli"
	"github.com/julianstephens/streakly/internal/validation"
)

// ValidateCmd checks the signed-in user's saved document for problems.
type ValidateCmd struct{}

func (cmd *ValidateCmd) Run(ctx *cli.Context) error {
	s, closeFn, err := ctx.OpenSession(context.Background(), nil)
	if err != nil {
		return err
	}
	defer closeFn()

	result := validation.New().ValidateState(s.State())
	ctx.Printf("%s", result.FormatReport())
	if !result.HasConflicts() {
		ctx.Println()
	}
	if result.HasErrors() {
		return errors.New("document has errors that may break syncing")
	}
	return nil
}
