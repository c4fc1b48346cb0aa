package progress

import (
	"context"
	"fmt"

	"github.com/charmbracelet/huh"

	"github.com/julianstephens/streakly/internal/achievements"
	"github.com/julianstephens/streakly/internal/cli"
)

type BadgesCmd struct {
	Earned bool `help:"Only show earned badges."`
}

func (c *BadgesCmd) Run(ctx *cli.Context) error {
	s, closeFn, err := ctx.OpenSession(context.Background(), nil)
	if err != nil {
		return err
	}
	defer closeFn()

	statuses := achievements.Progress(s.State())
	earned := 0
	for _, st := range statuses {
		if st.Earned {
			earned++
		} else if c.Earned {
			continue
		}
		mark := "🔒"
		if st.Earned {
			mark = st.Badge.Icon
		}
		ctx.Printf("%s %-14s %s\n", mark, st.Badge.Title, st.Badge.Condition)
	}
	ctx.Printf("\n%d of %d badges earned\n", earned, len(statuses))
	return nil
}

type ResetCmd struct {
	Yes bool `short:"y" help:"Skip the confirmation prompt."`
}

// confirm is replaced in tests.
var confirm = func(title string) (bool, error) {
	var ok bool
	err := huh.NewConfirm().
		Title(title).
		Description("Habits, goals, history and badges will be deleted. This cannot be undone.").
		Affirmative("Erase everything").
		Negative("Cancel").
		Value(&ok).
		Run()
	return ok, err
}

func (c *ResetCmd) Run(ctx *cli.Context) error {
	s, closeFn, err := ctx.OpenSession(context.Background(), nil)
	if err != nil {
		return err
	}

	confirmed := c.Yes
	if !confirmed {
		confirmed, err = confirm(fmt.Sprintf("Reset all data for %s?", s.Identity().Email))
		if err != nil {
			closeFn()
			return err
		}
	}

	s.ResetAll(confirmed)
	if !confirmed {
		ctx.Println("Reset cancelled.")
	} else {
		ctx.Println("✓ All data erased.")
	}
	return closeFn()
}
