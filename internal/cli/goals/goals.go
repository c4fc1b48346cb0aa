package goals

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/julianstephens/streakly/internal/cli"
	"github.com/julianstephens/streakly/internal/models"
	"github.com/julianstephens/streakly/internal/reducer"
	"github.com/julianstephens/streakly/internal/utils"
)

type GoalCmd struct {
	Add      GoalAddCmd      `cmd:"" help:"Add a new goal."`
	List     GoalListCmd     `cmd:"" help:"List goals and their progress."`
	Progress GoalProgressCmd `cmd:"" help:"Add (or with a negative amount, remove) progress."`
	Delete   GoalDeleteCmd   `cmd:"" help:"Delete a goal."`
}

type GoalAddCmd struct {
	Title     string  `arg:"" help:"Goal title."`
	Target    float64 `required:"" help:"Amount that completes the goal."`
	Unit      string  `help:"Unit of progress, e.g. km or pages."`
	Frequency string  `help:"Daily, Weekly, Monthly or Once." default:"Once"`
	Deadline  string  `help:"Deadline (YYYY-MM-DD)."`
}

func (c *GoalAddCmd) Run(ctx *cli.Context) error {
	in, err := c.validate()
	if err != nil {
		return err
	}

	s, closeFn, err := ctx.OpenSession(context.Background(), nil)
	if err != nil {
		return err
	}

	out := s.AddGoal(in)
	goal := out.State.Goals[len(out.State.Goals)-1]
	ctx.Printf("Added goal: %s (0/%s %s)\n", goal.Title, utils.FormatAmount(goal.Target), goal.Unit)
	ctx.ReportSpotlight(out.Spotlight)
	return closeFn()
}

func (c *GoalAddCmd) validate() (reducer.NewGoal, error) {
	if strings.TrimSpace(c.Title) == "" {
		return reducer.NewGoal{}, errors.New("goal title cannot be empty")
	}
	if math.IsNaN(c.Target) || math.IsInf(c.Target, 0) || c.Target <= 0 {
		return reducer.NewGoal{}, fmt.Errorf("target must be positive, got %v", c.Target)
	}
	frequency, err := models.ParseFrequency(c.Frequency)
	if err != nil {
		return reducer.NewGoal{}, err
	}
	if c.Deadline != "" && !utils.IsValidDate(c.Deadline) {
		return reducer.NewGoal{}, fmt.Errorf("invalid deadline %q (expected YYYY-MM-DD)", c.Deadline)
	}
	return reducer.NewGoal{
		Title:     c.Title,
		Target:    c.Target,
		Unit:      c.Unit,
		Frequency: frequency,
		Deadline:  c.Deadline,
	}, nil
}

type GoalListCmd struct{}

func (c *GoalListCmd) Run(ctx *cli.Context) error {
	s, closeFn, err := ctx.OpenSession(context.Background(), nil)
	if err != nil {
		return err
	}
	defer closeFn()

	state := s.State()
	if len(state.Goals) == 0 {
		ctx.Println("No goals yet. Add one with 'streakly goal add'.")
		return nil
	}

	for i, g := range state.Goals {
		mark := " "
		if g.IsComplete() {
			mark = "✓"
		}
		line := fmt.Sprintf("%2d. [%s] %s %s/%s %s (%.0f%%, %s)", i+1, mark, g.Title,
			utils.FormatAmount(g.Current), utils.FormatAmount(g.Target), g.Unit, g.Percent(), g.Frequency)
		if g.Deadline != nil {
			line += " due " + *g.Deadline
		}
		ctx.Println(line)
	}
	return nil
}

type GoalProgressCmd struct {
	Goal   string  `arg:"" help:"Position, id or title of the goal."`
	Amount float64 `arg:"" help:"Progress to add. Negative values undo progress."`
}

func (c *GoalProgressCmd) Run(ctx *cli.Context) error {
	if math.IsNaN(c.Amount) || math.IsInf(c.Amount, 0) {
		return fmt.Errorf("invalid amount %v", c.Amount)
	}

	s, closeFn, err := ctx.OpenSession(context.Background(), nil)
	if err != nil {
		return err
	}

	goal, err := cli.FindGoal(s.State(), c.Goal)
	if err != nil {
		closeFn()
		return err
	}

	out := s.UpdateGoalProgress(goal.ID, c.Amount)
	updated := out.State.Goals[out.State.FindGoal(goal.ID)]
	ctx.Printf("%s: %s/%s %s (%.0f%%)\n", updated.Title,
		utils.FormatAmount(updated.Current), utils.FormatAmount(updated.Target), updated.Unit, updated.Percent())
	if updated.IsComplete() && !goal.IsComplete() {
		ctx.Println("🎉 Goal reached!")
	}
	ctx.ReportSpotlight(out.Spotlight)
	return closeFn()
}

type GoalDeleteCmd struct {
	Goal string `arg:"" help:"Position, id or title of the goal."`
}

func (c *GoalDeleteCmd) Run(ctx *cli.Context) error {
	s, closeFn, err := ctx.OpenSession(context.Background(), nil)
	if err != nil {
		return err
	}

	goal, err := cli.FindGoal(s.State(), c.Goal)
	if err != nil {
		closeFn()
		return err
	}

	s.DeleteGoal(goal.ID)
	ctx.Printf("Deleted goal: %s\n", goal.Title)
	return closeFn()
}
