package coaching

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/julianstephens/streakly/internal/cli"
	"github.com/julianstephens/streakly/internal/coach"
	"github.com/julianstephens/streakly/internal/constants"
	apperrors "github.com/julianstephens/streakly/internal/errors"
)

type CoachCmd struct {
	Overview CoachOverviewCmd `cmd:"" help:"Get a short overview of how you are doing." default:"1"`
	Chat     CoachChatCmd     `cmd:"" help:"Chat with the coach about your habits and goals."`
	Speak    CoachSpeakCmd    `cmd:"" help:"Read text (or a fresh overview) aloud into a WAV file."`
}

// newCoach is replaced in tests.
var newCoach = func(ctx context.Context, cfg coach.Config) (*coach.Coach, error) {
	return coach.New(ctx, cfg)
}

func openCoach(ctx context.Context, c *cli.Context) (*coach.Coach, error) {
	cfg := coach.Config{
		APIKey:      c.Config.Coach.APIKey,
		Model:       c.Config.Coach.Model,
		SpeechModel: c.Config.Coach.SpeechModel,
		Voice:       c.Config.Coach.Voice,
	}
	if cfg.APIKey == "" {
		cfg.APIKey = c.SecretFor(constants.KeyringUserGenAIKey)
	}
	co, err := newCoach(ctx, cfg)
	if errors.Is(err, coach.ErrNotConfigured) {
		return nil, apperrors.WithHint(err, "run 'streakly keyring set genai-api-key' or set GEMINI_API_KEY")
	}
	return co, err
}

// snapshot reads the signed-in user's state without keeping the session open.
func snapshot(ctx context.Context, c *cli.Context) (coach.Snapshot, error) {
	s, closeFn, err := c.OpenSession(ctx, nil)
	if err != nil {
		return coach.Snapshot{}, err
	}
	defer closeFn()
	return coach.NewSnapshot(s.State(), s.Today()), nil
}

type CoachOverviewCmd struct{}

func (c *CoachOverviewCmd) Run(ctx *cli.Context) error {
	bg := context.Background()
	snap, err := snapshot(bg, ctx)
	if err != nil {
		return err
	}
	co, err := openCoach(bg, ctx)
	if err != nil {
		return err
	}

	text, err := co.Overview(bg, snap)
	if err != nil {
		return err
	}
	ctx.Println(text)
	return nil
}

type CoachChatCmd struct {
	Message string `arg:"" optional:"" help:"Ask a single question instead of starting a conversation."`
}

func (c *CoachChatCmd) Run(ctx *cli.Context) error {
	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	snap, err := snapshot(sigCtx, ctx)
	if err != nil {
		return err
	}
	co, err := openCoach(sigCtx, ctx)
	if err != nil {
		return err
	}
	chat := co.NewChat(snap, nil)

	if c.Message != "" {
		reply, err := chat.Send(sigCtx, c.Message)
		if err != nil {
			return err
		}
		ctx.Println(reply)
		return nil
	}

	ctx.Println("Chatting with your coach. Send an empty line or Ctrl+D to finish.")
	scanner := bufio.NewScanner(ctx.In)
	for {
		ctx.Printf("> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			break
		}
		reply, err := chat.Send(sigCtx, line)
		if err != nil {
			if sigCtx.Err() != nil {
				break
			}
			ctx.Printf("⚠ %v\n", err)
			continue
		}
		ctx.Printf("\n%s\n\n", reply)
	}
	ctx.Println()
	return scanner.Err()
}

type CoachSpeakCmd struct {
	Text   string `arg:"" optional:"" help:"Text to read. Defaults to a fresh overview."`
	Output string `short:"o" help:"WAV file to write." default:"coach.wav" type:"path"`
}

func (c *CoachSpeakCmd) Run(ctx *cli.Context) error {
	bg := context.Background()
	co, err := openCoach(bg, ctx)
	if err != nil {
		return err
	}

	text := c.Text
	if text == "" {
		snap, err := snapshot(bg, ctx)
		if err != nil {
			return err
		}
		if text, err = co.Overview(bg, snap); err != nil {
			return err
		}
	}

	pcm, err := co.Speak(bg, text)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(c.Output), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	f, err := os.Create(c.Output)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", c.Output, err)
	}
	if err := coach.WriteWAV(f, pcm); err != nil {
		f.Close()
		return fmt.Errorf("failed to write audio: %w", err)
	}
	if err := f.Close(); err != nil {
		return err
	}
	ctx.Printf("✓ Wrote %s (%d bytes of audio)\n", c.Output, len(pcm))
	return nil
}
