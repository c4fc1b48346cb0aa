// Package server exposes a DocumentStore over HTTP so several machines can share one user's state.
// Documents with structural errors are rejected; otherwise the last writer wins.
package server

import (
	"context"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/julianstephens/streakly/internal/constants"
	"github.com/julianstephens/streakly/internal/logger"
	"github.com/julianstephens/streakly/internal/storage"
	"github.com/julianstephens/streakly/internal/validation"
)

type Server struct {
	app *fiber.App
}

// New builds the app. secret signs and verifies bearer tokens.
func New(store storage.DocumentStore, secret []byte) (*Server, error) {
	if len(secret) == 0 {
		return nil, errors.New("server secret is required")
	}

	app := fiber.New(fiber.Config{
		AppName:               constants.AppName,
		DisableStartupMessage: true,
		ReadTimeout:           15 * time.Second,
		WriteTimeout:          15 * time.Second,
	})

	h := &handlers{store: store, validator: validation.New(), now: time.Now}
	app.Get("/healthz", h.health)

	guard := []fiber.Handler{Protected(secret), SameUser()}
	v1 := app.Group("/v1")
	v1.Get("/users/:userId/document", append(guard, h.getDocument)...)
	v1.Put("/users/:userId/document", append(guard, h.putDocument)...)

	return &Server{app: app}, nil
}

// App returns the underlying fiber app.
func (s *Server) App() *fiber.App {
	return s.app
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	errCh := make(chan error, 1)
	go func() {
		logger.Info("Document server listening", "addr", addr)
		errCh <- s.app.Listen(addr)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.app.ShutdownWithContext(shutdownCtx); err != nil {
			return err
		}
		return <-errCh
	}
}
