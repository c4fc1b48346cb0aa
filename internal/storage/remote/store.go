// Package remote talks to a streakly document server over HTTP.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/julianstephens/streakly/internal/models"
	"github.com/julianstephens/streakly/internal/storage"
)

// TokenFunc returns a bearer token for the given user.
type TokenFunc func(ctx context.Context, userID string) (string, error)

type Store struct {
	baseURL string
	token   TokenFunc
	client  *http.Client
}

func New(baseURL string, token TokenFunc) *Store {
	return &Store{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

func (s *Store) documentURL(userID string) string {
	return s.baseURL + "/v1/users/" + url.PathEscape(userID) + "/document"
}

func (s *Store) newRequest(ctx context.Context, method, userID string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, s.documentURL(userID), body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if s.token != nil {
		token, err := s.token(ctx, userID)
		if err != nil {
			return nil, fmt.Errorf("failed to obtain token: %w", err)
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req, nil
}

func (s *Store) Get(ctx context.Context, userID string) (models.Document, error) {
	req, err := s.newRequest(ctx, http.MethodGet, userID, nil)
	if err != nil {
		return models.Document{}, err
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return models.Document{}, fmt.Errorf("failed to fetch document: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return models.Document{}, storage.ErrNotFound
	default:
		return models.Document{}, statusError(resp)
	}

	var doc models.Document
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return models.Document{}, fmt.Errorf("failed to decode document: %w", err)
	}
	return doc, nil
}

func (s *Store) Upsert(ctx context.Context, userID string, doc models.Document) error {
	payload, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to encode document: %w", err)
	}

	req, err := s.newRequest(ctx, http.MethodPut, userID, bytes.NewReader(payload))
	if err != nil {
		return err
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to store document: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		return statusError(resp)
	}
	return nil
}

func (s *Store) Close() error {
	s.client.CloseIdleConnections()
	return nil
}

func statusError(resp *http.Response) error {
	msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	return fmt.Errorf("document server returned %s: %s", resp.Status, strings.TrimSpace(string(msg)))
}
