package coach

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/genai"

	"github.com/julianstephens/streakly/internal/constants"
)

type Config struct {
	APIKey      string
	Model       string
	SpeechModel string
	Voice       string
}

// GenAIModel talks to the Gemini API.
type GenAIModel struct {
	client      *genai.Client
	model       string
	speechModel string
	voice       string
}

// New builds a coach backed by Gemini. It returns ErrNotConfigured without an API key.
func New(ctx context.Context, cfg Config) (*Coach, error) {
	m, err := NewGenAIModel(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return NewWithModel(m), nil
}

func NewGenAIModel(ctx context.Context, cfg Config) (*GenAIModel, error) {
	if cfg.APIKey == "" {
		return nil, ErrNotConfigured
	}
	if cfg.Model == "" {
		cfg.Model = constants.DefaultCoachModel
	}
	if cfg.SpeechModel == "" {
		cfg.SpeechModel = constants.DefaultSpeechModel
	}
	if cfg.Voice == "" {
		cfg.Voice = constants.DefaultSpeechVoice
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}

	return &GenAIModel{
		client:      client,
		model:       cfg.Model,
		speechModel: cfg.SpeechModel,
		voice:       cfg.Voice,
	}, nil
}

func (m *GenAIModel) Generate(ctx context.Context, system string, history []Turn) (string, error) {
	contents := make([]*genai.Content, 0, len(history))
	for _, t := range history {
		role := genai.RoleUser
		if t.Role == RoleModel {
			role = genai.RoleModel
		}
		contents = append(contents, genai.NewContentFromText(t.Text, genai.Role(role)))
	}

	result, err := m.client.Models.GenerateContent(ctx, m.model, contents, &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(system, genai.RoleUser),
	})
	if err != nil {
		return "", fmt.Errorf("GenAI generate failed: %w", err)
	}

	text := result.Text()
	if text == "" {
		return "", errors.New("no text returned")
	}
	return text, nil
}

func (m *GenAIModel) Speak(ctx context.Context, text string) ([]byte, error) {
	result, err := m.client.Models.GenerateContent(ctx, m.speechModel, genai.Text(text), &genai.GenerateContentConfig{
		ResponseModalities: []string{"AUDIO"},
		SpeechConfig: &genai.SpeechConfig{
			VoiceConfig: &genai.VoiceConfig{
				PrebuiltVoiceConfig: &genai.PrebuiltVoiceConfig{VoiceName: m.voice},
			},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("GenAI speech failed: %w", err)
	}

	for _, cand := range result.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if part.InlineData != nil && len(part.InlineData.Data) > 0 {
				return part.InlineData.Data, nil
			}
		}
	}
	return nil, errors.New("no audio returned")
}
