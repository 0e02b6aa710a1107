package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"github.com/lshigami/examroom/config"
	"github.com/lshigami/examroom/internal/apperror"
	"github.com/lshigami/examroom/internal/model"
	"github.com/rs/zerolog/log"
	"google.golang.org/api/option"
)

// ExplanationService drafts a short explanation of a question's correct answer.
type ExplanationService interface {
	Explain(ctx context.Context, question *model.Question) (string, error)
	Close() error
}

// textGenerator is the slice of the Gemini model the service needs.
type textGenerator interface {
	GenerateContent(ctx context.Context, parts ...genai.Part) (*genai.GenerateContentResponse, error)
}

type explanationService struct {
	client *genai.Client
	model  textGenerator
}

func NewExplanationService(cfg *config.Config) (ExplanationService, error) {
	if cfg.Gemini.APIKey == "" {
		log.Warn().Msg("GEMINI_API_KEY is not set. Explanation drafts are disabled.")
		return &explanationService{}, nil
	}
	client, err := genai.NewClient(context.Background(), option.WithAPIKey(cfg.Gemini.APIKey))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Gemini client: %w", err)
	}
	gm := client.GenerativeModel(cfg.Gemini.Model)
	gm.SetTemperature(0.2)
	return &explanationService{client: client, model: gm}, nil
}

func (s *explanationService) Close() error {
	if s.client == nil {
		return nil
	}
	return s.client.Close()
}

func explanationPrompt(q *model.Question) string {
	var b strings.Builder
	b.WriteString("You are a secondary school teacher writing the answer key for a multiple-choice exam.\n")
	b.WriteString("Explain in at most four sentences why the correct option is right and, briefly, why the others are not.\n")
	b.WriteString("Keep any math markup from the question exactly as written. Do not restate the question.\n\n")
	if q.Topic != "" {
		fmt.Fprintf(&b, "Topic: %s\n", q.Topic)
	}
	b.WriteString("Question:\n---\n")
	b.WriteString(q.Content)
	b.WriteString("\n---\nOptions:\n")
	opts := q.Options.Data()
	for _, label := range model.OptionLabels {
		fmt.Fprintf(&b, "%s. %s\n", label, opts[label])
	}
	fmt.Fprintf(&b, "\nCorrect option: %s\n", q.CorrectAnswer)
	return b.String()
}

func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			b.WriteString(string(txt))
		}
	}
	return strings.TrimSpace(b.String())
}

func (s *explanationService) Explain(ctx context.Context, q *model.Question) (string, error) {
	if s.model == nil {
		return "", apperror.Unavailable("explanation service is not configured", nil)
	}
	resp, err := s.model.GenerateContent(ctx, genai.Text(explanationPrompt(q)))
	if err != nil {
		log.Error().Err(err).Uint("questionID", q.ID).Msg("Gemini API error while drafting explanation")
		return "", apperror.Unavailable("explanation service failed", err)
	}
	text := responseText(resp)
	if text == "" {
		log.Warn().Uint("questionID", q.ID).Msg("Gemini returned no text content")
		return "", apperror.Unavailable("explanation service returned an empty response", nil)
	}
	return text, nil
}
