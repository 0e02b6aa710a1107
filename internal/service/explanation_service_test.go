package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/generative-ai-go/genai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lshigami/examroom/internal/apperror"
)

type fakeGenerator struct {
	prompt string
	reply  string
	err    error
}

func (g *fakeGenerator) GenerateContent(_ context.Context, parts ...genai.Part) (*genai.GenerateContentResponse, error) {
	if len(parts) > 0 {
		if txt, ok := parts[0].(genai.Text); ok {
			g.prompt = string(txt)
		}
	}
	if g.err != nil {
		return nil, g.err
	}
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Parts: []genai.Part{genai.Text(g.reply)}},
		}},
	}, nil
}

func TestDraftExplanation(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	gen := &fakeGenerator{reply: "  Option A is right because 1 squared is 1.  "}
	svc := NewQuestionService(f.store, &explanationService{model: gen})

	resp, err := svc.DraftExplanation(ctx, f.teacher, f.qs[0].ID)
	require.NoError(t, err)
	assert.Equal(t, "Option A is right because 1 squared is 1.", resp.Explanation)
	assert.Contains(t, gen.prompt, "Correct option: A")
	assert.Contains(t, gen.prompt, "D. 4")

	stored, err := f.store.Questions().FindByID(ctx, f.qs[0].ID)
	require.NoError(t, err)
	assert.Equal(t, resp.Explanation, stored.Explanation)
}

func TestExplainUnavailable(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := (&explanationService{}).Explain(ctx, &f.qs[0])
	assert.ErrorIs(t, err, apperror.ErrUnavailable)

	failing := &explanationService{model: &fakeGenerator{err: errors.New("quota exceeded")}}
	_, err = failing.Explain(ctx, &f.qs[0])
	assert.ErrorIs(t, err, apperror.ErrUnavailable)

	empty := &explanationService{model: &fakeGenerator{reply: "   "}}
	_, err = empty.Explain(ctx, &f.qs[0])
	assert.ErrorIs(t, err, apperror.ErrUnavailable)
}
