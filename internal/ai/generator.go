// Package ai оборачивает генеративную модель: построение запроса,
// вызов модели с таймаутом и разбор полуструктурированного ответа.
package ai

import (
	"context"
	"fmt"
	"sync"

	"google.golang.org/genai"

	"github.com/shenikar/border_conflict_monitor/internal/apperrors"
)

// Generator - транспорт генеративной модели: generate(prompt) -> text
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// GeminiGenerator - транспорт Google Gemini
type GeminiGenerator struct {
	apiKey string
	model  string

	once    sync.Once
	client  *genai.Client
	initErr error
}

func NewGeminiGenerator(apiKey, model string) *GeminiGenerator {
	return &GeminiGenerator{
		apiKey: apiKey,
		model:  model,
	}
}

func (g *GeminiGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	if g.apiKey == "" {
		return "", &apperrors.ConfigurationError{Service: apperrors.ServiceGemini}
	}

	client, err := g.getClient(ctx)
	if err != nil {
		return "", fmt.Errorf("%w: %v", apperrors.ErrModelUnavailable, err)
	}

	resp, err := client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), nil)
	if err != nil {
		return "", &apperrors.TransportError{Service: apperrors.ServiceGemini, Op: "generate", Err: err}
	}
	return resp.Text(), nil
}

func (g *GeminiGenerator) getClient(ctx context.Context) (*genai.Client, error) {
	g.once.Do(func() {
		g.client, g.initErr = genai.NewClient(ctx, &genai.ClientConfig{
			APIKey:  g.apiKey,
			Backend: genai.BackendGeminiAPI,
		})
	})
	return g.client, g.initErr
}
