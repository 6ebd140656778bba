package ai

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"go.uber.org/zap"
	"google.golang.org/api/option"

	"github.com/xelth-com/huissierpro/internal/models"
	"github.com/xelth-com/huissierpro/internal/utils"
)

// DefaultGeminiModel is used when no model is configured.
const DefaultGeminiModel = "gemini-1.5-flash"

// GeminiGenerator drafts acts with Google Gemini using the official SDK
type GeminiGenerator struct {
	client *genai.Client
	model  *genai.GenerativeModel
	logger *zap.Logger
}

// NewGeminiGenerator creates a new Gemini API client
func NewGeminiGenerator(ctx context.Context, apiKey, modelName string, logger *zap.Logger) (*GeminiGenerator, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY is empty")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}

	if modelName == "" {
		modelName = DefaultGeminiModel
	}

	model := client.GenerativeModel(modelName)
	model.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(LegalActSystemPrompt)},
	}
	model.SetTemperature(0.2)

	return &GeminiGenerator{
		client: client,
		model:  model,
		logger: logger.With(zap.String("model", modelName)),
	}, nil
}

// Close closes the client connection
func (g *GeminiGenerator) Close() {
	if g.client != nil {
		g.client.Close()
	}
}

// Generate sends the facts to Gemini and returns the act body.
func (g *GeminiGenerator) Generate(ctx context.Context, facts string, category models.Category) (string, error) {
	if strings.TrimSpace(facts) == "" {
		return "", fmt.Errorf("%w: no facts provided", ErrGenerationFailed)
	}

	resp, err := g.model.GenerateContent(ctx, genai.Text(BuildPrompt(facts, category)))
	if err != nil {
		g.logger.Warn("gemini request failed", zap.String("category", string(category)), zap.Error(err))
		return "", fmt.Errorf("%w: %v", ErrGenerationFailed, err)
	}

	text, err := textFromResponse(resp)
	if err != nil {
		return "", err
	}
	g.logger.Debug("gemini draft received", zap.String("category", string(category)), zap.Int("chars", len(text)))
	return text, nil
}

func textFromResponse(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		return "", fmt.Errorf("%w: empty response from gemini", ErrGenerationFailed)
	}
	cand := resp.Candidates[0]
	if cand.Content == nil || len(cand.Content.Parts) == 0 {
		return "", fmt.Errorf("%w: empty response from gemini (finish reason %s)", ErrGenerationFailed, cand.FinishReason)
	}

	var fullText strings.Builder
	for _, part := range cand.Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			fullText.WriteString(string(txt))
		}
	}

	text := utils.StripCodeFence(fullText.String())
	if text == "" {
		return "", fmt.Errorf("%w: response carried no text", ErrGenerationFailed)
	}
	return text, nil
}
