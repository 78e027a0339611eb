package services

import (
	"context"
	"fmt"
	"os"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// Fixed sampling parameters for script generation.
const (
	GeminiModel       = "gemini-2.0-flash"
	GeminiTemperature = 0.7
	GeminiMaxTokens   = 4000
)

// GeminiWriter calls Gemini with a fixed model and sampling configuration.
// It implements ScriptWriter.
type GeminiWriter struct {
	APIKey string
}

func NewGeminiWriterFromEnv() *GeminiWriter {
	return &GeminiWriter{APIKey: os.Getenv("GEMINI_API_KEY")}
}

func (g *GeminiWriter) WriteScript(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(g.APIKey))
	if err != nil {
		return "", fmt.Errorf("failed to create Gemini client: %v", err)
	}
	defer client.Close()

	model := client.GenerativeModel(GeminiModel)
	model.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(systemPrompt)},
	}
	model.SetTemperature(GeminiTemperature)
	model.SetMaxOutputTokens(GeminiMaxTokens)

	resp, err := model.GenerateContent(ctx, genai.Text(userPrompt))
	if err != nil {
		return "", fmt.Errorf("gemini request failed: %v", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", ErrEmptyCompletion
	}
	return fmt.Sprintf("%v", resp.Candidates[0].Content.Parts[0]), nil
}
