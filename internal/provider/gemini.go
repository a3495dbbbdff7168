package provider

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

const defaultGeminiModel = "gemini-1.5-flash-latest"

// Gemini forwards to Google's generative AI service. It reports
// provider-side usage metadata when the API returns it.
type Gemini struct {
	client *genai.Client
	model  string
}

func NewGemini(apiKey, model string) (*Gemini, error) {
	g := &Gemini{model: model}
	if g.model == "" {
		g.model = defaultGeminiModel
	}
	if apiKey == "" {
		// Credential absence is surfaced at call time, like the other
		// adapters.
		return g, nil
	}

	client, err := genai.NewClient(context.Background(), option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}
	g.client = client
	return g, nil
}

func (g *Gemini) Close() {
	if g.client != nil {
		g.client.Close()
	}
}

func (g *Gemini) Forward(ctx context.Context, req Request) (*Result, error) {
	if g.client == nil {
		return nil, ErrMissingAPIKey
	}

	model := g.client.GenerativeModel(g.model)
	model.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(req.SystemPrompt)},
	}

	if len(req.Messages) == 0 {
		return nil, fmt.Errorf("no messages to forward")
	}

	cs := model.StartChat()
	for _, m := range req.Messages[:len(req.Messages)-1] {
		role := "user"
		if m.Role == "assistant" {
			role = "model"
		}
		cs.History = append(cs.History, &genai.Content{
			Role:  role,
			Parts: []genai.Part{genai.Text(m.Content)},
		})
	}

	last := req.Messages[len(req.Messages)-1]
	resp, err := cs.SendMessage(ctx, genai.Text(last.Content))
	if err != nil {
		return nil, fmt.Errorf("gemini SendMessage failed: %w", err)
	}

	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil, fmt.Errorf("gemini returned no candidates")
	}

	var text strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			text.WriteString(string(txt))
		}
	}
	if text.Len() == 0 {
		return nil, fmt.Errorf("gemini returned a non-text response")
	}

	result := &Result{Content: text.String()}
	if resp.UsageMetadata != nil {
		result.Usage = &Usage{
			InputTokens:  int(resp.UsageMetadata.PromptTokenCount),
			OutputTokens: int(resp.UsageMetadata.CandidatesTokenCount),
			TotalTokens:  int(resp.UsageMetadata.TotalTokenCount),
		}
	}
	return result, nil
}
