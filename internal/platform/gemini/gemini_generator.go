package gemini

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"google.golang.org/genai"

	"github.com/phrazzld/capture-worker/internal/config"
	"github.com/phrazzld/capture-worker/internal/domain"
	"github.com/phrazzld/capture-worker/internal/generation"
)

// imageMIMEType is the content type for attached image payloads. The
// mobile client uploads JPEG captures.
const imageMIMEType = "image/jpeg"

// GeminiGenerator implements the generation.Generator interface using
// Google's Gemini API to turn captures into Markdown notes.
type GeminiGenerator struct {
	// logger is used for structured logging
	logger *slog.Logger

	// config contains LLM-specific configuration
	config config.LLMConfig

	// client is the Gemini API client for making requests
	client *genai.Client

	// model is the name of the Gemini model to use
	model string
}

// NewGeminiGenerator creates a new instance of GeminiGenerator with the
// provided dependencies. Returns generation.ErrInvalidConfig when the API
// key or model name is missing.
func NewGeminiGenerator(ctx context.Context, logger *slog.Logger, cfg config.LLMConfig) (*GeminiGenerator, error) {
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}

	if cfg.GeminiAPIKey == "" {
		return nil, fmt.Errorf("%w: gemini API key cannot be empty", generation.ErrInvalidConfig)
	}

	if cfg.ModelName == "" {
		return nil, fmt.Errorf("%w: model name cannot be empty", generation.ErrInvalidConfig)
	}

	clientConfig := &genai.ClientConfig{
		APIKey:  cfg.GeminiAPIKey,
		Backend: genai.BackendGeminiAPI,
	}

	client, err := genai.NewClient(ctx, clientConfig)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create Gemini client: %v",
			generation.ErrInvalidConfig, err)
	}

	return &GeminiGenerator{
		logger: logger,
		config: cfg,
		client: client,
		model:  cfg.ModelName,
	}, nil
}

// GenerateNote produces the full Markdown document for a capture.
//
// The prompt is selected by mode, image bytes are attached as binary
// content, and url captures enable the model's URL-context capability.
// Upstream error text is preserved in the returned error so the worker's
// fatal-signature classification still sees status codes and credential
// messages.
func (g *GeminiGenerator) GenerateNote(ctx context.Context, req generation.Request) (string, error) {
	prompt, err := buildPrompt(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", generation.ErrGenerationFailed, err)
	}

	parts := []*genai.Part{genai.NewPartFromText(prompt)}
	if len(req.ImageData) > 0 {
		parts = append(parts, genai.NewPartFromBytes(req.ImageData, imageMIMEType))
	}
	contents := []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}

	var genConfig *genai.GenerateContentConfig
	if req.ContentType == domain.ContentTypeURL {
		genConfig = &genai.GenerateContentConfig{
			Tools: []*genai.Tool{{URLContext: &genai.URLContext{}}},
		}
	}

	g.logger.DebugContext(ctx, "calling Gemini API",
		"model", g.model,
		"content_type", req.ContentType,
		"mode", req.Mode,
		"prompt_length", len(prompt),
		"image_bytes", len(req.ImageData))

	resp, err := g.client.Models.GenerateContent(ctx, g.model, contents, genConfig)
	if err != nil {
		return "", fmt.Errorf("%w: %v", generation.ErrGenerationFailed, err)
	}

	if resp == nil || len(resp.Candidates) == 0 {
		return "", fmt.Errorf("%w: no candidates in response", generation.ErrEmptyDocument)
	}

	candidate := resp.Candidates[0]
	if candidate.FinishReason == genai.FinishReasonSafety {
		return "", fmt.Errorf("%w: finish reason %s", generation.ErrContentBlocked, candidate.FinishReason)
	}

	g.logURLContext(ctx, candidate)

	text := resp.Text()
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("%w: model returned a blank document", generation.ErrEmptyDocument)
	}

	g.logger.InfoContext(ctx, "Gemini API call successful",
		"model", g.model,
		"document_length", len(text))

	return text, nil
}

// logURLContext surfaces URL retrieval metadata for diagnostics. The
// metadata never alters the returned document.
func (g *GeminiGenerator) logURLContext(ctx context.Context, candidate *genai.Candidate) {
	if candidate == nil || candidate.URLContextMetadata == nil {
		return
	}
	for _, meta := range candidate.URLContextMetadata.URLMetadata {
		if meta == nil {
			continue
		}
		g.logger.DebugContext(ctx, "URL context retrieval",
			"retrieved_url", meta.RetrievedURL,
			"status", meta.URLRetrievalStatus)
	}
}
