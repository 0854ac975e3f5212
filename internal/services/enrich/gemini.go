package enrich

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ternarybob/arbor"
	"google.golang.org/genai"

	"github.com/merxlabs/merx/internal/common"
	"github.com/merxlabs/merx/internal/interfaces"
)

// geminiProvider generates product content using the Google Gemini
// API. PDF sources go through as inline application/pdf parts.
type geminiProvider struct {
	client      *genai.Client
	model       string
	temperature float32
	timeout     time.Duration
	logger      arbor.ILogger
}

func newGeminiProvider(ctx context.Context, config *common.GeminiConfig, logger arbor.ILogger) (*geminiProvider, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("Gemini API key is required (set GEMINI_API_KEY or enrichment.gemini.api_key)")
	}

	model := config.Model
	if model == "" {
		model = "gemini-3-flash-preview"
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  config.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	p := &geminiProvider{
		client:      client,
		model:       model,
		temperature: config.Temperature,
		timeout:     common.ParseDurationOr(config.Timeout, 2*time.Minute),
		logger:      logger,
	}

	logger.Debug().
		Str("model", model).
		Msg("Gemini enrichment provider initialized")

	return p, nil
}

func (p *geminiProvider) name() string { return "gemini" }

func (p *geminiProvider) modelName() string { return p.model }

func (p *geminiProvider) generate(ctx context.Context, prompt string, source *interfaces.SourceContent) (string, error) {
	timeoutCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	parts := []*genai.Part{}
	if len(source.PDFData) > 0 {
		parts = append(parts, genai.NewPartFromBytes(source.PDFData, "application/pdf"))
	}
	parts = append(parts, genai.NewPartFromText(prompt))

	contents := []*genai.Content{
		genai.NewContentFromParts(parts, genai.RoleUser),
	}

	config := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(systemInstruction, genai.RoleUser),
		ResponseMIMEType:  "application/json",
	}
	if p.temperature > 0 {
		config.Temperature = genai.Ptr(p.temperature)
	}

	resp, err := p.client.Models.GenerateContent(timeoutCtx, p.model, contents, config)
	if err != nil {
		return "", classifyGeminiError(err)
	}

	if resp == nil || len(resp.Candidates) == 0 {
		return "", interfaces.NewEnrichmentError(interfaces.ErrKindUnknown,
			"empty response from Gemini API", nil)
	}

	text := resp.Text()
	if text == "" {
		return "", interfaces.NewEnrichmentError(interfaces.ErrKindUnknown,
			"empty text in Gemini response", nil)
	}

	return text, nil
}

// classifyGeminiError maps Gemini failures to enrichment error kinds.
// The genai SDK surfaces quota errors as message text, so rate limits
// are detected by 429/RESOURCE_EXHAUSTED/quota markers.
func classifyGeminiError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return interfaces.NewEnrichmentError(interfaces.ErrKindTimeout, "Gemini API call timed out", err)
	}
	if errors.Is(err, context.Canceled) {
		return err
	}

	errStr := err.Error()
	switch {
	case strings.Contains(errStr, "429") ||
		strings.Contains(errStr, "RESOURCE_EXHAUSTED") ||
		strings.Contains(errStr, "quota"):
		return interfaces.NewEnrichmentError(interfaces.ErrKindRateLimited, "Gemini API rate limited", err)
	case strings.Contains(errStr, "400") || strings.Contains(errStr, "INVALID_ARGUMENT"):
		return interfaces.NewEnrichmentError(interfaces.ErrKindInvalidInput, "Gemini API rejected the request", err)
	default:
		return interfaces.NewEnrichmentError(interfaces.ErrKindUnknown, "Gemini API call failed", err)
	}
}
