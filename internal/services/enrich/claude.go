package enrich

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/ternarybob/arbor"

	"github.com/merxlabs/merx/internal/common"
	"github.com/merxlabs/merx/internal/interfaces"
)

// claudeProvider generates product content using the Anthropic Claude
// API. PDF sources are attached as base64 document blocks so the model
// reads the spec sheet directly.
type claudeProvider struct {
	client      anthropic.Client
	model       string
	maxTokens   int
	temperature float32
	timeout     time.Duration
	logger      arbor.ILogger
}

func newClaudeProvider(config *common.ClaudeConfig, logger arbor.ILogger) (*claudeProvider, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("Anthropic API key is required (set ANTHROPIC_API_KEY or enrichment.claude.api_key)")
	}

	model := config.Model
	if model == "" {
		model = "claude-haiku-3-5-20241022"
	}

	maxTokens := config.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 4096
	}

	client := anthropic.NewClient(
		option.WithAPIKey(config.APIKey),
	)

	p := &claudeProvider{
		client:      client,
		model:       model,
		maxTokens:   maxTokens,
		temperature: config.Temperature,
		timeout:     common.ParseDurationOr(config.Timeout, 2*time.Minute),
		logger:      logger,
	}

	logger.Debug().
		Str("model", model).
		Int("max_tokens", maxTokens).
		Msg("Claude enrichment provider initialized")

	return p, nil
}

func (p *claudeProvider) name() string { return "claude" }

func (p *claudeProvider) modelName() string { return p.model }

// generate runs one completion. A PDF source is sent as a document
// block alongside the prompt text.
func (p *claudeProvider) generate(ctx context.Context, prompt string, source *interfaces.SourceContent) (string, error) {
	timeoutCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	blocks := []anthropic.ContentBlockParamUnion{}
	if len(source.PDFData) > 0 {
		blocks = append(blocks, anthropic.NewDocumentBlock(anthropic.Base64PDFSourceParam{
			Data: base64.StdEncoding.EncodeToString(source.PDFData),
		}))
	}
	blocks = append(blocks, anthropic.NewTextBlock(prompt))

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(p.model),
		MaxTokens: int64(p.maxTokens),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(blocks...),
		},
		System: []anthropic.TextBlockParam{
			{Text: systemInstruction},
		},
	}
	if p.temperature > 0 {
		params.Temperature = anthropic.Float(float64(p.temperature))
	}

	resp, err := p.client.Messages.New(timeoutCtx, params)
	if err != nil {
		return "", classifyClaudeError(err)
	}

	var text strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}

	if text.Len() == 0 {
		return "", interfaces.NewEnrichmentError(interfaces.ErrKindUnknown,
			"empty response from Claude API", nil)
	}

	return text.String(), nil
}

// classifyClaudeError maps Anthropic API failures to enrichment error
// kinds using the API status code.
func classifyClaudeError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return interfaces.NewEnrichmentError(interfaces.ErrKindTimeout, "Claude API call timed out", err)
	}
	if errors.Is(err, context.Canceled) {
		return err
	}

	var apierr *anthropic.Error
	if errors.As(err, &apierr) {
		switch apierr.StatusCode {
		case http.StatusTooManyRequests:
			return interfaces.NewEnrichmentError(interfaces.ErrKindRateLimited, "Claude API rate limited", err)
		case http.StatusBadRequest, http.StatusUnprocessableEntity:
			return interfaces.NewEnrichmentError(interfaces.ErrKindInvalidInput, "Claude API rejected the request", err)
		case http.StatusRequestTimeout, http.StatusGatewayTimeout:
			return interfaces.NewEnrichmentError(interfaces.ErrKindTimeout, "Claude API timed out", err)
		}
	}

	return interfaces.NewEnrichmentError(interfaces.ErrKindUnknown, "Claude API call failed", err)
}
