package scrape

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/go-resty/resty/v2"
	"github.com/ternarybob/arbor"

	"github.com/merxlabs/merx/internal/common"
	"github.com/merxlabs/merx/internal/interfaces"
	"github.com/merxlabs/merx/internal/models"
)

// Fetcher retrieves source content for work items. HTML pages are
// reduced to their main content and converted to markdown; PDFs are
// validated and carried through as raw bytes for the provider.
type Fetcher struct {
	client      *resty.Client
	logger      arbor.ILogger
	tempDir     string
	maxBodySize int
}

// Compile-time interface assertion
var _ interfaces.SourceFetcher = (*Fetcher)(nil)

// NewFetcher creates a source fetcher from config
func NewFetcher(config *common.FetcherConfig, logger arbor.ILogger) *Fetcher {
	client := resty.New()
	client.SetHeader("User-Agent", config.UserAgent)
	client.SetHeader("Accept-Language", "en-US,en;q=0.9")
	client.SetTimeout(common.ParseDurationOr(config.Timeout, 30*time.Second))
	client.SetRedirectPolicy(resty.FlexibleRedirectPolicy(5))

	tempDir := filepath.Join(os.TempDir(), "merx-pdf")
	os.MkdirAll(tempDir, 0755)

	return &Fetcher{
		client:      client,
		logger:      logger,
		tempDir:     tempDir,
		maxBodySize: config.MaxBodySize,
	}
}

// Fetch retrieves the item's source and returns it in a form the
// enrichment provider can consume.
func (f *Fetcher) Fetch(ctx context.Context, item *models.WorkItem) (*interfaces.SourceContent, error) {
	resp, err := f.client.R().SetContext(ctx).Get(item.SourceURL)
	if err != nil {
		return nil, classifyTransportError(err)
	}

	if err := classifyStatus(resp.StatusCode()); err != nil {
		f.logger.Warn().
			Str("url", item.SourceURL).
			Int("status_code", resp.StatusCode()).
			Msg("Source fetch returned error status")
		return nil, err
	}

	body := resp.Body()
	if len(body) == 0 {
		return nil, interfaces.NewEnrichmentError(interfaces.ErrKindInvalidInput,
			fmt.Sprintf("empty response body from %s", item.SourceURL), nil)
	}
	if f.maxBodySize > 0 && len(body) > f.maxBodySize {
		return nil, interfaces.NewEnrichmentError(interfaces.ErrKindInvalidInput,
			fmt.Sprintf("response body from %s exceeds %d bytes", item.SourceURL, f.maxBodySize), nil)
	}

	switch item.SourceKind {
	case models.SourceKindPDF:
		return f.preparePDF(item.SourceURL, body)
	default:
		return f.prepareHTML(item.SourceURL, body)
	}
}

// prepareHTML extracts the main content of an HTML page and converts
// it to markdown.
func (f *Fetcher) prepareHTML(sourceURL string, body []byte) (*interfaces.SourceContent, error) {
	title, cleanedHTML, err := extractMainContent(string(body))
	if err != nil {
		return nil, interfaces.NewEnrichmentError(interfaces.ErrKindInvalidInput,
			fmt.Sprintf("failed to parse HTML from %s", sourceURL), err)
	}

	mdConverter := md.NewConverter(sourceURL, true, nil)
	markdown, err := mdConverter.ConvertString(cleanedHTML)
	if err != nil {
		return nil, interfaces.NewEnrichmentError(interfaces.ErrKindInvalidInput,
			fmt.Sprintf("failed to convert HTML to markdown from %s", sourceURL), err)
	}

	markdown = strings.TrimSpace(markdown)
	if markdown == "" {
		return nil, interfaces.NewEnrichmentError(interfaces.ErrKindInvalidInput,
			fmt.Sprintf("no usable content at %s", sourceURL), nil)
	}

	f.logger.Debug().
		Str("url", sourceURL).
		Int("markdown_bytes", len(markdown)).
		Msg("Fetched HTML source")

	return &interfaces.SourceContent{
		Title:    title,
		Markdown: markdown,
	}, nil
}

// preparePDF validates the PDF bytes and records the page count.
func (f *Fetcher) preparePDF(sourceURL string, body []byte) (*interfaces.SourceContent, error) {
	pageCount, err := f.validatePDF(body)
	if err != nil {
		return nil, interfaces.NewEnrichmentError(interfaces.ErrKindInvalidInput,
			fmt.Sprintf("invalid PDF at %s", sourceURL), err)
	}

	f.logger.Debug().
		Str("url", sourceURL).
		Int("pages", pageCount).
		Int("bytes", len(body)).
		Msg("Fetched PDF source")

	return &interfaces.SourceContent{
		PDFData:   body,
		PageCount: pageCount,
	}, nil
}

// classifyStatus maps an HTTP status code to an enrichment error kind.
func classifyStatus(status int) error {
	switch {
	case status >= 200 && status < 300:
		return nil
	case status == http.StatusTooManyRequests:
		return interfaces.NewEnrichmentError(interfaces.ErrKindRateLimited,
			fmt.Sprintf("source rate limited (HTTP %d)", status), nil)
	case status >= 400 && status < 500:
		return interfaces.NewEnrichmentError(interfaces.ErrKindInvalidInput,
			fmt.Sprintf("source returned HTTP %d", status), nil)
	default:
		return interfaces.NewEnrichmentError(interfaces.ErrKindUnknown,
			fmt.Sprintf("source returned HTTP %d", status), nil)
	}
}

// classifyTransportError maps transport failures, treating deadline
// expiry as a timeout.
func classifyTransportError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) || isTimeout(err) {
		return interfaces.NewEnrichmentError(interfaces.ErrKindTimeout, "source fetch timed out", err)
	}
	if errors.Is(err, context.Canceled) {
		return err
	}
	return interfaces.NewEnrichmentError(interfaces.ErrKindUnknown, "source fetch failed", err)
}

func isTimeout(err error) bool {
	var netErr interface{ Timeout() bool }
	return errors.As(err, &netErr) && netErr.Timeout()
}
