package scrape

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/google/uuid"
	"github.com/pdfcpu/pdfcpu/pkg/api"
)

// extractMainContent parses an HTML document, strips boilerplate, and
// returns the page title plus the HTML of the main content region.
// Prefers a main/article container when one exists.
func extractMainContent(html string) (title string, cleanedHTML string, err error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", "", err
	}

	title = strings.TrimSpace(doc.Find("title").First().Text())

	body := doc.Find("body")
	if body.Length() == 0 {
		return "", "", fmt.Errorf("no body tag found in HTML")
	}

	// Prefer main content container when present
	content := body
	mainContent := body.Find("main, article, [role=main]").First()
	if mainContent.Length() > 0 {
		content = mainContent
	}

	// Remove boilerplate elements
	content.Find("script, style, noscript").Remove()
	content.Find("nav, header, footer, aside").Remove()
	content.Find("[class*=promo], [class*=sidebar], [class*=cookie]").Remove()

	cleanedHTML, err = content.Html()
	if err != nil {
		return "", "", err
	}

	return title, cleanedHTML, nil
}

// validatePDF checks the bytes are a readable PDF and returns the page
// count. pdfcpu works on files, so the bytes go through a temp file.
func (f *Fetcher) validatePDF(data []byte) (int, error) {
	tempFile := filepath.Join(f.tempDir, fmt.Sprintf("fetch_%s.pdf", uuid.New().String()))
	if err := os.WriteFile(tempFile, data, 0644); err != nil {
		return 0, fmt.Errorf("failed to write temp PDF file: %w", err)
	}
	defer os.Remove(tempFile)

	pdfCtx, err := api.ReadContextFile(tempFile)
	if err != nil {
		return 0, fmt.Errorf("failed to read PDF: %w", err)
	}

	return pdfCtx.PageCount, nil
}
