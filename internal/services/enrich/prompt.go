package enrich

import (
	"fmt"
	"strings"

	"github.com/merxlabs/merx/internal/models"
	"github.com/merxlabs/merx/internal/services/catalog"
)

const systemInstruction = `You are a product content specialist for a plumbing and bathroomware retailer.
You turn supplier product pages and spec sheets into accurate, well-structured catalog content.
Never invent specifications: if an attribute is not stated in the source, use "Not specified".
Respond with a single JSON object and nothing else. No markdown fences, no commentary.`

const responseShape = `Respond with JSON in exactly this shape:
{
  "title": "cleaned product title",
  "brand": "brand name or empty string",
  "sku": "supplier SKU/model code or empty string",
  "specs": { "attribute name": "value" },
  "description_markdown": "2-3 paragraph product description in markdown",
  "features": ["short feature bullet", "..."],
  "care_instructions": "care and cleaning guidance, or empty string",
  "faqs": [ { "question": "...", "answer": "..." } ]
}`

// buildPrompt assembles the enrichment prompt for an item from the
// category schema and the fetched source content. PDF sources carry
// their bytes separately; only the framing text is produced here.
func buildPrompt(item *models.WorkItem, schema *catalog.CategorySchema, markdown string) string {
	var b strings.Builder

	b.WriteString(schema.PromptFragment())
	b.WriteString("\n")

	if item.Supplier != "" {
		fmt.Fprintf(&b, "Supplier: %s\n", item.Supplier)
	}
	fmt.Fprintf(&b, "Source URL: %s\n\n", item.SourceURL)

	b.WriteString(responseShape)
	b.WriteString("\n\n")

	if markdown != "" {
		b.WriteString("Source content:\n\n")
		b.WriteString(markdown)
	} else {
		b.WriteString("The source document is attached. Use only its contents.")
	}

	return b.String()
}
