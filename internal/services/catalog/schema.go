package catalog

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Attribute describes one product attribute the enrichment provider is
// asked to extract for a category. Required attributes that cannot be
// found in the source are reported as "Not specified" rather than
// invented.
type Attribute struct {
	Name        string `yaml:"name" json:"name"`
	Description string `yaml:"description,omitempty" json:"description,omitempty"`
	Unit        string `yaml:"unit,omitempty" json:"unit,omitempty"`
	Required    bool   `yaml:"required,omitempty" json:"required,omitempty"`
}

// CategorySchema defines the attribute set and tone guidance for one
// product category.
type CategorySchema struct {
	Category   string      `yaml:"category" json:"category"`
	Display    string      `yaml:"display,omitempty" json:"display,omitempty"`
	Attributes []Attribute `yaml:"attributes" json:"attributes"`
	Tone       string      `yaml:"tone,omitempty" json:"tone,omitempty"`
}

// Validate checks the schema is usable.
func (s *CategorySchema) Validate() error {
	if strings.TrimSpace(s.Category) == "" {
		return fmt.Errorf("category name is required")
	}
	if len(s.Attributes) == 0 {
		return fmt.Errorf("category %s: at least one attribute is required", s.Category)
	}
	for i, attr := range s.Attributes {
		if strings.TrimSpace(attr.Name) == "" {
			return fmt.Errorf("category %s: attribute %d has no name", s.Category, i)
		}
	}
	return nil
}

// PromptFragment renders the schema as instructions for the enrichment
// prompt.
func (s *CategorySchema) PromptFragment() string {
	var b strings.Builder
	display := s.Display
	if display == "" {
		display = s.Category
	}
	fmt.Fprintf(&b, "Product category: %s\n", display)
	if s.Tone != "" {
		fmt.Fprintf(&b, "Tone: %s\n", s.Tone)
	}
	b.WriteString("Extract the following specification attributes:\n")
	for _, attr := range s.Attributes {
		fmt.Fprintf(&b, "- %s", attr.Name)
		if attr.Unit != "" {
			fmt.Fprintf(&b, " (%s)", attr.Unit)
		}
		if attr.Description != "" {
			fmt.Fprintf(&b, ": %s", attr.Description)
		}
		if attr.Required {
			b.WriteString(" [required]")
		}
		b.WriteString("\n")
	}
	return b.String()
}

func parseSchema(data []byte) (*CategorySchema, error) {
	var schema CategorySchema
	if err := yaml.Unmarshal(data, &schema); err != nil {
		return nil, fmt.Errorf("failed to parse schema: %w", err)
	}
	if err := schema.Validate(); err != nil {
		return nil, err
	}
	return &schema, nil
}
