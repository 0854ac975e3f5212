package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
)

func TestNewRegistry_Builtins(t *testing.T) {
	registry := NewRegistry(arbor.NewLogger())

	for _, category := range []string{"sinks", "taps", "toilets", "baths"} {
		assert.True(t, registry.Has(category), "expected built-in schema for %s", category)

		schema, err := registry.Get(category)
		require.NoError(t, err)
		require.NoError(t, schema.Validate(), "built-in schema %s should be valid", category)
	}

	assert.False(t, registry.Has("garden-furniture"))
	_, err := registry.Get("garden-furniture")
	assert.Error(t, err, "unknown category should not resolve")
}

func TestRegistry_CategoryLookupIsCaseInsensitive(t *testing.T) {
	registry := NewRegistry(arbor.NewLogger())

	for _, name := range []string{"Sinks", "SINKS", "  sinks "} {
		assert.True(t, registry.Has(name), "lookup %q should match the sinks schema", name)
	}
}

func TestRegistry_LoadDir(t *testing.T) {
	dir := t.TempDir()

	override := `category: sinks
display: Kitchen Sinks
tone: Technical and direct.
attributes:
  - name: Bowl configuration
    required: true
  - name: Overall width
    unit: mm
`
	extra := `category: showers
attributes:
  - name: Spray patterns
  - name: WELS rating
    required: true
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "sinks.yaml"), []byte(override), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "showers.yml"), []byte(extra), 0644))
	// Non-schema files are skipped
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignore me"), 0644))

	registry := NewRegistry(arbor.NewLogger())
	require.NoError(t, registry.LoadDir(dir))

	// The file overrides the built-in
	sinks, err := registry.Get("sinks")
	require.NoError(t, err)
	assert.Equal(t, "Kitchen Sinks", sinks.Display)
	assert.Len(t, sinks.Attributes, 2)

	assert.True(t, registry.Has("showers"), "new category from the schema dir")
	assert.True(t, registry.Has("taps"), "built-ins not overridden stay available")
}

func TestRegistry_LoadDirMissingIsNotAnError(t *testing.T) {
	registry := NewRegistry(arbor.NewLogger())

	require.NoError(t, registry.LoadDir(filepath.Join(t.TempDir(), "does-not-exist")))
	assert.True(t, registry.Has("sinks"), "built-ins remain after a missing directory")
}

func TestRegistry_LoadDirRejectsBadSchema(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.yaml"), []byte("category: empty\nattributes: []\n"), 0644))

	registry := NewRegistry(arbor.NewLogger())
	assert.Error(t, registry.LoadDir(dir), "schema with no attributes should be rejected")
}

func TestCategorySchema_Validate(t *testing.T) {
	tests := []struct {
		name    string
		schema  CategorySchema
		wantErr bool
	}{
		{
			"valid",
			CategorySchema{Category: "sinks", Attributes: []Attribute{{Name: "Material"}}},
			false,
		},
		{
			"missing category",
			CategorySchema{Attributes: []Attribute{{Name: "Material"}}},
			true,
		},
		{
			"no attributes",
			CategorySchema{Category: "sinks"},
			true,
		},
		{
			"unnamed attribute",
			CategorySchema{Category: "sinks", Attributes: []Attribute{{Unit: "mm"}}},
			true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.schema.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestCategorySchema_PromptFragment(t *testing.T) {
	schema := &CategorySchema{
		Category: "taps",
		Display:  "Tapware",
		Tone:     "Confident and practical.",
		Attributes: []Attribute{
			{Name: "Finish", Description: "surface finish", Required: true},
			{Name: "Flow rate", Unit: "L/min"},
		},
	}

	fragment := schema.PromptFragment()

	assert.Contains(t, fragment, "Product category: Tapware")
	assert.Contains(t, fragment, "Tone: Confident and practical.")
	assert.Contains(t, fragment, "- Finish: surface finish [required]")
	assert.Contains(t, fragment, "- Flow rate (L/min)")
}
