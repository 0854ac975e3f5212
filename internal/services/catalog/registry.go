package catalog

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/ternarybob/arbor"
)

// Registry holds category schemas keyed by normalized category name.
// Built-in schemas cover the standard bathroom and kitchen categories;
// LoadDir overlays schemas from YAML files, replacing built-ins with
// the same category name.
type Registry struct {
	schemas map[string]*CategorySchema
	mu      sync.RWMutex
	logger  arbor.ILogger
}

// NewRegistry creates a registry pre-populated with the built-in
// category schemas.
func NewRegistry(logger arbor.ILogger) *Registry {
	r := &Registry{
		schemas: make(map[string]*CategorySchema),
		logger:  logger,
	}
	for _, s := range builtinSchemas() {
		r.schemas[normalizeCategory(s.Category)] = s
	}
	return r
}

// LoadDir loads every .yaml/.yml file in dir as a category schema,
// overriding any built-in with the same category. A missing directory
// is not an error; the built-ins remain in effect.
func (r *Registry) LoadDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			r.logger.Debug().Str("dir", dir).Msg("Schema directory not found, using built-in schemas")
			return nil
		}
		return fmt.Errorf("failed to read schema directory: %w", err)
	}

	loaded := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if ext != ".yaml" && ext != ".yml" {
			continue
		}

		path := filepath.Join(dir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read schema file %s: %w", path, err)
		}

		schema, err := parseSchema(data)
		if err != nil {
			return fmt.Errorf("schema file %s: %w", path, err)
		}

		r.mu.Lock()
		r.schemas[normalizeCategory(schema.Category)] = schema
		r.mu.Unlock()
		loaded++

		r.logger.Debug().
			Str("category", schema.Category).
			Str("file", entry.Name()).
			Msg("Category schema loaded")
	}

	r.logger.Info().Int("count", loaded).Str("dir", dir).Msg("Category schemas loaded")
	return nil
}

// Get returns the schema for a category, or an error if the category
// is unknown.
func (r *Registry) Get(category string) (*CategorySchema, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	schema, ok := r.schemas[normalizeCategory(category)]
	if !ok {
		return nil, fmt.Errorf("unknown category: %s", category)
	}
	return schema, nil
}

// Has reports whether a category schema exists.
func (r *Registry) Has(category string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.schemas[normalizeCategory(category)]
	return ok
}

// Categories returns the known category names.
func (r *Registry) Categories() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.schemas))
	for _, s := range r.schemas {
		names = append(names, s.Category)
	}
	return names
}

func normalizeCategory(category string) string {
	return strings.ToLower(strings.TrimSpace(category))
}
