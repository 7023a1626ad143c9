package parsers

import (
	"sort"
	"strings"
	"sync"

	"github.com/harvora/context-core/internal/core/ports/driven"
	"github.com/harvora/context-core/internal/parsers/docx"
	"github.com/harvora/context-core/internal/parsers/pdf"
)

// Verify interface compliance
var _ driven.ParserRegistry = (*Registry)(nil)

// Registry implements ParserRegistry with exact MIME type lookup.
// The last parser registered for a type wins.
type Registry struct {
	mu      sync.RWMutex
	parsers map[string]driven.DocumentParser
}

// NewRegistry creates an empty parser registry.
func NewRegistry() *Registry {
	return &Registry{
		parsers: make(map[string]driven.DocumentParser),
	}
}

// NewDefaultRegistry creates a registry with the built-in PDF and DOCX
// parsers registered.
func NewDefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(pdf.New())
	r.Register(docx.New())
	return r
}

// Register adds a parser for each of its MIME types.
func (r *Registry) Register(parser driven.DocumentParser) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, mt := range parser.MimeTypes() {
		r.parsers[normaliseMIMEType(mt)] = parser
	}
}

// Get retrieves the parser for a MIME type.
// Returns nil if no parser is registered for the type.
func (r *Registry) Get(mimeType string) driven.DocumentParser {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.parsers[normaliseMIMEType(mimeType)]
}

// List returns all registered MIME types, sorted.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	types := make([]string, 0, len(r.parsers))
	for t := range r.parsers {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

// normaliseMIMEType lowercases and strips parameters such as charset.
func normaliseMIMEType(mimeType string) string {
	mimeType = strings.ToLower(strings.TrimSpace(mimeType))
	if i := strings.Index(mimeType, ";"); i >= 0 {
		mimeType = strings.TrimSpace(mimeType[:i])
	}
	return mimeType
}
