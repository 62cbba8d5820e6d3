package normalisers

import (
	"context"
	"fmt"
	"mime"
	"net/url"
	"path"
	"sort"
	"strings"
	"sync"

	"github.com/custodia-labs/scheme-research/internal/core/domain"
	"github.com/custodia-labs/scheme-research/internal/core/ports/driven"
)

// Ensure Registry implements the interface.
var _ driven.NormaliserRegistry = (*Registry)(nil)

// Registry dispatches raw documents to normalisers by MIME type.
// Safe for concurrent use.
type Registry struct {
	mu     sync.RWMutex
	byMIME map[string][]driven.Normaliser
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{byMIME: make(map[string][]driven.Normaliser)}
}

// Register adds a normaliser for each MIME type it supports. Candidates for
// a type are kept in descending priority order; equal priorities keep
// registration order.
func (r *Registry) Register(n driven.Normaliser) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, mt := range n.SupportedMIMETypes() {
		list := append(r.byMIME[mt], n)
		sort.SliceStable(list, func(i, j int) bool {
			return list[i].Priority() > list[j].Priority()
		})
		r.byMIME[mt] = list
	}
}

// Normalise runs the best normaliser for raw.MIMEType. Parameters such as
// charset are ignored. Unknown types fail with ErrUnsupportedType.
func (r *Registry) Normalise(ctx context.Context, raw *domain.RawDocument) (*domain.LoadedDocument, error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}

	mt := BaseMIMEType(raw.MIMEType)

	r.mu.RLock()
	candidates := r.byMIME[mt]
	r.mu.RUnlock()

	if len(candidates) == 0 {
		return nil, fmt.Errorf("%w: no normaliser for %q", domain.ErrUnsupportedType, mt)
	}

	return candidates[0].Normalise(ctx, raw)
}

// SupportedMIMETypes returns all registered MIME types, sorted.
func (r *Registry) SupportedMIMETypes() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	types := make([]string, 0, len(r.byMIME))
	for mt := range r.byMIME {
		types = append(types, mt)
	}
	sort.Strings(types)
	return types
}

// BaseMIMEType strips parameters from a Content-Type value and lower-cases it.
func BaseMIMEType(contentType string) string {
	if mt, _, err := mime.ParseMediaType(contentType); err == nil {
		return mt
	}
	mt, _, _ := strings.Cut(contentType, ";")
	return strings.ToLower(strings.TrimSpace(mt))
}

// TitleFromURI derives a human-readable title from the last path segment of
// a URL or file path, falling back to the host for bare domains.
func TitleFromURI(uri string) string {
	name := uri
	host := ""
	if u, err := url.Parse(uri); err == nil && u.Host != "" {
		name = u.Path
		host = u.Host
	}

	name = path.Base(strings.TrimRight(name, "/"))
	if name == "." || name == "/" || name == "" {
		return host
	}

	if ext := path.Ext(name); ext != "" {
		name = strings.TrimSuffix(name, ext)
	}
	name = strings.ReplaceAll(name, "_", " ")
	name = strings.ReplaceAll(name, "-", " ")
	return name
}
