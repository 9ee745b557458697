package extractor

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/ryclabs/docpilot/internal/core/ports"
)

// Registry dispatches text extraction by file extension. Unsupported
// formats (images among them) return an error; callers treat that as
// "no text" and continue down their cascade.
type Registry struct {
	byExt map[string]ports.TextExtractor
}

func NewRegistry() *Registry {
	return &Registry{byExt: make(map[string]ports.TextExtractor)}
}

// Register binds extensions (with leading dot) to an extractor.
func (r *Registry) Register(ext ports.TextExtractor, extensions ...string) *Registry {
	for _, e := range extensions {
		r.byExt[strings.ToLower(e)] = ext
	}
	return r
}

func (r *Registry) Extract(ctx context.Context, path string) (string, error) {
	ext := strings.ToLower(filepath.Ext(path))
	impl, ok := r.byExt[ext]
	if !ok {
		return "", fmt.Errorf("no text extractor for %q", ext)
	}
	return impl.Extract(ctx, path)
}
