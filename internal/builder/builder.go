package builder

import (
	"github.com/specialistvlad/pipeprint/internal/deferred"
)

// BuildProjectDescription describes the build project in the blueprint.
const BuildProjectDescription = "Build, test and package to create deploy template"

// Option configures a Builder.
type Option func(*Builder)

// WithResolver replaces the parameter-store collaborator. The caller owns any
// template parameters the resolver declares; they are not attached to the
// blueprint.
func WithResolver(fn deferred.ResolveFunc) Option {
	return func(b *Builder) {
		b.resolve = fn
	}
}

// Builder builds pipeline blueprints. A Builder holds no per-build state and
// may be reused.
type Builder struct {
	resolve deferred.ResolveFunc
}

// New creates a Builder.
func New(opts ...Option) *Builder {
	b := &Builder{}
	for _, opt := range opts {
		opt(b)
	}
	return b
}
