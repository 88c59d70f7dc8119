package render

import (
	"context"
	"log/slog"

	"github.com/vango-dev/progressive/pkg/vdom"
)

// RendererConfig configures a Renderer.
type RendererConfig struct {
	// Logger receives diagnostics such as duplicate child keys.
	// Defaults to slog.Default().
	Logger *slog.Logger

	// PoolSize is the number of idle transactions kept for reuse.
	// Defaults to DefaultPoolSize.
	PoolSize int

	// Checksum names the checksum algorithm, ChecksumAdler32 (default) or
	// ChecksumXXHash.
	Checksum string

	// Formatter turns props into attribute markup.
	// Defaults to DefaultFormatter.
	Formatter AttrFormatter

	// Validator checks element nesting. Defaults to NopValidator.
	Validator NestingValidator
}

// Renderer renders vdom trees to markup, either into one buffer or as a
// pull-driven stream of chunks.
//
// A Renderer is safe for concurrent use. Every render takes its own
// Transaction from the renderer's Pool.
type Renderer struct {
	config    RendererConfig
	logger    *slog.Logger
	formatter AttrFormatter
	validator NestingValidator
	pool      *Pool
	tags      tagCache
}

// NewRenderer creates a new Renderer with the given configuration.
func NewRenderer(config RendererConfig) *Renderer {
	if config.Logger == nil {
		config.Logger = slog.Default()
	}
	if config.Checksum == "" {
		config.Checksum = ChecksumAdler32
	}
	if config.Formatter == nil {
		config.Formatter = DefaultFormatter{}
	}
	if config.Validator == nil {
		config.Validator = NopValidator{}
	}
	return &Renderer{
		config:    config,
		logger:    config.Logger.With("component", "render"),
		formatter: config.Formatter,
		validator: config.Validator,
		pool:      NewPool(config.PoolSize, config.Checksum),
	}
}

// Pool returns the renderer's transaction pool.
func (r *Renderer) Pool() *Pool {
	return r.pool
}

// RenderToString renders node with id markers and embeds the checksum of
// the output in the root tag.
func (r *Renderer) RenderToString(node *vdom.VNode) (string, error) {
	return r.RenderToStringContext(context.Background(), node, false)
}

// RenderToStaticMarkup renders node without markers or checksum.
func (r *Renderer) RenderToStaticMarkup(node *vdom.VNode) (string, error) {
	return r.RenderToStringContext(context.Background(), node, true)
}

// RenderToStringContext renders node into a single string. ctx is passed to
// context-aware components and checked between children. On error no
// partial output is returned.
func (r *Renderer) RenderToStringContext(ctx context.Context, node *vdom.VNode, static bool) (string, error) {
	if !node.Valid() {
		return "", invalidElement(node)
	}

	tx := r.pool.Acquire(static)
	defer r.pool.Release(tx)

	m, err := r.mountRoot(ctx, tx, node)
	if err != nil {
		return "", err
	}
	if m.IsLazy() {
		if err := m.Sequence().drain(tx.Write); err != nil {
			return "", err
		}
	} else {
		tx.Write(m.String())
	}

	markup := tx.Flush()
	if !static {
		markup = AddChecksumToMarkup(markup, tx.Checksum())
	}
	return markup, nil
}

// mountRoot mounts node as the root of a new HTML container.
func (r *Renderer) mountRoot(ctx context.Context, tx *Transaction, node *vdom.VNode) (Markup, error) {
	inst, err := r.Instantiate(node)
	if err != nil {
		return Markup{}, err
	}
	return inst.Mount(ctx, tx, nil, &ContainerInfo{Namespace: NamespaceHTML})
}
