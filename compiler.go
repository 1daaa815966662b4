package graphql

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/miniprog/graphql-request/internal/document"
	"github.com/miniprog/graphql-request/internal/log"
	"github.com/miniprog/graphql-request/internal/shorthand"
	"github.com/miniprog/graphql-request/pkg/statementcache"
)

// Compiler turns batches of shorthand strings into GraphQL documents.
// A Compiler is safe for concurrent use when its statement cache is.
type Compiler struct {
	cache   statementcache.Cache
	custom  bool
	metrics *Metrics
}

// CompilerOption configures a Compiler.
type CompilerOption func(*Compiler)

// WithStatementCache sets the store compiled documents are kept in.
// A nil cache disables caching.
func WithStatementCache(cache statementcache.Cache) CompilerOption {
	return func(c *Compiler) {
		c.cache = cache
	}
}

// WithCustom makes the compiler send query strings verbatim unless a
// request says otherwise.
func WithCustom(custom bool) CompilerOption {
	return func(c *Compiler) {
		c.custom = custom
	}
}

// WithCompilerMetrics records cache hits, misses and failures on m.
func WithCompilerMetrics(m *Metrics) CompilerOption {
	return func(c *Compiler) {
		c.metrics = m
	}
}

// NewCompiler returns a compiler backed by an in-memory statement cache.
func NewCompiler(opts ...CompilerOption) *Compiler {
	c := &Compiler{cache: statementcache.NewMemory()}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Compilation is the output of one compile.
type Compilation struct {
	Document *Document
	// Variables holds the runtime values keyed by scoped variable name.
	Variables map[string]any
	// Operations holds the parsed descriptors. It is empty when the
	// document came from the cache or the request was sent verbatim.
	Operations []*Operation
	Cached     bool
	Custom     bool
}

// RequestBody is the GraphQL-over-HTTP POST body.
type RequestBody struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

// Body is the request body of the compilation. Empty variables are
// omitted.
func (c *Compilation) Body() RequestBody {
	return RequestBody{
		Query:     c.Document.Text,
		Variables: c.Variables,
	}
}

// Compile builds the document of req. Nothing is cached when compiling
// fails.
func (c *Compiler) Compile(ctx context.Context, kind OperationType, req *Request) (*Compilation, error) {
	if req == nil || len(req.Query) == 0 {
		c.metrics.recordCompileFailure(failureKind(ErrInvalidQueryShape))
		return nil, ErrInvalidQueryShape
	}
	if !kind.Valid() {
		return nil, fmt.Errorf("unsupported operation type %q", kind)
	}

	custom := c.custom
	if req.Custom != nil {
		custom = *req.Custom
	}
	if custom {
		return &Compilation{
			Document: &Document{
				OperationType: kind,
				Text:          strings.Join(req.Query, "\n"),
			},
			Variables: map[string]any{},
			Custom:    true,
		}, nil
	}

	logger := log.FromContext(ctx)

	var key string
	if c.cache != nil {
		k, err := statementcache.Key(kind, req.Query, req.Selection)
		if err != nil {
			logger.V(1).Info("compiling without statement cache", "error", err.Error())
		} else {
			key = k
		}
	}

	if key != "" {
		if doc, ok := c.cache.Get(ctx, key); ok {
			c.metrics.recordCache(true)
			logger.V(2).Info("statement cache hit", "operation", doc.OperationName)
			return &Compilation{
				Document:  doc,
				Variables: document.ScopeByName(doc.Operations, req.Variables),
				Cached:    true,
			}, nil
		}
		c.metrics.recordCache(false)
	}

	ops, err := shorthand.ParseAll(req.Query, kind, req.Selection, req.Variables)
	if err != nil {
		c.metrics.recordCompileFailure(failureKind(err))
		return nil, err
	}
	doc, err := document.Assemble(ops)
	if err != nil {
		c.metrics.recordCompileFailure(failureKind(err))
		return nil, err
	}

	if key != "" {
		c.cache.Set(ctx, key, doc)
	}

	return &Compilation{
		Document:   doc,
		Variables:  document.Scope(ops),
		Operations: ops,
	}, nil
}

// withCustom returns a copy of c, sharing its cache, with a new bypass
// default.
func (c *Compiler) withCustom(custom bool) *Compiler {
	clone := *c
	clone.custom = custom
	return &clone
}

func (c *Compiler) withMetrics(m *Metrics) *Compiler {
	clone := *c
	clone.metrics = m
	return &clone
}

// failureKind labels a compile error for metrics.
func failureKind(err error) string {
	switch {
	case errors.Is(err, ErrInvalidQueryShape):
		return "invalid_query_shape"
	case errors.Is(err, ErrMissingOperationName):
		return "missing_operation_name"
	case errors.Is(err, ErrMissingVariableType):
		return "missing_variable_type"
	case errors.Is(err, ErrSyntax):
		return "syntax"
	default:
		return "assemble"
	}
}
