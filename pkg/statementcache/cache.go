// Package statementcache memoizes compiled GraphQL documents.
//
// Only successful compiles are stored. A cache belongs to the compiler it
// is injected into; sharing one between compilers is allowed since keys
// cover everything that determines the document text.
package statementcache

import (
	"context"
	"sync"

	"github.com/miniprog/graphql-request/internal/document"
)

// Cache stores compiled documents by key.
type Cache interface {
	Get(ctx context.Context, key string) (*document.Document, bool)
	Set(ctx context.Context, key string, doc *document.Document)
}

// Memory is an in-process Cache. Entries live as long as the cache.
// Documents are copied in and out, so callers may modify what they get.
type Memory struct {
	mu      sync.RWMutex
	entries map[string]*document.Document
}

var _ Cache = (*Memory)(nil)

func NewMemory() *Memory {
	return &Memory{entries: make(map[string]*document.Document)}
}

func (m *Memory) Get(_ context.Context, key string) (*document.Document, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	doc, ok := m.entries[key]
	if !ok {
		return nil, false
	}
	return doc.Clone(), true
}

func (m *Memory) Set(_ context.Context, key string, doc *document.Document) {
	if doc == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = doc.Clone()
}

// Len returns the number of cached documents.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

// Reset drops every entry.
func (m *Memory) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = make(map[string]*document.Document)
}
