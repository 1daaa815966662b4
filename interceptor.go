package graphql

import "sync"

// Interceptor is one pair of handlers of a chain. Fulfilled receives the
// value when the previous step succeeded; Rejected receives the error
// otherwise. A nil handler passes its input through.
type Interceptor[T any] struct {
	Fulfilled func(T) (T, error)
	Rejected  func(error) (T, error)
}

// InterceptorManager holds the interceptors of one chain. Ejected
// interceptors keep their slot so that ids stay valid.
type InterceptorManager[T any] struct {
	mu       sync.RWMutex
	handlers []*Interceptor[T]
}

// Use registers an interceptor and returns the id that ejects it.
func (m *InterceptorManager[T]) Use(fulfilled func(T) (T, error), rejected func(error) (T, error)) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers = append(m.handlers, &Interceptor[T]{Fulfilled: fulfilled, Rejected: rejected})
	return len(m.handlers) - 1
}

// Eject removes the interceptor registered under id.
func (m *InterceptorManager[T]) Eject(id int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if id >= 0 && id < len(m.handlers) {
		m.handlers[id] = nil
	}
}

// ForEach calls fn for every registered interceptor in registration order.
func (m *InterceptorManager[T]) ForEach(fn func(*Interceptor[T])) {
	for _, h := range m.snapshot() {
		fn(h)
	}
}

func (m *InterceptorManager[T]) snapshot() []*Interceptor[T] {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*Interceptor[T], 0, len(m.handlers))
	for _, h := range m.handlers {
		if h != nil {
			out = append(out, h)
		}
	}
	return out
}

// apply runs one step of a chain. A missing handler passes the value or
// the error through.
func (h *Interceptor[T]) apply(v T, err error) (T, error) {
	if err != nil {
		if h.Rejected == nil {
			return v, err
		}
		return h.Rejected(err)
	}
	if h.Fulfilled == nil {
		return v, nil
	}
	return h.Fulfilled(v)
}
