package graphql

import (
	"errors"
	"sync"
)

// DefaultCancelMessage is the reason of a token canceled without one.
const DefaultCancelMessage = "canceled"

// Cancel is the error a request fails with when its CancelToken fires.
type Cancel struct {
	Message string
}

func (c *Cancel) Error() string {
	return c.Message
}

// IsCancel reports whether err was caused by a CancelToken.
func IsCancel(err error) bool {
	var c *Cancel
	return errors.As(err, &c)
}

// CancelFunc cancels the token it was created with. Only the first call
// has an effect.
type CancelFunc func(message string)

// CancelToken lets a caller abort requests it has already started.
// A token may be shared by several requests.
type CancelToken struct {
	once   sync.Once
	done   chan struct{}
	reason *Cancel
}

// NewCancelToken returns a token and passes its cancel function to
// executor.
func NewCancelToken(executor func(cancel CancelFunc)) *CancelToken {
	t := &CancelToken{done: make(chan struct{})}
	executor(t.cancel)
	return t
}

// CancelTokenSource returns a new token together with its cancel function.
func CancelTokenSource() (*CancelToken, CancelFunc) {
	var cancel CancelFunc
	token := NewCancelToken(func(c CancelFunc) {
		cancel = c
	})
	return token, cancel
}

func (t *CancelToken) cancel(message string) {
	t.once.Do(func() {
		if message == "" {
			message = DefaultCancelMessage
		}
		t.reason = &Cancel{Message: message}
		close(t.done)
	})
}

// Done is closed once the token is canceled.
func (t *CancelToken) Done() <-chan struct{} {
	return t.done
}

// Reason returns the cancellation, or nil while the token is live.
func (t *CancelToken) Reason() *Cancel {
	select {
	case <-t.done:
		return t.reason
	default:
		return nil
	}
}

// ThrowIfRequested returns the cancellation when the token has fired.
func (t *CancelToken) ThrowIfRequested() error {
	if r := t.Reason(); r != nil {
		return r
	}
	return nil
}
