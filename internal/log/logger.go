package log

import (
	"context"

	"github.com/go-logr/logr"
)

func FromContext(ctx context.Context) logr.Logger {
	return logr.FromContextOrDiscard(ctx)
}

func WithLogger(ctx context.Context, logger logr.Logger) context.Context {
	return logr.NewContext(ctx, logger)
}

// Or returns the logger carried by ctx when one is present, and fallback
// otherwise.
func Or(ctx context.Context, fallback logr.Logger) logr.Logger {
	if logger, err := logr.FromContext(ctx); err == nil {
		return logger
	}
	return fallback
}
