package handlers

import (
	"context"
	"time"
)

// storeCtx bounds a persistence call. It derives from Background rather than
// the request context so a client disconnect never aborts an in-flight write.
func storeCtx(timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), timeout)
}
