package session

import (
	"context"
	"time"
)

// WatchToken polls the durable store and invokes onCleared once when a
// previously-present token disappears, the analog of another tab logging the
// operator out. The poll stops when ctx is cancelled.
func (c *Context) WatchToken(ctx context.Context, interval time.Duration, onCleared func()) {
	if interval <= 0 {
		interval = time.Second
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		seen := c.Token(ctx) != ""
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				present := c.Token(ctx) != ""
				if seen && !present {
					onCleared()
					return
				}
				seen = present
			}
		}
	}()
}
