package srv

import "context"

// cleanupService wraps a teardown function as a Service with no start-up
// work, so resource closers participate in the normal shutdown order.
type cleanupService struct {
	close func() error
}

// NewCleanup registers fn to run at shutdown.
func NewCleanup(fn func() error) Service {
	return &cleanupService{close: fn}
}

func (c *cleanupService) Start(ctx context.Context) error {
	return nil
}

func (c *cleanupService) Shutdown(ctx context.Context) error {
	if c.close == nil {
		return nil
	}
	return c.close()
}
