package sample

import "context"

// contextSource stops the wrapped source once ctx is done
type contextSource struct {
	Source
	ctx context.Context
	err error
}

// WithContext returns a Source that ends with ctx.Err() as soon as ctx is
// cancelled. Closing it closes src.
func WithContext(ctx context.Context, src Source) Source {
	return &contextSource{Source: src, ctx: ctx}
}

func (c *contextSource) Next() bool {
	if c.err != nil {
		return false
	}
	if err := c.ctx.Err(); err != nil {
		c.err = err
		return false
	}
	return c.Source.Next()
}

func (c *contextSource) Err() error {
	if c.err != nil {
		return c.err
	}
	return c.Source.Err()
}
