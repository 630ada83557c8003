package quickbase

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// RunQueries executes several queries concurrently. The client's throttle
// provides admission control, so results arrive in request order regardless
// of how the calls interleave. The first failure cancels the remaining
// queries.
func (c *Client) RunQueries(ctx context.Context, queries []QueryRequest, opts ...CallOption) ([]*QueryResponse, error) {
	g, ctx := errgroup.WithContext(ctx)
	out := make([]*QueryResponse, len(queries))
	for i, query := range queries {
		i, query := i, query
		g.Go(func() error {
			resp, err := c.RunQuery(ctx, query, opts...)
			if err != nil {
				return err
			}
			out[i] = resp
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
