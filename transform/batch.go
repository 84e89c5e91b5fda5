package transform

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/reoring/reshape"
)

// ApplyBatch applies m to every item with up to workers applications in
// flight (workers <= 0 means one per item). Each application builds its own
// source and target instances, so functions passed to Do must be safe for
// concurrent use. Results keep item order; the first failure cancels the
// items not yet started and is returned.
func (m *Mapping) ApplyBatch(ctx context.Context, items []any, workers int) ([]reshape.Instance, error) {
	out := make([]reshape.Instance, len(items))
	g, ctx := errgroup.WithContext(ctx)
	if workers > 0 {
		g.SetLimit(workers)
	}
	for i, it := range items {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			inst, err := m.Apply(it)
			if err != nil {
				return err
			}
			out[i] = inst
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
