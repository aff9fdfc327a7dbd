package pipeline

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/couchcryptid/traffic-volume-dashboard/internal/domain"
)

type projected struct {
	point domain.Point
	err   error
}

// reproject projects each record's geometry across the configured workers.
// Workers own disjoint index ranges, so results keep input order without
// locking. Records whose geometry fails are dropped and counted; only
// context cancellation is returned as an error.
func (p *Pipeline) reproject(ctx context.Context, records []domain.RawRecord) ([]domain.Observation, int, error) {
	if len(records) == 0 {
		return nil, 0, ctx.Err()
	}

	results := make([]projected, len(records))
	chunk := (len(records) + p.opts.Workers - 1) / p.opts.Workers

	g, gctx := errgroup.WithContext(ctx)
	for start := 0; start < len(records); start += chunk {
		end := min(start+chunk, len(records))
		g.Go(func() error {
			for i := start; i < end; i++ {
				if (i-start)%1024 == 0 && gctx.Err() != nil {
					return gctx.Err()
				}
				pt, err := p.projector.Project(records[i].WktGeom)
				results[i] = projected{point: pt, err: err}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, 0, err
	}

	observations := make([]domain.Observation, 0, len(records))
	dropped := 0
	for i, r := range records {
		if err := results[i].err; err != nil {
			dropped++
			p.logger.Debug("geometry dropped", "line", r.Line, "error", err)
			continue
		}
		observations = append(observations, domain.Observation{
			Year:   *r.Year,
			Hour:   *r.Hour,
			Point:  results[i].point,
			Volume: r.Volume,
		})
	}
	return observations, dropped, nil
}
