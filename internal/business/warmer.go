package business

import (
	"context"
	"sync/atomic"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/Agurato/marquee/internal/model"
)

const DefaultWarmConcurrency = 4

// Warmer resolves the images of a whole catalog ahead of the first page views
type Warmer struct {
	ImageResolver
	concurrency int
}

func NewWarmer(ir ImageResolver, concurrency int) *Warmer {
	if concurrency < 1 {
		concurrency = DefaultWarmConcurrency
	}
	return &Warmer{
		ImageResolver: ir,
		concurrency:   concurrency,
	}
}

// Warm resolves the image of every movie and returns how many of them are now memoized.
// It only fails when ctx is done before all resolutions are over.
func (w *Warmer) Warm(ctx context.Context, movies []model.Movie) (int, error) {
	var resolved atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(w.concurrency)
	for _, movie := range movies {
		ref := movie.Ref()
		g.Go(func() error {
			if gctx.Err() != nil {
				return gctx.Err()
			}
			attempt := w.ImageResolver.Resolve(gctx, ref)
			attempt.Wait(gctx)
			if attempt.State() == Resolved {
				resolved.Add(1)
			}
			return gctx.Err()
		})
	}
	if err := g.Wait(); err != nil {
		return int(resolved.Load()), err
	}
	log.Info().Int("movies", len(movies)).Int64("resolved", resolved.Load()).Msg("Images warmed up")
	return int(resolved.Load()), nil
}
