package business

import (
	"context"
	"errors"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"

	"github.com/Agurato/marquee/internal/model"
)

const DefaultRevalidate = 60 * time.Second

// revalidation is detached from the request that triggered it
const revalidateTimeout = 30 * time.Second

type CatalogFetcher interface {
	FetchMovies(ctx context.Context, params url.Values) ([]model.Movie, error)
	FetchMovie(ctx context.Context, id int) (*model.Movie, error)
}

// CatalogManager serves the catalog with stale-while-revalidate semantics: a list older than
// the revalidation interval is still served while a fresh one is fetched in the background
type CatalogManager struct {
	CatalogFetcher

	revalidate time.Duration
	now        func() time.Time

	mu           sync.Mutex
	movies       []model.Movie
	fetchedAt    time.Time
	lastErr      error
	revalidating bool
	wg           sync.WaitGroup

	// Concurrent requests on an empty cache share the first fetch
	loads singleflight.Group
}

func NewCatalogManager(cf CatalogFetcher, revalidate time.Duration) *CatalogManager {
	if revalidate <= 0 {
		revalidate = DefaultRevalidate
	}
	return &CatalogManager{
		CatalogFetcher: cf,
		revalidate:     revalidate,
		now:            time.Now,
	}
}

// GetMovies returns the catalog.
// err is only set when there is nothing to show. stale is true when the last refresh
// failed and an older list is served instead.
func (cm *CatalogManager) GetMovies(ctx context.Context) (movies []model.Movie, stale bool, err error) {
	cm.mu.Lock()
	if cm.movies == nil {
		cm.mu.Unlock()
		if err := cm.load(ctx); err != nil {
			return nil, false, err
		}
		cm.mu.Lock()
	}
	defer cm.mu.Unlock()

	if cm.now().Sub(cm.fetchedAt) >= cm.revalidate && !cm.revalidating {
		cm.revalidating = true
		cm.wg.Add(1)
		go cm.revalidateInBackground()
	}
	return cm.movies, cm.lastErr != nil, nil
}

// Refresh fetches the catalog and replaces the cached list on success
func (cm *CatalogManager) Refresh(ctx context.Context) error {
	movies, err := cm.CatalogFetcher.FetchMovies(ctx, url.Values{})
	cm.mu.Lock()
	defer cm.mu.Unlock()
	if err != nil {
		cm.lastErr = err
		if cm.movies != nil {
			// Retry at the next revalidation interval
			cm.fetchedAt = cm.now()
		}
		return err
	}
	if movies == nil {
		movies = []model.Movie{}
	}
	cm.movies = movies
	cm.fetchedAt = cm.now()
	cm.lastErr = nil
	return nil
}

// load fills the empty cache. The shared fetch is not bound to any single request.
func (cm *CatalogManager) load(ctx context.Context) error {
	results := cm.loads.DoChan("catalog", func() (any, error) {
		cm.mu.Lock()
		loaded := cm.movies != nil
		cm.mu.Unlock()
		if loaded {
			return nil, nil
		}
		loadCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), revalidateTimeout)
		defer cancel()
		return nil, cm.Refresh(loadCtx)
	})
	select {
	case res := <-results:
		return res.Err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Wait blocks until background revalidations are over
func (cm *CatalogManager) Wait() {
	cm.wg.Wait()
}

func (cm *CatalogManager) revalidateInBackground() {
	defer cm.wg.Done()
	ctx, cancel := context.WithTimeout(context.Background(), revalidateTimeout)
	defer cancel()

	if err := cm.Refresh(ctx); err != nil {
		log.Warn().Err(err).Msg("Could not revalidate the catalog, serving stale data")
	} else {
		log.Debug().Msg("Catalog revalidated")
	}
	cm.mu.Lock()
	cm.revalidating = false
	cm.mu.Unlock()
}

// GetMovie fetches a single movie, falling back to the cached catalog when the API
// cannot be reached
func (cm *CatalogManager) GetMovie(ctx context.Context, id int) (*model.Movie, error) {
	movie, err := cm.CatalogFetcher.FetchMovie(ctx, id)
	if err == nil {
		return movie, nil
	}
	if errors.Is(err, model.ErrNotFound) {
		return nil, err
	}
	cm.mu.Lock()
	defer cm.mu.Unlock()
	for _, m := range cm.movies {
		if m.ID == id {
			log.Warn().Err(err).Int("id", id).Msg("Could not fetch movie, using the cached catalog")
			return &m, nil
		}
	}
	return nil, err
}

// SelectedOrFirst returns the movie whose ID is selectedID, or the first movie when there
// is no such movie. ok is false for an empty list.
func SelectedOrFirst(movies []model.Movie, selectedID string) (movie model.Movie, ok bool) {
	if len(movies) == 0 {
		return model.Movie{}, false
	}
	if id, err := strconv.Atoi(selectedID); err == nil {
		for _, m := range movies {
			if m.ID == id {
				return m, true
			}
		}
	}
	return movies[0], true
}
