package business

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"

	"github.com/Agurato/marquee/internal/model"
)

//go:generate mockgen -destination=mocks/mock_image_searcher.go -package=mocks . ImageSearcher

// ImageSearcher finds the path of the best image for a movie title.
// It returns model.ErrEmptyResult when nothing usable was found.
type ImageSearcher interface {
	SearchImagePath(ctx context.Context, title string) (string, error)
}

// Resolver resolves the image URL of movies, upgrading the catalog's own image with a
// third-party one when possible
type Resolver struct {
	searcher ImageSearcher
	store    MemoStore

	// Attempts for the same ID share one search
	group   singleflight.Group
	mu      sync.Mutex
	flights map[int]*flight

	imagesBaseURL string
	cdnURL        string
	size          string
}

// NewResolver creates a Resolver using store as its memo store.
// Fallback URLs are built as {imagesBaseURL}/images/{img} and upgraded ones as
// {cdnURL}/t/p/{size}{path}.
func NewResolver(searcher ImageSearcher, store MemoStore, imagesBaseURL, cdnURL, size string) *Resolver {
	return &Resolver{
		searcher:      searcher,
		store:         store,
		imagesBaseURL: strings.TrimRight(imagesBaseURL, "/"),
		cdnURL:        strings.TrimRight(cdnURL, "/"),
		size:          size,
		flights:       make(map[int]*flight),
	}
}

// flight is the search shared by the pending attempts of one movie.
// Its context is cancelled once no attempt waits for it anymore.
type flight struct {
	ctx     context.Context
	cancel  context.CancelFunc
	waiters int
}

// FallbackURL returns the URL of an image hosted by the catalog
func (r *Resolver) FallbackURL(img string) string {
	return r.imagesBaseURL + "/images/" + img
}

// UpgradedURL returns the URL of a third-party image from its path
func (r *Resolver) UpgradedURL(path string) string {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return r.cdnURL + "/t/p/" + r.size + path
}

// Resolve starts the resolution of the image of ref.
// A memoized URL is returned right away in a resolved attempt. Otherwise the attempt holds
// the fallback URL while the search runs in the background; cancelling ctx or calling
// Abort on the attempt abandons it.
func (r *Resolver) Resolve(ctx context.Context, ref model.MovieRef) *Attempt {
	fallback := r.FallbackURL(ref.Img)

	url, ok, err := r.store.Get(ctx, ref.ID)
	if err != nil {
		log.Warn().Err(err).Int("id", ref.ID).Msg("Could not read image memo")
	} else if ok {
		return newSettledAttempt(ref.ID, url, Resolved, nil)
	}

	if ref.Name == "" {
		return newSettledAttempt(ref.ID, fallback, Failed, model.ErrEmptyResult)
	}

	attemptCtx, cancel := context.WithCancel(ctx)
	attempt := newAttempt(ref.ID, fallback, cancel)
	stop := context.AfterFunc(attemptCtx, attempt.Abort)

	go func() {
		defer cancel()
		defer stop()
		r.search(attemptCtx, attempt, ref, fallback)
	}()

	return attempt
}

// ResolveURL resolves the image of ref and waits for the result.
// The returned URL is always displayable.
func (r *Resolver) ResolveURL(ctx context.Context, ref model.MovieRef) string {
	return r.Resolve(ctx, ref).Wait(ctx)
}

func (r *Resolver) search(ctx context.Context, attempt *Attempt, ref model.MovieRef, fallback string) {
	if ctx.Err() != nil {
		attempt.Abort()
		return
	}

	results, leave := r.join(ctx, ref)
	defer leave()
	var path string
	var err error
	select {
	case res := <-results:
		path, _ = res.Val.(string)
		err = res.Err
	case <-ctx.Done():
		attempt.Abort()
		return
	}
	if err == nil && path == "" {
		err = model.ErrEmptyResult
	}

	switch {
	case err == nil:
		upgraded := r.UpgradedURL(path)
		attempt.settle(ctx, Resolved, nil, func() (string, error) {
			return r.store.SetIfAbsent(ctx, ref.ID, upgraded)
		})
		log.Debug().Int("id", ref.ID).Str("url", attempt.URL()).Msg("Resolved image")
	case errors.Is(err, model.ErrAborted) || ctx.Err() != nil:
		attempt.Abort()
	case errors.Is(err, model.ErrEmptyResult):
		// There is nothing better than the fallback for this movie: do not look it up again
		attempt.settle(ctx, Failed, err, func() (string, error) {
			return r.store.SetIfAbsent(ctx, ref.ID, fallback)
		})
	default:
		log.Debug().Err(err).Int("id", ref.ID).Str("name", ref.Name).Msg("Could not resolve image")
		attempt.settle(ctx, Failed, err, nil)
	}
}

// join makes the caller wait for the search of ref, starting it if none is running.
// leave must be called once the caller stops waiting.
func (r *Resolver) join(ctx context.Context, ref model.MovieRef) (<-chan singleflight.Result, func()) {
	key := strconv.Itoa(ref.ID)

	r.mu.Lock()
	defer r.mu.Unlock()
	f, ok := r.flights[ref.ID]
	if !ok {
		flightCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
		f = &flight{ctx: flightCtx, cancel: cancel}
		r.flights[ref.ID] = f
	}
	f.waiters++
	results := r.group.DoChan(key, func() (any, error) {
		defer func() {
			r.mu.Lock()
			r.land(ref.ID, key, f)
			r.mu.Unlock()
		}()
		return r.searcher.SearchImagePath(f.ctx, ref.Name)
	})

	return results, func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		f.waiters--
		if f.waiters == 0 {
			f.cancel()
			r.land(ref.ID, key, f)
		}
	}
}

// land forgets f so the next attempt starts a new search. r.mu must be held.
func (r *Resolver) land(id int, key string, f *flight) {
	if r.flights[id] == f {
		delete(r.flights, id)
		r.group.Forget(key)
	}
}
