package business

import (
	"context"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/Agurato/marquee/internal/model"
)

// ImageResolver starts image resolutions
type ImageResolver interface {
	Resolve(ctx context.Context, ref model.MovieRef) *Attempt
}

// Banner is a view displaying the image of one selected movie at a time.
// Selecting a movie aborts the resolution started by the previous selection, so a late
// response can never replace the image of the movie currently selected.
type Banner struct {
	ImageResolver

	mu      sync.Mutex
	current *Attempt
}

func NewBanner(ir ImageResolver) *Banner {
	return &Banner{
		ImageResolver: ir,
	}
}

// Select displays ref in the banner
func (b *Banner) Select(ctx context.Context, ref model.MovieRef) *Attempt {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.current != nil {
		b.current.Abort()
	}
	b.current = b.ImageResolver.Resolve(ctx, ref)
	return b.current
}

// Current returns the attempt of the selected movie, nil if nothing was selected
func (b *Banner) Current() *Attempt {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.current
}

// URL returns the image URL displayed by the banner
func (b *Banner) URL() string {
	if current := b.Current(); current != nil {
		return current.URL()
	}
	return ""
}

// Close aborts the pending resolution, if any
func (b *Banner) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.current != nil {
		b.current.Abort()
	}
}

// BannerRegistry holds a banner per browsing session. The least recently used banners are
// closed once size is exceeded.
type BannerRegistry struct {
	ImageResolver
	banners *lru.Cache[string, *Banner]
}

func NewBannerRegistry(ir ImageResolver, size int) (*BannerRegistry, error) {
	banners, err := lru.NewWithEvict[string, *Banner](size, func(_ string, b *Banner) {
		b.Close()
	})
	if err != nil {
		return nil, err
	}
	return &BannerRegistry{
		ImageResolver: ir,
		banners:       banners,
	}, nil
}

// Banner returns the banner of a session, creating it if needed
func (br *BannerRegistry) Banner(sessionID string) *Banner {
	if b, ok := br.banners.Get(sessionID); ok {
		return b
	}
	b := NewBanner(br.ImageResolver)
	if previous, ok, _ := br.banners.PeekOrAdd(sessionID, b); ok {
		return previous
	}
	return b
}

// Len returns the number of live banners
func (br *BannerRegistry) Len() int {
	return br.banners.Len()
}
