package infrastructure

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	tmdb "github.com/cyruzin/golang-tmdb"
	"github.com/rs/zerolog/log"

	"github.com/Agurato/marquee/internal/model"
)

// Image sizes used by the pages
const (
	BackdropSize = tmdb.Original
	BannerSize   = tmdb.W780
)

// TMDBImageURL is the default host of TMDB images
const TMDBImageURL = "https://image.tmdb.org"

type MetadataWrapper struct {
	client *tmdb.Client
}

// NewMetadataWrapper initializes a MetadataWrapper.
// If apiURL is not empty, requests are sent to this host instead of TMDB's.
func NewMetadataWrapper(tmdbAPIKey, apiURL string, timeout time.Duration) (*MetadataWrapper, error) {
	if tmdbAPIKey == "" {
		return nil, errors.New("missing TMDB API key")
	}
	client, err := tmdb.Init(tmdbAPIKey)
	if err != nil {
		return nil, err
	}

	httpClient := http.Client{
		Timeout: timeout,
	}
	if apiURL != "" {
		target, err := url.Parse(apiURL)
		if err != nil {
			return nil, fmt.Errorf("invalid TMDB API URL '%s': %w", apiURL, err)
		}
		httpClient.Transport = &hostRewriter{target: target, next: http.DefaultTransport}
		log.Info().Str("url", apiURL).Msg("Using alternate TMDB API host")
	}
	client.SetClientConfig(httpClient)

	return &MetadataWrapper{
		client: client,
	}, nil
}

type searchResult struct {
	path string
	err  error
}

// SearchImagePath searches a film by its title and returns the backdrop path of the first
// result, or its poster path if it has no backdrop.
// The TMDB client does not take a context: when ctx is done, model.ErrAborted is returned
// right away and the response is discarded once it arrives.
func (mw MetadataWrapper) SearchImagePath(ctx context.Context, title string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", model.ErrAborted
	}

	resultChan := make(chan searchResult, 1)
	go func() {
		path, err := mw.searchImagePath(title)
		resultChan <- searchResult{path: path, err: err}
	}()

	select {
	case <-ctx.Done():
		return "", model.ErrAborted
	case res := <-resultChan:
		return res.path, res.err
	}
}

func (mw MetadataWrapper) searchImagePath(title string) (string, error) {
	res, err := mw.client.GetSearchMovies(title, nil)
	if err != nil {
		return "", classifySearchError(err)
	}
	if res == nil || res.TotalResults == 0 || len(res.Results) == 0 {
		return "", model.ErrEmptyResult
	}

	first := res.Results[0]
	if first.BackdropPath != "" {
		return first.BackdropPath, nil
	}
	if first.PosterPath != "" {
		return first.PosterPath, nil
	}
	return "", model.ErrEmptyResult
}

func classifySearchError(err error) error {
	var (
		syntaxErr *json.SyntaxError
		typeErr   *json.UnmarshalTypeError
	)
	if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) {
		return fmt.Errorf("%w: %w", model.ErrDecode, err)
	}
	return fmt.Errorf("%w: %w", model.ErrNetwork, err)
}

// hostRewriter sends every request to another scheme and host
type hostRewriter struct {
	target *url.URL
	next   http.RoundTripper
}

func (hr *hostRewriter) RoundTrip(req *http.Request) (*http.Response, error) {
	rewritten := req.Clone(req.Context())
	rewritten.URL.Scheme = hr.target.Scheme
	rewritten.URL.Host = hr.target.Host
	rewritten.Host = hr.target.Host
	return hr.next.RoundTrip(rewritten)
}
