package infrastructure

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/Agurato/marquee/internal/model"
)

// CatalogClient fetches movies from the catalog API
type CatalogClient struct {
	apiURL     string
	httpClient *http.Client
}

// NewCatalogClient creates a catalog client for the movies endpoint at apiURL
func NewCatalogClient(apiURL string, timeout time.Duration) *CatalogClient {
	return &CatalogClient{
		apiURL: strings.TrimRight(apiURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// FetchMovies returns the movies of the catalog, in the catalog's order
func (cc CatalogClient) FetchMovies(ctx context.Context, params url.Values) ([]model.Movie, error) {
	var movies []model.Movie
	if err := cc.get(ctx, cc.apiURL+"?"+params.Encode(), &movies); err != nil {
		return nil, err
	}
	return movies, nil
}

// FetchMovie returns a single movie from its ID
func (cc CatalogClient) FetchMovie(ctx context.Context, id int) (*model.Movie, error) {
	var movie model.Movie
	if err := cc.get(ctx, cc.apiURL+"/"+strconv.Itoa(id), &movie); err != nil {
		return nil, err
	}
	return &movie, nil
}

func (cc CatalogClient) get(ctx context.Context, url string, data any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := cc.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return model.ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("catalog API error: %s", resp.Status)
	}

	if err := json.NewDecoder(resp.Body).Decode(data); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
