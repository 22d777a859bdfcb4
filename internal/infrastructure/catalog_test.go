package infrastructure_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Agurato/marquee/internal/infrastructure"
	"github.com/Agurato/marquee/internal/model"
)

func newCatalogServer(t *testing.T) *infrastructure.CatalogClient {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/api/movies", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "action", r.URL.Query().Get("genre"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[
			{"id":1,"name":"Deadpool","img":"deadpool.jpg","rate":"8.0","length":"1h48","genres":["action","comedy"]},
			{"id":2,"name":"Up","img":"up.jpg","rate":8.3,"length":"1h36","genres":["animation"]}
		]`))
	})
	mux.HandleFunc("/api/movies/1", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"id":1,"name":"Deadpool","img":"deadpool.jpg","description":"A mercenary.","rate":"8.0","genres":["action"]}`))
	})
	mux.HandleFunc("/api/movies/3", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	mux.HandleFunc("/api/movies/4", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"id":`))
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	return infrastructure.NewCatalogClient(server.URL+"/api/movies/", 5*time.Second)
}

func TestFetchMovies(t *testing.T) {
	cc := newCatalogServer(t)

	movies, err := cc.FetchMovies(context.Background(), url.Values{"genre": {"action"}})
	require.NoError(t, err)
	require.Len(t, movies, 2)
	assert.Equal(t, "Deadpool", movies[0].Name)
	assert.Equal(t, model.Rating(8), movies[0].Rate)
	assert.Equal(t, []string{"action", "comedy"}, movies[0].Genres)
	assert.Equal(t, 2, movies[1].ID)
}

func TestFetchMovie(t *testing.T) {
	cc := newCatalogServer(t)
	ctx := context.Background()

	movie, err := cc.FetchMovie(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "A mercenary.", movie.Description)

	_, err = cc.FetchMovie(ctx, 2)
	assert.ErrorIs(t, err, model.ErrNotFound)

	_, err = cc.FetchMovie(ctx, 3)
	assert.ErrorContains(t, err, "500")

	_, err = cc.FetchMovie(ctx, 4)
	assert.ErrorContains(t, err, "decode response")
}
