package infrastructure

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Agurato/marquee/internal/model"
)

func newSearchServer(t *testing.T, handler http.HandlerFunc) *MetadataWrapper {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	mw, err := NewMetadataWrapper("test-key", server.URL, 5*time.Second)
	require.NoError(t, err)
	return mw
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}

func TestSearchImagePathBackdrop(t *testing.T) {
	mw := newSearchServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/3/search/movie", r.URL.Path)
		assert.Equal(t, "test-key", r.URL.Query().Get("api_key"))
		assert.Equal(t, "Deadpool", r.URL.Query().Get("query"))
		writeJSON(w, http.StatusOK, `{"page":1,"total_pages":1,"total_results":2,"results":[
			{"id":293660,"title":"Deadpool","backdrop_path":"/abc.jpg","poster_path":"/poster.jpg"},
			{"id":383498,"title":"Deadpool 2","backdrop_path":"/other.jpg"}
		]}`)
	})

	path, err := mw.SearchImagePath(context.Background(), "Deadpool")
	require.NoError(t, err)
	assert.Equal(t, "/abc.jpg", path)
}

func TestSearchImagePathPoster(t *testing.T) {
	mw := newSearchServer(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"page":1,"total_pages":1,"total_results":1,"results":[
			{"id":1,"title":"Up","backdrop_path":null,"poster_path":"/poster.jpg"}
		]}`)
	})

	path, err := mw.SearchImagePath(context.Background(), "Up")
	require.NoError(t, err)
	assert.Equal(t, "/poster.jpg", path)
}

func TestSearchImagePathEmpty(t *testing.T) {
	t.Run("NoResults", func(t *testing.T) {
		mw := newSearchServer(t, func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, `{"page":1,"total_pages":0,"total_results":0,"results":[]}`)
		})
		_, err := mw.SearchImagePath(context.Background(), "Nothing")
		assert.ErrorIs(t, err, model.ErrEmptyResult)
	})

	t.Run("NoPath", func(t *testing.T) {
		mw := newSearchServer(t, func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, `{"page":1,"total_pages":1,"total_results":1,"results":[{"id":1,"title":"Blank"}]}`)
		})
		_, err := mw.SearchImagePath(context.Background(), "Blank")
		assert.ErrorIs(t, err, model.ErrEmptyResult)
	})
}

func TestSearchImagePathErrorStatus(t *testing.T) {
	mw := newSearchServer(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnauthorized, `{"status_code":7,"status_message":"Invalid API key: You must be granted a valid key.","success":false}`)
	})

	_, err := mw.SearchImagePath(context.Background(), "Deadpool")
	assert.ErrorIs(t, err, model.ErrNetwork)
}

func TestSearchImagePathUnreachable(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	server.Close()
	mw, err := NewMetadataWrapper("test-key", server.URL, time.Second)
	require.NoError(t, err)

	_, err = mw.SearchImagePath(context.Background(), "Deadpool")
	assert.ErrorIs(t, err, model.ErrNetwork)
}

func TestSearchImagePathAborted(t *testing.T) {
	release := make(chan struct{})
	mw := newSearchServer(t, func(w http.ResponseWriter, r *http.Request) {
		<-release
		writeJSON(w, http.StatusOK, `{"page":1,"total_pages":1,"total_results":1,"results":[{"id":1,"backdrop_path":"/late.jpg"}]}`)
	})
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	start := time.Now()
	_, err := mw.SearchImagePath(ctx, "Deadpool")
	assert.ErrorIs(t, err, model.ErrAborted)
	assert.Less(t, time.Since(start), time.Second)

	cancelled, cancelNow := context.WithCancel(context.Background())
	cancelNow()
	_, err = mw.SearchImagePath(cancelled, "Deadpool")
	assert.ErrorIs(t, err, model.ErrAborted)
}

func TestNewMetadataWrapperWithoutKey(t *testing.T) {
	_, err := NewMetadataWrapper("", "", time.Second)
	assert.Error(t, err)
}
