package server

import (
	"errors"
	"net/http"
	"net/url"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/Agurato/marquee/internal/business"
	"github.com/Agurato/marquee/internal/model"
)

type Filterer interface {
	GetGenres(movies []model.Movie) []string
	Filter(movies []model.Movie, genre, query string) []model.Movie
	Suggest(movies []model.Movie, query string) (model.Movie, bool)
	ParseParamsFilters(params url.Values) (query, genre string, page int, err error)
}

type MovieHandler struct {
	*Pages
	MovieCatalog
	Filterer

	backdrops ImageResolver
	banners   ImageResolver
	paginater *business.Paginater[model.Movie]
}

// NewMovieHandler creates the movie pages handler. backdrops resolve full size images
// and banners the smaller ones of the modal.
func NewMovieHandler(p *Pages, mc MovieCatalog, f Filterer, backdrops, banners ImageResolver, paginater *business.Paginater[model.Movie]) *MovieHandler {
	return &MovieHandler{
		Pages:        p,
		MovieCatalog: mc,
		Filterer:     f,
		backdrops:    backdrops,
		banners:      banners,
		paginater:    paginater,
	}
}

// GETMovie displays the details of a movie
func (mh MovieHandler) GETMovie(c *gin.Context) {
	movie, ok := mh.getMovie(c)
	if !ok {
		return
	}
	backdrop := resolveWithin(c.Request.Context(), mh.backdrops, movie.Ref(), mh.ImageWait)
	mh.RenderHTML(c, http.StatusOK, "pages/movie.go.html", gin.H{
		"title":         movie.Name + " - " + mh.T(language(c), "brand", nil),
		"movie":         movie,
		"backdropURL":   backdrop.URL(),
		"backdropState": backdrop.State().String(),
	})
}

// GETMovieModal renders the "more information" fragment of a movie
func (mh MovieHandler) GETMovieModal(c *gin.Context) {
	movie, ok := mh.getMovie(c)
	if !ok {
		return
	}
	banner := resolveWithin(c.Request.Context(), mh.banners, movie.Ref(), mh.ImageWait)
	mh.RenderHTML(c, http.StatusOK, "partials/modal.go.html", gin.H{
		"movie":       movie,
		"bannerURL":   banner.URL(),
		"bannerState": banner.State().String(),
	})
}

// GETSearch displays the catalog filtered by genre and name
func (mh MovieHandler) GETSearch(c *gin.Context) {
	lang := language(c)
	query, genre, page, err := mh.Filterer.ParseParamsFilters(c.Request.URL.Query())
	if err != nil {
		mh.Render404(c, "")
		return
	}

	data := gin.H{
		"title":  mh.T(lang, "common.search", nil) + " - " + mh.T(lang, "brand", nil),
		"query":  query,
		"genre":  genre,
		"genres": []string{business.AllGenres},
		"pages":  []model.Pagination{},
	}
	movies, stale, err := mh.MovieCatalog.GetMovies(c.Request.Context())
	if err != nil {
		log.Error().Err(err).Msg("Could not get movies")
		data["error"] = mh.T(lang, "common.errorMovies", nil)
		mh.RenderHTML(c, http.StatusBadGateway, "pages/search.go.html", data)
		return
	}

	results := mh.Filterer.Filter(movies, genre, query)
	if len(results) == 0 && query != "" {
		if suggestion, ok := mh.Filterer.Suggest(movies, query); ok {
			data["suggestion"] = &suggestion
		}
	}
	results, pages := mh.paginater.GetPagination(int64(page), results)

	data["genres"] = mh.Filterer.GetGenres(movies)
	data["stale"] = stale
	data["movies"] = results
	data["pages"] = pages
	mh.RenderHTML(c, http.StatusOK, "pages/search.go.html", data)
}

// getMovie fetches the movie of the id parameter, rendering the 404 page when it fails
func (mh MovieHandler) getMovie(c *gin.Context) (*model.Movie, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		mh.Render404(c, "")
		return nil, false
	}
	movie, err := mh.MovieCatalog.GetMovie(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			mh.Render404(c, "")
		} else {
			log.Error().Err(err).Int("id", id).Msg("Could not get movie")
			mh.Render404(c, mh.T(language(c), "common.errorMovie", nil))
		}
		return nil, false
	}
	return movie, true
}
