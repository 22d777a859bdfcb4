package business

import (
	"net/url"
	"slices"
	"strconv"
	"strings"

	"github.com/agnivade/levenshtein"
	"github.com/samber/lo"

	"github.com/Agurato/marquee/internal/model"
)

// AllGenres is the genre value that disables genre filtering
const AllGenres = "All"

// Filterer holds the different filters that can be applied to the catalog
type Filterer interface {
	GetGenres(movies []model.Movie) []string
	Filter(movies []model.Movie, genre, query string) []model.Movie
	Suggest(movies []model.Movie, query string) (model.Movie, bool)
	ParseParamsFilters(params url.Values) (query, genre string, page int, err error)
}

type FiltererWrapper struct{}

func NewFiltererWrapper() *FiltererWrapper {
	return &FiltererWrapper{}
}

// GetGenres returns AllGenres followed by the sorted genres of movies, without duplicates
func (f *FiltererWrapper) GetGenres(movies []model.Movie) []string {
	genres := lo.Uniq(lo.FlatMap(movies, func(m model.Movie, _ int) []string {
		return m.Genres
	}))
	genres = lo.Filter(genres, func(g string, _ int) bool {
		return g != ""
	})
	slices.Sort(genres)
	return append([]string{AllGenres}, genres...)
}

// Filter keeps the movies of genre (unless it is empty or AllGenres) whose name contains
// query, case-insensitively
func (f *FiltererWrapper) Filter(movies []model.Movie, genre, query string) []model.Movie {
	results := movies
	if genre != "" && genre != AllGenres {
		results = lo.Filter(results, func(m model.Movie, _ int) bool {
			return slices.Contains(m.Genres, genre)
		})
	}
	if query != "" {
		query = strings.ToLower(query)
		results = lo.Filter(results, func(m model.Movie, _ int) bool {
			return strings.Contains(strings.ToLower(m.Name), query)
		})
	}
	return results
}

// Suggest returns the movie whose name is the closest to query.
// Names at a distance of a third of their length or more are not considered.
func (f *FiltererWrapper) Suggest(movies []model.Movie, query string) (model.Movie, bool) {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return model.Movie{}, false
	}
	var (
		best     model.Movie
		bestDist = -1
	)
	for _, m := range movies {
		name := strings.ToLower(m.Name)
		dist := levenshtein.ComputeDistance(query, name)
		if dist >= len([]rune(name))/3 {
			continue
		}
		if bestDist == -1 || dist < bestDist {
			best, bestDist = m, dist
		}
	}
	return best, bestDist != -1
}

// ParseParamsFilters reads the q, genre and page query parameters
func (f *FiltererWrapper) ParseParamsFilters(params url.Values) (query, genre string, page int, err error) {
	query = strings.TrimSpace(params.Get("q"))
	genre = params.Get("genre")
	if genre == "" {
		genre = AllGenres
	}
	page = 1
	if pageParam := params.Get("page"); pageParam != "" {
		page, err = strconv.Atoi(pageParam)
		if err != nil {
			return
		}
		if page < 1 {
			page = 1
		}
	}
	return query, genre, page, nil
}
