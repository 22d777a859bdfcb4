package server

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/Agurato/marquee/internal/business"
	"github.com/Agurato/marquee/internal/model"
)

type BannerRegistry interface {
	Banner(sessionID string) *business.Banner
}

// ImageResponse is the JSON representation of an image resolution
type ImageResponse struct {
	ID    int    `json:"id"`
	URL   string `json:"url"`
	State string `json:"state"`
}

type APIHandler struct {
	MovieCatalog
	BannerRegistry

	backdrops ImageResolver
	imageWait time.Duration
}

func NewAPIHandler(p *Pages, mc MovieCatalog, br BannerRegistry, backdrops ImageResolver) *APIHandler {
	return &APIHandler{
		MovieCatalog:   mc,
		BannerRegistry: br,
		backdrops:      backdrops,
		imageWait:      p.ImageWait,
	}
}

// GETBackdrop resolves the backdrop of a movie
func (ah APIHandler) GETBackdrop(c *gin.Context) {
	movie, ok := ah.getMovie(c)
	if !ok {
		return
	}
	attempt := resolveWithin(c.Request.Context(), ah.backdrops, movie.Ref(), ah.imageWait)
	c.JSON(http.StatusOK, ImageResponse{
		ID:    movie.ID,
		URL:   attempt.URL(),
		State: attempt.State().String(),
	})
}

// POSTHero selects a movie in the hero banner of the session.
// A selection superseded by a newer one before resolving answers with the aborted state
// and its fallback URL.
func (ah APIHandler) POSTHero(c *gin.Context) {
	movie, ok := ah.getMovie(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	banner := ah.BannerRegistry.Banner(sessionID(c))
	attempt := banner.Select(context.WithoutCancel(ctx), movie.Ref())
	awaitAttempt(ctx, attempt, ah.imageWait)

	c.JSON(http.StatusOK, ImageResponse{
		ID:    movie.ID,
		URL:   attempt.URL(),
		State: attempt.State().String(),
	})
}

func (ah APIHandler) getMovie(c *gin.Context) (*model.Movie, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid movie ID"})
		return nil, false
	}
	movie, err := ah.MovieCatalog.GetMovie(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		} else {
			log.Error().Err(err).Int("id", id).Msg("Could not get movie")
			c.JSON(http.StatusBadGateway, gin.H{"error": "could not get the movie"})
		}
		return nil, false
	}
	return movie, true
}
