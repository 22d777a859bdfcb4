package server

import (
	"net/http"
	"strings"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/Agurato/marquee/internal/business"
	"github.com/Agurato/marquee/internal/model"
)

type MainHandler struct {
	*Pages
	MovieCatalog
	backdrops ImageResolver
}

func NewMainHandler(p *Pages, mc MovieCatalog, backdrops ImageResolver) *MainHandler {
	return &MainHandler{
		Pages:        p,
		MovieCatalog: mc,
		backdrops:    backdrops,
	}
}

// Error404 displays the 404 page
func (mh MainHandler) Error404(c *gin.Context) {
	mh.Render404(c, "")
}

// GETIndex displays the hero banner of the selected movie and the carousel
func (mh MainHandler) GETIndex(c *gin.Context) {
	lang := language(c)
	movies, stale, err := mh.MovieCatalog.GetMovies(c.Request.Context())
	if err != nil {
		log.Error().Err(err).Msg("Could not get movies")
		mh.RenderHTML(c, http.StatusBadGateway, "pages/home.go.html", gin.H{
			"error": mh.T(lang, "common.errorMovies", nil),
		})
		return
	}

	selected, ok := business.SelectedOrFirst(movies, c.Query("selected"))
	if !ok {
		mh.RenderHTML(c, http.StatusOK, "pages/home.go.html", gin.H{
			"error": mh.T(lang, "common.noResults", nil),
		})
		return
	}

	hero := resolveWithin(c.Request.Context(), mh.backdrops, selected.Ref(), mh.ImageWait)
	mh.RenderHTML(c, http.StatusOK, "pages/home.go.html", gin.H{
		"title":     selected.Name + " - " + mh.T(lang, "brand", nil),
		"movies":    movies,
		"stale":     stale,
		"selected":  selected,
		"heroURL":   hero.URL(),
		"heroState": hero.State().String(),
	})
}

// POSTLanguage stores the interface language in the session
func (mh MainHandler) POSTLanguage(c *gin.Context) {
	lang, ok := model.ParseLanguage(c.PostForm("lang"))
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unsupported language"})
		return
	}
	session := sessions.Default(c)
	session.Set(LanguageKey, string(lang))
	if err := session.Save(); err != nil {
		log.Error().Err(err).Msg("Could not save session")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not save the language"})
		return
	}

	// Only redirect inside the site
	redirect := c.PostForm("redirect")
	if !strings.HasPrefix(redirect, "/") || strings.HasPrefix(redirect, "//") {
		redirect = "/"
	}
	c.Redirect(http.StatusSeeOther, redirect)
}
