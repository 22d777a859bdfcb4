package server

import (
	"context"
	"html/template"
	"io/fs"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/samber/lo"

	"github.com/Agurato/marquee/internal/business"
	"github.com/Agurato/marquee/internal/model"
	"github.com/Agurato/marquee/web"
)

const (
	SessionName = "marquee-session"
	// LanguageKey is the session and context key of the interface language
	LanguageKey = "lang"
	// SessionIDKey is the session key identifying the banner of a browser
	SessionIDKey = "sid"

	// DefaultImageWait is how long a page waits for an image resolution before rendering
	// the fallback image
	DefaultImageWait = 1500 * time.Millisecond
)

type Translator interface {
	T(lang model.Language, key string, vars map[string]any) string
	Match(acceptLanguage string) model.Language
	Genre(lang model.Language, genre string) string
	LanguageName(lang, target model.Language) string
}

type MovieCatalog interface {
	GetMovies(ctx context.Context) (movies []model.Movie, stale bool, err error)
	GetMovie(ctx context.Context, id int) (*model.Movie, error)
}

type ImageResolver interface {
	Resolve(ctx context.Context, ref model.MovieRef) *business.Attempt
	FallbackURL(img string) string
}

// Pages holds what every page needs to be rendered
type Pages struct {
	Translator
	Region    business.Region
	ImageWait time.Duration
}

func NewPages(t Translator, region business.Region, imageWait time.Duration) *Pages {
	if imageWait <= 0 {
		imageWait = DefaultImageWait
	}
	return &Pages{
		Translator: t,
		Region:     region,
		ImageWait:  imageWait,
	}
}

// NewServer initializes the server
func NewServer(cookieSecret string, pages *Pages, fallback ImageResolver, mainHandler *MainHandler, movieHandler *MovieHandler, apiHandler *APIHandler) (*gin.Engine, error) {
	router := gin.New()
	router.Use(requestLogger, gin.Recovery())
	if err := router.SetTrustedProxies(nil); err != nil {
		return nil, err
	}

	// Cookies
	store := cookie.NewStore([]byte(cookieSecret))
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   int((365 * 24 * time.Hour).Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	router.Use(sessions.Sessions(SessionName, store), withLanguage(pages.Translator))

	// Add template functions
	funcMap := template.FuncMap{
		"t": func(lang model.Language, key string, pairs ...any) string {
			return pages.T(lang, key, templateVars(pairs))
		},
		"genre": pages.Genre,
		"genres": func(lang model.Language, genres []string) string {
			return strings.Join(lo.Map(genres, func(g string, _ int) string {
				return pages.Genre(lang, g)
			}), ", ")
		},
		"languageName": pages.LanguageName,
		"fallbackURL":  fallback.FallbackURL,
	}

	// Load templates
	templates, err := template.New("").Funcs(funcMap).ParseFS(web.Templates, "templates/*/*.go.html")
	if err != nil {
		return nil, err
	}
	router.SetHTMLTemplate(templates)

	// Static files
	static, err := fs.Sub(web.Static, "static")
	if err != nil {
		return nil, err
	}
	router.StaticFS("/static", http.FS(static))
	// 404
	router.NoRoute(mainHandler.Error404)

	router.GET("/", mainHandler.GETIndex)
	router.POST("/language", mainHandler.POSTLanguage)

	router.GET("/movies/:id", movieHandler.GETMovie)
	router.GET("/movies/:id/modal", movieHandler.GETMovieModal)
	router.GET("/search", movieHandler.GETSearch)

	api := router.Group("/api")
	api.GET("/backdrop/:id", apiHandler.GETBackdrop)
	api.POST("/hero/:id", apiHandler.POSTHero)

	return router, nil
}

// RenderHTML renders HTML pages and adds useful objects for templates
func (p *Pages) RenderHTML(c *gin.Context, code int, name string, obj gin.H) {
	obj["lang"] = language(c)
	obj["languages"] = model.Languages
	obj["region"] = p.Region
	obj["path"] = c.Request.URL.RequestURI()
	if _, ok := obj["title"]; !ok {
		obj["title"] = p.T(language(c), "brand", nil)
	}
	c.HTML(code, name, obj)
}

// Render404 renders the 404 page, with an optional message
func (p *Pages) Render404(c *gin.Context, message string) {
	p.RenderHTML(c, http.StatusNotFound, "pages/404.go.html", gin.H{
		"title": "404 - Not Found",
		"error": message,
	})
}

// resolveWithin starts the resolution of ref and waits at most wait for it to settle.
// The resolution outlives the request so that its result gets memoized.
func resolveWithin(ctx context.Context, ir ImageResolver, ref model.MovieRef, wait time.Duration) *business.Attempt {
	attempt := ir.Resolve(context.WithoutCancel(ctx), ref)
	awaitAttempt(ctx, attempt, wait)
	return attempt
}

func awaitAttempt(ctx context.Context, attempt *business.Attempt, wait time.Duration) {
	timer := time.NewTimer(wait)
	defer timer.Stop()
	select {
	case <-attempt.Done():
	case <-timer.C:
	case <-ctx.Done():
	}
}

func templateVars(pairs []any) map[string]any {
	if len(pairs) < 2 {
		return nil
	}
	vars := make(map[string]any, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		if key, ok := pairs[i].(string); ok {
			vars[key] = pairs[i+1]
		}
	}
	return vars
}

// withLanguage picks the interface language from the session, then from Accept-Language
func withLanguage(t Translator) gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)
		lang, ok := model.DefaultLanguage, false
		if code, isString := session.Get(LanguageKey).(string); isString {
			lang, ok = model.ParseLanguage(code)
		}
		if !ok {
			lang = t.Match(c.GetHeader("Accept-Language"))
		}
		c.Set(LanguageKey, lang)
		c.Next()
	}
}

func language(c *gin.Context) model.Language {
	if lang, ok := c.Get(LanguageKey); ok {
		if l, ok := lang.(model.Language); ok {
			return l
		}
	}
	return model.DefaultLanguage
}

// sessionID returns the ID of the browser session, creating it if needed
func sessionID(c *gin.Context) string {
	session := sessions.Default(c)
	if id, ok := session.Get(SessionIDKey).(string); ok && id != "" {
		return id
	}
	id := uuid.NewString()
	session.Set(SessionIDKey, id)
	if err := session.Save(); err != nil {
		log.Warn().Err(err).Msg("Could not save session")
	}
	return id
}

func requestLogger(c *gin.Context) {
	start := time.Now()
	c.Next()
	status := c.Writer.Status()
	event := log.Info()
	if status >= http.StatusInternalServerError {
		event = log.Error()
	}
	event.
		Str("method", c.Request.Method).
		Str("path", c.Request.URL.Path).
		Int("status", status).
		Dur("latency", time.Since(start)).
		Str("ip", c.ClientIP()).
		Msg("Request")
}
