package main

import (
	"context"
	"os"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Agurato/marquee/internal/business"
	"github.com/Agurato/marquee/internal/infrastructure"
	"github.com/Agurato/marquee/internal/model"
	"github.com/Agurato/marquee/internal/service/server"
)

// Environment variables names
const (
	EnvAPIURL            = "API_URL"
	EnvImagesBaseURL     = "IMAGES_BASE_URL"
	EnvTMDBAPIKey        = "TMDB_API_KEY"
	EnvTMDBAPIURL        = "TMDB_API_URL"
	EnvTMDBImageURL      = "TMDB_IMAGE_URL"
	EnvCookieSecret      = "COOKIE_SECRET"
	EnvItemsPerPage      = "ITEMS_PER_PAGE"
	EnvRevalidateSeconds = "REVALIDATE_SECONDS"
	EnvSearchTimeout     = "SEARCH_TIMEOUT"
	EnvMemoStore         = "MEMO_STORE" // memory, sqlite or mongodb
	EnvSQLitePath        = "SQLITE_PATH"
	EnvDBURL             = "DB_URL"
	EnvDBPort            = "DB_PORT"
	EnvDBName            = "DB_NAME"
	EnvDBUser            = "DB_USER"
	EnvDBPassword        = "DB_PASSWORD"
	EnvLocalesPath       = "LOCALES_PATH"
	EnvRegion            = "REGION"
	EnvWarmBackdrops     = "WARM_BACKDROPS"
	EnvLogLevel          = "LOG_LEVEL"
	EnvListenAddr        = "LISTEN_ADDR"
)

const (
	defaultListenAddr    = ":8080"
	defaultItemsPerPage  = 20
	defaultSearchTimeout = 10 * time.Second
	bannerSessions       = 1024
)

func main() {
	godotenv.Load()

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.DateTime})
	level, err := zerolog.ParseLevel(os.Getenv(EnvLogLevel))
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	apiURL := os.Getenv(EnvAPIURL)
	if apiURL == "" {
		log.Fatal().Str("variable", EnvAPIURL).Msg("Missing environment variable")
	}
	imagesBaseURL := getEnvDefault(EnvImagesBaseURL, apiURL)
	tmdbImageURL := getEnvDefault(EnvTMDBImageURL, infrastructure.TMDBImageURL)
	searchTimeout := getEnvDuration(EnvSearchTimeout, defaultSearchTimeout)

	metadata, err := infrastructure.NewMetadataWrapper(os.Getenv(EnvTMDBAPIKey), os.Getenv(EnvTMDBAPIURL), searchTimeout)
	if err != nil {
		log.Fatal().Err(err).Msg("Could not create TMDB client")
	}

	backdropStore, bannerStore, closeStores := memoStores()
	defer closeStores()

	backdrops := business.NewResolver(metadata, backdropStore, imagesBaseURL, tmdbImageURL, infrastructure.BackdropSize)
	banners := business.NewResolver(metadata, bannerStore, imagesBaseURL, tmdbImageURL, infrastructure.BannerSize)

	revalidate := time.Duration(getEnvInt(EnvRevalidateSeconds, int(business.DefaultRevalidate.Seconds()))) * time.Second
	catalog := business.NewCatalogManager(infrastructure.NewCatalogClient(apiURL, searchTimeout), revalidate)

	translator := business.NewTranslator(loadLocales())
	if localesPath := os.Getenv(EnvLocalesPath); localesPath != "" {
		lw, err := infrastructure.NewLocaleWatcher(localesPath, translator.SetTranslations)
		if err != nil {
			log.Error().Err(err).Msg("Could not watch locales")
		} else {
			defer lw.Close()
			go func() {
				if err := lw.Run(time.Second); err != nil {
					log.Error().Err(err).Msg("Locale watcher stopped")
				}
			}()
		}
	}

	region, err := business.NewRegion(os.Getenv(EnvRegion))
	if err != nil {
		log.Warn().Err(err).Str("default", business.DefaultRegion).Msg("Invalid region, using default")
		region, _ = business.NewRegion(business.DefaultRegion)
	}

	registry, err := business.NewBannerRegistry(backdrops, bannerSessions)
	if err != nil {
		log.Fatal().Err(err).Msg("Could not create banner registry")
	}

	if warm, _ := strconv.ParseBool(os.Getenv(EnvWarmBackdrops)); warm {
		go warmBackdrops(catalog, backdrops)
	}

	itemsPerPage := int64(getEnvInt(EnvItemsPerPage, defaultItemsPerPage))
	pages := server.NewPages(translator, region, server.DefaultImageWait)
	router, err := server.NewServer(
		getCookieSecret(),
		pages,
		backdrops,
		server.NewMainHandler(pages, catalog, backdrops),
		server.NewMovieHandler(pages, catalog, business.NewFiltererWrapper(), backdrops, banners, business.NewPaginater[model.Movie](itemsPerPage)),
		server.NewAPIHandler(pages, catalog, registry, backdrops),
	)
	if err != nil {
		log.Fatal().Err(err).Msg("Could not create server")
	}

	addr := getEnvDefault(EnvListenAddr, defaultListenAddr)
	log.Info().Str("addr", addr).Msg("Listening")
	if err := router.Run(addr); err != nil {
		log.Error().Err(err).Msg("Server stopped")
	}
}

// memoStores returns the stores of the backdrop and banner resolvers, as set by MEMO_STORE
func memoStores() (backdrops, banners business.MemoStore, closeFn func()) {
	switch os.Getenv(EnvMemoStore) {
	case "sqlite":
		memo, err := infrastructure.NewSQLiteMemo(getEnvDefault(EnvSQLitePath, "marquee.db"), infrastructure.BackdropSize)
		if err != nil {
			log.Fatal().Err(err).Msg("Could not open SQLite memo")
		}
		return memo, memo.Namespace(infrastructure.BannerSize), func() { memo.Close() }
	case "mongodb":
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		memo, err := infrastructure.NewMongoMemo(ctx,
			os.Getenv(EnvDBUser),
			os.Getenv(EnvDBPassword),
			os.Getenv(EnvDBURL),
			os.Getenv(EnvDBPort),
			os.Getenv(EnvDBName),
			"image_memo")
		if err != nil {
			log.Fatal().Err(err).Msg("Could not connect to MongoDB memo")
		}
		return memo, memo.Collection("image_memo_" + infrastructure.BannerSize), func() { memo.Close(context.Background()) }
	}
	return business.NewMemoryStore(), business.NewMemoryStore(), func() {}
}

func loadLocales() model.Translations {
	translations, err := infrastructure.LoadLocalesWithOverride(os.Getenv(EnvLocalesPath))
	if err == nil {
		return translations
	}
	log.Error().Err(err).Msg("Could not load locales override, using embedded locales")
	translations, err = infrastructure.LoadEmbeddedLocales()
	if err != nil {
		log.Fatal().Err(err).Msg("Could not load embedded locales")
	}
	return translations
}

func warmBackdrops(catalog *business.CatalogManager, backdrops *business.Resolver) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()
	movies, _, err := catalog.GetMovies(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("Could not warm backdrops")
		return
	}
	if _, err := business.NewWarmer(backdrops, business.DefaultWarmConcurrency).Warm(ctx, movies); err != nil {
		log.Warn().Err(err).Msg("Backdrops warm up interrupted")
	}
}

func getCookieSecret() string {
	secret := os.Getenv(EnvCookieSecret)
	if secret == "" {
		log.Warn().Str("variable", EnvCookieSecret).Msg("No cookie secret set, sessions will not survive restarts")
		secret = uuid.NewString()
	}
	return secret
}

func getEnvDefault(name, def string) string {
	if value := os.Getenv(name); value != "" {
		return value
	}
	return def
}

func getEnvInt(name string, def int) int {
	value := os.Getenv(name)
	if value == "" {
		return def
	}
	i, err := strconv.Atoi(value)
	if err != nil || i <= 0 {
		log.Warn().Str("variable", name).Str("value", value).Int("default", def).Msg("Invalid number, using default")
		return def
	}
	return i
}

// getEnvDuration reads a Go duration ("10s") or a number of seconds
func getEnvDuration(name string, def time.Duration) time.Duration {
	value := os.Getenv(name)
	if value == "" {
		return def
	}
	if d, err := time.ParseDuration(value); err == nil && d > 0 {
		return d
	}
	if secs, err := strconv.Atoi(value); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second
	}
	log.Warn().Str("variable", name).Str("value", value).Dur("default", def).Msg("Invalid duration, using default")
	return def
}
