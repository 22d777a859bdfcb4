package infrastructure

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Agurato/marquee/internal/model"
	"github.com/BurntSushi/toml"
	"github.com/radovskyb/watcher"
	"github.com/rs/zerolog/log"
)

//go:embed locales/*.toml
var embeddedLocales embed.FS

// LoadEmbeddedLocales returns the translations shipped with the binary
func LoadEmbeddedLocales() (model.Translations, error) {
	sub, err := fs.Sub(embeddedLocales, "locales")
	if err != nil {
		return nil, err
	}
	return LoadLocales(sub)
}

// LoadLocales reads one "<lang>.toml" document per supported language from fsys.
// Missing files are skipped, other errors are returned.
func LoadLocales(fsys fs.FS) (model.Translations, error) {
	translations := make(model.Translations, len(model.Languages))
	for _, lang := range model.Languages {
		content, err := fs.ReadFile(fsys, string(lang)+".toml")
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return nil, fmt.Errorf("read locale %s: %w", lang, err)
		}
		var doc map[string]any
		if _, err := toml.Decode(string(content), &doc); err != nil {
			return nil, fmt.Errorf("decode locale %s: %w", lang, err)
		}
		strs := make(map[string]string)
		flatten("", doc, strs)
		translations[lang] = strs
	}
	return translations, nil
}

// LoadLocalesWithOverride loads the embedded translations and, if dir is not empty,
// replaces their keys with the ones found in dir
func LoadLocalesWithOverride(dir string) (model.Translations, error) {
	translations, err := LoadEmbeddedLocales()
	if err != nil {
		return nil, err
	}
	if dir == "" {
		return translations, nil
	}
	overrides, err := LoadLocales(os.DirFS(dir))
	if err != nil {
		return nil, err
	}
	for lang, strs := range overrides {
		if translations[lang] == nil {
			translations[lang] = make(map[string]string, len(strs))
		}
		for k, v := range strs {
			translations[lang][k] = v
		}
	}
	return translations, nil
}

func flatten(prefix string, doc map[string]any, out map[string]string) {
	for key, value := range doc {
		fullKey := key
		if prefix != "" {
			fullKey = prefix + "." + key
		}
		switch v := value.(type) {
		case map[string]any:
			flatten(fullKey, v, out)
		case string:
			out[fullKey] = v
		default:
			out[fullKey] = fmt.Sprint(v)
		}
	}
}

// LocaleWatcher reloads the translations whenever a locale file changes
type LocaleWatcher struct {
	dir      string
	onReload func(model.Translations)
	w        *watcher.Watcher
}

// NewLocaleWatcher creates a watcher on dir; onReload receives the merged translations
func NewLocaleWatcher(dir string, onReload func(model.Translations)) (*LocaleWatcher, error) {
	w := watcher.New()
	w.FilterOps(watcher.Write, watcher.Create, watcher.Rename, watcher.Move)
	w.AddFilterHook(func(info os.FileInfo, fullPath string) error {
		if strings.EqualFold(filepath.Ext(fullPath), ".toml") {
			return nil
		}
		return watcher.ErrSkip
	})
	if err := w.Add(dir); err != nil {
		return nil, fmt.Errorf("watch %s: %w", dir, err)
	}
	return &LocaleWatcher{
		dir:      dir,
		onReload: onReload,
		w:        w,
	}, nil
}

// Run blocks, polling the directory every interval, until Close is called
func (lw *LocaleWatcher) Run(interval time.Duration) error {
	go lw.listen()
	return lw.w.Start(interval)
}

// Close stops the watcher
func (lw *LocaleWatcher) Close() {
	lw.w.Close()
}

// WaitStarted blocks until the watcher polls
func (lw *LocaleWatcher) WaitStarted() {
	lw.w.Wait()
}

func (lw *LocaleWatcher) listen() {
	for {
		select {
		case event := <-lw.w.Event:
			log.Debug().Str("path", event.Path).Str("op", event.Op.String()).Msg("Locale file changed")
			translations, err := LoadLocalesWithOverride(lw.dir)
			if err != nil {
				log.Error().Err(err).Str("dir", lw.dir).Msg("Could not reload locales")
				continue
			}
			lw.onReload(translations)
			log.Info().Str("dir", lw.dir).Msg("Locales reloaded")
		case err := <-lw.w.Error:
			log.Error().Err(err).Msg("Locale watcher error")
		case <-lw.w.Closed:
			return
		}
	}
}
