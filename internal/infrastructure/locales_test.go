package infrastructure_test

import (
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"testing/fstest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Agurato/marquee/internal/infrastructure"
	"github.com/Agurato/marquee/internal/model"
)

func TestLoadEmbeddedLocales(t *testing.T) {
	translations, err := infrastructure.LoadEmbeddedLocales()
	require.NoError(t, err)

	for _, lang := range model.Languages {
		strs, ok := translations[lang]
		require.True(t, ok, "missing locale %s", lang)
		assert.Equal(t, "Movies", strs["brand"])
		assert.NotEmpty(t, strs["header.nav.home"])
		assert.NotEmpty(t, strs["common.languageNames.english"])
	}
	assert.Equal(t, "Início", translations[model.Portuguese]["header.nav.home"])
	assert.Equal(t, "Top 10 in {{country}}", translations[model.English]["common.topBadge"])
}

func TestLoadLocalesDecodeError(t *testing.T) {
	fsys := fstest.MapFS{
		"en.toml": {Data: []byte("brand = ")},
	}
	_, err := infrastructure.LoadLocales(fsys)
	assert.Error(t, err)
}

func TestLoadLocalesWithOverride(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "en.toml"), []byte("brand = \"Cinema\"\n[hero]\ntop10 = \"Top 10 today\"\n"), 0o644))

	translations, err := infrastructure.LoadLocalesWithOverride(dir)
	require.NoError(t, err)
	assert.Equal(t, "Cinema", translations[model.English]["brand"])
	assert.Equal(t, "Top 10 today", translations[model.English]["hero.top10"])
	// Keys absent from the override keep their embedded value
	assert.Equal(t, "Home", translations[model.English]["header.nav.home"])
	assert.Equal(t, "Movies", translations[model.Spanish]["brand"])
}

func TestLocaleWatcherReloads(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "en.toml"), []byte("brand = \"Cinema\"\n"), 0o644))

	var reloaded atomic.Pointer[model.Translations]
	lw, err := infrastructure.NewLocaleWatcher(dir, func(tr model.Translations) {
		reloaded.Store(&tr)
	})
	require.NoError(t, err)
	go func() {
		_ = lw.Run(20 * time.Millisecond)
	}()
	defer lw.Close()
	lw.WaitStarted()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "pt.toml"), []byte("brand = \"Cinemão\"\n"), 0o644))

	require.Eventually(t, func() bool {
		tr := reloaded.Load()
		return tr != nil && (*tr)[model.Portuguese]["brand"] == "Cinemão"
	}, 2*time.Second, 20*time.Millisecond)
	assert.Equal(t, "Cinema", (*reloaded.Load())[model.English]["brand"])
}

func TestLocaleWatcherMissingDir(t *testing.T) {
	_, err := infrastructure.NewLocaleWatcher(filepath.Join(t.TempDir(), "missing"), func(model.Translations) {})
	assert.Error(t, err)
}
