package business

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Agurato/marquee/internal/model"
)

func newTranslator() *Translator {
	return NewTranslator(model.Translations{
		model.English: {
			"hero.top10":                      "Top 10 today",
			"common.topBadge":                 "Top 10 in {{country}}",
			"common.relevance":                "{{ value }}% relevance",
			"common.languageNames.portuguese": "Portuguese",
			"common.onlyEnglish":              "Only in English",
		},
		model.Portuguese: {
			"hero.top10":      "Top 10 hoje",
			"common.topBadge": "Top 10 no {{country}}",
		},
	})
}

func TestTranslatorT(t *testing.T) {
	tr := newTranslator()

	assert.Equal(t, "Top 10 hoje", tr.T(model.Portuguese, "hero.top10", nil))
	assert.Equal(t, "Top 10 no Brasil", tr.T(model.Portuguese, "common.topBadge", map[string]any{"country": "Brasil"}))
	assert.Equal(t, "85% relevance", tr.T(model.English, "common.relevance", map[string]any{"value": 85}))
	// Unknown variables are left as is
	assert.Equal(t, "Top 10 in {{country}}", tr.T(model.English, "common.topBadge", map[string]any{"other": 1}))
	// Falls back to the default language, then to the key
	assert.Equal(t, "Only in English", tr.T(model.Spanish, "common.onlyEnglish", nil))
	assert.Equal(t, "missing.key", tr.T(model.Portuguese, "missing.key", nil))
}

func TestTranslatorSetTranslations(t *testing.T) {
	tr := newTranslator()
	tr.SetTranslations(model.Translations{
		model.English: {"hero.top10": "Trending"},
	})
	assert.Equal(t, "Trending", tr.T(model.English, "hero.top10", nil))
	assert.Equal(t, "Trending", tr.T(model.Portuguese, "hero.top10", nil))
}

func TestTranslatorMatch(t *testing.T) {
	tr := newTranslator()

	tests := []struct {
		header string
		want   model.Language
	}{
		{"", model.English},
		{"pt-BR,pt;q=0.9,en;q=0.8", model.Portuguese},
		{"es-AR", model.Spanish},
		{"fr-FR,es;q=0.5", model.Spanish},
		{"en-US", model.English},
		{"ja", model.English},
	}
	for _, tt := range tests {
		t.Run(tt.header, func(t *testing.T) {
			assert.Equal(t, tt.want, tr.Match(tt.header))
		})
	}
}

func TestTranslatorGenre(t *testing.T) {
	tr := newTranslator()
	assert.Equal(t, "Science Fiction", tr.Genre(model.English, "science fiction"))
	assert.Equal(t, "Ação", tr.Genre(model.Portuguese, "ação"))
}

func TestTranslatorLanguageName(t *testing.T) {
	tr := newTranslator()
	assert.Equal(t, "Portuguese", tr.LanguageName(model.Spanish, model.Portuguese))
	assert.Equal(t, "common.languageNames.spanish", tr.LanguageName(model.English, model.Spanish))
}
