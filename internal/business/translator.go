package business

import (
	"fmt"
	"regexp"
	"sync/atomic"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/Agurato/marquee/internal/model"
)

var placeholderRegex = regexp.MustCompile(`\{\{\s*(\w+)\s*\}\}`)

// languageTags are in the same order as supportedLanguages, the first one being the default
var (
	supportedLanguages = []model.Language{model.English, model.Portuguese, model.Spanish}
	languageTags       = []language.Tag{language.English, language.Portuguese, language.Spanish}
)

// Translator looks up interface strings. Its translations can be swapped at any time.
type Translator struct {
	translations atomic.Pointer[model.Translations]
	matcher      language.Matcher
}

// NewTranslator creates a Translator serving translations
func NewTranslator(translations model.Translations) *Translator {
	t := &Translator{
		matcher: language.NewMatcher(languageTags),
	}
	t.SetTranslations(translations)
	return t
}

// SetTranslations replaces the translations in use
func (t *Translator) SetTranslations(translations model.Translations) {
	t.translations.Store(&translations)
}

// T returns the string of key in lang with its {{ placeholders }} replaced by vars.
// The default language is tried when lang lacks the key, and the key itself is returned
// when no language has it.
func (t *Translator) T(lang model.Language, key string, vars map[string]any) string {
	translations := *t.translations.Load()
	value, ok := translations[lang][key]
	if !ok {
		value, ok = translations[model.DefaultLanguage][key]
	}
	if !ok {
		return key
	}
	if len(vars) == 0 {
		return value
	}
	return placeholderRegex.ReplaceAllStringFunc(value, func(match string) string {
		name := placeholderRegex.FindStringSubmatch(match)[1]
		if v, ok := vars[name]; ok {
			return fmt.Sprint(v)
		}
		return match
	})
}

// Match picks the supported language best matching an Accept-Language header
func (t *Translator) Match(acceptLanguage string) model.Language {
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return model.DefaultLanguage
	}
	_, index, confidence := t.matcher.Match(tags...)
	if confidence == language.No {
		return model.DefaultLanguage
	}
	return supportedLanguages[index]
}

// Genre title-cases a genre label according to lang
func (t *Translator) Genre(lang model.Language, genre string) string {
	tag := language.English
	for i, l := range supportedLanguages {
		if l == lang {
			tag = languageTags[i]
		}
	}
	return cases.Title(tag).String(genre)
}

// LanguageName returns the name of target, in lang
func (t *Translator) LanguageName(lang, target model.Language) string {
	switch target {
	case model.Portuguese:
		return t.T(lang, "common.languageNames.portuguese", nil)
	case model.Spanish:
		return t.T(lang, "common.languageNames.spanish", nil)
	default:
		return t.T(lang, "common.languageNames.english", nil)
	}
}
