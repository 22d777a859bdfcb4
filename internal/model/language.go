package model

// Language is a supported interface language
type Language string

const (
	English    Language = "en"
	Portuguese Language = "pt"
	Spanish    Language = "es"

	DefaultLanguage = English
)

// Languages lists the supported languages, in the order they are offered to the user
var Languages = []Language{Portuguese, English, Spanish}

// ParseLanguage returns the matching supported language, or false if it is not supported
func ParseLanguage(code string) (Language, bool) {
	for _, l := range Languages {
		if string(l) == code {
			return l, true
		}
	}
	return DefaultLanguage, false
}

// Translations maps each language to its flattened (dotted key) strings
type Translations map[Language]map[string]string
