// Package i18n resolves user-facing notification strings. Lookup failures
// are deliberately loud so missing translation keys surface during
// development instead of rendering blanks.
package i18n

import (
	"embed"
	"encoding/json"
	"fmt"
)

//go:embed locales/*.json
var localesFS embed.FS

var (
	ErrUnknownLocale = fmt.Errorf("unknown locale")
	ErrUnknownKey    = fmt.Errorf("unknown translation key")
)

const DefaultLocale = "en"

var locales = mustLoadLocales()

func mustLoadLocales() map[string]map[string]string {
	out := make(map[string]map[string]string)
	for _, lang := range []string{"en", "pl"} {
		data, err := localesFS.ReadFile("locales/" + lang + ".json")
		if err != nil {
			panic(fmt.Sprintf("i18n: missing embedded locale %s: %v", lang, err))
		}
		var table map[string]string
		if err := json.Unmarshal(data, &table); err != nil {
			panic(fmt.Sprintf("i18n: malformed locale %s: %v", lang, err))
		}
		out[lang] = table
	}
	return out
}

// Translate returns the string registered for (lang, key).
func Translate(lang, key string) (string, error) {
	table, ok := locales[lang]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownLocale, lang)
	}
	msg, ok := table[key]
	if !ok {
		return "", fmt.Errorf("%w: %q/%q", ErrUnknownKey, lang, key)
	}
	return msg, nil
}

// MustTranslate is Translate with a panic on failure, for call sites
// where a missing key is a programming error.
func MustTranslate(lang, key string) string {
	msg, err := Translate(lang, key)
	if err != nil {
		panic(err)
	}
	return msg
}

// Supported reports whether the locale is registered.
func Supported(lang string) bool {
	_, ok := locales[lang]
	return ok
}
