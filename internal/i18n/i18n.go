// Package i18n holds the storefront translation table and language
// negotiation.
package i18n

import (
	"sort"

	"golang.org/x/text/language"
)

type Language string

const (
	AR Language = "ar"
	FR Language = "fr"
	EN Language = "en"

	Default = AR
)

var Supported = []Language{AR, FR, EN}

var matcher = language.NewMatcher([]language.Tag{language.Arabic, language.French, language.English})

func Parse(s string) (Language, bool) {
	switch Language(s) {
	case AR, FR, EN:
		return Language(s), true
	}
	return Default, false
}

// Negotiate picks a supported language from an Accept-Language header.
func Negotiate(acceptLanguage string) Language {
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return Default
	}
	_, idx, conf := matcher.Match(tags...)
	if conf == language.No {
		return Default
	}
	return Supported[idx]
}

// T returns the translation of key, or the key itself when missing.
func T(lang Language, key string) string {
	row, ok := translations[key]
	if !ok {
		return key
	}
	if v, ok := row[lang]; ok && v != "" {
		return v
	}
	if v, ok := row[Default]; ok {
		return v
	}
	return key
}

func Dir(lang Language) string {
	if lang == AR {
		return "rtl"
	}
	return "ltr"
}

// Table returns every key translated into lang.
func Table(lang Language) map[string]string {
	out := make(map[string]string, len(translations))
	for k := range translations {
		out[k] = T(lang, k)
	}
	return out
}

func Keys() []string {
	keys := make([]string, 0, len(translations))
	for k := range translations {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
