package entity

import "strings"

// Language represents supported language codes using ISO-style abbreviations.
type Language string

const (
	LanguageUnspecified Language = ""
	LanguageEnglish     Language = "en"
	LanguagePolish      Language = "pl"
	LanguageGerman      Language = "de"
	LanguageSpanish     Language = "es"
	LanguageFrench      Language = "fr"
	LanguageChinese     Language = "zh"
)

var supportedLanguages = map[string]Language{
	"en": LanguageEnglish,
	"pl": LanguagePolish,
	"de": LanguageGerman,
	"es": LanguageSpanish,
	"fr": LanguageFrench,
	"zh": LanguageChinese,
}

// Code returns the lowercase language code (without defaulting).
func (l Language) Code() string {
	return strings.ToLower(strings.TrimSpace(string(l)))
}

// ParseLanguage converts an arbitrary string into a supported Language value.
// Unknown codes map to LanguageUnspecified.
func ParseLanguage(code string) Language {
	if lang, ok := supportedLanguages[strings.ToLower(strings.TrimSpace(code))]; ok {
		return lang
	}
	return LanguageUnspecified
}
