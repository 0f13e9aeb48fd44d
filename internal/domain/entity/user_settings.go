package entity

import "strings"

const DefaultLanguage = "en"

var supportedLanguages = map[string]struct{}{
	"en": {},
	"es": {},
}

// UserSettings holds per-user preferences.
type UserSettings struct {
	PreferredLanguage string
}

func DefaultSettings() UserSettings {
	return UserSettings{PreferredLanguage: DefaultLanguage}
}

func IsSupportedLanguage(lang string) bool {
	_, ok := supportedLanguages[lang]
	return ok
}

// SettingsFromLanguage accepts tags such as "es-ES" or "EN_us" and falls back
// to the default language for anything unsupported.
func SettingsFromLanguage(tag string) UserSettings {
	lang := strings.ToLower(strings.TrimSpace(tag))
	if i := strings.IndexAny(lang, "-_"); i >= 0 {
		lang = lang[:i]
	}
	if !IsSupportedLanguage(lang) {
		return DefaultSettings()
	}
	return UserSettings{PreferredLanguage: lang}
}

// WithLanguage returns a copy with the language replaced. Unlike
// SettingsFromLanguage it rejects unsupported values.
func (s UserSettings) WithLanguage(lang string) (UserSettings, error) {
	lang = strings.ToLower(strings.TrimSpace(lang))
	if !IsSupportedLanguage(lang) {
		return s, invalid("preferred_language", "must be one of en, es")
	}
	s.PreferredLanguage = lang
	return s, nil
}
