// Package i18n provides internationalization support for the pallet service.
// It handles translation of user-facing messages, error messages and the
// headings of exported documents.
package i18n

import (
	"sync"

	"github.com/gin-gonic/gin"
	"golang.org/x/text/language"
)

const (
	// DefaultLocale is the default language locale (English).
	DefaultLocale = "en"
	// AcceptLanguageHeader is the HTTP header name for language preference.
	AcceptLanguageHeader = "Accept-Language"
)

var (
	// defaultTranslator is the singleton translator instance.
	defaultTranslator *Translator
	translatorOnce    sync.Once

	// supported lists the locales with messages; the first one is the fallback.
	supported = []language.Tag{language.English, language.Portuguese, language.Dutch}
	matcher   = language.NewMatcher(supported)
)

// Translator handles message translation for different locales.
type Translator struct {
	messages map[string]map[string]string
}

// NewTranslator creates a new translator with the default messages.
func NewTranslator() *Translator {
	return &Translator{
		messages: getDefaultMessages(),
	}
}

// GetTranslator returns the default singleton translator instance.
func GetTranslator() *Translator {
	translatorOnce.Do(func() {
		defaultTranslator = NewTranslator()
	})
	return defaultTranslator
}

// Translate returns the translated message for the given key and locale.
// Falls back to DefaultLocale if the locale is not found.
func (t *Translator) Translate(key, locale string) string {
	if locale == "" {
		locale = DefaultLocale
	}

	localeMessages, ok := t.messages[locale]
	if !ok {
		localeMessages = t.messages[DefaultLocale]
	}

	msg, ok := localeMessages[key]
	if !ok {
		if defaultMessages := t.messages[DefaultLocale]; defaultMessages != nil {
			if fallbackMsg, exists := defaultMessages[key]; exists {
				return fallbackMsg
			}
		}
		return key
	}

	return msg
}

// For returns a translation function bound to locale.
func (t *Translator) For(locale string) func(key string) string {
	return func(key string) string {
		return t.Translate(key, locale)
	}
}

// MatchLocale picks the best supported locale for an Accept-Language value.
func MatchLocale(acceptLanguage string) string {
	if acceptLanguage == "" {
		return DefaultLocale
	}
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return DefaultLocale
	}
	_, idx, confidence := matcher.Match(tags...)
	if confidence == language.No {
		return DefaultLocale
	}
	base, _ := supported[idx].Base()
	return base.String()
}

// GetLocale extracts the locale from the gin context.
// Checks Accept-Language header and falls back to DefaultLocale.
func GetLocale(c *gin.Context) string {
	return MatchLocale(c.GetHeader(AcceptLanguageHeader))
}
