package i18n

import (
	"embed"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/BurntSushi/toml"
	goi18n "github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"
)

var (
	bundleOnce sync.Once
	bundle     *goi18n.Bundle
	bundleErr  error

	defaultMu         sync.RWMutex
	defaultTranslator *Translator

	supportedMatcher = language.NewMatcher([]language.Tag{
		language.English,
		language.Spanish,
	})
)

//go:embed locales/*.toml
var localeFS embed.FS

// Translator renders messages in one language
type Translator struct {
	localizer *goi18n.Localizer
	tag       language.Tag
}

// NewTranslator chooses the best supported language using:
//  1. lang (from --lang or analysis.lang; "auto" and "" are ignored)
//  2. APKINSPECT_LANG environment variable
//  3. LC_ALL / LC_MESSAGES / LANG
//  4. Fallback to English
func NewTranslator(lang string) (*Translator, error) {
	b, err := loadBundle()
	if err != nil {
		return nil, err
	}
	chosen := selectLanguage(lang)
	return &Translator{
		localizer: goi18n.NewLocalizer(b, chosen.String(), language.English.String()),
		tag:       chosen,
	}, nil
}

// Init sets the package-level translator used by T and TDefault
func Init(lang string) error {
	t, err := NewTranslator(lang)
	if err != nil {
		return fmt.Errorf("load locales: %w", err)
	}
	defaultMu.Lock()
	defaultTranslator = t
	defaultMu.Unlock()
	return nil
}

// Default returns the package-level translator, initializing it from the
// environment on first use
func Default() *Translator {
	defaultMu.RLock()
	t := defaultTranslator
	defaultMu.RUnlock()
	if t != nil {
		return t
	}
	if err := Init(""); err != nil {
		fmt.Fprintf(os.Stderr, "i18n init failed: %v\n", err)
		return &Translator{tag: language.English}
	}
	return Default()
}

// T translates with the package-level translator
func T(id string, data ...map[string]interface{}) string {
	return Default().T(id, data...)
}

// TDefault translates with the package-level translator
func TDefault(id, fallback string, data ...map[string]interface{}) string {
	return Default().TDefault(id, fallback, data...)
}

// CurrentLanguage returns the language of the package-level translator
func CurrentLanguage() language.Tag {
	return Default().tag
}

// Language returns the chosen language tag
func (t *Translator) Language() language.Tag {
	return t.tag
}

// T translates a message by ID with optional template data.
// If translation fails, it falls back to the message ID to avoid empty output.
func (t *Translator) T(id string, data ...map[string]interface{}) string {
	return t.TDefault(id, id, data...)
}

// TDefault translates a message by ID, using fallback as the template when
// no locale defines the ID
func (t *Translator) TDefault(id, fallback string, data ...map[string]interface{}) string {
	if t == nil || t.localizer == nil {
		return fallback
	}

	templateData := map[string]interface{}{}
	if len(data) > 0 && data[0] != nil {
		templateData = data[0]
	}

	msg, err := t.localizer.Localize(&goi18n.LocalizeConfig{
		MessageID:      id,
		TemplateData:   templateData,
		PluralCount:    findPluralCount(templateData),
		DefaultMessage: &goi18n.Message{ID: id, Other: fallback},
	})
	if err != nil || msg == "" {
		return fallback
	}
	return msg
}

func loadBundle() (*goi18n.Bundle, error) {
	bundleOnce.Do(func() {
		b := goi18n.NewBundle(language.English)
		b.RegisterUnmarshalFunc("toml", toml.Unmarshal)
		for _, file := range []string{"locales/active.en.toml", "locales/active.es.toml"} {
			if _, err := b.LoadMessageFileFS(localeFS, file); err != nil {
				bundleErr = fmt.Errorf("load %s: %w", file, err)
				return
			}
		}
		bundle = b
	})
	return bundle, bundleErr
}

func selectLanguage(langOverride string) language.Tag {
	var candidates []string
	if o := strings.TrimSpace(langOverride); o != "" && !strings.EqualFold(o, "auto") {
		candidates = append(candidates, o)
	}

	for _, key := range []string{"APKINSPECT_LANG", "LC_ALL", "LC_MESSAGES", "LANG"} {
		if val := strings.TrimSpace(os.Getenv(key)); val != "" {
			candidates = append(candidates, val)
		}
	}

	// On Windows, environment variables for locale are often missing.
	if len(candidates) == 0 {
		candidates = append(candidates, getPlatformLocales()...)
	}

	var tags []language.Tag
	for _, cand := range candidates {
		clean := strings.TrimSpace(cand)
		// Normalize common locale strings like es_ES.UTF-8 -> es-ES
		if idx := strings.Index(clean, "."); idx >= 0 {
			clean = clean[:idx]
		}
		clean = strings.ReplaceAll(clean, "_", "-")
		if clean == "" || strings.EqualFold(clean, "C") || strings.EqualFold(clean, "POSIX") {
			continue
		}

		if tag, err := language.Parse(clean); err == nil {
			tags = append(tags, tag)
		}
	}

	if len(tags) == 0 {
		return language.English
	}

	_, idx, conf := supportedMatcher.Match(tags...)
	if conf == language.No {
		return language.English
	}
	return []language.Tag{language.English, language.Spanish}[idx]
}

func findPluralCount(data map[string]interface{}) interface{} {
	for _, key := range []string{"count", "Count", "total", "Total"} {
		if val, ok := data[key]; ok {
			return val
		}
	}
	return nil
}
