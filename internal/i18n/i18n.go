// Package i18n localizes the user-visible strings of the dashboard.
// Supported locales: en-US and ko-KR (the dashboard's original audience).
package i18n

import (
	"embed"
	"fmt"

	goi18n "github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

//go:embed locales/*.yaml
var localeFS embed.FS

var localizer *goi18n.Localizer

// Init loads the embedded message bundles and selects the display locale.
// An unknown locale falls back to en-US.
func Init(locale string) error {
	bundle := goi18n.NewBundle(language.AmericanEnglish)
	bundle.RegisterUnmarshalFunc("yaml", yaml.Unmarshal)

	for _, name := range []string{"en-US", "ko-KR"} {
		if _, err := bundle.LoadMessageFileFS(localeFS, fmt.Sprintf("locales/%s.yaml", name)); err != nil {
			return fmt.Errorf("load locale %s: %w", name, err)
		}
	}

	localizer = goi18n.NewLocalizer(bundle, locale, "en-US")
	return nil
}

// T translates a message key, with optional template data as a single map
// argument. An uninitialized bundle or a missing key returns the key itself
// so the UI degrades readable.
func T(key string, data ...map[string]any) string {
	if localizer == nil {
		return key
	}
	cfg := &goi18n.LocalizeConfig{MessageID: key}
	if len(data) > 0 {
		cfg.TemplateData = data[0]
	}
	msg, err := localizer.Localize(cfg)
	if err != nil {
		return key
	}
	return msg
}
