// Package i18n translates xcstrings-migrator's own user-facing messages.
//
// It wraps gotext so command code can call T() and N(). PO catalogs are
// embedded from locales/{lang}/LC_MESSAGES/xcstrings-migrator.po and loaded
// by Init(). Untranslated messages pass through unchanged.
package i18n

import (
	"embed"
	"os"
	"strings"

	"github.com/leonelquinteros/gotext"
)

//go:embed all:locales
var locales embed.FS

// domain is the gettext domain name.
const domain = "xcstrings-migrator"

// EnvLang overrides the detected UI language.
const EnvLang = "XCSTRINGS_MIGRATOR_LANG"

var po *gotext.Locale

// Init loads the catalog for lang, or for the environment's language when
// lang is empty.
func Init(lang string) {
	if lang == "" {
		lang = detectLanguage()
	}

	po = gotext.NewLocaleFSWithPath(lang, locales, "locales")
	po.AddDomain(domain)
	po.SetDomain(domain)
}

// T translates msgid.
func T(msgid string) string {
	if po == nil {
		return msgid
	}
	return po.Get(msgid)
}

// N translates a message with plural forms.
func N(singular, plural string, n int) string {
	if po == nil {
		if n == 1 {
			return singular
		}
		return plural
	}
	return po.GetN(singular, plural, n)
}

// detectLanguage follows GNU gettext priority after the tool's own
// override: XCSTRINGS_MIGRATOR_LANG > LANGUAGE > LC_ALL > LC_MESSAGES > LANG.
func detectLanguage() string {
	for _, env := range []string{EnvLang, "LANGUAGE", "LC_ALL", "LC_MESSAGES", "LANG"} {
		val := os.Getenv(env)
		if val == "" {
			continue
		}
		if env == "LANGUAGE" {
			val, _, _ = strings.Cut(val, ":")
		}
		// "ja_JP.UTF-8" -> "ja_JP"
		val, _, _ = strings.Cut(val, ".")
		if val == "C" || val == "POSIX" || val == "" {
			continue
		}
		return val
	}
	return "en"
}
