// Package i18n selects the display language and hands out message
// printers. The elapsed-time sentence is the only localized surface, so
// the package stays small: a matcher over the supported languages, a
// printer carried in the request context, and a CLI printer derived from
// the environment.
package i18n

import (
	"context"
	"os"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// DefaultLang is the fallback language.
var DefaultLang = language.English

// SupportedLangs are the languages with a full unit-name catalog.
var SupportedLangs = []language.Tag{
	language.English,
	language.German,
}

var matcher = language.NewMatcher(SupportedLangs)

type contextKey struct{}

var printerKey = contextKey{}

// MatchLanguage returns the best supported language for an
// Accept-Language header value.
func MatchLanguage(acceptLang string) language.Tag {
	tags, _, _ := language.ParseAcceptLanguage(acceptLang)
	tag, _, _ := matcher.Match(tags...)
	return tag
}

// NewPrinter returns a message printer for the given language.
func NewPrinter(tag language.Tag) *message.Printer {
	return message.NewPrinter(tag)
}

// WithPrinter returns a new context with the printer injected.
func WithPrinter(ctx context.Context, p *message.Printer) context.Context {
	return context.WithValue(ctx, printerKey, p)
}

// GetPrinter returns the printer from the context, or a default one.
func GetPrinter(ctx context.Context) *message.Printer {
	p, ok := ctx.Value(printerKey).(*message.Printer)
	if !ok {
		return message.NewPrinter(DefaultLang)
	}
	return p
}

// ParseLang resolves an explicit language name (config or flag value)
// against the supported set. Empty input yields the default.
func ParseLang(name string) language.Tag {
	if name == "" {
		return DefaultLang
	}
	tag, err := language.Parse(name)
	if err != nil {
		return MatchLanguage(name)
	}
	tag, _, _ = matcher.Match(tag)
	return tag
}

// CLILang resolves the system locale (from env vars) against the
// supported set.
func CLILang() language.Tag {
	lang := os.Getenv("LC_ALL")
	if lang == "" {
		lang = os.Getenv("LANG")
	}
	if lang == "" {
		return DefaultLang
	}

	// Strip encoding (e.g. .UTF-8) if present
	if i := strings.Index(lang, "."); i != -1 {
		lang = lang[:i]
	}

	return ParseLang(lang)
}

// NewCLIPrinter returns a printer for the system's locale.
func NewCLIPrinter() *message.Printer {
	return message.NewPrinter(CLILang())
}
