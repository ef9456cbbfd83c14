package i18n

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

// German variants of the shared UI chrome, used by both the web page
// and the terminal client. English needs no registration: the message
// keys are the English strings.
func init() {
	for key, de := range map[string]string{
		"Time since the last reset": "Zeit seit dem letzten Reset",
		"Reset":                     "Zurücksetzen",
		"Loading value":             "Lade Wert",
		"Not Found":                 "Nicht gefunden",
		"Counter was reset":         "Zähler wurde zurückgesetzt",
		"Reset failed":              "Reset fehlgeschlagen",
	} {
		if err := message.Set(language.German, key, catalog.String(de)); err != nil {
			panic(err)
		}
	}
}
