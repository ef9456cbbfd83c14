package elapsed

import (
	"golang.org/x/text/feature/plural"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

// Unit names and the final conjunction for the supported languages.
// Keys are the English plural forms used by Sentence; CLDR plural rules
// pick the singular variant when the value is exactly 1.
func init() {
	set := func(tag language.Tag, key string, msg catalog.Message) {
		// Registration only fails on malformed entries, which would be
		// a programming error in this table.
		if err := message.Set(tag, key, msg); err != nil {
			panic(err)
		}
	}

	units := []struct {
		key      string
		en1, en  string
		de1, de  string
	}{
		{"%d years", "%[1]d year", "%[1]d years", "%[1]d Jahr", "%[1]d Jahre"},
		{"%d months", "%[1]d month", "%[1]d months", "%[1]d Monat", "%[1]d Monate"},
		{"%d days", "%[1]d day", "%[1]d days", "%[1]d Tag", "%[1]d Tage"},
		{"%d hours", "%[1]d hour", "%[1]d hours", "%[1]d Stunde", "%[1]d Stunden"},
		{"%d minutes", "%[1]d minute", "%[1]d minutes", "%[1]d Minute", "%[1]d Minuten"},
		{"%d seconds", "%[1]d second", "%[1]d seconds", "%[1]d Sekunde", "%[1]d Sekunden"},
	}

	for _, u := range units {
		set(language.English, u.key,
			plural.Selectf(1, "", "one", u.en1, "other", u.en))
		set(language.German, u.key,
			plural.Selectf(1, "", "one", u.de1, "other", u.de))
	}

	set(language.English, "%s and %s.", catalog.String("%[1]s and %[2]s."))
	set(language.German, "%s and %s.", catalog.String("%[1]s und %[2]s."))
}
