package api

import (
	_ "embed"
	"encoding/json"
	"html/template"
	"strings"

	"golang.org/x/text/message"
)

//go:embed page/index.html
var pageHTML string

var pageTmpl = template.Must(template.New("page").Parse(pageHTML))

type pageData struct {
	Lang       string
	Title      string
	Heading    string
	Loading    string
	ResetLabel string
	Strings    template.JS
	TickMS     int64
}

// unitStrings is handed to the page script so the browser-side ticker
// can format the sentence without round-tripping to the server.
type unitStrings struct {
	Units   [6]unitForms `json:"units"`
	Conj    string       `json:"conj"`
	Loading string       `json:"loading"`
}

type unitForms struct {
	One   string `json:"one"`
	Other string `json:"other"`
}

var unitKeys = [6]string{
	"%d years", "%d months", "%d days", "%d hours", "%d minutes", "%d seconds",
}

// pageStrings extracts the bare unit words and the final conjunction
// from the message catalog, so the page script and the server format
// from a single source of truth.
func pageStrings(p *message.Printer) unitStrings {
	var s unitStrings
	for i, key := range unitKeys {
		s.Units[i] = unitForms{
			One:   strings.TrimSpace(strings.TrimPrefix(p.Sprintf(key, 1), "1")),
			Other: strings.TrimSpace(strings.TrimPrefix(p.Sprintf(key, 2), "2")),
		}
	}
	// Both catalogs render the joiner as "<head> <conj> <last>."
	joined := p.Sprintf("%s and %s.", "\x00", "\x01")
	s.Conj = strings.TrimSpace(strings.TrimSuffix(strings.TrimPrefix(joined, "\x00"), "\x01."))
	s.Loading = p.Sprintf("Loading value")
	return s
}

// renderStrings marshals the page strings for inline script use.
func renderStrings(p *message.Printer) template.JS {
	data, err := json.Marshal(pageStrings(p))
	if err != nil {
		// The struct contains only strings; marshalling cannot fail.
		return template.JS("{}")
	}
	return template.JS(data)
}
