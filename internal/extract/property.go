package extract

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Property strategy tags, in priority order
const (
	PropertySourceObject  = "object"
	PropertySourceLocated = "located"
	PropertySourceStreet  = "street"
	PropertySourceHeader  = "header"
)

const (
	propertyMaxRunes = 160
	headerMaxRunes   = 90
	headerLines      = 3
	dwellingWindow   = 60 // bytes before "ubicado en" that must hold a dwelling noun
	domicileWindow   = 80 // bytes before a match checked for a personal domicile
	propertyCapture  = 240
)

const locatedExpr = `\b(?:ubicad[oa]|sit[oa]|situad[oa])\s+en\s+`

var (
	objectClauses = []*regexp.Regexp{
		regexp.MustCompile(`(?is)\bunidad\s+funcional\s+(?:n\s*[°º.o]*\s*)?[\w-]+[^;]{0,60}?` + locatedExpr),
		regexp.MustCompile(`(?is)\binmueble\s+objeto\s+de(?:l|\s+este|\s+(?:el\s+)?presente)[^;]{0,80}?` + locatedExpr),
		regexp.MustCompile(`(?is)\b(?:da|dan|otorga|otorgan|cede|ceden|entrega|entregan)\s+en\s+(?:locaci[oó]n|comodato|alquiler)[^;]{0,160}?` + locatedExpr),
	}

	located      = regexp.MustCompile(`(?i)` + locatedExpr)
	dwellingNoun = regexp.MustCompile(`(?i)\b(?:inmueble|departamento|unidad|vivienda|casa|local|propiedad|cochera)\b`)
	streetStart  = regexp.MustCompile(`(?i)^(?:la\s+)?(?:calle|avenida|av\.|avda\.|pasaje|pje\.)\s+`)
	domicile     = regexp.MustCompile(`(?i)domicili`)

	headerStreet = regexp.MustCompile(`(?i)(?:^|[\s"(])(?:AV\.?|AVDA\.?|AVENIDA|CALLE|PASAJE|PJE\.?)\s`)
	headerNumber = regexp.MustCompile(`\b\d{2,5}\b`)
	headerCity   = regexp.MustCompile(`(?i)\b(?:CABA|C\.A\.B\.A|Ciudad\s+Aut[oó]noma\s+de\s+Buenos\s+Aires|Buenos\s+Aires|provincia|localidad)\b`)

	// propertyStop ends an address at the next clause
	propertyStop = regexp.MustCompile(`(?i);|\n\n|\s+de\s+esta\s+ciudad|,?\s*\(?\s*en\s+adelante|,?\s+(?:para\s+ser\s+destinad|con\s+destino|destinad[oa]\s+a|se\s+destin|el\s+cual|la\s+cual|que\s+consta|compuest[oa]\s+de)`)
)

// addressAbbreviations never end a sentence when followed by a period
var addressAbbreviations = map[string]bool{
	"av": true, "avda": true, "pje": true, "nro": true, "n": true, "no": true,
	"dto": true, "depto": true, "dpto": true, "gral": true, "pte": true,
	"sta": true, "sto": true, "dr": true, "ing": true, "cnel": true,
	"tte": true, "prov": true, "bs": true, "as": true, "pb": true,
	"uf": true, "int": true, "esq": true, "km": true, "mz": true, "lote": true,
}

type propertyStrategy struct {
	name  string
	match func(text string) (string, bool)
}

// PropertyLocator extracts the leased property's address
type PropertyLocator struct {
	strategies []propertyStrategy
}

// NewPropertyLocator creates a locator with the built-in strategy chain
func NewPropertyLocator() *PropertyLocator {
	return &PropertyLocator{
		strategies: []propertyStrategy{
			{name: PropertySourceObject, match: matchObjectClause},
			{name: PropertySourceLocated, match: matchLocatedDwelling},
			{name: PropertySourceStreet, match: matchLocatedStreet},
			{name: PropertySourceHeader, match: matchHeaderLine},
		},
	}
}

// Resolve returns the first address produced by the chain and the tag of the
// strategy that produced it. A nil label means no strategy matched.
func (l *PropertyLocator) Resolve(text string) (*string, string) {
	for _, s := range l.strategies {
		if label, ok := s.match(text); ok {
			return &label, s.name
		}
	}
	return nil, ""
}

func matchObjectClause(text string) (string, bool) {
	for _, re := range objectClauses {
		for _, loc := range re.FindAllStringIndex(text, -1) {
			if label, ok := finishAddress(capture(text, loc[1])); ok {
				return label, true
			}
		}
	}
	return "", false
}

func matchLocatedDwelling(text string) (string, bool) {
	for _, loc := range located.FindAllStringIndex(text, -1) {
		if isDomicile(text, loc[0]) {
			continue
		}
		if !dwellingNoun.MatchString(text[windowStart(loc[0], dwellingWindow):loc[0]]) {
			continue
		}
		if label, ok := finishAddress(capture(text, loc[1])); ok {
			return label, true
		}
	}
	return "", false
}

func matchLocatedStreet(text string) (string, bool) {
	for _, loc := range located.FindAllStringIndex(text, -1) {
		if isDomicile(text, loc[0]) {
			continue
		}
		rest := capture(text, loc[1])
		if !streetStart.MatchString(rest) {
			continue
		}
		if label, ok := finishAddress(rest); ok {
			return label, true
		}
	}
	return "", false
}

// matchHeaderLine looks for an address printed as a document heading,
// e.g. `AV. FEDERICO LACROZE 3060 9° "F" - CABA`.
func matchHeaderLine(text string) (string, bool) {
	seen := 0
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if seen++; seen > headerLines {
			break
		}
		if !headerStreet.MatchString(line) || !headerNumber.MatchString(line) || !headerCity.MatchString(line) {
			continue
		}
		label := trimAddress(truncateRunes(line, headerMaxRunes))
		if label != "" {
			return label, true
		}
	}
	return "", false
}

// isDomicile reports whether the sentence holding the match, up to
// domicileWindow bytes back, names a party's domicile
func isDomicile(text string, at int) bool {
	window := text[windowStart(at, domicileWindow):at]
	if breaks := sentenceBreak.FindAllStringIndex(window, -1); len(breaks) > 0 {
		window = window[breaks[len(breaks)-1][1]:]
	}
	return domicile.MatchString(window)
}

func windowStart(at, size int) int {
	if at < size {
		return 0
	}
	return at - size
}

func capture(text string, from int) string {
	to := from + propertyCapture
	if to >= len(text) {
		return text[from:]
	}
	for to > from && !utf8.RuneStart(text[to]) {
		to--
	}
	return text[from:to]
}

// finishAddress cuts a captured span at its clause terminator and cleans it
func finishAddress(raw string) (string, bool) {
	s := raw
	if loc := propertyStop.FindStringIndex(s); loc != nil {
		s = s[:loc[0]]
	}
	s = cutSentence(s)
	s = strings.TrimPrefix(s, "la ")
	s = trimAddress(s)

	if utf8.RuneCountInString(s) < 5 || !strings.ContainsFunc(s, unicode.IsLetter) {
		return "", false
	}
	return truncateRunes(s, propertyMaxRunes), true
}

// cutSentence ends s at the first period that closes a sentence. Periods
// inside numbers ("1.234") or acronyms ("C.A.B.A") and after address
// abbreviations ("Av.", "Dto.") are kept.
func cutSentence(s string) string {
	for i := 0; i < len(s); i++ {
		if s[i] != '.' {
			continue
		}
		if i+1 < len(s) && s[i+1] != ' ' && s[i+1] != '\n' {
			continue
		}
		word := lastWord(s[:i])
		if addressAbbreviations[foldKey(word)] {
			continue
		}
		// a lone initial continues the address, the last letter of an acronym ends it
		if at := i - len(word) - 1; isInitial(word) && (at < 0 || s[at] != '.') {
			continue
		}
		return s[:i]
	}
	return s
}

func isInitial(word string) bool {
	r, size := utf8.DecodeRuneInString(word)
	return size == len(word) && unicode.IsUpper(r)
}

func lastWord(s string) string {
	i := strings.LastIndexAny(s, " .,")
	return s[i+1:]
}

func trimAddress(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	s = strings.Trim(s, ` "'.,;:()-`)
	return strings.TrimSpace(s)
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return strings.TrimSpace(string([]rune(s)[:n]))
}
