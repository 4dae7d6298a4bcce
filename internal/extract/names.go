package extract

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// idMarkerExpr matches the identity-document markers that follow a party's
// name: DNI, D.N.I., CUIT, CUIL, L.E., L.C., pasaporte, documento nacional...
const idMarkerExpr = `(?i:\bD\.?\s?N\.?\s?I\b\.?|\bC\.?\s?U\.?\s?I\.?\s?[TL]\b\.?|\bL\.\s?[EC]\.|\bpasaporte|\bdocumento(?:\s+nacional)?(?:\s+de\s+identidad)?)`

const (
	nameWordExpr      = `(?:[A-ZÁÉÍÓÚÑÜ][a-záéíóúñü]+|[A-ZÁÉÍÓÚÑÜ]{2,})`
	nameConnectorExpr = `(?:de|del|la|las|los|y|DE|DEL|LA|LAS|LOS|Y)`
)

var (
	idMarker = regexp.MustCompile(idMarkerExpr)

	// idAfterName is anchored: it tests the text right after a name
	idAfterName = regexp.MustCompile(`^[ \t]*,?\s*(?i:(?:con|titular\s+del?|portador[a]?\s+del?|quien\s+acredita\s+(?:su\s+)?identidad\s+con)\s+)?` + idMarkerExpr)

	// nameRun is two or more capitalized words on one line
	nameRun = regexp.MustCompile(nameWordExpr + `(?:[ \t]+(?:` + nameConnectorExpr + `[ \t]+)*` + nameWordExpr + `)+`)

	honorific = regexp.MustCompile(`^(?i:(?:el|la)\s+)?(?i:señora?|señorita|sr|sra|srta|don|doña|dr|dra|ing|lic|suscript[oa]|firmante)(?:[\s:,.]+)`)

	nameTail = regexp.MustCompile(`(?i)[,;(]|\s+(?:con|quien|de\s+nacionalidad|mayor\s+de\s+edad|en\s+adelante|en\s+su\s+car|argentin[oa]s?|nacid[oa]|domiciliad[oa]|casad[oa]|solter[oa]|divorciad[oa]|viud[oa])\b`)

	// accentFolder strips combining marks so "Pérez" and "PEREZ" compare equal
	accentFolder = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	caseFolder   = cases.Fold()
)

// leadingNoise are words that often precede a name in a clause and are
// dropped from the front (and back) of a raw match.
var leadingNoise = map[string]bool{
	"entre": true, "el": true, "la": true, "los": true, "las": true, "y": true,
	"por": true, "otra": true, "una": true, "parte": true, "senor": true,
	"senora": true, "sr": true, "sra": true, "don": true, "dona": true,
	"dr": true, "dra": true, "suscripto": true, "suscripta": true,
	"firmante": true, "firma": true, "aclaracion": true, "que": true,
	"quien": true, "denominado": true, "denominada": true, "conste": true,
}

// nonNameWords disqualify a candidate wherever they appear in it
var nonNameWords = map[string]bool{
	"locador": true, "locadora": true, "locatario": true, "locataria": true,
	"comodante": true, "comodatario": true, "comodataria": true,
	"propietario": true, "propietaria": true, "inquilino": true, "inquilina": true,
	"garante": true, "fiador": true, "fiadora": true, "contrato": true,
	"locacion": true, "comodato": true, "clausula": true, "inmueble": true,
	"departamento": true, "ciudad": true, "buenos": true, "aires": true,
	"caba": true, "republica": true, "argentina": true, "provincia": true,
	"calle": true, "avenida": true, "pesos": true, "dolares": true,
	"presente": true, "partes": true, "parte": true, "firma": true,
	"aclaracion": true, "dni": true, "cuit": true, "cuil": true,
}

// foldKey reduces a name to a case- and accent-insensitive comparison key
func foldKey(s string) string {
	folded, _, err := transform.String(accentFolder, s)
	if err != nil {
		folded = s
	}
	return strings.Join(strings.Fields(caseFolder.String(folded)), " ")
}

// sameName reports whether two names refer to the same person textually
func sameName(a, b string) bool {
	return foldKey(a) == foldKey(b)
}

// cleanName turns a raw match into a person name, or reports false when
// what is left does not look like one.
func cleanName(raw string) (string, bool) {
	s := strings.Join(strings.Fields(raw), " ")

	if loc := idMarker.FindStringIndex(s); loc != nil {
		s = s[:loc[0]]
	}
	if loc := nameTail.FindStringIndex(s); loc != nil {
		s = s[:loc[0]]
	}

	for {
		stripped := honorific.ReplaceAllString(s, "")
		if stripped == s {
			break
		}
		s = stripped
	}
	s = trimNoiseWords(strings.Trim(s, ` ,.;:-"'`))
	s = strings.Trim(s, ` ,.;:-"'`)

	if !plausibleName(s) {
		return "", false
	}
	return s, true
}

// trimNoiseWords drops leadingNoise words from both ends
func trimNoiseWords(s string) string {
	words := strings.Fields(s)
	for len(words) > 0 && leadingNoise[foldKey(strings.Trim(words[0], ".:,"))] {
		words = words[1:]
	}
	for len(words) > 0 && leadingNoise[foldKey(strings.Trim(words[len(words)-1], ".:,"))] {
		words = words[:len(words)-1]
	}
	return strings.Join(words, " ")
}

func plausibleName(s string) bool {
	if utf8.RuneCountInString(s) < 3 {
		return false
	}
	if strings.ContainsAny(s, "@/") {
		return false
	}

	words := strings.Fields(s)
	if len(words) > 8 {
		return false
	}
	for _, w := range words {
		if nonNameWords[foldKey(strings.Trim(w, ".,:"))] {
			return false
		}
	}

	first, _ := utf8.DecodeRuneInString(s)
	if !unicode.IsUpper(first) {
		return false
	}

	hasLetter := false
	for _, r := range s {
		if unicode.IsDigit(r) {
			return false
		}
		if unicode.IsLetter(r) {
			hasLetter = true
		}
	}
	return hasLetter
}

// pickName cleans a loosely captured span; when the span as a whole is not a
// name it falls back to the last capitalized run inside it.
func pickName(raw string) (string, bool) {
	if name, ok := cleanName(raw); ok {
		return name, true
	}
	runs := nameRun.FindAllString(raw, -1)
	for i := len(runs) - 1; i >= 0; i-- {
		if name, ok := cleanName(runs[i]); ok {
			return name, true
		}
	}
	return "", false
}

// nameMatch is a cleaned name and where it starts in the searched text
type nameMatch struct {
	Name   string
	Offset int
}

// namesBeforeID returns, in document order, every name that is immediately
// followed by an identity-document marker.
func namesBeforeID(segment string) []nameMatch {
	var found []nameMatch
	for _, loc := range nameRun.FindAllStringIndex(segment, -1) {
		start, end := loc[0], loc[1]
		run := segment[start:end]

		// An all-caps run can swallow the marker itself ("JUAN PEREZ DNI")
		if inner := idMarker.FindStringIndex(run); inner != nil {
			end = start + inner[0]
			run = segment[start:end]
		}

		rest := segment[end:]
		if len(rest) > 120 {
			rest = rest[:120]
		}
		if !idAfterName.MatchString(rest) {
			continue
		}
		if name, ok := cleanName(run); ok {
			found = append(found, nameMatch{Name: name, Offset: start})
		}
	}
	return found
}

// firstName and lastName return the first/last plausible capitalized run
func firstName(segment string) (string, bool) {
	for _, run := range nameRun.FindAllString(segment, -1) {
		if name, ok := cleanName(run); ok {
			return name, true
		}
	}
	return "", false
}

func lastName(segment string) (string, bool) {
	runs := nameRun.FindAllString(segment, -1)
	for i := len(runs) - 1; i >= 0; i-- {
		if name, ok := cleanName(runs[i]); ok {
			return name, true
		}
	}
	return "", false
}
