package extract

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/ppiankov/clausula/internal/model"
)

// Date strategy tags, in priority order
const (
	DateSourceNumericRange = "numeric_range"
	DateSourceSpelledRange = "spelled_range"
	DateSourceIndependent  = "independent"
	DateSourceSigningTerm  = "signing_term"
	DateSourceScan         = "scan"
)

const (
	cueLookahead = 120 // bytes after a cue searched for its date
	rangeSpan    = 250 // max distance between the two dates of a range
)

// months maps Spanish month names to their number. Both spellings of
// September are in use.
var months = map[string]int{
	"enero": 1, "febrero": 2, "marzo": 3, "abril": 4, "mayo": 5, "junio": 6,
	"julio": 7, "agosto": 8, "septiembre": 9, "setiembre": 9, "octubre": 10,
	"noviembre": 11, "diciembre": 12,
}

const monthExpr = `(enero|febrero|marzo|abril|mayo|junio|julio|agosto|septiembre|setiembre|octubre|noviembre|diciembre)`

var (
	numericDate = regexp.MustCompile(`\b(\d{1,2})[/.-](\d{1,2})[/.-](\d{4}|\d{2})\b`)
	spelledDate = regexp.MustCompile(`(?i)\b(\d{1,2})\s*(?:º|°|ero|er|ro|o)?\s+de\s+` + monthExpr + `\s+(?:de|del)\s+(?:año\s+)?(\d{4})\b`)

	rangeStartCue = regexp.MustCompile(`(?i)\b(?:comenzando|comienza|comenzar[aá]|a\s+partir\s+del?|desde\s+el)\s`)
	rangeEndCue   = regexp.MustCompile(`(?i)\b(?:finalizando|finalizar[aá]|venciendo|culminando|terminando|hasta\s+el)\s`)

	startCue = regexp.MustCompile(`(?i)\b(?:comenzando|comienza|comenzar[aá]|inicia|iniciar[aá]|rige|regir[aá]|a\s+partir\s+del?|desde\s+el|con\s+fecha)\s`)
	endCue   = regexp.MustCompile(`(?i)\b(?:finalizando|venciendo|culminando|terminando|hasta\s+el|vence|vencer[aá]|finaliza|finalizar[aá]|termina|terminar[aá]|concluye|concluir[aá])\s`)

	signingClause = regexp.MustCompile(`(?i)\ba\s+los\s+(?:[a-záéíóúñ]+\s+)?\(?(\d{1,2})\)?\s+d[ií]as?\s+(?:del\s+mes\s+)?de\s+` + monthExpr + `\s+(?:de|del)\s+(?:año\s+)?(\d{4})\b`)
	signatureDay  = regexp.MustCompile(`(?i)\bel\s+d[ií]a\s+(\d{1,2})\s+de\s+` + monthExpr + `\s+(?:de|del)\s+(?:año\s+)?(\d{4})\b`)

	termClause = regexp.MustCompile(`(?i)\b(?:plazo|t[eé]rmino)\s+(?:de\s+)?(?:[^\s\d()]+\s+){0,3}\(?\s*(\d{1,3})\s*\)?\s*(meses|mes|años|año)\b`)
)

// dateGrammar pairs a date pattern with its parser
type dateGrammar struct {
	re    *regexp.Regexp
	parse func(groups []string) (model.Date, bool)
}

var (
	numericGrammar = dateGrammar{re: numericDate, parse: parseNumericDate}
	spelledGrammar = dateGrammar{re: spelledDate, parse: parseSpelledDate}
)

// parseNumericDate reads D/M/Y groups. Two-digit years are 20YY.
func parseNumericDate(g []string) (model.Date, bool) {
	day, _ := strconv.Atoi(g[1])
	month, _ := strconv.Atoi(g[2])
	year, _ := strconv.Atoi(g[3])
	if len(g[3]) == 2 {
		year += 2000
	}
	return model.NewDate(year, month, day)
}

// parseSpelledDate reads D, month name, Y groups
func parseSpelledDate(g []string) (model.Date, bool) {
	month, ok := months[strings.ToLower(g[2])]
	if !ok {
		return model.Date{}, false
	}
	day, _ := strconv.Atoi(g[1])
	year, _ := strconv.Atoi(g[3])
	return model.NewDate(year, month, day)
}

// ParseNumericDate parses a single D/M/Y, D-M-Y or D.M.Y date
func ParseNumericDate(s string) (model.Date, bool) {
	g := numericDate.FindStringSubmatch(strings.TrimSpace(s))
	if g == nil || len(g[0]) != len(strings.TrimSpace(s)) {
		return model.Date{}, false
	}
	return parseNumericDate(g)
}

// ParseSpelledDate parses a single "D de MES de Y" date
func ParseSpelledDate(s string) (model.Date, bool) {
	g := spelledDate.FindStringSubmatch(strings.TrimSpace(s))
	if g == nil || len(g[0]) != len(strings.TrimSpace(s)) {
		return model.Date{}, false
	}
	return parseSpelledDate(g)
}

// dateAfter finds the earliest date of any grammar in text[from:from+limit].
// end is the absolute offset just past the date. An earliest match that is
// not a real calendar date yields ok=false rather than a later date.
func dateAfter(text string, from, limit int, grammars ...dateGrammar) (d model.Date, end int, ok bool) {
	to := from + limit
	if to > len(text) {
		to = len(text)
	}
	segment := text[from:to]

	best := -1
	var groups []string
	var parse func([]string) (model.Date, bool)
	for _, g := range grammars {
		loc := g.re.FindStringSubmatchIndex(segment)
		if loc == nil || (best >= 0 && loc[0] >= best) {
			continue
		}
		best = loc[0]
		groups = submatches(segment, loc)
		parse = g.parse
		end = from + loc[1]
	}
	if best < 0 {
		return model.Date{}, 0, false
	}
	d, ok = parse(groups)
	return d, end, ok
}

func submatches(s string, loc []int) []string {
	out := make([]string, len(loc)/2)
	for i := range out {
		if loc[2*i] >= 0 {
			out[i] = s[loc[2*i]:loc[2*i+1]]
		}
	}
	return out
}

// DateResult holds the resolved bounds and the strategy that filled each
type DateResult struct {
	Start       *model.Date
	End         *model.Date
	StartSource string
	EndSource   string
}

type dateStrategy struct {
	name  string
	match func(text string, cur DateResult) (start, end *model.Date)
}

// DateResolver extracts the lease start and end dates
type DateResolver struct {
	strategies []dateStrategy
}

// NewDateResolver creates a resolver with the built-in strategy chain
func NewDateResolver() *DateResolver {
	return &DateResolver{
		strategies: []dateStrategy{
			{name: DateSourceNumericRange, match: rangeMatcher(numericGrammar)},
			{name: DateSourceSpelledRange, match: rangeMatcher(spelledGrammar)},
			{name: DateSourceIndependent, match: matchIndependent},
			{name: DateSourceSigningTerm, match: matchSigningTerm},
			{name: DateSourceScan, match: matchScan},
		},
	}
}

// Resolve runs the chain in priority order. Each strategy only fills the
// bounds that are still missing, so a later strategy can complete a partial
// result from an earlier one.
func (r *DateResolver) Resolve(text string) DateResult {
	var res DateResult
	for _, s := range r.strategies {
		if res.Start != nil && res.End != nil {
			break
		}
		start, end := s.match(text, res)
		if res.Start == nil && start != nil {
			res.Start, res.StartSource = start, s.name
		}
		if res.End == nil && end != nil {
			res.End, res.EndSource = end, s.name
		}
	}
	return res
}

// rangeMatcher reads "comenzando el DATE ... finalizando el DATE" with both
// dates in the same grammar and at most rangeSpan bytes apart.
func rangeMatcher(g dateGrammar) func(string, DateResult) (*model.Date, *model.Date) {
	return func(text string, _ DateResult) (*model.Date, *model.Date) {
		for _, cue := range rangeStartCue.FindAllStringIndex(text, -1) {
			start, startEnd, ok := dateAfter(text, cue[1], cueLookahead, g)
			if !ok {
				continue
			}
			to := startEnd + rangeSpan
			if to > len(text) {
				to = len(text)
			}
			endCue := rangeEndCue.FindStringIndex(text[startEnd:to])
			if endCue == nil {
				continue
			}
			end, _, ok := dateAfter(text, startEnd+endCue[1], cueLookahead, g)
			if !ok {
				continue
			}
			return &start, &end
		}
		return nil, nil
	}
}

// matchIndependent looks for start and end cues separately
func matchIndependent(text string, _ DateResult) (*model.Date, *model.Date) {
	return firstCueDate(text, startCue), firstCueDate(text, endCue)
}

func firstCueDate(text string, cue *regexp.Regexp) *model.Date {
	for _, loc := range cue.FindAllStringIndex(text, -1) {
		if d, _, ok := dateAfter(text, loc[1], cueLookahead, numericGrammar, spelledGrammar); ok {
			return &d
		}
	}
	return nil
}

// matchSigningTerm uses the execution date as start when none was found and
// derives the end from the lease term when possible.
func matchSigningTerm(text string, cur DateResult) (*model.Date, *model.Date) {
	start := cur.Start
	var signed *model.Date
	if start == nil {
		signed = signingDate(text)
		start = signed
	}
	if cur.End != nil || start == nil {
		return signed, nil
	}

	n, ok := termMonths(text)
	if !ok {
		return signed, nil
	}
	end := start.AddMonths(n)
	return signed, &end
}

// signingDate finds "a los D días del mes de MES de Y" anywhere, or
// "el día D de MES de Y" in the signature region.
func signingDate(text string) *model.Date {
	if g := signingClause.FindStringSubmatch(text); g != nil {
		if d, ok := parseSpelledDate(g); ok {
			return &d
		}
	}
	if g := signatureDay.FindStringSubmatch(text[signatureTail(text):]); g != nil {
		if d, ok := parseSpelledDate(g); ok {
			return &d
		}
	}
	return nil
}

// termMonths reads "plazo de veinticuatro (24) meses" or "término de 2 años"
// as a number of months.
func termMonths(text string) (int, bool) {
	for _, g := range termClause.FindAllStringSubmatch(text, -1) {
		n, err := strconv.Atoi(g[1])
		if err != nil || n <= 0 {
			continue
		}
		if strings.HasPrefix(strings.ToLower(g[2]), "a") {
			n *= 12
		}
		return n, true
	}
	return 0, false
}

// matchScan reads the first two numeric dates in document order as start
// and end. Each token keeps its slot, so an impossible first date leaves the
// start empty instead of promoting the second. An end that would precede the
// start is not used.
func matchScan(text string, cur DateResult) (*model.Date, *model.Date) {
	tokens := numericDate.FindAllStringSubmatch(text, 2)
	if len(tokens) == 0 {
		return nil, nil
	}

	var start, end *model.Date
	if d, ok := parseNumericDate(tokens[0]); ok {
		start = &d
	}
	if len(tokens) > 1 {
		if d, ok := parseNumericDate(tokens[1]); ok {
			end = &d
		}
	}

	from := start
	if cur.Start != nil {
		from = cur.Start
	}
	if end != nil && from != nil && end.Before(*from) {
		end = nil
	}
	return start, end
}
