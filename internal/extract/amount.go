package extract

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/ppiankov/clausula/internal/model"
)

const (
	baseScore     = 10
	decoyPenalty  = 6
	amountReach   = 200 // bytes after an anchor searched for a money expression
	sentenceReach = 120 // bytes before an anchor searched for the sentence start
	trailingReach = 60  // bytes after the amount kept in the scoring window
)

const numberExpr = `(\d{1,3}(?:[.,]\d{3})+(?:[.,]\d{1,2})?|\d+(?:[.,]\d{1,2})?)`

var (
	rentAnchor = regexp.MustCompile(`(?i)\b(?:canon\s+(?:locativo|mensual)|alquiler|precio\s+(?:mensual|locativo|del\s+alquiler)|valor\s+mensual|pago\s+mensual|cuota\s+mensual|monto\s+mensual)`)

	decoyWords = regexp.MustCompile(`(?i)\b(?:multa|penalidad|punitorio|dep[oó]sito|garant[ií]a|intereses|mora\b|cl[aá]usula\s+penal)`)

	dollarWord = regexp.MustCompile(`(?i)d[oó]lar`)

	sentenceBreak = regexp.MustCompile(`\.\s|;|\n`)
)

// moneyPattern is one way of writing an amount; the number is group 1
type moneyPattern struct {
	re       *regexp.Regexp
	currency model.Currency
}

var moneyPatterns = []moneyPattern{
	{regexp.MustCompile(`(?i)(?:U\$S|US\$|U\$D|USD)\s*` + numberExpr), model.CurrencyUSD},
	{regexp.MustCompile(numberExpr + `\s*(?i:USD|U\$S|d[oó]lares)`), model.CurrencyUSD},
	{regexp.MustCompile(`(?i)d[oó]lares\b[^$\d]{0,80}?\(\s*(?:U\$S|US\$|USD)\s*` + numberExpr), model.CurrencyUSD},
	{regexp.MustCompile(`(?i)\bpesos\b[^$\d]{0,80}?\(\s*\$?\s*` + numberExpr), model.CurrencyARS},
	{regexp.MustCompile(`(?i)\bpesos\s+` + numberExpr), model.CurrencyARS},
	{regexp.MustCompile(`\$\s*` + numberExpr), model.CurrencyARS},
}

// Money is a parsed amount with its currency
type Money struct {
	Amount   decimal.Decimal
	Currency model.Currency
}

// AmountResult is the selected rent amount. Amount is nil when no anchored
// candidate exists; Currency is then ARS.
type AmountResult struct {
	Amount   *model.Amount
	Currency model.Currency
	Source   string
	Score    int
}

// AmountResolver finds the rent amount among every money expression that
// follows a rent anchor, scoring each against nearby decoy words.
type AmountResolver struct{}

// NewAmountResolver creates an amount resolver
func NewAmountResolver() *AmountResolver {
	return &AmountResolver{}
}

// Resolve picks the best-scoring candidate
func (r *AmountResolver) Resolve(text string) AmountResult {
	best, ok := model.Best(r.Candidates(text))
	if !ok {
		return AmountResult{Currency: model.CurrencyARS}
	}
	return AmountResult{
		Amount:   model.NewAmount(best.Value.Amount),
		Currency: best.Value.Currency,
		Source:   best.Source,
		Score:    best.Score,
	}
}

// Candidates returns one scored candidate per anchored money expression, in
// document order. Offset is the position of the amount itself.
func (r *AmountResolver) Candidates(text string) []model.Candidate[Money] {
	var cands []model.Candidate[Money]
	seen := make(map[int]bool)

	for _, anchor := range rentAnchor.FindAllStringIndex(text, -1) {
		start, end, money, ok := moneyAfter(text, anchor[1])
		if !ok || seen[start] {
			continue
		}
		seen[start] = true

		if money.Currency == model.CurrencyARS && dollarWord.MatchString(text[anchor[1]:start]) {
			money.Currency = model.CurrencyUSD
		}

		cands = append(cands, model.Candidate[Money]{
			Value:  money,
			Score:  Score(scoringWindow(text, anchor[0], end)),
			Source: strings.ToLower(strings.Join(strings.Fields(text[anchor[0]:anchor[1]]), " ")),
			Offset: start,
		})
	}
	return cands
}

// moneyAfter returns the earliest parseable money expression within
// amountReach bytes of from. On equal positions the earlier pattern wins,
// so "U$S 500" is read as dollars rather than "$ 500" pesos.
func moneyAfter(text string, from int) (start, end int, money Money, ok bool) {
	to := from + amountReach
	if to > len(text) {
		to = len(text)
	}
	segment := text[from:to]

	start = -1
	for _, p := range moneyPatterns {
		loc := p.re.FindStringSubmatchIndex(segment)
		if loc == nil || (start >= 0 && from+loc[0] >= start) {
			continue
		}
		amount, parsed := ParseAmount(segment[loc[2]:loc[3]])
		if !parsed {
			continue
		}
		start, end = from+loc[0], from+loc[1]
		money = Money{Amount: amount, Currency: p.currency}
		ok = true
	}
	return start, end, money, ok
}

// scoringWindow spans from the start of the anchor's sentence to the end of
// the sentence holding the amount, bounded on both sides.
func scoringWindow(text string, anchorStart, moneyEnd int) string {
	from := windowStart(anchorStart, sentenceReach)
	if breaks := sentenceBreak.FindAllStringIndex(text[from:anchorStart], -1); len(breaks) > 0 {
		from += breaks[len(breaks)-1][1]
	}

	to := moneyEnd + trailingReach
	if to > len(text) {
		to = len(text)
	}
	if loc := sentenceBreak.FindStringIndex(text[moneyEnd:to]); loc != nil {
		to = moneyEnd + loc[0]
	}
	return text[from:to]
}

// Score rates a rent candidate from the text around it: a base score, less
// a penalty when the window mentions a fine, deposit, guarantee or interest.
func Score(window string) int {
	score := baseScore
	if decoyWords.MatchString(window) {
		score -= decoyPenalty
	}
	return score
}

// ParseAmount reads a number written with either separator convention.
// With both '.' and ',' present the rightmost one is the decimal point.
// With a single kind, it groups thousands unless it occurs once and is
// followed by one or two digits.
func ParseAmount(s string) (decimal.Decimal, bool) {
	s = strings.Trim(strings.TrimSpace(s), ".,")
	if s == "" {
		return decimal.Decimal{}, false
	}

	lastDot := strings.LastIndexByte(s, '.')
	lastComma := strings.LastIndexByte(s, ',')

	var normalized string
	switch {
	case lastDot >= 0 && lastComma >= 0:
		dec, thousands := ".", ","
		if lastComma > lastDot {
			dec, thousands = ",", "."
		}
		normalized = strings.ReplaceAll(s, thousands, "")
		normalized = strings.Replace(normalized, dec, ".", 1)
	case lastDot >= 0 || lastComma >= 0:
		sep, at := ".", lastDot
		if lastComma >= 0 {
			sep, at = ",", lastComma
		}
		tail := len(s) - at - 1
		if strings.Count(s, sep) == 1 && tail >= 1 && tail <= 2 {
			normalized = strings.Replace(s, sep, ".", 1)
		} else {
			normalized = strings.ReplaceAll(s, sep, "")
		}
	default:
		normalized = s
	}

	d, err := decimal.NewFromString(normalized)
	if err != nil {
		return decimal.Decimal{}, false
	}
	return d, true
}
