package extract

import (
	"regexp"

	"github.com/ppiankov/clausula/internal/model"
)

const cueRadius = 250 // bytes inspected on each side of an IPC mention

var (
	ipcCue = regexp.MustCompile(`(?i)\bI\.?\s?P\.?\s?C\b|[ÍI]ndice\s+de\s+precios\s+al\s+consumidor`)

	quarterlyCue = regexp.MustCompile(`(?i)\btrimestral(?:mente|es)?\b|\bcada\s+(?:tres\s*)?\(?\s*3?\s*\)?\s*meses\b|\bpor\s+trimestre\b`)
	monthlyCue   = regexp.MustCompile(`(?i)\bmensualmente\b|\bcada\s+mes\b|\bcada\s+un\s*\(?\s*1\s*\)?\s*mes\b|\b(?:ajuste|actualizaci[oó]n|actualizar[aá]|ajustar[aá])\s+(?:en\s+forma\s+)?mensual\b|\ben\s+forma\s+mensual\b|\bde\s+manera\s+mensual\b`)
)

// AdjustmentClassifier decides whether rent follows the consumer price
// index and how often. The period used when the index is cited without one
// is a heuristic and configurable.
type AdjustmentClassifier struct {
	defaultMonths int
}

// NewAdjustmentClassifier creates a classifier. defaultMonths is applied
// when an IPC clause names no period; 1 selects monthly, anything else
// quarterly.
func NewAdjustmentClassifier(defaultMonths int) *AdjustmentClassifier {
	return &AdjustmentClassifier{defaultMonths: defaultMonths}
}

// Classify inspects the text around each IPC mention for a period cue.
// Only peso contracts are indexed.
func (c *AdjustmentClassifier) Classify(text string, currency model.Currency) model.Adjustment {
	if currency != model.CurrencyARS {
		return model.NoAdjustment()
	}

	cues := ipcCue.FindAllStringIndex(text, -1)
	if len(cues) == 0 {
		return model.NoAdjustment()
	}

	// Quarterly first: "canon mensual" is common in quarterly clauses
	for _, loc := range cues {
		if quarterlyCue.MatchString(around(text, loc)) {
			return model.IPCQuarterly()
		}
	}
	for _, loc := range cues {
		if monthlyCue.MatchString(around(text, loc)) {
			return model.IPCMonthly()
		}
	}

	if c.defaultMonths == 1 {
		return model.IPCMonthly()
	}
	return model.IPCQuarterly()
}

func around(text string, loc []int) string {
	from := windowStart(loc[0], cueRadius)
	to := loc[1] + cueRadius
	if to > len(text) {
		to = len(text)
	}
	return text[from:to]
}
