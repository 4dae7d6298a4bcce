package score

import (
	"fmt"
	"math"
	"sort"

	"github.com/ppiankov/clausula/internal/extract"
	"github.com/ppiankov/clausula/internal/model"
)

// sourceTrust weighs each strategy tag by how structurally tied it is to the
// field it produced (1.0 = clause that names the field directly).
var sourceTrust = map[string]float64{
	extract.PartySourceStructural: 1.0,
	extract.PartySourceSignature:  1.0,
	extract.PartySourceLabel:      0.75,
	extract.PartySourcePositional: 0.5,

	extract.PropertySourceObject:  1.0,
	extract.PropertySourceLocated: 0.75,
	extract.PropertySourceStreet:  0.6,
	extract.PropertySourceHeader:  0.5,

	extract.DateSourceNumericRange: 1.0,
	extract.DateSourceSpelledRange: 1.0,
	extract.DateSourceIndependent:  0.75,
	extract.DateSourceSigningTerm:  0.6,
	extract.DateSourceScan:         0.3,
}

// Input is everything the scorer looks at. AmountScore is the winning
// amount candidate's score (0 when no amount was found).
type Input struct {
	Record        model.Record
	Sources       map[string]string
	AmountScore   int
	PartyConflict bool
}

// Scorer calculates the confidence index of an extraction and explains it
type Scorer struct{}

// NewScorer creates a new scorer
func NewScorer() *Scorer {
	return &Scorer{}
}

// Calculate scores an extraction. The score never changes the record.
func (s *Scorer) Calculate(in Input) model.Confidence {
	var signals []model.Signal

	// 1. Field coverage (0-50 points)
	coverageScore, coverageSignal := s.calculateCoverage(in.Record)
	signals = append(signals, coverageSignal)

	// 2. Source trust (0-40 points)
	trustScore, trustSignal := s.calculateTrust(in)
	signals = append(signals, trustSignal)

	// 3. Consistency (0-10 points, penalties below)
	total := coverageScore + trustScore + 10

	if in.PartyConflict {
		total -= 15
		signals = append(signals, model.Signal{
			Type:        model.SignalPartyConflict,
			Severity:    model.SeverityCritical,
			Description: "Owner and tenant resolved to the same name",
			Data: map[string]interface{}{
				"owner":   deref(in.Record.OwnerName),
				"penalty": 15,
			},
		})
	}

	if orderSignal, bad := s.checkDateOrder(in.Record); bad {
		total -= 10
		signals = append(signals, orderSignal)
	}

	if total < 0 {
		total = 0
	}

	return model.Confidence{
		Index:   total,
		Level:   s.determineLevel(total, in.PartyConflict),
		Signals: signals,
	}
}

// calculateCoverage scores how many nullable fields resolved (0-50 points)
func (s *Scorer) calculateCoverage(r model.Record) (int, model.Signal) {
	present := map[string]bool{
		model.FieldPropertyLabel: r.PropertyLabel != nil,
		model.FieldOwnerName:     r.OwnerName != nil,
		model.FieldTenantName:    r.TenantName != nil,
		model.FieldStartDate:     r.StartDate != nil,
		model.FieldEndDate:       r.EndDate != nil,
		model.FieldAmount:        r.Amount != nil,
	}

	var missing []string
	for field, ok := range present {
		if !ok {
			missing = append(missing, field)
		}
	}
	sort.Strings(missing)

	resolved := len(present) - len(missing)
	ratio := float64(resolved) / float64(len(present))
	score := int(math.Round(ratio * 50))

	severity := model.SeverityInfo
	if ratio < 0.5 {
		severity = model.SeverityCritical
	} else if ratio < 1.0 {
		severity = model.SeverityWarning
	}

	return score, model.Signal{
		Type:        model.SignalFieldCoverage,
		Severity:    severity,
		Description: fmt.Sprintf("Resolved %d/%d fields", resolved, len(present)),
		Data: map[string]interface{}{
			"resolved": resolved,
			"total":    len(present),
			"missing":  missing,
			"score":    score,
			"formula":  "resolved / total * 50",
		},
	}
}

// calculateTrust averages the trust of the strategies that produced each
// resolved field (0-40 points)
func (s *Scorer) calculateTrust(in Input) (int, model.Signal) {
	weights := make(map[string]float64)
	for field, source := range in.Sources {
		if field == model.FieldAmount {
			continue
		}
		if w, ok := sourceTrust[source]; ok {
			weights[field] = w
		}
	}
	if in.Record.Amount != nil && in.AmountScore > 0 {
		weights[model.FieldAmount] = math.Min(float64(in.AmountScore)/10, 1)
	}

	if len(weights) == 0 {
		return 0, model.Signal{
			Type:        model.SignalSourceTrust,
			Severity:    model.SeverityWarning,
			Description: "No field was resolved by any strategy",
			Data:        map[string]interface{}{"fields": 0},
		}
	}

	var sum float64
	var weak []string
	for field, w := range weights {
		sum += w
		if w < 0.5 {
			weak = append(weak, field)
		}
	}
	sort.Strings(weak)

	avg := sum / float64(len(weights))
	score := int(math.Round(avg * 40))

	severity := model.SeverityInfo
	if len(weak) > 0 {
		severity = model.SeverityWarning
	}

	return score, model.Signal{
		Type:        model.SignalSourceTrust,
		Severity:    severity,
		Description: fmt.Sprintf("Average strategy trust: %.2f", avg),
		Data: map[string]interface{}{
			"fields":  len(weights),
			"average": avg,
			"weak":    weak,
			"score":   score,
			"formula": "avg(strategy_trust) * 40",
		},
	}
}

// checkDateOrder flags an end date that is not after the start date
func (s *Scorer) checkDateOrder(r model.Record) (model.Signal, bool) {
	if r.StartDate == nil || r.EndDate == nil || r.StartDate.Before(*r.EndDate) {
		return model.Signal{}, false
	}
	return model.Signal{
		Type:        model.SignalDateOrder,
		Severity:    model.SeverityWarning,
		Description: fmt.Sprintf("End date %s is not after start date %s", r.EndDate, r.StartDate),
		Data: map[string]interface{}{
			"start":   r.StartDate.String(),
			"end":     r.EndDate.String(),
			"penalty": 10,
		},
	}, true
}

// determineLevel maps the index to a level; a party conflict caps it at medium
func (s *Scorer) determineLevel(index int, conflict bool) string {
	switch {
	case index >= 80 && !conflict:
		return "high"
	case index >= 55:
		return "medium"
	default:
		return "low"
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
