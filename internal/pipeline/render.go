package pipeline

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ppiankov/clausula/internal/model"
)

// Renderer writes extractions as JSON and Markdown files and prints the
// console summary
type Renderer struct {
	includeFooter bool
}

// NewRenderer creates a renderer
func NewRenderer(includeFooter bool) *Renderer {
	return &Renderer{includeFooter: includeFooter}
}

// RenderJSON writes the full extraction as indented JSON
func (r *Renderer) RenderJSON(ext *model.Extraction, path string) error {
	data, err := json.MarshalIndent(ext, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}
	return writeFile(path, append(data, '\n'))
}

// RenderMarkdown writes a human-readable report
func (r *Renderer) RenderMarkdown(ext *model.Extraction, name, path string) error {
	return writeFile(path, []byte(r.Markdown(ext, name)))
}

// Markdown formats the extraction as a Markdown report
func (r *Renderer) Markdown(ext *model.Extraction, name string) string {
	var b strings.Builder
	rec := ext.Extracted

	fmt.Fprintf(&b, "# Contract extraction: %s\n\n", name)

	b.WriteString("| Field | Value | Source |\n|---|---|---|\n")
	row := func(field, value string) {
		source := ext.Sources[field]
		if source == "" {
			source = "-"
		}
		fmt.Fprintf(&b, "| %s | %s | %s |\n", field, value, source)
	}
	row(model.FieldPropertyLabel, orNull(rec.PropertyLabel))
	row(model.FieldOwnerName, orNull(rec.OwnerName))
	row(model.FieldTenantName, orNull(rec.TenantName))
	row(model.FieldStartDate, dateOrNull(rec.StartDate))
	row(model.FieldEndDate, dateOrNull(rec.EndDate))
	row(model.FieldAmount, amountOrNull(rec.Amount))
	row(model.FieldCurrency, string(rec.Currency))
	row(model.FieldAdjustment, adjustmentLabel(rec.Adjustment))

	if ext.Confidence != nil {
		fmt.Fprintf(&b, "\n## Confidence: %d/100 (%s)\n\n", ext.Confidence.Index, ext.Confidence.Level)
		for _, s := range ext.Confidence.Signals {
			fmt.Fprintf(&b, "- **%s** [%s] %s\n", s.Type, s.Severity, s.Description)
		}
	}

	if len(ext.Warnings) > 0 {
		b.WriteString("\n## Warnings\n\n")
		for _, w := range ext.Warnings {
			fmt.Fprintf(&b, "- %s\n", w)
		}
	}

	if ext.TextPreview != "" {
		b.WriteString("\n## Text preview\n\n```\n")
		b.WriteString(ext.TextPreview)
		b.WriteString("\n```\n")
	}

	if r.includeFooter {
		b.WriteString("\n---\n\n_Values are heuristic suggestions; confirm them before saving the contract._\n")
	}

	return b.String()
}

// RenderSummary prints a short summary to stdout
func (r *Renderer) RenderSummary(ext *model.Extraction, name string) {
	rec := ext.Extracted

	fmt.Printf("\n%s\n", name)
	fmt.Printf("  Property:   %s\n", orNull(rec.PropertyLabel))
	fmt.Printf("  Owner:      %s\n", orNull(rec.OwnerName))
	fmt.Printf("  Tenant:     %s\n", orNull(rec.TenantName))
	fmt.Printf("  Period:     %s → %s\n", dateOrNull(rec.StartDate), dateOrNull(rec.EndDate))
	fmt.Printf("  Amount:     %s %s\n", amountOrNull(rec.Amount), rec.Currency)
	fmt.Printf("  Adjustment: %s\n", adjustmentLabel(rec.Adjustment))
	if ext.Confidence != nil {
		fmt.Printf("  Confidence: %d/100 (%s)\n", ext.Confidence.Index, ext.Confidence.Level)
	}
	if len(ext.Warnings) > 0 {
		warnings := append([]string(nil), ext.Warnings...)
		sort.Strings(warnings)
		fmt.Printf("  Warnings:   %s\n", strings.Join(warnings, ", "))
	}
}

func writeFile(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write file: %w", err)
	}
	return nil
}

func orNull(s *string) string {
	if s == nil {
		return "null"
	}
	return *s
}

func dateOrNull(d *model.Date) string {
	if d == nil {
		return "null"
	}
	return d.String()
}

func amountOrNull(a *model.Amount) string {
	if a == nil {
		return "null"
	}
	return a.Decimal.StringFixed(2)
}

func adjustmentLabel(a model.Adjustment) string {
	if a.Type == model.AdjustmentNone {
		return string(a.Type)
	}
	return fmt.Sprintf("%s (every %d months)", a.Type, a.FrequencyMonths)
}
