package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ppiankov/clausula/internal/cache"
	"github.com/ppiankov/clausula/internal/decode"
	"github.com/ppiankov/clausula/internal/extract"
	"github.com/ppiankov/clausula/internal/logger"
	"github.com/ppiankov/clausula/internal/model"
	"github.com/ppiankov/clausula/internal/score"
)

// ErrFileTooLarge is returned before decoding when the input exceeds the
// configured size limit
var ErrFileTooLarge = errors.New("file too large")

// Pipeline orchestrates decoding, field resolution and scoring
type Pipeline struct {
	registry   *decode.Registry
	cache      cache.Cache
	parties    *extract.PartyResolver
	property   *extract.PropertyLocator
	dates      *extract.DateResolver
	amounts    *extract.AmountResolver
	adjustment *extract.AdjustmentClassifier
	scorer     *score.Scorer
	renderer   *Renderer
	config     *model.Config
}

// NewPipeline creates a new pipeline with the given configuration
func NewPipeline(cfg *model.Config) *Pipeline {
	if cfg == nil {
		cfg = model.DefaultConfig()
	}
	return &Pipeline{
		registry:   decode.NewRegistry(),
		cache:      cache.New(cfg.Cache),
		parties:    extract.NewPartyResolver(),
		property:   extract.NewPropertyLocator(),
		dates:      extract.NewDateResolver(),
		amounts:    extract.NewAmountResolver(),
		adjustment: extract.NewAdjustmentClassifier(cfg.Extraction.DefaultIPCFrequency),
		scorer:     score.NewScorer(),
		renderer:   NewRenderer(cfg.Output.IncludeFooter),
		config:     cfg,
	}
}

// WithCache replaces the result cache
func (p *Pipeline) WithCache(c cache.Cache) *Pipeline {
	p.cache = c
	return p
}

// Extensions lists the file extensions ExtractFile accepts
func (p *Pipeline) Extensions() []string {
	return p.registry.Extensions()
}

// ExtractText resolves every field of raw contract text. It never fails:
// unresolved fields stay null and the record keeps its full shape.
func (p *Pipeline) ExtractText(ctx context.Context, raw string) *model.Extraction {
	log := logger.FromContext(ctx)
	text := extract.Normalize(raw)

	var (
		wg       sync.WaitGroup
		parties  extract.PartyResult
		property *string
		propSrc  string
		dates    extract.DateResult
		amount   extract.AmountResult
	)

	// Resolvers share nothing but the immutable text
	wg.Add(4)
	go func() {
		defer wg.Done()
		parties = p.parties.Resolve(text)
	}()
	go func() {
		defer wg.Done()
		property, propSrc = p.property.Resolve(text)
	}()
	go func() {
		defer wg.Done()
		dates = p.dates.Resolve(text)
	}()
	go func() {
		defer wg.Done()
		amount = p.amounts.Resolve(text)
	}()
	wg.Wait()

	record := model.NewRecord()
	record.PropertyLabel = property
	record.OwnerName = parties.Owner
	record.TenantName = parties.Tenant
	record.StartDate = dates.Start
	record.EndDate = dates.End
	record.Amount = amount.Amount
	record.Currency = amount.Currency
	record.Adjustment = p.adjustment.Classify(text, record.Currency)

	sources := make(map[string]string)
	addSource(sources, model.FieldPropertyLabel, propSrc, property != nil)
	addSource(sources, model.FieldOwnerName, parties.OwnerSource, parties.Owner != nil)
	addSource(sources, model.FieldTenantName, parties.TenantSource, parties.Tenant != nil)
	addSource(sources, model.FieldStartDate, dates.StartSource, dates.Start != nil)
	addSource(sources, model.FieldEndDate, dates.EndSource, dates.End != nil)
	addSource(sources, model.FieldAmount, amount.Source, amount.Amount != nil)

	var warnings []string
	if text == "" {
		warnings = append(warnings, model.WarningEmptyText)
	}
	if parties.Conflict {
		warnings = append(warnings, model.WarningPartyConflict)
	}
	if dates.Start != nil && dates.End != nil && !dates.Start.Before(*dates.End) {
		warnings = append(warnings, model.WarningEndBeforeStart)
	}

	confidence := p.scorer.Calculate(score.Input{
		Record:        record,
		Sources:       sources,
		AmountScore:   amount.Score,
		PartyConflict: parties.Conflict,
	})

	log.Debug("Extraction finished",
		"chars", len(text),
		"resolved", len(sources),
		"confidence", confidence.Index,
		"warnings", len(warnings),
	)

	return &model.Extraction{
		Extracted:   record,
		TextPreview: preview(text, p.config.Extraction.PreviewRunes),
		Sources:     sources,
		Warnings:    warnings,
		Confidence:  &confidence,
	}
}

// ExtractFile decodes a PDF or DOCX and extracts its fields. The extension is
// checked before any decoding; results are cached by content.
func (p *Pipeline) ExtractFile(ctx context.Context, data []byte, filename string) (*model.Extraction, error) {
	log := logger.FromContext(ctx).With("file", filename)

	if limit := p.config.Extraction.MaxFileBytes; limit > 0 && int64(len(data)) > limit {
		return nil, fmt.Errorf("%w: %d bytes (limit %d)", ErrFileTooLarge, len(data), limit)
	}
	if _, err := p.registry.ForFilename(filename); err != nil {
		return nil, err
	}

	key := cache.Key(filename, data)
	if cached, ok := p.cache.Get(key); ok {
		var ext model.Extraction
		if err := json.Unmarshal(cached, &ext); err == nil {
			log.Debug("Cache hit")
			return &ext, nil
		}
		_ = p.cache.Delete(key)
	}

	start := time.Now()
	text, err := p.decode(ctx, data, filename)
	if err != nil {
		return nil, err
	}
	log.Debug("Decoded", "chars", len(text), "took", time.Since(start))

	ext := p.ExtractText(ctx, text)

	if encoded, err := json.Marshal(ext); err == nil {
		if err := p.cache.Set(key, encoded, 0); err != nil {
			log.Warn("Failed to cache extraction", "error", err)
		}
	}

	return ext, nil
}

// decode runs the decoder under the decode timeout. The decoder also watches
// ctx, but a PDF page that never returns cannot, so the wait happens here.
func (p *Pipeline) decode(ctx context.Context, data []byte, filename string) (string, error) {
	if timeout := p.config.Extraction.DecodeTimeout; timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	type outcome struct {
		text string
		err  error
	}
	done := make(chan outcome, 1)
	go func() {
		text, err := p.registry.Decode(ctx, data, filename)
		done <- outcome{text, err}
	}()

	select {
	case <-ctx.Done():
		return "", fmt.Errorf("decode %s: %w", filename, ctx.Err())
	case out := <-done:
		return out.text, out.err
	}
}

// RenderExtraction writes the extraction to the requested outputs and prints
// a summary
func (p *Pipeline) RenderExtraction(ext *model.Extraction, name, jsonPath, mdPath string, verbose bool) error {
	if jsonPath != "" {
		if err := p.renderer.RenderJSON(ext, jsonPath); err != nil {
			return fmt.Errorf("render JSON: %w", err)
		}
		if verbose {
			fmt.Printf("✓ Wrote JSON: %s\n", jsonPath)
		}
	}

	if mdPath != "" {
		if err := p.renderer.RenderMarkdown(ext, name, mdPath); err != nil {
			return fmt.Errorf("render markdown: %w", err)
		}
		if verbose {
			fmt.Printf("✓ Wrote Markdown: %s\n", mdPath)
		}
	}

	p.renderer.RenderSummary(ext, name)

	return nil
}

func addSource(sources map[string]string, field, source string, resolved bool) {
	if resolved && source != "" {
		sources[field] = source
	}
}

// preview returns at most n runes of text
func preview(text string, n int) string {
	if n <= 0 {
		return ""
	}
	count := 0
	for i := range text {
		if count == n {
			return text[:i]
		}
		count++
	}
	return text
}
