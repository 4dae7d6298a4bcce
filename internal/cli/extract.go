package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/clausula/internal/logger"
	"github.com/ppiankov/clausula/internal/pipeline"
)

var (
	outJSON  string
	outMD    string
	timeout  time.Duration
	noCache  bool
	noFooter bool
)

// extractCmd represents the extract command
var extractCmd = &cobra.Command{
	Use:   "extract <file>",
	Short: "Extract contract fields from a PDF or DOCX file",
	Long: `Extract reads one contract and suggests:
- Property label
- Owner and tenant names
- Start and end dates
- Rent amount and currency
- IPC adjustment type and frequency

Without --json or --md the record is printed to stdout as JSON.

Example:
  clausula extract contrato.pdf
  clausula extract contrato.docx --json contrato.json --md contrato.md`,
	Args: cobra.ExactArgs(1),
	RunE: runExtract,
}

func init() {
	rootCmd.AddCommand(extractCmd)

	extractCmd.Flags().StringVar(&outJSON, "json", "", "output JSON path")
	extractCmd.Flags().StringVar(&outMD, "md", "", "output Markdown path")
	extractCmd.Flags().DurationVar(&timeout, "timeout", 2*time.Minute, "overall extraction timeout")
	extractCmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the result cache")
	extractCmd.Flags().BoolVar(&noFooter, "no-footer", false, "disable footer in Markdown reports")
}

func runExtract(cmd *cobra.Command, args []string) error {
	path := args[0]
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if noCache {
		cfg.Cache.Enabled = false
	}
	if noFooter {
		cfg.Output.IncludeFooter = false
	}

	log := logger.GetDefault().With("file", path)
	ctx = logger.ContextWithLogger(ctx, log)

	if verbose {
		fmt.Fprintf(os.Stderr, "Extracting: %s\n", path)
		fmt.Fprintf(os.Stderr, "Timeout: %v\n", timeout)
		fmt.Fprintf(os.Stderr, "Cache: %v\n", cfg.Cache.Enabled)
		fmt.Fprintln(os.Stderr)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read file: %w", err)
	}

	p := pipeline.NewPipeline(cfg)

	ext, err := p.ExtractFile(ctx, data, filepath.Base(path))
	if err != nil {
		return fmt.Errorf("extract failed: %w", err)
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "✓ Resolved %d/6 fields\n", len(ext.Sources))
		if ext.Confidence != nil {
			fmt.Fprintf(os.Stderr, "✓ Confidence: %d/100 (%s)\n", ext.Confidence.Index, ext.Confidence.Level)
		}
		fmt.Fprintln(os.Stderr)
	}

	if outJSON == "" && outMD == "" {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(ext); err != nil {
			return fmt.Errorf("encode: %w", err)
		}
		return nil
	}

	if err := p.RenderExtraction(ext, filepath.Base(path), outJSON, outMD, verbose); err != nil {
		return fmt.Errorf("render failed: %w", err)
	}

	return nil
}
