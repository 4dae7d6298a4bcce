package decode

import (
	"context"
	"path/filepath"
	"sort"
	"strings"
)

// Decoder turns the bytes of one document format into UTF-8 text
type Decoder interface {
	// Format names the document format, e.g. "pdf"
	Format() string
	// Decode extracts the document's text
	Decode(ctx context.Context, data []byte) (string, error)
}

// Registry selects a decoder by file extension
type Registry struct {
	decoders map[string]Decoder
}

// NewRegistry creates a registry with the PDF and DOCX decoders
func NewRegistry() *Registry {
	r := &Registry{decoders: make(map[string]Decoder)}
	r.Register(".pdf", NewPDFDecoder())
	r.Register(".docx", NewDOCXDecoder())
	return r
}

// Register binds a decoder to an extension (case-insensitive, leading dot optional)
func (r *Registry) Register(ext string, d Decoder) {
	r.decoders[normalizeExt(ext)] = d
}

// Extensions lists the registered extensions in sorted order
func (r *Registry) Extensions() []string {
	exts := make([]string, 0, len(r.decoders))
	for ext := range r.decoders {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

// ForFilename returns the decoder for the file's extension
func (r *Registry) ForFilename(filename string) (Decoder, error) {
	ext := normalizeExt(filepath.Ext(filename))
	if d, ok := r.decoders[ext]; ok && ext != "" {
		return d, nil
	}
	return nil, &UnsupportedFormatError{Filename: filename, Ext: ext}
}

// Decode selects a decoder for filename and runs it. Decoder failures are
// returned as *DecodeError.
func (r *Registry) Decode(ctx context.Context, data []byte, filename string) (string, error) {
	d, err := r.ForFilename(filename)
	if err != nil {
		return "", err
	}

	text, err := d.Decode(ctx, data)
	if err != nil {
		return "", &DecodeError{Filename: filename, Format: d.Format(), Err: err}
	}
	return text, nil
}

func normalizeExt(ext string) string {
	ext = strings.ToLower(strings.TrimSpace(ext))
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}
