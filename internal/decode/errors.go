package decode

import (
	"errors"
	"fmt"
)

// ErrUnsupportedFormat matches any *UnsupportedFormatError via errors.Is
var ErrUnsupportedFormat = errors.New("unsupported format")

// UnsupportedFormatError is returned when no decoder handles a file extension
type UnsupportedFormatError struct {
	Filename string
	Ext      string
}

func (e *UnsupportedFormatError) Error() string {
	if e.Ext == "" {
		return fmt.Sprintf("unsupported format: %q has no extension (expected .pdf or .docx)", e.Filename)
	}
	return fmt.Sprintf("unsupported format %q for %q (expected .pdf or .docx)", e.Ext, e.Filename)
}

func (e *UnsupportedFormatError) Is(target error) bool {
	return target == ErrUnsupportedFormat
}

// DecodeError wraps a failure to turn a document into text
type DecodeError struct {
	Filename string
	Format   string
	Err      error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %s %q: %v", e.Format, e.Filename, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}
