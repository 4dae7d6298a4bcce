package decode

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
)

const (
	documentPart = "word/document.xml"
	wordNS       = "http://schemas.openxmlformats.org/wordprocessingml/2006/main"
	maxPartBytes = 64 << 20
)

// DOCXDecoder reads the main document part of a Word file. Paragraphs become
// lines, tabs and breaks are kept, and table cells are separated by tabs.
type DOCXDecoder struct{}

// NewDOCXDecoder creates a DOCX decoder
func NewDOCXDecoder() *DOCXDecoder {
	return &DOCXDecoder{}
}

func (d *DOCXDecoder) Format() string { return "docx" }

func (d *DOCXDecoder) Decode(ctx context.Context, data []byte) (string, error) {
	if err := sniff(data, mimeDOCX, mimeZip); err != nil {
		return "", err
	}

	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("open docx container: %w", err)
	}

	for _, f := range zr.File {
		if f.Name != documentPart {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return "", fmt.Errorf("open %s: %w", documentPart, err)
		}
		defer rc.Close()
		return readDocumentXML(ctx, io.LimitReader(rc, maxPartBytes))
	}
	return "", fmt.Errorf("missing %s", documentPart)
}

// readDocumentXML walks the WordprocessingML token stream
func readDocumentXML(ctx context.Context, r io.Reader) (string, error) {
	dec := xml.NewDecoder(r)
	var (
		out    strings.Builder
		inText bool
		inTabs bool // w:pPr/w:tabs holds tab stop definitions, not content
		cells  int
	)

	for {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", fmt.Errorf("parse %s: %w", documentPart, err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Space != wordNS {
				continue
			}
			switch t.Name.Local {
			case "t":
				inText = true
			case "tabs":
				inTabs = true
			case "tab":
				if !inTabs {
					out.WriteByte('\t')
				}
			case "br", "cr":
				out.WriteByte('\n')
			case "tr":
				cells = 0
			case "tc":
				if cells > 0 {
					out.WriteByte('\t')
				}
				cells++
			}
		case xml.EndElement:
			if t.Name.Space != wordNS {
				continue
			}
			switch t.Name.Local {
			case "t":
				inText = false
			case "tabs":
				inTabs = false
			case "p":
				if cells == 0 {
					out.WriteByte('\n')
				} else {
					out.WriteByte(' ')
				}
			case "tr":
				out.WriteByte('\n')
				cells = 0
			}
		case xml.CharData:
			if inText {
				out.Write(t)
			}
		}
	}
	return strings.TrimSpace(out.String()), nil
}
