package decode

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const contentTypes = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">
<Default Extension="xml" ContentType="application/xml"/>
<Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/>
</Types>`

func buildDOCX(t *testing.T, parts map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, name := range []string{"[Content_Types].xml", "word/document.xml"} {
		body, ok := parts[name]
		if !ok {
			continue
		}
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(body))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func documentXML(body string) string {
	return `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>` +
		body + `</w:body></w:document>`
}

func TestRegistry_ForFilename(t *testing.T) {
	reg := NewRegistry()

	t.Run("Should pick decoders case-insensitively", func(t *testing.T) {
		d, err := reg.ForFilename("Contrato.PDF")
		require.NoError(t, err)
		assert.Equal(t, "pdf", d.Format())

		d, err = reg.ForFilename("contrato.docx")
		require.NoError(t, err)
		assert.Equal(t, "docx", d.Format())
	})

	t.Run("Should reject other extensions before decoding", func(t *testing.T) {
		_, err := reg.Decode(context.Background(), []byte("anything"), "contrato.txt")
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrUnsupportedFormat))

		var unsupported *UnsupportedFormatError
		require.True(t, errors.As(err, &unsupported))
		assert.Equal(t, ".txt", unsupported.Ext)
		assert.Equal(t, "contrato.txt", unsupported.Filename)
	})

	t.Run("Should reject names without extension", func(t *testing.T) {
		_, err := reg.ForFilename("contrato")
		assert.ErrorIs(t, err, ErrUnsupportedFormat)
	})

	t.Run("Should list extensions", func(t *testing.T) {
		assert.Equal(t, []string{".docx", ".pdf"}, reg.Extensions())
	})
}

func TestDOCXDecoder_Decode(t *testing.T) {
	t.Run("Should read paragraphs, tabs and breaks", func(t *testing.T) {
		data := buildDOCX(t, map[string]string{
			"[Content_Types].xml": contentTypes,
			"word/document.xml": documentXML(
				`<w:p><w:r><w:t>CONTRATO DE LOCACIÓN</w:t></w:r></w:p>` +
					`<w:p><w:r><w:t xml:space="preserve">Entre Juan Pérez </w:t></w:r><w:r><w:t>con DNI 20111222</w:t></w:r></w:p>` +
					`<w:p><w:r><w:t>Firma</w:t><w:tab/><w:t>Aclaración</w:t><w:br/><w:t>Juan Pérez</w:t></w:r></w:p>`,
			),
		})

		text, err := NewRegistry().Decode(context.Background(), data, "contrato.docx")
		require.NoError(t, err)
		assert.Equal(t, "CONTRATO DE LOCACIÓN\nEntre Juan Pérez con DNI 20111222\nFirma\tAclaración\nJuan Pérez", text)
	})

	t.Run("Should skip tab stop definitions", func(t *testing.T) {
		data := buildDOCX(t, map[string]string{
			"[Content_Types].xml": contentTypes,
			"word/document.xml": documentXML(
				`<w:p><w:pPr><w:tabs><w:tab w:val="left" w:pos="4320"/><w:tab w:val="right" w:pos="8640"/></w:tabs></w:pPr>` +
					`<w:r><w:t>LOCADOR</w:t><w:tab/><w:t>LOCATARIO</w:t></w:r></w:p>`,
			),
		})

		text, err := NewDOCXDecoder().Decode(context.Background(), data)
		require.NoError(t, err)
		assert.Equal(t, "LOCADOR\tLOCATARIO", text)
	})

	t.Run("Should separate table cells", func(t *testing.T) {
		data := buildDOCX(t, map[string]string{
			"[Content_Types].xml": contentTypes,
			"word/document.xml": documentXML(
				`<w:tbl><w:tr><w:tc><w:p><w:r><w:t>LOCADOR</w:t></w:r></w:p></w:tc>` +
					`<w:tc><w:p><w:r><w:t>LOCATARIO</w:t></w:r></w:p></w:tc></w:tr></w:tbl>`,
			),
		})

		text, err := NewDOCXDecoder().Decode(context.Background(), data)
		require.NoError(t, err)
		assert.Equal(t, "LOCADOR \tLOCATARIO", text)
	})

	t.Run("Should fail without the document part", func(t *testing.T) {
		data := buildDOCX(t, map[string]string{"[Content_Types].xml": contentTypes})

		_, err := NewRegistry().Decode(context.Background(), data, "vacio.docx")
		var decodeErr *DecodeError
		require.True(t, errors.As(err, &decodeErr))
		assert.Equal(t, "docx", decodeErr.Format)
	})

	t.Run("Should wrap content that is not a container", func(t *testing.T) {
		_, err := NewRegistry().Decode(context.Background(), []byte("plain text, not a zip"), "falso.docx")
		var decodeErr *DecodeError
		require.True(t, errors.As(err, &decodeErr))
		assert.Equal(t, "falso.docx", decodeErr.Filename)
		assert.NotNil(t, errors.Unwrap(err))
	})

	t.Run("Should stop on a cancelled context", func(t *testing.T) {
		data := buildDOCX(t, map[string]string{
			"[Content_Types].xml": contentTypes,
			"word/document.xml":   documentXML(`<w:p><w:r><w:t>texto</w:t></w:r></w:p>`),
		})
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := NewDOCXDecoder().Decode(ctx, data)
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestPDFDecoder_Decode(t *testing.T) {
	t.Run("Should reject content that is not a PDF", func(t *testing.T) {
		_, err := NewRegistry().Decode(context.Background(), []byte("<html>no</html>"), "contrato.pdf")
		var decodeErr *DecodeError
		require.True(t, errors.As(err, &decodeErr))
		assert.Equal(t, "pdf", decodeErr.Format)
	})

	t.Run("Should reject empty input", func(t *testing.T) {
		_, err := NewPDFDecoder().Decode(context.Background(), nil)
		assert.Error(t, err)
	})

	t.Run("Should report a truncated PDF as an error", func(t *testing.T) {
		_, err := NewPDFDecoder().Decode(context.Background(), []byte("%PDF-1.4\n1 0 obj\n<<>>\nendobj\n"))
		assert.Error(t, err)
	})
}
