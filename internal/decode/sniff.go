package decode

import (
	"fmt"

	"github.com/gabriel-vasile/mimetype"
)

const (
	mimePDF  = "application/pdf"
	mimeDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	mimeZip  = "application/zip"
)

// sniff checks the content against the MIME types a decoder accepts. The
// file extension alone is not trusted.
func sniff(data []byte, accepted ...string) error {
	if len(data) == 0 {
		return fmt.Errorf("empty document")
	}

	detected := mimetype.Detect(data)
	for _, mime := range accepted {
		if detected.Is(mime) {
			return nil
		}
	}
	return fmt.Errorf("content is %s, not %s", detected.String(), accepted[0])
}
