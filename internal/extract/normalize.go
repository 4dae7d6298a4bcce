package extract

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

var (
	// quoteReplacer maps typographic quotes and exotic spaces to ASCII
	quoteReplacer = strings.NewReplacer(
		"“", `"`, "”", `"`, "„", `"`, "«", `"`, "»", `"`,
		"‘", "'", "’", "'", "´", "'", "`", "'",
		"\u00a0", " ", "\u202f", " ", "\u2007", " ",
		"\r\n", "\n", "\r", "\n",
	)
	horizontalSpace = regexp.MustCompile(`[ \t\f\v]+`)
	blankLines      = regexp.MustCompile(`\n{3,}`)
)

// Normalize canonicalizes decoded contract text: NFC composition, straight
// quotes, single spaces, at most one blank line between paragraphs, and no
// leading or trailing whitespace on any line. Every resolver works on its output.
func Normalize(raw string) string {
	text := norm.NFC.String(raw)
	text = quoteReplacer.Replace(text)
	text = horizontalSpace.ReplaceAllString(text, " ")

	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(line)
	}
	text = strings.Join(lines, "\n")

	text = blankLines.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}
