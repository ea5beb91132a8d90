package render

import (
	"bufio"
	"io"
	"regexp"
	"strings"

	"github.com/jung-kurt/gofpdf"
)

var linkRe = regexp.MustCompile(`\[([^\]]+)\]\(([^)]+)\)`)

// PDF lays out the Markdown produced by Markdown: headings in bold, bullets
// as indented paragraphs and [text](url) as clickable links.
func PDF(w io.Writer, markdown string) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetFont("Helvetica", "", 11)
	pdf.AddPage()

	scanner := bufio.NewScanner(strings.NewReader(markdown))
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		s := strings.TrimSpace(scanner.Text())
		switch {
		case s == "":
			pdf.Ln(3)
		case strings.HasPrefix(s, "#"):
			text := strings.TrimSpace(strings.TrimLeft(s, "#"))
			if text == "" {
				continue
			}
			pdf.SetFont("Helvetica", "B", 12)
			pdf.MultiCell(0, 6, tr(text), "", "L", false)
			pdf.SetFont("Helvetica", "", 11)
		case strings.HasPrefix(s, "- "):
			pdf.SetX(pdf.GetX() + 4)
			pdf.MultiCell(0, 5, tr("• "+strings.TrimPrefix(s, "- ")), "", "L", false)
		default:
			writeLinks(pdf, tr, s)
		}
	}
	if err := scanner.Err(); err != nil {
		return err
	}
	return pdf.Output(w)
}

func writeLinks(pdf *gofpdf.Fpdf, tr func(string) string, s string) {
	parts := linkRe.FindAllStringSubmatchIndex(s, -1)
	if len(parts) == 0 {
		pdf.MultiCell(0, 5, tr(s), "", "L", false)
		return
	}
	pos := 0
	for _, m := range parts {
		if m[0] > pos {
			pdf.Write(5, tr(s[pos:m[0]]))
		}
		pdf.WriteLinkString(5, tr(s[m[2]:m[3]]), s[m[4]:m[5]])
		pos = m[1]
	}
	if pos < len(s) {
		pdf.Write(5, tr(s[pos:]))
	}
	pdf.Ln(6)
}
