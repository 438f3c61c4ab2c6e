package ingest

import (
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// PDFBackend is the external collaborator contract for low-level PDF text
// extraction (spec §6). Implementations must preserve page and line
// breaks as "\n"; ligature expansion is the core's responsibility (§4.B),
// not the backend's.
type PDFBackend interface {
	ExtractText(path string) (string, error)
}

// LedongthucBackend implements PDFBackend on top of github.com/ledongthuc/pdf.
type LedongthucBackend struct{}

// ExtractText opens path, walks every page's text content in row order,
// and joins pages with a blank line so the section locator's bottom-up
// heading scan sees a clean boundary between pages.
func (LedongthucBackend) ExtractText(path string) (string, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("open pdf %s: %w", path, err)
	}
	defer f.Close()

	var pages []string
	total := r.NumPage()
	for i := 1; i <= total; i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		rows, err := page.GetTextByRow()
		if err != nil {
			return "", fmt.Errorf("extract text page %d of %s: %w", i, path, err)
		}
		var b strings.Builder
		for _, row := range rows {
			for _, word := range row.Content {
				b.WriteString(word.S)
			}
			b.WriteByte('\n')
		}
		pages = append(pages, b.String())
	}
	return strings.Join(pages, "\n"), nil
}
