package session

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"

	"github.com/benbjohnson/clock"
	"github.com/vburojevic/sbsearch/internal/domain"
)

// exportLayout is the timestamp format of exported file names.
const exportLayout = "20060102150405"

// Exporter writes a view to a timestamped file.
type Exporter struct {
	Dir   string
	Clock clock.Clock
}

// NewExporter writes into dir using the wall clock.
func NewExporter(dir string) *Exporter {
	return &Exporter{Dir: dir, Clock: clock.New()}
}

// FileName returns the name the next export would get.
func (e *Exporter) FileName() string {
	return fmt.Sprintf("sbsearch_%s.log", e.Clock.Now().Format(exportLayout))
}

// Export writes lines, one per line, and returns the file path.
func (e *Exporter) Export(lines []string) (string, error) {
	p := filepath.Join(e.Dir, e.FileName())
	f, err := os.OpenFile(p, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return "", domain.NewError(domain.KindExport, p, err)
	}

	w := bufio.NewWriter(f)
	for _, l := range lines {
		if _, err := w.WriteString(l); err != nil {
			f.Close()
			return "", domain.NewError(domain.KindExport, p, err)
		}
		if err := w.WriteByte('\n'); err != nil {
			f.Close()
			return "", domain.NewError(domain.KindExport, p, err)
		}
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return "", domain.NewError(domain.KindExport, p, err)
	}
	if err := f.Close(); err != nil {
		return "", domain.NewError(domain.KindExport, p, err)
	}
	return p, nil
}
