// Package report renders validation defects for humans and machines.
package report

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/hallgrim/notelint/internal/models"
)

// Output formats accepted by the CLI.
const (
	FormatText = "text"
	FormatJSON = "json"
)

// WriteText writes one defect per line:
//
//	path: Kind: target (line N, under "Heading")
//
// followed by a summary line. Defects arrive already ordered by the checker;
// the renderer preserves that order.
func WriteText(w io.Writer, defects []models.Defect) error {
	for _, d := range defects {
		loc := fmt.Sprintf("line %d", d.Line)
		if d.Heading != "" {
			loc += fmt.Sprintf(", under %q", d.Heading)
		}
		if _, err := fmt.Fprintf(w, "%s: %s: %s (%s)\n", d.Path, d.Kind, d.Target, loc); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(w, "%s\n", Summary(defects))
	return err
}

// WriteJSON writes the defect list as a JSON document.
func WriteJSON(w io.Writer, defects []models.Defect) error {
	if defects == nil {
		defects = []models.Defect{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(struct {
		Defects []models.Defect `json:"defects"`
		Total   int             `json:"total"`
	}{Defects: defects, Total: len(defects)})
}

// Summary returns a one-line human summary.
func Summary(defects []models.Defect) string {
	if len(defects) == 0 {
		return "corpus is clean: 0 defects"
	}
	if len(defects) == 1 {
		return "1 defect found"
	}
	return fmt.Sprintf("%d defects found", len(defects))
}
