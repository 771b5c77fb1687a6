package output

import (
	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/rgehrsitz/ssopt/internal/domain"
)

// JSONFormatter formats reports as JSON
type JSONFormatter struct {
	Pretty bool // If true, format with indentation
}

func (jf JSONFormatter) Name() string { return "json" }

// GridCell is one final-age pair of a grid as it appears in JSON output.
type GridCell struct {
	FinalAge1  int                  `json:"final_age_1"`
	FinalAge2  int                  `json:"final_age_2"`
	FilingAge1 domain.MonthDuration `json:"filing_age_1"`
	FilingAge2 domain.MonthDuration `json:"filing_age_2"`
	Total      domain.Money         `json:"total"`
}

// GridDocument is the JSON shape of a grid result.
type GridDocument struct {
	RunID        uuid.UUID  `json:"run_id"`
	MinAge       int        `json:"min_age"`
	MaxAge       int        `json:"max_age"`
	ShortcutHits int        `json:"shortcut_hits"`
	ElapsedMS    int64      `json:"elapsed_ms"`
	Cells        []GridCell `json:"cells"`
}

type reportDocument struct {
	*Report
	Grid *GridDocument `json:"grid,omitempty"`
}

// Format generates JSON output for a report
func (jf JSONFormatter) Format(report *Report) ([]byte, error) {
	doc := reportDocument{Report: report}
	if report.Grid != nil {
		doc.Grid = NewGridDocument(report)
	}
	if jf.Pretty {
		return json.MarshalIndent(doc, "", "  ")
	}
	return json.Marshal(doc)
}

// NewGridDocument flattens report.Grid in row-major order.
func NewGridDocument(report *Report) *GridDocument {
	g := report.Grid
	doc := &GridDocument{
		RunID:        g.RunID,
		MinAge:       g.MinAge,
		MaxAge:       g.MaxAge,
		ShortcutHits: g.ShortcutHits,
		ElapsedMS:    g.Elapsed.Milliseconds(),
		Cells:        make([]GridCell, 0, g.Cells()),
	}
	for a1 := g.MinAge; a1 <= g.MaxAge; a1++ {
		for a2 := g.MinAge; a2 <= g.MaxAge; a2++ {
			cell, _ := g.At(a1, a2)
			doc.Cells = append(doc.Cells, GridCell{
				FinalAge1:  a1,
				FinalAge2:  a2,
				FilingAge1: cell.FilingAge1,
				FilingAge2: cell.FilingAge2,
				Total:      cell.Total(),
			})
		}
	}
	return doc
}
