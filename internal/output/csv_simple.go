package output

import (
	"bytes"
	"encoding/csv"
	"strconv"

	"github.com/rgehrsitz/ssopt/internal/domain"
)

// CSVSummarizer writes one row per grid cell when the report carries a grid,
// otherwise one row per strategy.
type CSVSummarizer struct{}

func (c CSVSummarizer) Name() string { return "csv" }

func (c CSVSummarizer) Format(report *Report) ([]byte, error) {
	buf := &bytes.Buffer{}
	w := csv.NewWriter(buf)

	if g := report.Grid; g != nil {
		if err := w.Write([]string{"FinalAge1", "FinalAge2", "FilingAge1", "FilingAge2", "Total"}); err != nil {
			return nil, err
		}
		for a1 := g.MinAge; a1 <= g.MaxAge; a1++ {
			for a2 := g.MinAge; a2 <= g.MaxAge; a2++ {
				cell, _ := g.At(a1, a2)
				row := []string{
					strconv.Itoa(a1),
					strconv.Itoa(a2),
					cell.FilingAge1.String(),
					cell.FilingAge2.String(),
					cell.Total().Decimal().StringFixed(2),
				}
				if err := w.Write(row); err != nil {
					return nil, err
				}
			}
		}
	} else {
		header := []string{"Rank", "FilingAge1", "FilingAge2", "FinalAge1", "FinalAge2", "Bucket1", "Bucket2", "Total"}
		if err := w.Write(header); err != nil {
			return nil, err
		}
		for i, s := range report.Strategies {
			rank := s.Rank
			if rank == 0 {
				rank = i + 1
			}
			row := []string{
				strconv.Itoa(rank),
				s.FilingAge1.String(),
				s.FilingAge2.String(),
				s.FinalAge1.String(),
				s.FinalAge2.String(),
				bucketLabel(s.Bucket1),
				bucketLabel(s.Bucket2),
				s.Total().Decimal().StringFixed(2),
			}
			if err := w.Write(row); err != nil {
				return nil, err
			}
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func bucketLabel(b *domain.DeathAgeBucket) string {
	if b == nil {
		return ""
	}
	return b.Label
}
