package output

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rgehrsitz/ssopt/internal/calculation"
	"github.com/rgehrsitz/ssopt/internal/domain"
	"github.com/rgehrsitz/ssopt/internal/optimizer"
)

func buildTestReport() *Report {
	sam := calculation.NewRecipientWithPIA("Sam", domain.BirthdateFromYMD(1960, 0, 5), domain.MoneyFromDollars(1000))
	pat := calculation.NewRecipientWithPIA("Pat", domain.BirthdateFromYMD(1960, 0, 5), domain.MoneyFromDollars(400))
	report := NewReport([]*calculation.Recipient{sam, pat}, domain.MonthDateFromYM(2024, 0), 0.025)
	report.Strategies = []domain.StrategyResult{
		{FilingAge1: domain.YearsMonths(70, 0), FilingAge2: domain.YearsMonths(67, 0), FinalAge1: domain.YearsMonths(90, 0), FinalAge2: domain.YearsMonths(85, 0), TotalCents: 50000000, Rank: 1},
		{FilingAge1: domain.YearsMonths(69, 0), FilingAge2: domain.YearsMonths(67, 0), FinalAge1: domain.YearsMonths(90, 0), FinalAge2: domain.YearsMonths(85, 0), TotalCents: 49500000, Rank: 2},
	}
	return report
}

func buildTestGrid() *optimizer.GridResult {
	return &optimizer.GridResult{
		RunID:        uuid.MustParse("00000000-0000-0000-0000-000000000001"),
		MinAge:       62,
		MaxAge:       63,
		Width:        2,
		FilingAges1:  []domain.MonthDuration{domain.YearsMonths(62, 1), domain.YearsMonths(62, 1), domain.YearsMonths(63, 0), domain.YearsMonths(63, 0)},
		FilingAges2:  []domain.MonthDuration{domain.YearsMonths(62, 1), domain.YearsMonths(63, 0), domain.YearsMonths(62, 1), domain.YearsMonths(63, 0)},
		TotalCents:   []float64{100, 200, 300, 400},
		ShortcutHits: 1,
		Elapsed:      1500 * time.Millisecond,
	}
}

func TestSummarize(t *testing.T) {
	report := buildTestReport()
	require.Len(t, report.Recipients, 2)

	sam := report.Recipients[0]
	assert.Equal(t, "1960-01-05", sam.BirthDate)
	assert.Equal(t, domain.YearsMonths(67, 0), sam.NormalRetirementAge)
	assert.Equal(t, 800, sam.DelayedCreditBps)
	assert.Equal(t, domain.YearsMonths(62, 1), sam.EarliestFilingAge)
	assert.Equal(t, domain.MoneyFromDollars(704), sam.BenefitEarliest)
	assert.Equal(t, domain.MoneyFromDollars(1000), sam.BenefitAtNRA)
	assert.Equal(t, domain.MoneyFromDollars(1240), sam.BenefitAt70)
	assert.False(t, sam.SpousalEligible)
	assert.True(t, report.Recipients[1].SpousalEligible, "a PIA under half the spouse's qualifies")
}

func TestFormatterFunc(t *testing.T) {
	called := false
	formatter := FormatterFunc{
		ID: "test-formatter",
		F: func(r *Report) ([]byte, error) {
			called = true
			return []byte("test output"), nil
		},
	}

	out, err := formatter.Format(buildTestReport())
	assert.NoError(t, err)
	assert.True(t, called, "Should call the function")
	assert.Equal(t, "test-formatter", formatter.Name())
	assert.Equal(t, []byte("test output"), out)
}

func TestGetFormatterByName(t *testing.T) {
	for _, name := range Formats {
		t.Run(name, func(t *testing.T) {
			f := GetFormatterByName(name)
			require.NotNil(t, f)
			assert.Equal(t, name, f.Name())
		})
	}
	assert.Equal(t, "console", GetFormatterByName("").Name(), "empty selects the default")
	assert.Nil(t, GetFormatterByName("pdf"))
}

func TestGenerateReport(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, GenerateReport(&buf, buildTestReport(), "console-lite"))
	assert.Contains(t, buf.String(), "Recommended: Sam files at 70y0m, Pat files at 67y0m ($500,000.00)")
	assert.Contains(t, buf.String(), "Δ $5,000.00 over the next best")

	err := GenerateReport(&buf, buildTestReport(), "pdf")
	assert.ErrorContains(t, err, "unsupported format")
}

func TestWriteFormatted(t *testing.T) {
	dir := t.TempDir()
	formatter := FormatterFunc{ID: "test", F: func(*Report) ([]byte, error) { return []byte("test output content"), nil }}

	filename, err := WriteFormatted(formatter, buildTestReport(), dir, "txt")
	require.NoError(t, err)
	assert.Equal(t, dir, filepath.Dir(filename))
	assert.True(t, strings.HasPrefix(filepath.Base(filename), "ssopt_report_"))
	assert.Equal(t, ".txt", filepath.Ext(filename))

	content, err := os.ReadFile(filename)
	require.NoError(t, err)
	assert.Equal(t, "test output content", string(content))
}

func TestWriteFormatted_FormatterError(t *testing.T) {
	formatter := FormatterFunc{ID: "error", F: func(*Report) ([]byte, error) { return nil, fmt.Errorf("formatter error") }}

	filename, err := WriteFormatted(formatter, buildTestReport(), t.TempDir(), "txt")
	assert.ErrorContains(t, err, "formatter error")
	assert.Empty(t, filename)
}

func TestConsoleVerboseFormatter(t *testing.T) {
	report := buildTestReport()
	report.RateSource = "treasury"
	report.Grid = buildTestGrid()

	out, err := ConsoleVerboseFormatter{}.Format(report)
	require.NoError(t, err)
	content := string(out)

	assert.Contains(t, content, "SOCIAL SECURITY FILING STRATEGY")
	assert.Contains(t, content, "Discount rate:  2.50% (treasury)")
	assert.Contains(t, content, "Spousal benefits start once both spouses have filed")
	assert.Contains(t, content, "Benefit at 62y1m:")
	assert.Contains(t, content, "$1,240.00")
	assert.Contains(t, content, "Delayed credit:         8.0%/yr")
	assert.Contains(t, content, "$495,000.00")
	assert.Contains(t, content, "63:00/62:01")
	assert.Contains(t, content, "4 cells, 1 from the age-70 shortcut, 1.5s")
}

func TestConsoleFormatter_Empty(t *testing.T) {
	report := buildTestReport()
	report.Strategies = nil

	out, err := ConsoleFormatter{}.Format(report)
	require.NoError(t, err)
	assert.Contains(t, string(out), "No strategies evaluated")

	report.Grid = buildTestGrid()
	out, err = ConsoleFormatter{}.Format(report)
	require.NoError(t, err)
	assert.Contains(t, string(out), "Grid: final ages 62-63, 4 cells")
}

func TestCSVSummarizer(t *testing.T) {
	tests := []struct {
		name   string
		grid   bool
		rows   int
		header string
		first  []string
	}{
		{"strategies", false, 3, "Rank", []string{"1", "70y0m", "67y0m", "90y0m", "85y0m", "", "", "500000.00"}},
		{"grid", true, 5, "FinalAge1", []string{"62", "62", "62y1m", "62y1m", "1.00"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			report := buildTestReport()
			if tt.grid {
				report.Grid = buildTestGrid()
			}
			out, err := CSVSummarizer{}.Format(report)
			require.NoError(t, err)

			records, err := csv.NewReader(bytes.NewReader(out)).ReadAll()
			require.NoError(t, err)
			require.Len(t, records, tt.rows)
			assert.Equal(t, tt.header, records[0][0])
			assert.Equal(t, tt.first, records[1])
		})
	}
}

func TestJSONFormatter(t *testing.T) {
	report := buildTestReport()
	report.Grid = buildTestGrid()

	out, err := JSONFormatter{}.Format(report)
	require.NoError(t, err)

	var doc struct {
		DiscountRate float64 `json:"discount_rate"`
		Recipients   []struct {
			Name string  `json:"name"`
			PIA  float64 `json:"pia"`
		} `json:"recipients"`
		Strategies []struct {
			FilingAge1 string `json:"filing_age_1"`
		} `json:"strategies"`
		Grid struct {
			RunID     string `json:"run_id"`
			ElapsedMS int64  `json:"elapsed_ms"`
			Cells     []struct {
				FinalAge2  int     `json:"final_age_2"`
				FilingAge1 string  `json:"filing_age_1"`
				Total      float64 `json:"total"`
			} `json:"cells"`
		} `json:"grid"`
	}
	require.NoError(t, json.Unmarshal(out, &doc))

	assert.InDelta(t, 0.025, doc.DiscountRate, 1e-12)
	assert.Equal(t, "Sam", doc.Recipients[0].Name)
	assert.InDelta(t, 1000, doc.Recipients[0].PIA, 1e-9)
	assert.Equal(t, "70y0m", doc.Strategies[0].FilingAge1)
	assert.Equal(t, "00000000-0000-0000-0000-000000000001", doc.Grid.RunID)
	assert.Equal(t, int64(1500), doc.Grid.ElapsedMS)
	require.Len(t, doc.Grid.Cells, 4)
	assert.Equal(t, 63, doc.Grid.Cells[1].FinalAge2)
	assert.Equal(t, "63y0m", doc.Grid.Cells[2].FilingAge1)
	assert.InDelta(t, 4.0, doc.Grid.Cells[3].Total, 1e-9)

	pretty, err := JSONFormatter{Pretty: true}.Format(report)
	require.NoError(t, err)
	assert.Contains(t, string(pretty), "\n  \"title\"")
}

func TestHTMLFormatter(t *testing.T) {
	report := buildTestReport()
	report.Grid = buildTestGrid()
	report.Recipients[0].Name = "Sam <script>"

	out, err := HTMLFormatter{}.Format(report)
	require.NoError(t, err)
	content := string(out)

	assert.Contains(t, content, "<title>SOCIAL SECURITY FILING STRATEGY</title>")
	assert.Contains(t, content, "Sam &lt;script&gt;", "names are escaped")
	assert.Contains(t, content, `class="best"`)
	assert.Contains(t, content, "$500,000.00")
	assert.Contains(t, content, "Grid (final ages 62&ndash;63)")
}
