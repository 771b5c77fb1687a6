package output

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/rgehrsitz/ssopt/internal/domain"
)

const ruleWidth = 80

// ConsoleVerboseFormatter renders the full console report: assumptions,
// recipient summaries, ranked strategies and the grid matrix.
type ConsoleVerboseFormatter struct{}

func (c ConsoleVerboseFormatter) Name() string { return "console" }

func (c ConsoleVerboseFormatter) Format(report *Report) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintln(&buf, strings.Repeat("=", ruleWidth))
	fmt.Fprintln(&buf, report.Title)
	fmt.Fprintln(&buf, strings.Repeat("=", ruleWidth))
	fmt.Fprintf(&buf, "Current month:  %s\n", report.CurrentDate)
	fmt.Fprintf(&buf, "Discount rate:  %s", FormatPercentage(report.DiscountRate))
	if report.RateSource != "" {
		fmt.Fprintf(&buf, " (%s)", report.RateSource)
	}
	fmt.Fprintln(&buf)
	fmt.Fprintln(&buf)

	fmt.Fprintln(&buf, "KEY ASSUMPTIONS:")
	assumptions := report.Assumptions
	if len(assumptions) == 0 {
		assumptions = DefaultAssumptions
	}
	for _, a := range assumptions {
		fmt.Fprintf(&buf, "• %s\n", a)
	}
	fmt.Fprintln(&buf)

	writeRecipients(&buf, report)

	if len(report.Strategies) > 0 {
		fmt.Fprintln(&buf, "STRATEGIES")
		fmt.Fprintln(&buf, strings.Repeat("-", ruleWidth))
		writeStrategyTable(&buf, report)
		fmt.Fprintln(&buf)
	}

	if report.Grid != nil {
		writeGrid(&buf, report)
	}
	return buf.Bytes(), nil
}

func writeRecipients(w io.Writer, report *Report) {
	for i, r := range report.Recipients {
		fmt.Fprintf(w, "%s\n", report.recipientName(i))
		fmt.Fprintln(w, strings.Repeat("-", 40))
		fmt.Fprintf(w, "  Birth date:             %s\n", r.BirthDate)
		fmt.Fprintf(w, "  PIA:                    %s\n", r.PIA)
		fmt.Fprintf(w, "  Normal retirement age:  %s\n", r.NormalRetirementAge)
		fmt.Fprintf(w, "  Delayed credit:         %.1f%%/yr\n", float64(r.DelayedCreditBps)/100)
		fmt.Fprintf(w, "  Benefit at %-6s       %s\n", r.EarliestFilingAge.String()+":", r.BenefitEarliest)
		fmt.Fprintf(w, "  Benefit at NRA:         %s\n", r.BenefitAtNRA)
		fmt.Fprintf(w, "  Benefit at 70:          %s\n", r.BenefitAt70)
		if len(report.Recipients) == 2 {
			fmt.Fprintf(w, "  Spousal eligible:       %t\n", r.SpousalEligible)
		}
		fmt.Fprintln(w)
	}
}

func writeStrategyTable(w io.Writer, report *Report) {
	nameWidth := 6
	ageWidth := 10
	fmt.Fprintf(w, "%-*s %*s %*s %*s %*s %18s\n",
		nameWidth, "Rank",
		ageWidth, "Filing 1",
		ageWidth, "Filing 2",
		ageWidth, "Final 1",
		ageWidth, "Final 2",
		"Lifetime (PV)")
	for i, s := range report.Strategies {
		rank := s.Rank
		if rank == 0 {
			rank = i + 1
		}
		final1, final2 := s.FinalAge1.String(), s.FinalAge2.String()
		if s.Bucket1 != nil {
			final1 = s.Bucket1.Label
		}
		if s.Bucket2 != nil {
			final2 = s.Bucket2.Label
		}
		filing2 := s.FilingAge2.String()
		if len(report.Recipients) < 2 {
			filing2, final2 = "-", "-"
		}
		fmt.Fprintf(w, "%-*d %*s %*s %*s %*s %18s\n",
			nameWidth, rank,
			ageWidth, s.FilingAge1,
			ageWidth, filing2,
			ageWidth, final1,
			ageWidth, final2,
			s.Total())
	}
}

func writeGrid(w io.Writer, report *Report) {
	g := report.Grid
	fmt.Fprintf(w, "OPTIMAL FILING AGES BY FINAL AGE (run %s)\n", g.RunID)
	fmt.Fprintf(w, "Rows: %s final age, columns: %s final age, cells: filing ages\n",
		report.recipientName(0), report.recipientName(1))
	fmt.Fprintln(w, strings.Repeat("-", ruleWidth))

	fmt.Fprintf(w, "%4s", "")
	for a2 := g.MinAge; a2 <= g.MaxAge; a2++ {
		fmt.Fprintf(w, " %11d", a2)
	}
	fmt.Fprintln(w)
	for a1 := g.MinAge; a1 <= g.MaxAge; a1++ {
		fmt.Fprintf(w, "%4d", a1)
		for a2 := g.MinAge; a2 <= g.MaxAge; a2++ {
			cell, _ := g.At(a1, a2)
			fmt.Fprintf(w, " %11s", compactPair(cell))
		}
		fmt.Fprintln(w)
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "%d cells, %d from the age-70 shortcut, %s\n", g.Cells(), g.ShortcutHits, g.Elapsed.Round(time.Millisecond))
}

// compactPair prints both filing ages as "70:00/62:01".
func compactPair(s domain.StrategyResult) string {
	return fmt.Sprintf("%d:%02d/%d:%02d",
		s.FilingAge1.Years(), s.FilingAge1.ModMonths(),
		s.FilingAge2.Years(), s.FilingAge2.ModMonths())
}

// ConsoleFormatter is the one-screen summary: the best strategy and its
// margin over the runner-up.
type ConsoleFormatter struct{}

func (c ConsoleFormatter) Name() string { return "console-lite" }

func (c ConsoleFormatter) Format(report *Report) ([]byte, error) {
	var buf bytes.Buffer
	fmt.Fprintln(&buf, "FILING STRATEGY SUMMARY")
	fmt.Fprintf(&buf, "Discount rate: %s\n", FormatPercentage(report.DiscountRate))

	if len(report.Strategies) == 0 {
		if report.Grid != nil {
			fmt.Fprintf(&buf, "Grid: final ages %d-%d, %d cells\n", report.Grid.MinAge, report.Grid.MaxAge, report.Grid.Cells())
		} else {
			fmt.Fprintln(&buf, "No strategies evaluated")
		}
		return buf.Bytes(), nil
	}

	best := report.Strategies[0]
	fmt.Fprintf(&buf, "Recommended: %s files at %s", report.recipientName(0), best.FilingAge1)
	if len(report.Recipients) == 2 {
		fmt.Fprintf(&buf, ", %s files at %s", report.recipientName(1), best.FilingAge2)
	}
	fmt.Fprintf(&buf, " (%s)\n", best.Total())
	if len(report.Strategies) > 1 {
		diff := best.Total().Minus(report.Strategies[1].Total())
		fmt.Fprintf(&buf, "Δ %s over the next best\n", diff)
	}
	return buf.Bytes(), nil
}
