package output

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rgehrsitz/ssopt/internal/calculation"
	"github.com/rgehrsitz/ssopt/internal/domain"
	"github.com/rgehrsitz/ssopt/internal/optimizer"
)

// RecipientSummary is the per-person block shown ahead of any strategy.
type RecipientSummary struct {
	Name                string               `json:"name"`
	BirthDate           string               `json:"birth_date"`
	PIA                 domain.Money         `json:"pia"`
	NormalRetirementAge domain.MonthDuration `json:"normal_retirement_age"`
	DelayedCreditBps    int                  `json:"delayed_credit_bps"`
	EarliestFilingAge   domain.MonthDuration `json:"earliest_filing_age"`
	BenefitEarliest     domain.Money         `json:"benefit_earliest"`
	BenefitAtNRA        domain.Money         `json:"benefit_at_nra"`
	BenefitAt70         domain.Money         `json:"benefit_at_70"`
	SpousalEligible     bool                 `json:"spousal_eligible"`
}

// Summarize builds the summary for r. spouse may be nil.
func Summarize(r, spouse *calculation.Recipient) RecipientSummary {
	b := r.Birthdate()
	earliest := b.EarliestFilingAge()
	s := RecipientSummary{
		Name:                r.Name,
		BirthDate:           b.Time().Format("2006-01-02"),
		PIA:                 r.PIA(),
		NormalRetirementAge: r.NormalRetirementAge(),
		DelayedCreditBps:    r.DelayedIncreaseAnnualBasisPoints(),
		EarliestFilingAge:   earliest,
		BenefitEarliest:     r.BenefitAtAge(earliest),
		BenefitAtNRA:        r.BenefitAtAge(r.NormalRetirementAge()),
		BenefitAt70:         r.BenefitAtAge(domain.FilingAgeCeiling),
	}
	if spouse != nil {
		s.SpousalEligible = r.EligibleForSpousal(spouse)
	}
	return s
}

// Report is everything a formatter can render. Strategies and Grid are both
// optional; formatters skip what is absent.
type Report struct {
	Title        string                  `json:"title"`
	GeneratedAt  time.Time               `json:"generated_at"`
	CurrentDate  domain.MonthDate        `json:"current_date"`
	DiscountRate float64                 `json:"discount_rate"`
	RateSource   string                  `json:"rate_source,omitempty"`
	Recipients   []RecipientSummary      `json:"recipients"`
	Strategies   []domain.StrategyResult `json:"strategies,omitempty"`
	Grid         *optimizer.GridResult   `json:"-"`
	Assumptions  []string                `json:"assumptions,omitempty"`
}

// NewReport starts a report for the given recipients.
func NewReport(rs []*calculation.Recipient, current domain.MonthDate, rate float64) *Report {
	r := &Report{
		Title:        "SOCIAL SECURITY FILING STRATEGY",
		GeneratedAt:  time.Now(),
		CurrentDate:  current,
		DiscountRate: rate,
		Assumptions:  DefaultAssumptions,
	}
	for i, rec := range rs {
		var spouse *calculation.Recipient
		if len(rs) == 2 {
			spouse = rs[1-i]
		}
		r.Recipients = append(r.Recipients, Summarize(rec, spouse))
	}
	return r
}

// recipientName returns the display name for index i.
func (r *Report) recipientName(i int) string {
	if i < len(r.Recipients) && r.Recipients[i].Name != "" {
		return r.Recipients[i].Name
	}
	return fmt.Sprintf("Recipient %d", i+1)
}

// Formatter renders a report.
type Formatter interface {
	Name() string
	Format(*Report) ([]byte, error)
}

// FormatterFunc adapts a plain function to Formatter.
type FormatterFunc struct {
	ID string
	F  func(*Report) ([]byte, error)
}

func (f FormatterFunc) Name() string                     { return f.ID }
func (f FormatterFunc) Format(r *Report) ([]byte, error) { return f.F(r) }

// Formats lists the names GetFormatterByName accepts.
var Formats = []string{"console", "console-lite", "csv", "json", "html"}

// GetFormatterByName returns the formatter registered under name, or nil.
func GetFormatterByName(name string) Formatter {
	switch strings.ToLower(name) {
	case "console", "table", "":
		return ConsoleVerboseFormatter{}
	case "console-lite":
		return ConsoleFormatter{}
	case "csv":
		return CSVSummarizer{}
	case "json":
		return JSONFormatter{Pretty: true}
	case "html":
		return HTMLFormatter{}
	}
	return nil
}

// GenerateReport writes report to w in the named format.
func GenerateReport(w io.Writer, report *Report, format string) error {
	f := GetFormatterByName(format)
	if f == nil {
		return fmt.Errorf("unsupported format: %s", format)
	}
	data, err := f.Format(report)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

// WriteFormatted renders report with f into a timestamped file in dir and
// returns its path.
func WriteFormatted(f Formatter, report *Report, dir, ext string) (string, error) {
	data, err := f.Format(report)
	if err != nil {
		return "", err
	}
	filename := filepath.Join(dir, fmt.Sprintf("ssopt_report_%s.%s", time.Now().Format("20060102_150405"), ext))
	if err := os.WriteFile(filename, data, 0644); err != nil {
		return "", err
	}
	return filename, nil
}

// FormatCurrency formats cents held as float64 the way Money prints.
func FormatCurrency(cents float64) string {
	return domain.StrategyResult{TotalCents: cents}.Total().String()
}

// FormatPercentage formats a fraction such as 0.025 as "2.50%".
func FormatPercentage(rate float64) string {
	return fmt.Sprintf("%.2f%%", rate*100)
}
