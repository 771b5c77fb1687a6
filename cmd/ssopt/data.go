package main

import (
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/rgehrsitz/ssopt/internal/domain"
	"github.com/rgehrsitz/ssopt/internal/mortality"
	"github.com/rgehrsitz/ssopt/internal/output"
)

var mortalityCmd = &cobra.Command{
	Use:   "mortality",
	Short: "Show a death-age distribution in buckets",
	RunE: func(cmd *cobra.Command, args []string) error {
		genderFlag, _ := cmd.Flags().GetString("gender")
		gender, err := domain.ParseGender(genderFlag)
		if err != nil {
			return err
		}
		birthYear, _ := cmd.Flags().GetInt("birth-year")
		health, _ := cmd.Flags().GetFloat64("health")
		currentYear, _ := cmd.Flags().GetInt("current-year")
		if currentYear == 0 {
			currentYear = time.Now().Year()
		}
		width, _ := cmd.Flags().GetInt("bucket-years")

		a, err := setup(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		person := mortality.Person{Gender: gender, BirthYear: birthYear, HealthMultiplier: health}
		dist, err := mortality.DeathProbabilityDistribution(cmd.Context(), a.lifeTables(), person, currentYear)
		if err != nil {
			return err
		}

		t := table.New().Headers("Ages", "Probability", "Expected age")
		total := 0.0
		for _, b := range mortality.GenerateBuckets(dist, width) {
			total += b.Probability
			t.Row(b.Label, output.FormatPercentage(b.Probability), b.ExpectedAge.String())
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s, born %d, health x%.2f, as of %d\n", gender, birthYear, health, currentYear)
		fmt.Fprintln(cmd.OutOrStdout(), t)
		fmt.Fprintf(cmd.OutOrStdout(), "Total probability: %s\n", output.FormatPercentage(total))
		return nil
	},
}

var discountRateCmd = &cobra.Command{
	Use:   "discount-rate",
	Short: "Show the discount rate the optimizer would use",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := setup(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		res := a.rates.Rate(cmd.Context())
		fmt.Fprintf(cmd.OutOrStdout(), "%s (%s", output.FormatPercentage(res.Float()), res.Source)
		if !res.Date.IsZero() {
			fmt.Fprintf(cmd.OutOrStdout(), ", %s", res.Date.Format("2006-01-02"))
		}
		fmt.Fprintln(cmd.OutOrStdout(), ")")
		if res.Err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "warning: %v\n", res.Err)
		}
		return nil
	},
}

func init() {
	mortalityCmd.Flags().String("gender", "blended", "male, female or blended")
	mortalityCmd.Flags().Int("birth-year", 1960, "Birth year")
	mortalityCmd.Flags().Float64("health", 1, "Mortality multiplier; 1.0 is average health")
	mortalityCmd.Flags().Int("current-year", 0, "Year the distribution starts from (default: this year)")
	mortalityCmd.Flags().Int("bucket-years", 3, "Bucket width in years")

	rootCmd.AddCommand(mortalityCmd)
	rootCmd.AddCommand(discountRateCmd)
}
