package main

import (
	"fmt"

	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/rgehrsitz/ssopt/internal/calculation"
	"github.com/rgehrsitz/ssopt/internal/config"
	"github.com/rgehrsitz/ssopt/internal/domain"
)

var validateCmd = &cobra.Command{
	Use:   "validate [household-file]",
	Short: "Validate a household file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		h, err := config.NewInputParser().LoadFromFile(args[0])
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Household file %s is valid (%d recipients)\n", args[0], len(h.Recipients))
		return nil
	},
}

var piaCmd = &cobra.Command{
	Use:   "pia [household-file]",
	Short: "Show each recipient's AIME and Primary Insurance Amount",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := setup(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		plan, err := a.loadPlan(args[0])
		if err != nil {
			return err
		}
		t := table.New().Headers("Name", "Born", "NRA", "AIME", "PIA", "Source")
		for _, r := range plan.Recipients {
			aime, source := "-", "override"
			if !r.HasOverridePIA() {
				aime = r.PIACalculator().AIME().String()
				source = fmt.Sprintf("%d earnings years, COLA to %d", len(r.Earnings()), r.EvaluationYear())
			}
			t.Row(r.Name, r.Birthdate().Time().Format("2006-01-02"), r.NormalRetirementAge().String(), aime, r.PIA().String(), source)
		}
		fmt.Fprintln(cmd.OutOrStdout(), t)
		return nil
	},
}

var benefitCmd = &cobra.Command{
	Use:   "benefit [household-file]",
	Short: "Show the monthly benefit for a filing age",
	Long: "Shows each recipient's own monthly benefit when filing at --age (e.g. 62y1m,\n" +
		"67y, 70y0m), and for couples whether a spousal benefit applies.",
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ageFlag, _ := cmd.Flags().GetString("age")
		age, err := domain.ParseMonthDuration(ageFlag)
		if err != nil {
			return fmt.Errorf("invalid --age: %w", err)
		}

		a, err := setup(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		plan, err := a.loadPlan(args[0])
		if err != nil {
			return err
		}
		t := table.New().Headers("Name", "PIA", "Filing age", "Filing month", "Benefit", "Spousal")
		for i, r := range plan.Recipients {
			spousal := "-"
			if len(plan.Recipients) == 2 {
				spousal = spousalLabel(r, plan.Recipients[1-i])
			}
			t.Row(r.Name, r.PIA().String(), age.String(), r.Birthdate().DateAtSSAAge(age).String(), r.BenefitAtAge(age).String(), spousal)
		}
		fmt.Fprintln(cmd.OutOrStdout(), t)
		return nil
	},
}

func spousalLabel(r, spouse *calculation.Recipient) string {
	if r.EligibleForSpousal(spouse) {
		return "eligible"
	}
	return "no"
}

func init() {
	benefitCmd.Flags().String("age", "67y0m", "Filing age as years and months, e.g. 62y1m")

	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(piaCmd)
	rootCmd.AddCommand(benefitCmd)
}
