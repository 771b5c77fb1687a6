package main

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/rgehrsitz/ssopt/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the optimizer as a JSON API",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := setup(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		srv := server.New(a.runner, a.rates, a.logger)
		srv.Mortality = a.lifeTables()
		srv.Tables = a.tables
		srv.Workers = a.settings.Workers
		if w, _ := cmd.Flags().GetInt("max-grid-width"); w > 0 {
			srv.MaxGridWidth = w
		}
		if t, _ := cmd.Flags().GetDuration("request-timeout"); t > 0 {
			srv.Timeout = t
		}

		addr := a.settings.ListenAddr
		if cmd.Flags().Changed("addr") {
			addr, _ = cmd.Flags().GetString("addr")
		}
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		return srv.ListenAndServe(ctx, addr)
	},
}

func init() {
	serveCmd.Flags().String("addr", "", "Listen address (default from settings, :8080)")
	serveCmd.Flags().Int("max-grid-width", 0, "Largest final-age range a grid request may ask for")
	serveCmd.Flags().Duration("request-timeout", 0, "Grid search timeout per request")

	rootCmd.AddCommand(serveCmd)
}
