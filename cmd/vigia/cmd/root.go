package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "vigia",
	Short: "Vigía is the neighborhood panic button device agent",
	Long: `The device-resident agent of the neighborhood panic button system.
It owns the registered session, keeps the licence validated against the
backend, and delivers panic events with an SMS fallback.`,
}

func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}
