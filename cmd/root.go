package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "sleep",
	Short: "Sleep tracking microservice",
	Long:  `A REST microservice tracking self-reported sleep metrics behind nickname-based registration and token issuance.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
