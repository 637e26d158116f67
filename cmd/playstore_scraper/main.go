// Package main provides the entry point for the Play Store batch scraper.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "playstore_scraper",
	Short: "Play Store batch scraper",
	Long:  "Fetches the Play Store details of every app listed in an ids document and saves each record as <outputID>.json.",
	// Runtime failures are reported by main; usage is only useful for flag errors
	SilenceUsage:  true,
	SilenceErrors: true,
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
