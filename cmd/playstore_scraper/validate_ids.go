package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/playstore-scraper/internal/appids"
	"github.com/jonathan/playstore-scraper/internal/config"
	"github.com/jonathan/playstore-scraper/internal/observability"
)

var validateIDsCmd = &cobra.Command{
	Use:   "validate-ids",
	Short: "Check an ids document without fetching anything",
	Long:  "Load and validate an ids document, print the number of entries and any output IDs shared by several apps. Exits non-zero if the document is missing or malformed.",
	RunE:  runValidateIDs,
}

var (
	validateIDsPath string
	validateIDsRoot string
)

func init() {
	validateIDsCmd.Flags().StringVarP(&validateIDsPath, "ids", "i", config.DefaultIDsPath, "Path to the ids document")
	validateIDsCmd.Flags().StringVar(&validateIDsRoot, "root", "", "Source root that relative paths resolve against")

	rootCmd.AddCommand(validateIDsCmd)
}

func runValidateIDs(_ *cobra.Command, _ []string) error {
	cfg := config.Config{Root: validateIDsRoot}
	path := cfg.Resolve(validateIDsPath)

	ids, err := appids.Load(path)
	if err != nil {
		return err
	}

	observability.NewPrinter(os.Stdout).PrintIDsReport(path, len(ids), appids.Collisions(ids))
	return nil
}
