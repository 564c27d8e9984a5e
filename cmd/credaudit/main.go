package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/ludo-technologies/credaudit/internal/analyzer"
	"github.com/ludo-technologies/credaudit/internal/constants"
	"github.com/ludo-technologies/credaudit/internal/version"
	"github.com/ludo-technologies/credaudit/service"
	"github.com/spf13/cobra"
)

var (
	// Version information (set via ldflags during build)
	Version = version.Version
)

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "credaudit",
		Short: "credaudit - credit report audit engine",
		Long: `credaudit audits credit report snapshots. It detects FCRA, FDCPA and
Metro 2 reporting violations, analyzes revolving utilization and tradeline
health, and ranks the items and recommendations worth acting on.`,
		Version: Version,
	}

	rootCmd.AddCommand(auditCmd())
	rootCmd.AddCommand(checkCmd())
	rootCmd.AddCommand(rulesCmd())
	rootCmd.AddCommand(initCmd())
	rootCmd.AddCommand(versionCmd())

	return rootCmd
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		// Handle custom exit codes from check command
		var exitErr *CheckExitError
		if errors.As(err, &exitErr) {
			if exitErr.Message != "" {
				fmt.Fprintf(os.Stderr, "Error: %s\n", exitErr.Message)
			}
			// Silently exit with the specified code (output already printed)
			os.Exit(exitErr.Code)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(constants.ExitCodeFail)
	}
}

func versionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		RunE: func(cmd *cobra.Command, args []string) error {
			verbose, _ := cmd.Flags().GetBool("verbose")
			jsonOutput, _ := cmd.Flags().GetBool("json")
			out := cmd.OutOrStdout()

			if jsonOutput {
				return service.WriteJSON(out, struct {
					version.Info
					CatalogVersion string `json:"catalog_version"`
				}{version.Get(), analyzer.CatalogVersion})
			}
			if verbose {
				fmt.Fprintln(out, version.GetFullVersion())
				fmt.Fprintf(out, "violation catalog %s\n", analyzer.CatalogVersion)
				return nil
			}
			fmt.Fprintf(out, "credaudit version %s\n", version.GetVersion())
			return nil
		},
	}

	cmd.Flags().BoolP("verbose", "v", false, "Show detailed version information")
	cmd.Flags().Bool("json", false, "Output version information as JSON")
	return cmd
}
