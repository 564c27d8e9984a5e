package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/ludo-technologies/credaudit/domain"
	"github.com/ludo-technologies/credaudit/internal/analyzer"
	"github.com/ludo-technologies/credaudit/service"
	"github.com/spf13/cobra"
)

// ruleListing is the machine readable form of the rule catalog
type ruleListing struct {
	CatalogVersion string                         `json:"catalog_version" yaml:"catalog_version"`
	Rules          []domain.ViolationCatalogEntry `json:"rules" yaml:"rules"`
}

func rulesCmd() *cobra.Command {
	var format string
	var severity string

	cmd := &cobra.Command{
		Use:   "rules",
		Short: "List the regulatory rules credaudit checks",
		Long: `List the violation catalog: every FCRA, FDCPA and Metro 2 rule the
detector can report, with its section and severity.

Examples:
  credaudit rules
  credaudit rules --severity high
  credaudit rules --format json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			entries := analyzer.DefaultCatalog().Entries()
			if severity != "" {
				min := domain.Severity(strings.ToUpper(severity))
				if min.Rank() == 0 {
					return fmt.Errorf("invalid severity %q (must be one of: low, medium, high, critical)", severity)
				}
				filtered := entries[:0]
				for _, e := range entries {
					if e.Severity.Rank() >= min.Rank() {
						filtered = append(filtered, e)
					}
				}
				entries = filtered
			}

			listing := ruleListing{CatalogVersion: analyzer.CatalogVersion, Rules: entries}
			out := cmd.OutOrStdout()

			switch domain.OutputFormat(format) {
			case domain.OutputFormatJSON:
				return service.WriteJSON(out, listing)
			case domain.OutputFormatYAML:
				return service.WriteYAML(out, listing)
			case domain.OutputFormatText:
				fmt.Fprintf(out, "Violation catalog %s (%d rules)\n\n", listing.CatalogVersion, len(entries))
				tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "CODE\tSEVERITY\tSECTION\tTITLE")
				for _, e := range entries {
					fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", e.Code, e.Severity, e.Section, e.Title)
				}
				return tw.Flush()
			default:
				return domain.NewUnsupportedFormatError(format)
			}
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "text",
		"Output format: text, json, yaml")
	cmd.Flags().StringVar(&severity, "severity", "",
		"Only list rules at or above this severity")

	return cmd
}
