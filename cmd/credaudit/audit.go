package main

import (
	"fmt"
	"path/filepath"

	"github.com/ludo-technologies/credaudit/domain"
	"github.com/ludo-technologies/credaudit/service"
	"github.com/spf13/cobra"
)

type auditOptions struct {
	runOptions
	format      string
	jsonOutput  bool
	outputDir   string
	showDetails bool
}

func auditCmd() *cobra.Command {
	opts := &auditOptions{}

	cmd := &cobra.Command{
		Use:   "audit [path...]",
		Short: "Audit credit report snapshots",
		Long: `Audit credit report snapshots for regulatory violations, utilization
problems and thin-file issues, and list the items worth reviewing.

Snapshots are JSON or YAML files. Directories are searched recursively and
filtered through .credauditignore and the configured exclude patterns.

Examples:
  credaudit audit report.json
  credaudit audit --as-of 2025-06-15 clients/
  credaudit audit --format xlsx --output reports/ clients/
  credaudit audit --json --details report.yaml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAudit(cmd, args, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.format, "format", "f", "text",
		"Output format: text, json, yaml, csv, xlsx")
	cmd.Flags().BoolVar(&opts.jsonOutput, "json", false,
		"Output results as JSON (shorthand for --format json)")
	cmd.Flags().StringVarP(&opts.outputDir, "output", "o", "",
		"Directory for a timestamped report file instead of stdout")
	cmd.Flags().BoolVarP(&opts.showDetails, "details", "d", false,
		"Show violation evidence and recommendation actions in text output")
	addRunFlags(cmd, &opts.runOptions)

	return cmd
}

func runAudit(cmd *cobra.Command, args []string, opts *auditOptions) error {
	if len(args) == 0 {
		return noPathsError()
	}

	cfg, err := opts.loadConfig(cmd, configTarget(args))
	if err != nil {
		return err
	}

	override := &domain.BatchAuditRequest{
		Paths:        args,
		OutputWriter: cmd.OutOrStdout(),
		OutputPath:   opts.outputDir,
		ShowDetails:  opts.showDetails,
		ConfigPath:   opts.configPath,
	}
	if opts.jsonOutput {
		override.OutputFormat = domain.OutputFormatJSON
	} else if cmd.Flags().Changed("format") {
		override.OutputFormat = domain.OutputFormat(opts.format)
	}

	formatter := service.NewOutputFormatter()
	effective := override.OutputFormat
	if effective == "" {
		effective = domain.OutputFormat(cfg.Output.Format)
	}
	showProgress := !opts.quiet && effective != domain.OutputFormatJSON && effective != domain.OutputFormatYAML
	rt, err := newRuntime(cfg, formatter, showProgress)
	if err != nil {
		return err
	}
	defer rt.close()

	req, err := rt.request(override)
	if err != nil {
		return err
	}
	req.Recursive = opts.recursive()
	formatter.WithDetails(req.ShowDetails)

	// Workbooks are never written to a terminal
	if req.OutputFormat == domain.OutputFormatXLSX && req.OutputPath == "" {
		req.OutputPath = "."
	}

	response, err := rt.audit(cmd.Context(), req)
	if err != nil {
		return err
	}

	path, err := rt.useCase.WriteOutput(response, *req)
	if err != nil {
		return err
	}
	if path != "" {
		if abs, err := filepath.Abs(path); err == nil {
			path = abs
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "Report saved to: %s\n", path)
	}

	if len(response.Audits) == 0 && len(response.Errors) > 0 {
		return fmt.Errorf("no snapshot could be audited (%d failed)", len(response.Errors))
	}
	return nil
}
