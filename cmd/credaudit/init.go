package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/ludo-technologies/credaudit/internal/config"
	"github.com/ludo-technologies/credaudit/internal/constants"
	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
)

func initCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Generate a credaudit configuration file",
		Long: `Generate a documented credaudit configuration file with sensible defaults.

By default, creates credaudit.yaml in the current directory with full
documentation. Use --interactive for a guided setup wizard.

Examples:
  # Create credaudit.yaml in current directory
  credaudit init

  # Batch processing defaults with strict check gates
  credaudit init --profile agency --strictness strict

  # Custom output path
  credaudit init --config custom.yaml

  # Overwrite existing file
  credaudit init --force

  # Generate smaller config with essential options only
  credaudit init --minimal

  # Interactive setup wizard
  credaudit init --interactive
  credaudit init -i`,
		RunE: runInit,
	}

	cmd.Flags().StringP("config", "c", constants.ConfigFileName,
		"Output path for the config file")
	cmd.Flags().BoolP("force", "f", false,
		"Overwrite existing config file")
	cmd.Flags().Bool("minimal", false,
		"Generate minimal config with essential options only")
	cmd.Flags().String("profile", string(config.ProfilePersonal),
		"Usage profile: personal, agency")
	cmd.Flags().String("strictness", string(config.StrictnessStandard),
		"Check gate strictness: relaxed, standard, strict")
	cmd.Flags().BoolP("interactive", "i", false,
		"Interactive setup wizard")

	return cmd
}

func runInit(cmd *cobra.Command, args []string) error {
	configPath, _ := cmd.Flags().GetString("config")
	force, _ := cmd.Flags().GetBool("force")
	minimal, _ := cmd.Flags().GetBool("minimal")
	interactive, _ := cmd.Flags().GetBool("interactive")
	profileFlag, _ := cmd.Flags().GetString("profile")
	strictnessFlag, _ := cmd.Flags().GetString("strictness")

	profile := config.Profile(profileFlag)
	if _, ok := config.GetProfilePresets()[profile]; !ok {
		return fmt.Errorf("unknown profile %q (must be one of: personal, agency)", profileFlag)
	}
	strictness := config.Strictness(strictnessFlag)
	if _, ok := config.GetStrictnessPresets()[strictness]; !ok {
		return fmt.Errorf("unknown strictness %q (must be one of: relaxed, standard, strict)", strictnessFlag)
	}

	if interactive {
		var err error
		profile, strictness, configPath, err = runInteractiveSetup(configPath)
		if err != nil {
			return err
		}
	}

	if !force {
		if _, err := os.Stat(configPath); err == nil {
			return fmt.Errorf("%s already exists. Use --force to overwrite", configPath)
		}
	}

	dir := filepath.Dir(configPath)
	if dir != "." && dir != "" {
		if _, err := os.Stat(dir); os.IsNotExist(err) {
			return fmt.Errorf("directory does not exist: %s", dir)
		}
	}

	var content string
	if minimal {
		content = config.GetMinimalConfigTemplate()
	} else {
		content = config.GetFullConfigTemplate(profile, strictness)
	}

	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	displayPath := configPath
	if absPath, err := filepath.Abs(configPath); err == nil {
		displayPath = absPath
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Created %s\n", displayPath)
	fmt.Fprintln(out, "\nRun 'credaudit audit <snapshot>' to audit a credit report.")

	return nil
}

func runInteractiveSetup(defaultConfigPath string) (config.Profile, config.Strictness, string, error) {
	fmt.Println()
	fmt.Println("credaudit Configuration Setup")
	fmt.Println("=============================")
	fmt.Println()

	profiles := []struct {
		Label       string
		Description string
		Value       config.Profile
	}{
		{"Personal", "Audit your own reports from the terminal", config.ProfilePersonal},
		{"Agency", "Batch audits of client reports with workbook output", config.ProfileAgency},
	}

	profileTemplates := &promptui.SelectTemplates{
		Label:    "{{ . }}",
		Active:   "\U0001F449 {{ .Label | cyan }} - {{ .Description | faint }}",
		Inactive: "   {{ .Label | white }} - {{ .Description | faint }}",
		Selected: "\U00002705 {{ .Label | green }}",
	}

	profilePrompt := promptui.Select{
		Label:     "How will you use credaudit?",
		Items:     profiles,
		Templates: profileTemplates,
	}

	profileIdx, _, err := profilePrompt.Run()
	if err != nil {
		return "", "", "", fmt.Errorf("profile selection cancelled: %w", err)
	}
	selectedProfile := profiles[profileIdx].Value

	fmt.Println()

	strictnessLevels := []struct {
		Label       string
		Description string
		Value       config.Strictness
	}{
		{"Standard (recommended)", "Fail on HIGH violations or utilization over 50%", config.StrictnessStandard},
		{"Relaxed", "Fail only on CRITICAL violations", config.StrictnessRelaxed},
		{"Strict", "Fail on any violation or utilization over 30%", config.StrictnessStrict},
	}

	strictnessTemplates := &promptui.SelectTemplates{
		Label:    "{{ . }}",
		Active:   "\U0001F449 {{ .Label | cyan }} - {{ .Description | faint }}",
		Inactive: "   {{ .Label | white }} - {{ .Description | faint }}",
		Selected: "\U00002705 {{ .Label | green }}",
	}

	strictnessPrompt := promptui.Select{
		Label:     "How strict should 'credaudit check' be?",
		Items:     strictnessLevels,
		Templates: strictnessTemplates,
	}

	strictnessIdx, _, err := strictnessPrompt.Run()
	if err != nil {
		return "", "", "", fmt.Errorf("strictness selection cancelled: %w", err)
	}
	selectedStrictness := strictnessLevels[strictnessIdx].Value

	fmt.Println()

	outputPrompt := promptui.Prompt{
		Label:   "Output file path",
		Default: defaultConfigPath,
	}

	outputPath, err := outputPrompt.Run()
	if err != nil {
		return "", "", "", fmt.Errorf("output path input cancelled: %w", err)
	}

	if outputPath == "" {
		outputPath = defaultConfigPath
	}

	fmt.Println()
	fmt.Printf("Creating %s... ", outputPath)

	return selectedProfile, selectedStrictness, outputPath, nil
}
