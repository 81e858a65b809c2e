// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"pytestci/internal/config"
	"pytestci/internal/issue"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/cobra"
)

// newConfigCommand creates the `pytestci config` command tree.
func newConfigCommand() *cobra.Command {
	cfgCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage pytestci configuration",
		Long: `Manage pytestci configuration.

Configuration is stored in:
  - Linux: ~/.config/pytestci/config.cue
  - macOS: ~/Library/Application Support/pytestci/config.cue
  - Windows: %APPDATA%\pytestci\config.cue

Values from the file are overridden by the CI environment variables
(VIRTUALENV, TMP_FOLDER, CHECK_WARNINGS, COVERAGE, PYTEST_ARGS, JUNITXML)
and by command-line flags.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	var asTOML bool
	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			if asTOML {
				return showConfigTOML(cmd.Context(), cmd.OutOrStdout())
			}
			return showConfig(cmd.Context())
		},
	}
	showCmd.Flags().BoolVar(&asTOML, "toml", false, "output the effective configuration as TOML")
	cfgCmd.AddCommand(showCmd)

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "Create default configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			return initConfig()
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show configuration file path",
		RunE: func(cmd *cobra.Command, args []string) error {
			return showConfigPath()
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a configuration value",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return setConfigValue(cmd.Context(), args[0], args[1])
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "dump",
		Short: "Output raw configuration as CUE",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := config.LoadWithSource(cmd.Context(), config.LoadOptions{ConfigFilePath: cfgFile})
			if err != nil {
				return err
			}

			fmt.Print(config.GenerateCUE(cfg))
			return nil
		},
	})

	return cfgCmd
}

func showConfig(ctx context.Context) error {
	cfg, source, err := config.LoadWithSource(ctx, config.LoadOptions{ConfigFilePath: cfgFile})
	if err != nil {
		rendered, _ := issue.Get(issue.ConfigLoadFailedId).Render("dark")
		fmt.Fprint(os.Stderr, rendered)
		return err
	}

	// Style definitions using shared color palette
	headerStyle := TitleStyle
	keyStyle := CmdStyle
	valueStyle := SuccessStyle

	fmt.Println(headerStyle.Render("Current Configuration"))
	fmt.Println()

	if source != "" {
		fmt.Printf("%s: %s\n", keyStyle.Render("Config file"), source)
	} else {
		fmt.Printf("%s: %s\n", keyStyle.Render("Config file"), SubtitleStyle.Render("(using defaults)"))
	}
	fmt.Println()

	showValue := func(key, value string) {
		if value == "" {
			fmt.Printf("%s: %s\n", keyStyle.Render(key), SubtitleStyle.Render("(unset)"))
			return
		}
		fmt.Printf("%s: %s\n", keyStyle.Render(key), valueStyle.Render(value))
	}

	showValue("virtualenv", cfg.Virtualenv)
	showValue("tmp_folder", cfg.TmpFolder)
	showValue("check_warnings", cfg.CheckWarnings)
	showValue("coverage", cfg.Coverage)
	showValue("pytest_args", cfg.PytestArgs)
	showValue("junitxml", cfg.JUnitXML)
	showValue("package", cfg.Package)
	showValue("durations", strconv.Itoa(cfg.Durations))
	showValue("show_locals", fmt.Sprintf("%v", cfg.ShowLocals))
	showValue("summary_file", cfg.SummaryFile)

	fmt.Println()
	fmt.Printf("%s:\n", keyStyle.Render("runner"))
	fmt.Printf("  executable: %s\n", valueStyle.Render(cfg.Runner.Executable))
	fmt.Printf("  shell: %s\n", valueStyle.Render(string(cfg.Runner.Shell)))

	fmt.Println()
	fmt.Printf("%s:\n", keyStyle.Render("ui"))
	fmt.Printf("  verbose: %s\n", valueStyle.Render(fmt.Sprintf("%v", cfg.UI.Verbose)))

	return nil
}

// showConfigTOML writes the effective configuration as TOML, the same codec
// the run summary file uses.
func showConfigTOML(ctx context.Context, w io.Writer) error {
	cfg, _, err := config.LoadWithSource(ctx, config.LoadOptions{ConfigFilePath: cfgFile})
	if err != nil {
		return err
	}

	data, err := toml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to encode configuration: %w", err)
	}
	_, err = w.Write(data)
	return err
}

func initConfig() error {
	cfgDir, err := config.ConfigDir()
	if err != nil {
		return err
	}

	if err = config.CreateDefaultConfig(); err != nil {
		return fmt.Errorf("failed to create config: %w", err)
	}

	fmt.Printf("%s Created default configuration at %s\n",
		SuccessStyle.Render("✓"),
		filepath.Join(cfgDir, config.ConfigFileName+"."+config.ConfigFileExt))

	return nil
}

func showConfigPath() error {
	cfgDir, err := config.ConfigDir()
	if err != nil {
		return err
	}

	fmt.Printf("Config directory: %s\n", cfgDir)
	fmt.Printf("Config file: %s\n", filepath.Join(cfgDir, config.ConfigFileName+"."+config.ConfigFileExt))

	return nil
}

func setConfigValue(ctx context.Context, key, value string) error {
	cfg, _, err := config.LoadWithSource(ctx, config.LoadOptions{ConfigFilePath: cfgFile})
	if err != nil {
		return err
	}

	switch key {
	case "virtualenv":
		cfg.Virtualenv = value
	case "tmp_folder":
		cfg.TmpFolder = value
	case "check_warnings":
		cfg.CheckWarnings = value
	case "coverage":
		cfg.Coverage = value
	case "pytest_args":
		cfg.PytestArgs = value
	case "junitxml":
		cfg.JUnitXML = value
	case "package":
		cfg.Package = value
	case "durations":
		n, convErr := strconv.Atoi(value)
		if convErr != nil {
			return fmt.Errorf("invalid durations value '%s': %w", value, convErr)
		}
		cfg.Durations = n
	case "show_locals":
		b, convErr := strconv.ParseBool(value)
		if convErr != nil {
			return fmt.Errorf("invalid show_locals value '%s': %w", value, convErr)
		}
		cfg.ShowLocals = b
	case "summary_file":
		cfg.SummaryFile = value
	case "runner.executable":
		cfg.Runner.Executable = value
	case "runner.shell":
		cfg.Runner.Shell = config.ShellMode(value)
	case "ui.verbose":
		b, convErr := strconv.ParseBool(value)
		if convErr != nil {
			return fmt.Errorf("invalid ui.verbose value '%s': %w", value, convErr)
		}
		cfg.UI.Verbose = b
	default:
		return fmt.Errorf("unknown configuration key '%s'", key)
	}

	if err := cfg.Validate(); err != nil {
		return err
	}

	if err := config.Save(cfg); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	fmt.Printf("%s Set %s = %s\n", SuccessStyle.Render("✓"), key, value)
	return nil
}
