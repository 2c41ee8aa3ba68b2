package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"audioguard/internal/config"
)

func newConfigCommand() *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the audioguard configuration file",
	}

	var initPath string
	var overwrite bool

	initCmd := &cobra.Command{
		Use:         "init",
		Short:       "Write a sample configuration file",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			target := strings.TrimSpace(initPath)
			if target == "" {
				path, err := config.DefaultConfigPath()
				if err != nil {
					return err
				}
				target = path
			} else {
				path, err := config.ExpandPath(target)
				if err != nil {
					return err
				}
				target = path
			}

			if !overwrite {
				if _, err := os.Stat(target); err == nil {
					return fmt.Errorf("config file already exists at %s (use --overwrite to replace it)", target)
				}
			}

			if err := config.CreateSample(target); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Sample configuration written to %s\n", target)
			return nil
		},
	}
	initCmd.Flags().StringVar(&initPath, "path", "", "Destination for the sample config (defaults to ~/.config/audioguard/config.toml)")
	initCmd.Flags().BoolVar(&overwrite, "overwrite", false, "Replace an existing config file")

	showCmd := &cobra.Command{
		Use:         "show",
		Short:       "Show the resolved configuration",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			configFlag, _ := cmd.Flags().GetString("config")
			cfg, path, exists, err := config.Load(configFlag)
			if err != nil {
				return err
			}
			stdout := cmd.OutOrStdout()
			if exists {
				fmt.Fprintf(stdout, "Config file: %s\n", path)
			} else {
				fmt.Fprintln(stdout, "Config file: (defaults, no file found)")
			}
			rows := [][]string{
				{"Target process", cfg.Guard.ProcessName},
				{"Policy file", cfg.Paths.PolicyFile},
				{"Log directory", cfg.Paths.LogDir},
				{"Log level", cfg.Logging.Level},
				{"Pactl binary", cfg.Provider.PactlBinary},
				{"Journal enabled", yesNo(cfg.Journal.Enabled)},
				{"Ntfy topic", cfg.Notifications.NtfyTopic},
				{"Desktop notifications", yesNo(cfg.Notifications.DesktopEnabled)},
			}
			fmt.Fprintln(stdout, renderTable([]string{"Setting", "Value"}, rows,
				[]columnAlignment{alignLeft, alignLeft}))
			return nil
		},
	}

	validateCmd := &cobra.Command{
		Use:         "validate",
		Short:       "Validate the configuration file",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			configFlag, _ := cmd.Flags().GetString("config")
			_, path, exists, err := config.Load(configFlag)
			if err != nil {
				return err
			}
			stdout := cmd.OutOrStdout()
			if !exists {
				fmt.Fprintln(stdout, "No config file found; defaults are valid")
				return nil
			}
			fmt.Fprintf(stdout, "Configuration at %s is valid\n", path)
			return nil
		},
	}

	configCmd.AddCommand(initCmd, showCmd, validateCmd)
	return configCmd
}
