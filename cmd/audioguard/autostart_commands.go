package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"audioguard/internal/autostart"
)

func newAutostartCommand() *cobra.Command {
	autostartCmd := &cobra.Command{
		Use:         "autostart",
		Short:       "Manage starting the daemon on login",
		Annotations: map[string]string{"skipConfigLoad": "true"},
	}

	enableCmd := &cobra.Command{
		Use:   "enable",
		Short: "Start the daemon automatically on login",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAutostartEnable(cmd, "")
		},
	}

	disableCmd := &cobra.Command{
		Use:   "disable",
		Short: "Stop starting the daemon on login",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAutostartDisable(cmd)
		},
	}

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show whether login autostart is enabled",
		RunE: func(cmd *cobra.Command, args []string) error {
			enabled, entryPath, err := autostart.Enabled()
			if err != nil {
				return err
			}
			stdout := cmd.OutOrStdout()
			fmt.Fprintf(stdout, "Autostart enabled: %s\n", yesNo(enabled))
			fmt.Fprintf(stdout, "Entry path: %s\n", entryPath)
			return nil
		},
	}

	autostartCmd.AddCommand(enableCmd, disableCmd, statusCmd)
	return autostartCmd
}

func runAutostartEnable(cmd *cobra.Command, executable string) error {
	entryPath, err := autostart.Install(executable)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Autostart entry installed at %s\n", entryPath)
	return nil
}

func runAutostartDisable(cmd *cobra.Command) error {
	entryPath, err := autostart.Remove()
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Autostart entry removed from %s\n", entryPath)
	return nil
}
