package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"audioguard/internal/ipc"
)

func newIntervalCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "interval [milliseconds]",
		Short: "Show or change the polling interval",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				stdout := cmd.OutOrStdout()
				if len(args) == 0 {
					status, err := client.Status()
					if err != nil {
						return err
					}
					fmt.Fprintf(stdout, "Polling interval: %d ms\n", status.CheckIntervalMs)
					return nil
				}

				intervalMs, err := strconv.Atoi(args[0])
				if err != nil {
					return fmt.Errorf("invalid interval %q: expected milliseconds", args[0])
				}
				resp, err := client.SetInterval(intervalMs)
				if err != nil {
					return err
				}
				fmt.Fprintf(stdout, "Polling interval set to %d ms\n", resp.IntervalMs)
				return nil
			})
		},
	}
	return cmd
}

func newNotifyCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "notify <on|off>",
		Short: "Enable or disable transition notifications",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var enabled bool
			switch args[0] {
			case "on":
				enabled = true
			case "off":
				enabled = false
			default:
				return fmt.Errorf("invalid argument %q: expected on or off", args[0])
			}

			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.SetNotifications(enabled)
				if err != nil {
					return err
				}
				if resp.Enabled {
					fmt.Fprintln(cmd.OutOrStdout(), "Notifications enabled")
				} else {
					fmt.Fprintln(cmd.OutOrStdout(), "Notifications disabled")
				}
				return nil
			})
		},
	}
	return cmd
}
