package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"audioguard/internal/ipc"
)

func newDevicesCommand(ctx *commandContext) *cobra.Command {
	devicesCmd := &cobra.Command{
		Use:   "devices",
		Short: "Inspect and whitelist playback devices",
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List known playback devices",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.DeviceList()
				if err != nil {
					return err
				}
				stdout := cmd.OutOrStdout()
				if len(resp.Devices) == 0 {
					fmt.Fprintln(stdout, "No devices observed yet")
					return nil
				}
				rows := make([][]string, 0, len(resp.Devices))
				for _, device := range resp.Devices {
					rows = append(rows, []string{device.FriendlyName, device.ID, yesNo(device.Ignored)})
				}
				fmt.Fprintln(stdout, renderTable([]string{"Name", "ID", "Whitelisted"}, rows,
					[]columnAlignment{alignLeft, alignLeft, alignLeft}))
				return nil
			})
		},
	}

	ignoreCmd := &cobra.Command{
		Use:   "ignore <device-id>",
		Short: "Whitelist a device so the target stays audible on it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return setDeviceIgnored(ctx, cmd, args[0], true)
		},
	}

	unignoreCmd := &cobra.Command{
		Use:   "unignore <device-id>",
		Short: "Remove a device from the whitelist",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return setDeviceIgnored(ctx, cmd, args[0], false)
		},
	}

	devicesCmd.AddCommand(listCmd, ignoreCmd, unignoreCmd)
	return devicesCmd
}

func setDeviceIgnored(ctx *commandContext, cmd *cobra.Command, id string, ignored bool) error {
	return ctx.withClient(func(client *ipc.Client) error {
		if _, err := client.DeviceSetIgnored(id, ignored); err != nil {
			return err
		}
		if ignored {
			fmt.Fprintf(cmd.OutOrStdout(), "Device %s whitelisted\n", id)
		} else {
			fmt.Fprintf(cmd.OutOrStdout(), "Device %s removed from whitelist\n", id)
		}
		return nil
	})
}
