package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/KyleAMathews/fig/internal/service"
)

var (
	stopTimeout   int
	killSignal    string
	removeVolumes bool
)

var startCmd = &cobra.Command{
	Use:   "start [service...]",
	Short: "Start existing containers",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		p, client, err := loadProject(ctx)
		if err != nil {
			return err
		}
		defer client.Close()

		if err := p.Start(ctx, args, service.StartOptions{}); err != nil {
			return fmt.Errorf("start failed: %w", err)
		}
		return nil
	},
}

var stopCmd = &cobra.Command{
	Use:   "stop [service...]",
	Short: "Stop running containers without removing them",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		p, client, err := loadProject(ctx)
		if err != nil {
			return err
		}
		defer client.Close()

		if err := p.Stop(ctx, args, service.StopOptions{Timeout: &stopTimeout}); err != nil {
			return fmt.Errorf("stop failed: %w", err)
		}
		return nil
	},
}

var killCmd = &cobra.Command{
	Use:   "kill [service...]",
	Short: "Force-stop service containers",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		p, client, err := loadProject(ctx)
		if err != nil {
			return err
		}
		defer client.Close()

		if err := p.Kill(ctx, args, service.KillOptions{Signal: killSignal}); err != nil {
			return fmt.Errorf("kill failed: %w", err)
		}
		return nil
	},
}

var rmCmd = &cobra.Command{
	Use:   "rm [service...]",
	Short: "Remove stopped service containers",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		p, client, err := loadProject(ctx)
		if err != nil {
			return err
		}
		defer client.Close()

		if err := p.RemoveStopped(ctx, args, service.RemoveOptions{RemoveVolumes: removeVolumes}); err != nil {
			return fmt.Errorf("rm failed: %w", err)
		}
		return nil
	},
}

func init() {
	stopCmd.Flags().IntVarP(&stopTimeout, "timeout", "t", 10, "seconds to wait before killing the container")
	killCmd.Flags().StringVarP(&killSignal, "signal", "s", "KILL", "signal to send to the container")
	rmCmd.Flags().BoolVarP(&removeVolumes, "volumes", "v", false, "remove volumes associated with containers")
}
