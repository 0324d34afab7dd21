package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

var upCmd = &cobra.Command{
	Use:   "up [service...]",
	Short: "Build, (re)create and start services",
	Long: `Recreate containers for the named services (all services when none
are named), in dependency order, then report what changed.

Examples:
  # Bring up the whole project
  fig up

  # Bring up only the web service
  fig up web`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		p, client, err := loadProject(ctx)
		if err != nil {
			return err
		}
		defer client.Close()

		old, fresh, err := p.RecreateContainers(ctx, args)
		if err != nil {
			return fmt.Errorf("failed to bring up project %s: %w", p.Name, err)
		}

		for _, sc := range old {
			fmt.Printf("Replaced %s (%s)\n", sc.Container.Name, sc.Service.Name)
		}
		for _, sc := range fresh {
			fmt.Printf("Started %s (%s)\n", sc.Container.Name, sc.Service.Name)
		}
		return nil
	},
}
