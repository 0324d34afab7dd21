package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/KyleAMathews/fig/internal/service"
)

var noCache bool

var buildCmd = &cobra.Command{
	Use:   "build [service...]",
	Short: "Build or rebuild service images",
	Long: `Build images for the named services (all services when none are
named). Services using a pre-built image are skipped.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		p, client, err := loadProject(ctx)
		if err != nil {
			return err
		}
		defer client.Close()

		if err := p.Build(ctx, args, service.BuildOptions{NoCache: noCache}); err != nil {
			return fmt.Errorf("build failed: %w", err)
		}
		return nil
	},
}

func init() {
	buildCmd.Flags().BoolVar(&noCache, "no-cache", false, "do not use cache when building images")
}
