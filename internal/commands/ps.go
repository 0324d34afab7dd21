package commands

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var psAll bool

var psCmd = &cobra.Command{
	Use:   "ps [service...]",
	Short: "List project containers",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		p, client, err := loadProject(ctx)
		if err != nil {
			return err
		}
		defer client.Close()

		containers, err := p.Containers(ctx, args, psAll)
		if err != nil {
			return fmt.Errorf("failed to list containers: %w", err)
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "NAME\tSERVICE\tIMAGE\tSTATE\tSTATUS")
		for _, c := range containers {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", c.Name, c.Service, c.Image, c.State, c.Status)
		}
		return w.Flush()
	},
}

func init() {
	psCmd.Flags().BoolVarP(&psAll, "all", "a", false, "include stopped containers")
}
