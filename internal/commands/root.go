package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/KyleAMathews/fig/internal/config"
	"github.com/KyleAMathews/fig/internal/version"
)

var (
	cfgFile     string
	figFile     string
	projectName string
	cfg         *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "fig",
	Short: "Fast, isolated development environments using Docker",
	Long: `Fig defines your application's services in a single fig.yml file
and builds, (re)creates, starts and stops them as a unit, in
dependency order.

Services can link to each other; fig makes sure a linked service's
container exists before the services that depend on it.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() error {
	// Resolved here rather than at package init so main has already
	// stamped the build-time version values.
	rootCmd.Version = version.Get().Version
	return rootCmd.Execute()
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		info := version.Get()
		fmt.Println(info.String())

		if cmd.Flag("verbose").Changed {
			fmt.Printf("\nDetails:\n")
			fmt.Printf("  Version:    %s\n", info.Version)
			fmt.Printf("  Git Commit: %s\n", info.GitCommit)
			fmt.Printf("  Built:      %s\n", info.BuildTime)
			fmt.Printf("  Go Version: %s\n", info.GoVersion)
			fmt.Printf("  Platform:   %s\n", info.Platform)
		}
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./fig-config.yaml)")
	rootCmd.PersistentFlags().StringVarP(&figFile, "file", "f", "", "service definition file (default: ./fig.yml)")
	rootCmd.PersistentFlags().StringVarP(&projectName, "project-name", "p", "", "project name (default: directory name)")

	// These should never fail as flags are defined above
	_ = viper.BindPFlag("project.file", rootCmd.PersistentFlags().Lookup("file"))         //nolint:errcheck
	_ = viper.BindPFlag("project.name", rootCmd.PersistentFlags().Lookup("project-name")) //nolint:errcheck

	rootCmd.AddCommand(upCmd)
	rootCmd.AddCommand(buildCmd)
	rootCmd.AddCommand(psCmd)
	rootCmd.AddCommand(startCmd)
	rootCmd.AddCommand(stopCmd)
	rootCmd.AddCommand(killCmd)
	rootCmd.AddCommand(rmCmd)
	rootCmd.AddCommand(versionCmd)
	versionCmd.Flags().BoolP("verbose", "v", false, "verbose version output")

	rootCmd.SetVersionTemplate(`{{with .Name}}{{printf "%s " .}}{{end}}{{printf "%s" .Version}}
`)
}

func initConfig() {
	var err error
	cfg, err = config.Load(cfgFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	if figFile != "" {
		cfg.Project.File = figFile
	}
	if projectName != "" {
		cfg.Project.Name = projectName
	}
}
