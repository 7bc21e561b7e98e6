package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

var (
	// Version information (set via ldflags during build)
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "ecs-daemonset",
	Short: "Run one copy of a service on every ECS container instance",
	Long: `ecs-daemonset emulates daemonsets on Amazon ECS.

It periodically lists the services of a cluster and, for every service whose
task definition carries the ECS_DAEMONSET docker label on its first container
and whose placement constraints are empty or distinctInstance only, sets the
desired count to the number of ACTIVE container instances.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.SetVersionTemplate(fmt.Sprintf(
		"ecs-daemonset version %s\nCommit: %s\nBuilt: %s\n",
		Version, Commit, BuildTime,
	))

	addGlobalFlags(rootCmd.PersistentFlags())

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(onceCmd)
	rootCmd.AddCommand(inspectCmd)
}

func addGlobalFlags(flags *pflag.FlagSet) {
	flags.StringP("cluster", "c", "default", "Short name or full ARN of the ECS cluster")
	flags.StringP("verbosity", "v", "info", "Log level (debug, info, warn, error)")
	flags.Bool("log-json", false, "Write logs as JSON")
	flags.String("region", "", "AWS region (defaults to the SDK credential chain)")
	flags.String("endpoint-url", "", "Custom ECS endpoint URL, e.g. a local simulator")
	flags.Int("max-attempts", 5, "Attempts per ECS API call, including retries")
	flags.String("marker-label", "ECS_DAEMONSET", "Docker label that marks a daemonset task definition")
	flags.String("config", "", "YAML configuration file")
}
