package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cuemby/ecs-daemonset/pkg/client"
	"github.com/cuemby/ecs-daemonset/pkg/inspector"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect TASK_DEFINITION",
	Short: "Report whether a task definition carries the daemonset marker",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		ctx := context.Background()
		c, err := client.New(ctx, client.Config{
			Region:      cfg.Region,
			EndpointURL: cfg.EndpointURL,
			MaxAttempts: cfg.MaxAttempts,
		})
		if err != nil {
			return err
		}

		insp := inspector.New(c, cfg.MarkerLabel)
		ok, err := insp.HasDaemonsetMarker(ctx, args[0])
		if err != nil {
			return err
		}

		if ok {
			fmt.Printf("%s: daemonset (label %s present)\n", args[0], insp.Label())
		} else {
			fmt.Printf("%s: not a daemonset (label %s absent)\n", args[0], insp.Label())
		}
		return nil
	},
}
