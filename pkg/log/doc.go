/*
Package log provides structured logging for the controller using zerolog.

A single package-level zerolog.Logger is configured once at startup with
Init and shared by every package. Component loggers add a "component" field
so that output from the scheduler, the ECS client and the metrics server can
be told apart.

# Configuration

  - Level: debug, info, warn or error (see ParseLevel)
  - JSONOutput: JSON lines for log shippers, console format otherwise
  - Output: any io.Writer, stdout when nil

ParseLevel rejects unknown verbosity selectors so that a typo fails the
process at startup instead of silently logging at the default level.

# Usage

	level, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		return err
	}
	log.Init(log.Config{Level: level, JSONOutput: cfg.LogJSON})

	logger := log.WithComponent("scheduler")
	logger.Info().
		Str("service", arn).
		Int32("desired", 1).
		Int32("target", 4).
		Msg("Scaling daemonset service")

Console output:

	2026-10-18T10:30:00Z INF Scaling daemonset service component=scheduler desired=1 service=arn:... target=4
*/
package log
