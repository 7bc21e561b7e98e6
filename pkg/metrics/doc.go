/*
Package metrics provides Prometheus instrumentation and health endpoints for
the daemonset controller.

All collectors are package-level variables registered with the default
Prometheus registry at init:

	ecs_daemonset_active_nodes{cluster}                  gauge
	ecs_daemonset_services_total{cluster}                gauge
	ecs_daemonset_reconciliation_duration_seconds        histogram
	ecs_daemonset_reconciliation_cycles_total{result}    counter
	ecs_daemonset_decisions_total{action,reason}         counter
	ecs_daemonset_services_scaled_total                  counter
	ecs_daemonset_api_request_duration_seconds{operation} histogram
	ecs_daemonset_api_errors_total{operation,code}       counter

Health is tracked per component. The scheduler registers "scheduler" and
"ecs" after every cycle; /ready answers 200 only once both are registered and
healthy, /health reports 503 when any component is unhealthy, and /live is a
plain liveness probe.

Server is optional: the controller only starts it when a metrics address
is configured.

	srv, err := metrics.NewServer(":9102")
	if err != nil {
		return err
	}
	srv.Start()
	defer srv.Shutdown(ctx)
*/
package metrics
