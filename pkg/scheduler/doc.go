/*
Package scheduler implements the polling loop of the daemonset controller.

Every cycle the scheduler reads the full cluster state from ECS, evaluates
each service with reconciler.Decide and issues at most one UpdateService call
per service. Nothing is carried over between cycles: each cycle recomputes
from a fresh listing, which makes the loop idempotent and safe to restart at
any point.

# Cycle

	┌──────────────────────────────────────────────────────┐
	│                  Reconciliation Cycle                │
	└──────────────┬───────────────────────────────────────┘
	               │
	    ┌──────────▼──────────┐     ┌───────────────────────┐
	    │ ListServices        │     │ ListContainerInstances │
	    │ (all pages)         │     │ status=ACTIVE (all)    │
	    └──────────┬──────────┘     └───────────┬───────────┘
	               └──────────────┬─────────────┘
	                              ▼
	               for each service, in listing order:
	                 DescribeServices
	                 Decide (DescribeTaskDefinition only if needed)
	                 UpdateService(desiredCount = active nodes)
	                              │
	                              ▼
	                     wait Interval, repeat

Both listings are drained completely before any decision is made; a failed
page aborts the cycle instead of scaling against a partial node count.

# Errors

Any remote error aborts the current cycle. Transient failures have already
been retried by the ECS client's retryer by the time they reach the
scheduler. With FailFast set, Run returns the error and the process exits
non-zero; otherwise the error is logged and the next cycle starts after the
interval. Two races are tolerated: a service deleted between listing and
describe, and a service that became inactive before its update. Both are
skipped and counted in CycleResult.Missing.

# Concurrency

One goroutine runs the loop and cycles never overlap. The context is checked
between cycles and between services; cancelling it mid-cycle can leave some
services updated and others not, which the next run repairs.

Running two controllers against one cluster is harmless but wasteful: both
compute the same target and issue the same update. Leader election is left to
the deployment.
*/
package scheduler
