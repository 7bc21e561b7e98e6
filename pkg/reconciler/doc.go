/*
Package reconciler holds the decision rules of the daemonset controller.

ECS has no daemonset primitive for services. The controller emulates one by
keeping the desired count of every daemonset-style service equal to the
number of ACTIVE container instances in the cluster, and leaves the actual
task placement to ECS (typically with a distinctInstance constraint so that
no instance runs two copies).

# Decision Rules

Decide is a pure function of the desired count, the placement constraint
types, the active node count and the marker lookup. The rules are evaluated
in order and the first match wins:

	desired == 0                      -> skip (disabled)
	constraint other than distinct    -> skip (constraints)
	desired == active                 -> skip (converged)
	no ECS_DAEMONSET label            -> skip (no-marker)
	otherwise                         -> scale to active

The first three rules need no remote call. The marker lookup is passed as a
MarkerFunc and only invoked when they did not match, which saves one
DescribeTaskDefinition call per ineligible or converged service. The marker
still gates every scale decision.

A desired count of zero is treated as an operator switching the service off,
not as an out-of-sync daemonset.

# Idempotence

The target is always exactly the active node count. Once a service has been
updated, evaluating it again with the same node count yields skip
(converged), so repeated cycles issue no further update calls.
*/
package reconciler
