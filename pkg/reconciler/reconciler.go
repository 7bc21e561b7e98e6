package reconciler

import (
	"github.com/cuemby/ecs-daemonset/pkg/types"
)

// MarkerFunc reports whether the service's task definition carries the
// daemonset marker. It is only called when the cheap checks did not already
// decide to skip.
type MarkerFunc func() (bool, error)

// Decide evaluates one service against the active node count. Rules are
// applied in order and the first match wins:
//
//  1. desired count 0: skip, the service is disabled
//  2. any placement constraint other than distinctInstance: skip
//  3. desired count equals active nodes: skip, already converged
//  4. task definition without the marker label: skip
//  5. otherwise scale to the active node count
//
// An error from hasMarker is returned as is.
func Decide(desired int32, constraints []types.ConstraintType, active int32, hasMarker MarkerFunc) (types.Decision, error) {
	if d, ok := precheck(desired, constraints, active); ok {
		return d, nil
	}

	marked, err := hasMarker()
	if err != nil {
		return types.Decision{}, err
	}
	return markerDecision(marked, active), nil
}

// DecideWith is Decide with the marker lookup already resolved
func DecideWith(desired int32, constraints []types.ConstraintType, active int32, hasMarker bool) types.Decision {
	if d, ok := precheck(desired, constraints, active); ok {
		return d
	}
	return markerDecision(hasMarker, active)
}

// precheck applies the rules that need no remote lookup
func precheck(desired int32, constraints []types.ConstraintType, active int32) (types.Decision, bool) {
	if desired == 0 {
		return types.Skip(types.ReasonDisabled), true
	}
	if !OnlyDistinctInstance(constraints) {
		return types.Skip(types.ReasonConstraints), true
	}
	if desired == active {
		return types.Skip(types.ReasonConverged), true
	}
	return types.Decision{}, false
}

func markerDecision(marked bool, active int32) types.Decision {
	if !marked {
		return types.Skip(types.ReasonNoMarker)
	}
	return types.ScaleTo(active)
}

// OnlyDistinctInstance reports whether every constraint is distinctInstance.
// An empty set qualifies.
func OnlyDistinctInstance(constraints []types.ConstraintType) bool {
	for _, c := range constraints {
		if c != types.ConstraintDistinctInstance {
			return false
		}
	}
	return true
}
