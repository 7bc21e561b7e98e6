package types

// DefaultCluster is the cluster ECS assumes when none is given
const DefaultCluster = "default"

// DefaultMarkerLabel flags a task definition as daemonset-managed
const DefaultMarkerLabel = "ECS_DAEMONSET"

// NodeStatusActive is the only container instance status that counts
// toward the target desired count. Nodes are otherwise identified by ARN only.
const NodeStatusActive = "ACTIVE"

// ConstraintType is the type of a service placement constraint
type ConstraintType string

const (
	ConstraintDistinctInstance ConstraintType = "distinctInstance"
	ConstraintMemberOf         ConstraintType = "memberOf"
)

// PlacementConstraint restricts where the tasks of a service may run
type PlacementConstraint struct {
	Type       ConstraintType
	Expression string // Only set for memberOf
}

// Service represents an ECS service as seen by one reconciliation cycle
type Service struct {
	ARN            string
	Name           string
	TaskDefinition string // family:revision or full ARN
	DesiredCount   int32
	Constraints    []PlacementConstraint
}

// ConstraintTypes returns the types of the service's placement constraints in order
func (s *Service) ConstraintTypes() []ConstraintType {
	out := make([]ConstraintType, 0, len(s.Constraints))
	for _, c := range s.Constraints {
		out = append(out, c.Type)
	}
	return out
}

// ContainerDefinition is one container of a task definition
type ContainerDefinition struct {
	Name   string
	Labels map[string]string // Docker labels
}

// TaskDefinition is a template of one or more containers
type TaskDefinition struct {
	ARN        string
	Family     string
	Revision   int32
	Containers []ContainerDefinition
}

// Action is the outcome of a reconciliation decision
type Action string

const (
	ActionSkip  Action = "skip"
	ActionScale Action = "scale"
)

// Reason explains why a decision was made
type Reason string

const (
	ReasonDisabled    Reason = "disabled"
	ReasonConstraints Reason = "constraints"
	ReasonConverged   Reason = "converged"
	ReasonNoMarker    Reason = "no-marker"
	ReasonOutOfSync   Reason = "out-of-sync"
)

// Decision is the result of evaluating a single service
type Decision struct {
	Action Action
	Reason Reason
	Target int32 // Only meaningful when Action is ActionScale
}

// Skip returns a skip decision with the given reason
func Skip(reason Reason) Decision {
	return Decision{Action: ActionSkip, Reason: reason}
}

// ScaleTo returns a decision to set the desired count to target
func ScaleTo(target int32) Decision {
	return Decision{Action: ActionScale, Reason: ReasonOutOfSync, Target: target}
}

// IsScale reports whether the decision requires an update call
func (d Decision) IsScale() bool {
	return d.Action == ActionScale
}
