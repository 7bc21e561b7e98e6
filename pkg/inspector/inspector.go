// Package inspector decides whether a task definition is daemonset-managed.
package inspector

import (
	"context"
	"errors"
	"fmt"

	"github.com/cuemby/ecs-daemonset/pkg/types"
)

// ErrNoContainerDefinitions is returned for a task definition without any
// container definition.
var ErrNoContainerDefinitions = errors.New("task definition has no container definitions")

// TaskDefinitionDescriber fetches task definitions
type TaskDefinitionDescriber interface {
	DescribeTaskDefinition(ctx context.Context, ref string) (*types.TaskDefinition, error)
}

// Inspector looks up the marker label on task definitions
type Inspector struct {
	describer TaskDefinitionDescriber
	label     string
}

// New creates an inspector. An empty label selects types.DefaultMarkerLabel.
func New(describer TaskDefinitionDescriber, label string) *Inspector {
	if label == "" {
		label = types.DefaultMarkerLabel
	}
	return &Inspector{describer: describer, label: label}
}

// Label returns the marker label the inspector looks for
func (i *Inspector) Label() string {
	return i.label
}

// HasDaemonsetMarker reports whether the first container definition of the
// task definition carries the marker label. Only presence counts; the value
// is ignored.
func (i *Inspector) HasDaemonsetMarker(ctx context.Context, ref string) (bool, error) {
	td, err := i.describer.DescribeTaskDefinition(ctx, ref)
	if err != nil {
		return false, err
	}
	return HasMarker(td, i.label)
}

// HasMarker checks the first container definition of td for label
func HasMarker(td *types.TaskDefinition, label string) (bool, error) {
	if len(td.Containers) == 0 {
		return false, fmt.Errorf("%w: %s", ErrNoContainerDefinitions, td.ARN)
	}
	_, ok := td.Containers[0].Labels[label]
	return ok, nil
}
