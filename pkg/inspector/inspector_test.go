package inspector

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cuemby/ecs-daemonset/pkg/types"
)

type stubDescriber struct {
	defs  map[string]*types.TaskDefinition
	err   error
	calls int
}

func (s *stubDescriber) DescribeTaskDefinition(ctx context.Context, ref string) (*types.TaskDefinition, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	td, ok := s.defs[ref]
	if !ok {
		return nil, errors.New("not found")
	}
	return td, nil
}

func taskDef(arn string, labels ...map[string]string) *types.TaskDefinition {
	td := &types.TaskDefinition{ARN: arn}
	for _, l := range labels {
		td.Containers = append(td.Containers, types.ContainerDefinition{Labels: l})
	}
	return td
}

func TestHasMarker(t *testing.T) {
	tests := []struct {
		name     string
		td       *types.TaskDefinition
		expected bool
	}{
		{
			name:     "marker on first container",
			td:       taskDef("agent:1", map[string]string{"ECS_DAEMONSET": "true"}),
			expected: true,
		},
		{
			name:     "marker with empty value",
			td:       taskDef("agent:1", map[string]string{"ECS_DAEMONSET": ""}),
			expected: true,
		},
		{
			name:     "marker only on second container",
			td:       taskDef("agent:1", map[string]string{"app": "x"}, map[string]string{"ECS_DAEMONSET": "true"}),
			expected: false,
		},
		{
			name:     "nil labels",
			td:       taskDef("agent:1", nil),
			expected: false,
		},
		{
			name:     "different case is a different label",
			td:       taskDef("agent:1", map[string]string{"ecs_daemonset": "true"}),
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok, err := HasMarker(tt.td, types.DefaultMarkerLabel)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, ok)
		})
	}
}

func TestHasMarkerNoContainers(t *testing.T) {
	_, err := HasMarker(taskDef("empty:1"), types.DefaultMarkerLabel)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNoContainerDefinitions)
	assert.Contains(t, err.Error(), "empty:1")
}

func TestInspectorHasDaemonsetMarker(t *testing.T) {
	stub := &stubDescriber{defs: map[string]*types.TaskDefinition{
		"agent:1": taskDef("agent:1", map[string]string{"ECS_DAEMONSET": "1"}),
		"web:7":   taskDef("web:7", map[string]string{"app": "web"}),
	}}
	insp := New(stub, "")
	assert.Equal(t, types.DefaultMarkerLabel, insp.Label())

	ok, err := insp.HasDaemonsetMarker(context.Background(), "agent:1")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = insp.HasDaemonsetMarker(context.Background(), "web:7")
	require.NoError(t, err)
	assert.False(t, ok)

	assert.Equal(t, 2, stub.calls)
}

func TestInspectorCustomLabel(t *testing.T) {
	stub := &stubDescriber{defs: map[string]*types.TaskDefinition{
		"agent:1": taskDef("agent:1", map[string]string{"example.com/daemonset": "true"}),
	}}

	ok, err := New(stub, "example.com/daemonset").HasDaemonsetMarker(context.Background(), "agent:1")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestInspectorPropagatesErrors(t *testing.T) {
	stub := &stubDescriber{err: errors.New("AccessDeniedException")}

	_, err := New(stub, "").HasDaemonsetMarker(context.Background(), "agent:1")
	assert.EqualError(t, err, "AccessDeniedException")
}
