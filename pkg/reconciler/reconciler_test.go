package reconciler

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cuemby/ecs-daemonset/pkg/types"
)

var (
	distinct = types.ConstraintDistinctInstance
	memberOf = types.ConstraintMemberOf
	affinity = types.ConstraintType("affinity")
)

// TestDecideWith tests every decision rule
func TestDecideWith(t *testing.T) {
	tests := []struct {
		name        string
		desired     int32
		constraints []types.ConstraintType
		active      int32
		marker      bool
		expected    types.Decision
	}{
		{
			name:        "distinct instance scales to node count",
			desired:     2,
			constraints: []types.ConstraintType{distinct},
			active:      5,
			marker:      true,
			expected:    types.ScaleTo(5),
		},
		{
			name:        "mixed constraints skip with marker",
			desired:     2,
			constraints: []types.ConstraintType{distinct, affinity},
			active:      5,
			marker:      true,
			expected:    types.Skip(types.ReasonConstraints),
		},
		{
			name:        "mixed constraints skip without marker",
			desired:     5,
			constraints: []types.ConstraintType{distinct, affinity},
			active:      5,
			marker:      false,
			expected:    types.Skip(types.ReasonConstraints),
		},
		{
			name:        "memberOf alone is not daemonset placement",
			desired:     1,
			constraints: []types.ConstraintType{memberOf},
			active:      3,
			marker:      true,
			expected:    types.Skip(types.ReasonConstraints),
		},
		{
			name:        "disabled service with marker",
			desired:     0,
			constraints: []types.ConstraintType{distinct},
			active:      3,
			marker:      true,
			expected:    types.Skip(types.ReasonDisabled),
		},
		{
			name:     "disabled service with no constraints",
			desired:  0,
			active:   3,
			marker:   true,
			expected: types.Skip(types.ReasonDisabled),
		},
		{
			name:     "no constraints and no marker",
			desired:  1,
			active:   3,
			marker:   false,
			expected: types.Skip(types.ReasonNoMarker),
		},
		{
			name:     "no constraints with marker",
			desired:  1,
			active:   3,
			marker:   true,
			expected: types.ScaleTo(3),
		},
		{
			name:     "already converged",
			desired:  3,
			active:   3,
			marker:   true,
			expected: types.Skip(types.ReasonConverged),
		},
		{
			name:     "scale down when nodes leave",
			desired:  6,
			active:   2,
			marker:   true,
			expected: types.ScaleTo(2),
		},
		{
			name:     "scale to zero when no nodes are active",
			desired:  2,
			active:   0,
			marker:   true,
			expected: types.ScaleTo(0),
		},
		{
			name:        "repeated distinct instance constraints",
			desired:     1,
			constraints: []types.ConstraintType{distinct, distinct},
			active:      2,
			marker:      true,
			expected:    types.ScaleTo(2),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := DecideWith(tt.desired, tt.constraints, tt.active, tt.marker)
			assert.Equal(t, tt.expected, d)
		})
	}
}

// TestDecideTotality tests that every input yields exactly skip or scale to the node count
func TestDecideTotality(t *testing.T) {
	constraintSets := [][]types.ConstraintType{
		nil,
		{distinct},
		{memberOf},
		{distinct, affinity},
	}

	for desired := int32(0); desired <= 4; desired++ {
		for active := int32(0); active <= 4; active++ {
			for _, cs := range constraintSets {
				for _, marker := range []bool{true, false} {
					d := DecideWith(desired, cs, active, marker)
					switch d.Action {
					case types.ActionSkip:
						assert.Zero(t, d.Target)
					case types.ActionScale:
						assert.Equal(t, active, d.Target)
						assert.True(t, marker, "scale without marker")
						assert.NotZero(t, desired, "scale of disabled service")
						assert.NotEqual(t, desired, active, "scale of converged service")
					default:
						t.Fatalf("unexpected action %q", d.Action)
					}

					// Same inputs, same answer
					assert.Equal(t, d, DecideWith(desired, cs, active, marker))
				}
			}
		}
	}
}

// TestDecideIdempotent tests that applying a scale decision converges
func TestDecideIdempotent(t *testing.T) {
	desired, active := int32(1), int32(4)

	first := DecideWith(desired, nil, active, true)
	require.True(t, first.IsScale())

	second := DecideWith(first.Target, nil, active, true)
	assert.Equal(t, types.Skip(types.ReasonConverged), second)
}

// TestDecideLazyMarker tests that the marker lookup only happens when needed
func TestDecideLazyMarker(t *testing.T) {
	tests := []struct {
		name        string
		desired     int32
		constraints []types.ConstraintType
		active      int32
		lookups     int
	}{
		{name: "disabled", desired: 0, active: 3, lookups: 0},
		{name: "constraints", desired: 1, constraints: []types.ConstraintType{memberOf}, active: 3, lookups: 0},
		{name: "converged", desired: 3, active: 3, lookups: 0},
		{name: "out of sync", desired: 1, active: 3, lookups: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			_, err := Decide(tt.desired, tt.constraints, tt.active, func() (bool, error) {
				calls++
				return true, nil
			})
			require.NoError(t, err)
			assert.Equal(t, tt.lookups, calls)
		})
	}
}

// TestDecideMarkerError tests that lookup failures propagate
func TestDecideMarkerError(t *testing.T) {
	boom := errors.New("describe failed")

	_, err := Decide(1, nil, 3, func() (bool, error) { return false, boom })
	assert.ErrorIs(t, err, boom)
}

func TestOnlyDistinctInstance(t *testing.T) {
	assert.True(t, OnlyDistinctInstance(nil))
	assert.True(t, OnlyDistinctInstance([]types.ConstraintType{}))
	assert.True(t, OnlyDistinctInstance([]types.ConstraintType{distinct}))
	assert.False(t, OnlyDistinctInstance([]types.ConstraintType{memberOf}))
	assert.False(t, OnlyDistinctInstance([]types.ConstraintType{distinct, memberOf}))
}
