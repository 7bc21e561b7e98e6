// Package fake provides an in-memory implementation of client.API for tests.
package fake

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ecs"
	ecstypes "github.com/aws/aws-sdk-go-v2/service/ecs/types"

	"github.com/cuemby/ecs-daemonset/pkg/client"
)

var _ client.API = (*ECS)(nil)

// Update records one UpdateService call
type Update struct {
	Cluster      string
	Service      string
	DesiredCount int32
}

// ECS is an in-memory ECS API. Listings are served from pre-split pages so
// that pagination can be exercised; the continuation token is the index of
// the next page.
type ECS struct {
	mu sync.Mutex

	ServicePages  [][]string
	InstancePages [][]string

	Services        map[string]ecstypes.Service
	TaskDefinitions map[string]ecstypes.TaskDefinition

	// Errors injects a failure for the named operation, e.g. "UpdateService"
	Errors map[string]error

	Updates []Update
	Calls   map[string]int

	// LastInstanceStatus is the status filter of the last ListContainerInstances call
	LastInstanceStatus ecstypes.ContainerInstanceStatus
}

// New creates an empty fake
func New() *ECS {
	return &ECS{
		Services:        make(map[string]ecstypes.Service),
		TaskDefinitions: make(map[string]ecstypes.TaskDefinition),
		Errors:          make(map[string]error),
		Calls:           make(map[string]int),
	}
}

// AddService registers a service and appends it to the last service page,
// creating the first page if needed.
func (f *ECS) AddService(arn, taskDef string, desired int32, constraints ...ecstypes.PlacementConstraintType) {
	f.mu.Lock()
	defer f.mu.Unlock()

	svc := ecstypes.Service{
		ServiceArn:     aws.String(arn),
		ServiceName:    aws.String(arn),
		TaskDefinition: aws.String(taskDef),
		DesiredCount:   desired,
	}
	for _, c := range constraints {
		svc.PlacementConstraints = append(svc.PlacementConstraints, ecstypes.PlacementConstraint{Type: c})
	}
	f.Services[arn] = svc

	if len(f.ServicePages) == 0 {
		f.ServicePages = [][]string{{}}
	}
	last := len(f.ServicePages) - 1
	f.ServicePages[last] = append(f.ServicePages[last], arn)
}

// AddTaskDefinition registers a task definition whose containers carry the
// given docker labels, one map per container.
func (f *ECS) AddTaskDefinition(ref string, containerLabels ...map[string]string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	td := ecstypes.TaskDefinition{
		TaskDefinitionArn:    aws.String(ref),
		Family:               aws.String(ref),
		ContainerDefinitions: []ecstypes.ContainerDefinition{},
	}
	for i, labels := range containerLabels {
		td.ContainerDefinitions = append(td.ContainerDefinitions, ecstypes.ContainerDefinition{
			Name:         aws.String("container-" + strconv.Itoa(i)),
			DockerLabels: labels,
		})
	}
	f.TaskDefinitions[ref] = td
}

// DesiredCount returns the current desired count of a service
func (f *ECS) DesiredCount(arn string) int32 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.Services[arn].DesiredCount
}

// CallCount returns how many times the named operation was invoked
func (f *ECS) CallCount(op string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.Calls[op]
}

// UpdateCalls returns a copy of the recorded UpdateService calls
func (f *ECS) UpdateCalls() []Update {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Update(nil), f.Updates...)
}

func (f *ECS) enter(op string) error {
	f.mu.Lock()
	f.Calls[op]++
	err := f.Errors[op]
	f.mu.Unlock()
	return err
}

func page(pages [][]string, token *string) ([]string, *string, error) {
	idx := 0
	if token != nil {
		n, err := strconv.Atoi(*token)
		if err != nil || n <= 0 || n >= len(pages) {
			return nil, nil, fmt.Errorf("invalid next token %q", *token)
		}
		idx = n
	}
	if len(pages) == 0 {
		return []string{}, nil, nil
	}

	var next *string
	if idx+1 < len(pages) {
		next = aws.String(strconv.Itoa(idx + 1))
	}
	return append([]string(nil), pages[idx]...), next, nil
}

// ListServices implements client.API
func (f *ECS) ListServices(ctx context.Context, params *ecs.ListServicesInput, optFns ...func(*ecs.Options)) (*ecs.ListServicesOutput, error) {
	if err := f.enter("ListServices"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	arns, next, err := page(f.ServicePages, params.NextToken)
	if err != nil {
		return nil, err
	}
	return &ecs.ListServicesOutput{ServiceArns: arns, NextToken: next}, nil
}

// ListContainerInstances implements client.API
func (f *ECS) ListContainerInstances(ctx context.Context, params *ecs.ListContainerInstancesInput, optFns ...func(*ecs.Options)) (*ecs.ListContainerInstancesOutput, error) {
	if err := f.enter("ListContainerInstances"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	f.LastInstanceStatus = params.Status
	arns, next, err := page(f.InstancePages, params.NextToken)
	if err != nil {
		return nil, err
	}
	return &ecs.ListContainerInstancesOutput{ContainerInstanceArns: arns, NextToken: next}, nil
}

// DescribeServices implements client.API
func (f *ECS) DescribeServices(ctx context.Context, params *ecs.DescribeServicesInput, optFns ...func(*ecs.Options)) (*ecs.DescribeServicesOutput, error) {
	if err := f.enter("DescribeServices"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	out := &ecs.DescribeServicesOutput{}
	for _, arn := range params.Services {
		svc, ok := f.Services[arn]
		if !ok {
			out.Failures = append(out.Failures, ecstypes.Failure{
				Arn:    aws.String(arn),
				Reason: aws.String("MISSING"),
			})
			continue
		}
		out.Services = append(out.Services, svc)
	}
	return out, nil
}

// DescribeTaskDefinition implements client.API
func (f *ECS) DescribeTaskDefinition(ctx context.Context, params *ecs.DescribeTaskDefinitionInput, optFns ...func(*ecs.Options)) (*ecs.DescribeTaskDefinitionOutput, error) {
	if err := f.enter("DescribeTaskDefinition"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	td, ok := f.TaskDefinitions[aws.ToString(params.TaskDefinition)]
	if !ok {
		return nil, fmt.Errorf("task definition %s not found", aws.ToString(params.TaskDefinition))
	}
	return &ecs.DescribeTaskDefinitionOutput{TaskDefinition: &td}, nil
}

// UpdateService implements client.API. The new desired count is stored so a
// following cycle observes it.
func (f *ECS) UpdateService(ctx context.Context, params *ecs.UpdateServiceInput, optFns ...func(*ecs.Options)) (*ecs.UpdateServiceOutput, error) {
	if err := f.enter("UpdateService"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	arn := aws.ToString(params.Service)
	svc, ok := f.Services[arn]
	if !ok {
		return nil, fmt.Errorf("service %s not found", arn)
	}
	count := aws.ToInt32(params.DesiredCount)
	svc.DesiredCount = count
	f.Services[arn] = svc

	f.Updates = append(f.Updates, Update{
		Cluster:      aws.ToString(params.Cluster),
		Service:      arn,
		DesiredCount: count,
	})
	return &ecs.UpdateServiceOutput{Service: &svc}, nil
}
