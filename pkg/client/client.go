package client

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/aws/retry"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/ecs"
	ecstypes "github.com/aws/aws-sdk-go-v2/service/ecs/types"

	"github.com/cuemby/ecs-daemonset/pkg/log"
	"github.com/cuemby/ecs-daemonset/pkg/metrics"
	"github.com/cuemby/ecs-daemonset/pkg/types"
)

// API is the subset of the ECS API used by the controller.
// *ecs.Client satisfies it; tests substitute a fake.
type API interface {
	ecs.ListServicesAPIClient
	ecs.ListContainerInstancesAPIClient
	DescribeServices(ctx context.Context, params *ecs.DescribeServicesInput, optFns ...func(*ecs.Options)) (*ecs.DescribeServicesOutput, error)
	DescribeTaskDefinition(ctx context.Context, params *ecs.DescribeTaskDefinitionInput, optFns ...func(*ecs.Options)) (*ecs.DescribeTaskDefinitionOutput, error)
	UpdateService(ctx context.Context, params *ecs.UpdateServiceInput, optFns ...func(*ecs.Options)) (*ecs.UpdateServiceOutput, error)
}

// Config holds the settings used to build an ECS client
type Config struct {
	Region      string
	EndpointURL string // Custom endpoint (simulators, LocalStack)
	MaxAttempts int    // Attempts per API call including the first, 0 uses the SDK default
}

// Client reads cluster state from ECS and applies desired count updates
type Client struct {
	api API
}

// New creates a client from the default AWS credential chain
func New(ctx context.Context, cfg Config) (*Client, error) {
	opts := []func(*awsconfig.LoadOptions) error{}
	if cfg.Region != "" {
		opts = append(opts, awsconfig.WithRegion(cfg.Region))
	}
	if cfg.EndpointURL != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider("test", "test", ""),
		))
	}
	if cfg.MaxAttempts > 0 {
		opts = append(opts, awsconfig.WithRetryer(func() aws.Retryer {
			return retry.NewStandard(func(o *retry.StandardOptions) {
				o.MaxAttempts = cfg.MaxAttempts
			})
		}))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	var api *ecs.Client
	if cfg.EndpointURL != "" {
		api = ecs.NewFromConfig(awsCfg, func(o *ecs.Options) { o.BaseEndpoint = aws.String(cfg.EndpointURL) })
	} else {
		api = ecs.NewFromConfig(awsCfg)
	}

	logger := log.WithComponent("client")
	logger.Debug().
		Str("region", awsCfg.Region).
		Str("endpoint", cfg.EndpointURL).
		Int("max_attempts", cfg.MaxAttempts).
		Msg("ECS client initialized")

	return NewWithAPI(api), nil
}

// NewWithAPI wraps an existing API implementation
func NewWithAPI(api API) *Client {
	return &Client{api: api}
}

// ListServiceARNs returns every service ARN in the cluster, following
// continuation tokens until the last page.
func (c *Client) ListServiceARNs(ctx context.Context, cluster string) ([]string, error) {
	var arns []string
	p := ecs.NewListServicesPaginator(c.api, &ecs.ListServicesInput{
		Cluster: aws.String(cluster),
	})
	for p.HasMorePages() {
		timer := metrics.NewTimer()
		page, err := p.NextPage(ctx)
		record("ListServices", timer, err)
		if err != nil {
			return nil, wrap("ListServices", err)
		}
		arns = append(arns, page.ServiceArns...)
	}
	return arns, nil
}

// ListActiveInstanceARNs returns every ACTIVE container instance ARN in the
// cluster, following continuation tokens until the last page.
func (c *Client) ListActiveInstanceARNs(ctx context.Context, cluster string) ([]string, error) {
	var arns []string
	p := ecs.NewListContainerInstancesPaginator(c.api, &ecs.ListContainerInstancesInput{
		Cluster: aws.String(cluster),
		Status:  ecstypes.ContainerInstanceStatus(types.NodeStatusActive),
	})
	for p.HasMorePages() {
		timer := metrics.NewTimer()
		page, err := p.NextPage(ctx)
		record("ListContainerInstances", timer, err)
		if err != nil {
			return nil, wrap("ListContainerInstances", err)
		}
		arns = append(arns, page.ContainerInstanceArns...)
	}
	return arns, nil
}

// DescribeService fetches the task definition, desired count and placement
// constraints of a single service.
func (c *Client) DescribeService(ctx context.Context, cluster, serviceARN string) (*types.Service, error) {
	timer := metrics.NewTimer()
	out, err := c.api.DescribeServices(ctx, &ecs.DescribeServicesInput{
		Cluster:  aws.String(cluster),
		Services: []string{serviceARN},
	})
	record("DescribeServices", timer, err)
	if err != nil {
		return nil, wrap("DescribeServices", err)
	}
	if len(out.Failures) > 0 {
		f := out.Failures[0]
		if aws.ToString(f.Reason) == "MISSING" {
			return nil, fmt.Errorf("%w: %s", ErrServiceMissing, serviceARN)
		}
		return nil, fmt.Errorf("%w: DescribeServices %s: %s %s",
			ErrMalformedResponse, serviceARN, aws.ToString(f.Reason), aws.ToString(f.Detail))
	}
	if len(out.Services) == 0 {
		return nil, fmt.Errorf("%w: DescribeServices returned no service for %s", ErrMalformedResponse, serviceARN)
	}

	svc := out.Services[0]
	if svc.TaskDefinition == nil {
		return nil, fmt.Errorf("%w: service %s has no task definition", ErrMalformedResponse, serviceARN)
	}

	service := &types.Service{
		ARN:            serviceARN,
		Name:           aws.ToString(svc.ServiceName),
		TaskDefinition: aws.ToString(svc.TaskDefinition),
		DesiredCount:   svc.DesiredCount,
		Constraints:    make([]types.PlacementConstraint, 0, len(svc.PlacementConstraints)),
	}
	if svc.ServiceArn != nil {
		service.ARN = *svc.ServiceArn
	}
	for _, pc := range svc.PlacementConstraints {
		service.Constraints = append(service.Constraints, types.PlacementConstraint{
			Type:       types.ConstraintType(pc.Type),
			Expression: aws.ToString(pc.Expression),
		})
	}
	return service, nil
}

// DescribeTaskDefinition fetches a task definition and the docker labels of
// each of its containers, in definition order.
func (c *Client) DescribeTaskDefinition(ctx context.Context, ref string) (*types.TaskDefinition, error) {
	timer := metrics.NewTimer()
	out, err := c.api.DescribeTaskDefinition(ctx, &ecs.DescribeTaskDefinitionInput{
		TaskDefinition: aws.String(ref),
	})
	record("DescribeTaskDefinition", timer, err)
	if err != nil {
		return nil, wrap("DescribeTaskDefinition", err)
	}
	if out.TaskDefinition == nil {
		return nil, fmt.Errorf("%w: DescribeTaskDefinition returned nothing for %s", ErrMalformedResponse, ref)
	}

	td := out.TaskDefinition
	def := &types.TaskDefinition{
		ARN:        aws.ToString(td.TaskDefinitionArn),
		Family:     aws.ToString(td.Family),
		Revision:   td.Revision,
		Containers: make([]types.ContainerDefinition, 0, len(td.ContainerDefinitions)),
	}
	for _, cd := range td.ContainerDefinitions {
		def.Containers = append(def.Containers, types.ContainerDefinition{
			Name:   aws.ToString(cd.Name),
			Labels: cd.DockerLabels,
		})
	}
	return def, nil
}

// UpdateDesiredCount sets the desired count of a service
func (c *Client) UpdateDesiredCount(ctx context.Context, cluster, serviceARN string, count int32) error {
	timer := metrics.NewTimer()
	_, err := c.api.UpdateService(ctx, &ecs.UpdateServiceInput{
		Cluster:      aws.String(cluster),
		Service:      aws.String(serviceARN),
		DesiredCount: aws.Int32(count),
	})
	record("UpdateService", timer, err)
	if err != nil {
		return wrap("UpdateService", err)
	}
	return nil
}

func record(op string, timer *metrics.Timer, err error) {
	timer.ObserveDurationVec(metrics.APIRequestDuration, op)
	if err != nil {
		code := ErrorCode(err)
		if code == "" {
			code = "unknown"
		}
		metrics.APIErrorsTotal.WithLabelValues(op, code).Inc()
	}
}
