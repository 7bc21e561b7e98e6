/*
Package client is the boundary between the controller and the ECS API.

Client wraps the aws-sdk-go-v2 ECS client behind the API interface, which
lists only the five operations the controller uses. Production code builds it
with New from the default AWS credential chain; tests build it with
NewWithAPI around the in-memory implementation in package fake.

# Cluster State

ListServiceARNs and ListActiveInstanceARNs drain every page through the SDK
paginators and return the concatenation of all pages in page order. If any
page fails the whole listing fails; partial listings are never returned,
because a short node count would scale services to the wrong size.

# Retries

Transient errors (throttling, 5xx, connection resets) are retried inside the
SDK by the standard retryer with exponential backoff and jitter. Config
MaxAttempts bounds the attempts per call. Errors that survive the retryer are
wrapped with the operation name and returned.

# Errors

  - ErrMalformedResponse: ECS answered without a field the controller needs
  - ErrServiceMissing: a listed service was gone by the time it was described
  - ErrorCode: the ECS error code of a remote failure, e.g. "AccessDeniedException"
  - IsNotFound: the service or cluster no longer exists

# Usage

	c, err := client.New(ctx, client.Config{Region: "eu-west-1", MaxAttempts: 5})
	if err != nil {
		return err
	}

	services, err := c.ListServiceARNs(ctx, "prod")
	nodes, err := c.ListActiveInstanceARNs(ctx, "prod")
	svc, err := c.DescribeService(ctx, "prod", services[0])
	err = c.UpdateDesiredCount(ctx, "prod", svc.ARN, int32(len(nodes)))

Every call records its latency in ecs_daemonset_api_request_duration_seconds
and failures in ecs_daemonset_api_errors_total.
*/
package client
