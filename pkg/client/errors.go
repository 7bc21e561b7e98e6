package client

import (
	"errors"
	"fmt"

	"github.com/aws/smithy-go"
)

// ErrMalformedResponse is returned when ECS answers without a field the
// controller cannot do without.
var ErrMalformedResponse = errors.New("malformed ECS response")

// ErrServiceMissing is returned when a listed service is gone by the time it
// is described.
var ErrServiceMissing = errors.New("service missing")

func wrap(op string, err error) error {
	return fmt.Errorf("ECS %s failed: %w", op, err)
}

// ErrorCode returns the API error code carried by err, or "" if err did not
// come from the ECS API.
func ErrorCode(err error) string {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		return apiErr.ErrorCode()
	}
	return ""
}

// IsNotFound reports whether err means the cluster or service no longer exists
func IsNotFound(err error) bool {
	if errors.Is(err, ErrServiceMissing) {
		return true
	}
	switch ErrorCode(err) {
	case "ClusterNotFoundException", "ServiceNotFoundException", "ServiceNotActiveException":
		return true
	}
	return false
}
