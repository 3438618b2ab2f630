package dynamodel

import (
	"context"
	"errors"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/smithy-go"
	"github.com/cenkalti/backoff/v4"
)

// Clock is a function type that returns the current time for dependency injection.
type Clock func() time.Time

// DefaultClock returns the current UTC time.
func DefaultClock() time.Time {
	return time.Now().UTC()
}

// RetryTimeout defines the maximum amount of time Retry will keep attempting
// a transient operation. Higher values are better when using tables with
// lower provisioned throughput.
var RetryTimeout = 1 * time.Minute

// Retry runs op with exponential backoff until it succeeds, fails with a
// non-transient error, or RetryTimeout elapses. The store itself never
// retries; this helper is for embedders that want a retry policy around
// individual store calls or query pages.
func Retry(ctx context.Context, op func() error) error {
	b := backoff.NewExponentialBackOff()
	b.MaxElapsedTime = RetryTimeout

	return backoff.Retry(func() error {
		err := op()
		if err == nil {
			return nil
		}
		if !canRetry(err) {
			return backoff.Permanent(err)
		}
		return err
	}, backoff.WithContext(b, ctx))
}

// canRetry reports whether err is a transient store failure worth retrying.
// Conditional-check failures and validation errors are never transient.
func canRetry(err error) bool {
	if conditionFailed(err) {
		return false
	}

	var (
		throughput   *types.ProvisionedThroughputExceededException
		requestLimit *types.RequestLimitExceeded
		internal     *types.InternalServerError
	)
	if errors.As(err, &throughput) || errors.As(err, &requestLimit) || errors.As(err, &internal) {
		return true
	}

	var api smithy.APIError
	if errors.As(err, &api) {
		switch api.ErrorCode() {
		case "ThrottlingException", "ServiceUnavailable":
			return true
		}
	}
	return false
}
