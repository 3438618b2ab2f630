package dynamodel

import (
	"errors"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

var (
	// ErrItemNotFound is returned when no entity occupies the requested key pair.
	ErrItemNotFound = errors.New("dynamodel: item not found")

	// ErrAlreadyExists is returned by conditional creates when the key pair is
	// already occupied. Service layers treat it as a benign, idempotent outcome.
	ErrAlreadyExists = errors.New("dynamodel: item already exists")

	// ErrInvalidPath is returned when a path or local name is malformed, such as
	// a name embedding the path separator or a path missing the leading separator.
	ErrInvalidPath = errors.New("dynamodel: invalid path")

	// ErrMissingParent is returned when creating a node under a directory that
	// does not exist.
	ErrMissingParent = errors.New("dynamodel: parent directory not found")
)

// conditionFailed reports whether err is the store rejecting a conditional
// write. Used to translate the SDK exception into a result value; the
// condition itself is evaluated atomically by DynamoDB.
func conditionFailed(err error) bool {
	var cond *types.ConditionalCheckFailedException
	return errors.As(err, &cond)
}
