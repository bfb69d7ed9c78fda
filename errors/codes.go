package errors

// ErrorCode represents a machine-readable error code.
type ErrorCode string

// Stream errors
const (
	// ErrCodeTransformFailed indicates a user-supplied function (map, sort
	// comparator, zip combiner, tap) returned an error or panicked.
	ErrCodeTransformFailed ErrorCode = "TRANSFORM_FAILED"
	// ErrCodeTypeMismatch indicates an item failed a type constraint (cast).
	ErrCodeTypeMismatch ErrorCode = "TYPE_MISMATCH"
)

// Argument errors
const (
	// ErrCodeInvalidArgument indicates an operator was built with an invalid parameter.
	ErrCodeInvalidArgument ErrorCode = "INVALID_ARGUMENT"
	// ErrCodeInvalidConfig indicates a configuration struct failed validation.
	ErrCodeInvalidConfig ErrorCode = "INVALID_CONFIG"
	// ErrCodeNotFound indicates a named resource (an example, a stream) does not exist.
	ErrCodeNotFound ErrorCode = "NOT_FOUND"
)

// Runtime errors
const (
	// ErrCodeSchedulerStopped indicates work was scheduled on a stopped scheduler.
	ErrCodeSchedulerStopped ErrorCode = "SCHEDULER_STOPPED"
	// ErrCodeTimeout indicates an operation did not finish in time.
	ErrCodeTimeout ErrorCode = "TIMEOUT"
	// ErrCodeInternal indicates an unexpected internal failure.
	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)

var retryableCodes = map[ErrorCode]bool{
	ErrCodeSchedulerStopped: true,
	ErrCodeTimeout:          true,
	ErrCodeTransformFailed:  false,
	ErrCodeTypeMismatch:     false,
	ErrCodeNotFound:         false,
	ErrCodeInternal:         false,
}

// IsRetryableCode returns true if the error code indicates a retryable error.
func IsRetryableCode(code ErrorCode) bool {
	return retryableCodes[code]
}
