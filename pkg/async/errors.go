package async

import "errors"

var (
	ErrTimeout          = errors.New("async: operation timed out waiting for future completion")
	ErrNoFutures        = errors.New("async: WaitAny called with empty futures slice")
	ErrPanic            = errors.New("async: function panicked")
	ErrInvalidBatchSize = errors.New("async: batch size must be positive")
	ErrInvalidLimit     = errors.New("async: concurrency limit must be positive")
	ErrNilFunc          = errors.New("async: nil function")
)
