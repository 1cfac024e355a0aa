package optimize

import "errors"

var (
	ErrClosed           = errors.New("optimize: manager is cleaned up")
	ErrNilDocument      = errors.New("optimize: nil document")
	ErrInvalidProfile   = errors.New("optimize: invalid profile")
	ErrInvalidQuality   = errors.New("optimize: image quality must be within 0..100")
	ErrInvalidFPS       = errors.New("optimize: fps must be positive")
	ErrInvalidLimits    = errors.New("optimize: batch size and concurrency must be positive")
	ErrNegativeDuration = errors.New("optimize: durations must not be negative")
)
