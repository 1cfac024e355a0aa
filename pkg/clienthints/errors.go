package clienthints

import "errors"

var (
	ErrInvalidReport = errors.New("clienthints: invalid report")
	ErrNotReported   = errors.New("clienthints: signal not reported")
	ErrNoSourceInCtx = errors.New("clienthints: no source in context")
)
