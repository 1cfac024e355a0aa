package telemetry

import "errors"

var (
	ErrSessionNotFound = errors.New("telemetry: session not found")
	ErrSessionClosed   = errors.New("telemetry: session is closed")
	ErrRegistryClosed  = errors.New("telemetry: registry is closed")
	ErrInvalidSamples  = errors.New("telemetry: invalid samples")
	ErrEmptySessionID  = errors.New("telemetry: empty session id")
)
