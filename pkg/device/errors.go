package device

import "errors"

var (
	// ErrUnsupported is returned by a Source when the underlying API is absent.
	ErrUnsupported = errors.New("device: api not supported")
	// ErrPermissionDenied is returned by a Source when the user or the host blocks an API.
	ErrPermissionDenied = errors.New("device: permission denied")
	// ErrProbeTimeout marks a capability probe that did not settle in time.
	ErrProbeTimeout = errors.New("device: capability probe timed out")
	// ErrNilSource is returned by Redetect when no source was configured and a
	// snapshot already exists.
	ErrNilSource = errors.New("device: nil source")
)
