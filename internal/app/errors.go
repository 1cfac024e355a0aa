package app

import "errors"

var (
	ErrMountPath     = errors.New("app: mount path must be an absolute path other than /")
	ErrRedisRequired = errors.New("app: redis store requires REDIS_URL")
	ErrLogLevel      = errors.New("app: invalid log level")
	ErrUpstream      = errors.New("app: invalid upstream url")
	ErrStore         = errors.New("app: failed to open snapshot store")
)
