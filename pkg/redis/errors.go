package redis

import "errors"

var (
	ErrEmptyURL  = errors.New("redis: connection url is empty")
	ErrParseURL  = errors.New("redis: invalid connection url")
	ErrNotReady  = errors.New("redis: server not ready before the connect deadline")
	ErrUnhealthy = errors.New("redis: ping failed")
)
