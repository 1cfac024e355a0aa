package profile

import "errors"

var (
	ErrEmptyPath   = errors.New("profile: empty path")
	ErrReadProfile = errors.New("profile: failed to read profile")
	ErrWatch       = errors.New("profile: failed to watch profile")
	ErrClosed      = errors.New("profile: watcher is closed")
)
