package snapshot

import "errors"

var (
	ErrNotFound = errors.New("snapshot: not found")
	ErrEmptyKey = errors.New("snapshot: key is empty")
	ErrEncode   = errors.New("snapshot: failed to encode")
	ErrDecode   = errors.New("snapshot: failed to decode")
	ErrStorage  = errors.New("snapshot: storage failure")
)
