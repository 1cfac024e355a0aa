package rewrite

import "errors"

var (
	ErrBodyTooLarge = errors.New("rewrite: body exceeds buffer limit")
)
