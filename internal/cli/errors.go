package cli

import "errors"

var ErrUnknownTier = errors.New("unknown tier")
