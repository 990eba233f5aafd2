package token

import "errors"

// Public, stable errors for callers.
var (
	ErrEntropyUnavailable = errors.New("token entropy source unavailable")
)
