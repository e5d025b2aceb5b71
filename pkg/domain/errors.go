package domain

import "errors"

// ErrUnknownBackBehavior is returned when a back behavior name cannot be parsed.
var ErrUnknownBackBehavior = errors.New("unknown back behavior")
