package config

import "errors"

// ErrNilPointer is returned when a nil pointer is provided to Load.
var ErrNilPointer = errors.New("config: nil pointer provided")
