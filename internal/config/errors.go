package config

import "errors"

var (
	// ErrInvalidConfig wraps every validation failure.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrNoConfigFile is returned by Watch when Load found no file.
	ErrNoConfigFile = errors.New("no config file to watch")
)
