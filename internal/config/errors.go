// Package config provides configuration types and loading for pencode.
package config

import "errors"

// Sentinel errors for configuration validation.
var (
	// ErrEmpty indicates the config file is missing, unreadable, or has no keys.
	ErrEmpty = errors.New("config file is invalid, empty, or not yet created")

	// ErrMissingScript indicates [vs] has no script path.
	ErrMissingScript = errors.New("vs.script is not set")

	// ErrMissingArgs indicates [ffmpeg] has no base argument template.
	ErrMissingArgs = errors.New("ffmpeg.args is empty")

	// ErrUndefinedFlag indicates an override targets a flag absent from ffmpeg.args.
	ErrUndefinedFlag = errors.New("no default defined for this key")

	// ErrDuplicateThreshold indicates keys such as "720" and "0720" in one override.
	ErrDuplicateThreshold = errors.New("resolution threshold defined more than once")
)
