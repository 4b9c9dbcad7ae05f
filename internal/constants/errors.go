package constants

import "errors"

// Configuration errors.
var (
	ErrNoCredentials    = errors.New("no credentials configured, set them in the config file or BULLHORN_* environment variables")
	ErrPasswordRequired = errors.New("password is required")
	ErrNotInteractive   = errors.New("stdin is not a terminal, cannot prompt for password")
)

// Validation errors.
var (
	ErrInvalidID          = errors.New("invalid id, expected a positive integer")
	ErrUnknownOutput      = errors.New("unknown output format")
	ErrFileNameRequired   = errors.New("--file flag is required")
	ErrCandidateRequired  = errors.New("--candidate flag is required")
	ErrJobOrderRequired   = errors.New("--job flag is required")
	ErrDirectoryTraversal = errors.New("directory traversal detected in file path")
)

// File system errors.
var (
	ErrNotRegularFile = errors.New("path is not a regular file")
)
