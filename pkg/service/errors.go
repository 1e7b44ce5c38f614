package service

import "errors"

var (
	// ErrUnsupportedType is returned when a node's type has no indexing rules.
	ErrUnsupportedType = errors.New("service: unsupported node type")

	// ErrNotContainer is returned when attaching a child to a type that holds none.
	ErrNotContainer = errors.New("service: node type cannot hold children")

	// ErrRootFolder is returned when deleting the board's root folder.
	ErrRootFolder = errors.New("service: the root folder cannot be deleted")

	// ErrInvalidConfig wraps configuration validation failures.
	ErrInvalidConfig = errors.New("service: invalid config")
)
