package tools

import "errors"

var (
	// ErrToolNotFound is returned when a tool is not in the registry.
	ErrToolNotFound = errors.New("tool not found")

	// ErrDuplicateTool is returned when registering a tool whose name is
	// already taken.
	ErrDuplicateTool = errors.New("tool already registered")

	// ErrEmptyToolName is returned when a tool has no name.
	ErrEmptyToolName = errors.New("tool name must not be empty")
)
