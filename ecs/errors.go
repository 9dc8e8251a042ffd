package ecs

import "errors"

var (
	// ErrInvalidHandle is returned for stale, destroyed or out-of-range handles.
	ErrInvalidHandle = errors.New("invalid entity handle")

	ErrDuplicateComponent    = errors.New("component already attached")
	ErrMissingComponent      = errors.New("component not attached")
	ErrDuplicateSystem       = errors.New("system already registered")
	ErrMissingSystem         = errors.New("system not registered")
	ErrUnregisteredComponent = errors.New("component type not registered")

	// ErrCorruptStream is returned by Deserialize when the byte stream does not
	// follow the entity frame layout.
	ErrCorruptStream = errors.New("corrupt entity stream")
)
