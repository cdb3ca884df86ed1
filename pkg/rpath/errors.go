package rpath

import "errors"

// ErrInvalidArgument and ErrNotFound classify path-construction failures so
// that callers can recognize them with errors.Is without rpath depending on
// the RMI error-kind package.
var (
	ErrInvalidArgument = errors.New("invalid path argument")
	ErrNotFound        = errors.New("path not found")
)
