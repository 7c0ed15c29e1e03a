package object

import "errors"

// Sentinel errors shared across the object, history, and merge layers.
// Callers match with errors.Is; wrapped context carries the specifics.
var (
	ErrNotFound        = errors.New("object not found")
	ErrAmbiguous       = errors.New("ambiguous object prefix")
	ErrWrongType       = errors.New("object type mismatch")
	ErrCorrupt         = errors.New("corrupt object")
	ErrInvalidArgument = errors.New("invalid argument")
	ErrOutOfRange      = errors.New("index out of range")
	ErrConflict        = errors.New("conflict")
)
