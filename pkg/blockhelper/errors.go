package blockhelper

import "errors"

var (
	// ErrUnknownHelper is returned when invoking a name nothing registered.
	ErrUnknownHelper = errors.New("blockhelper: unknown helper")
	// ErrNotNested is returned when a nested helper type is invoked outside of
	// the helper it belongs to.
	ErrNotNested = errors.New("blockhelper: helper must be invoked from its outer helper")
	// ErrArgs reports missing or mistyped constructor arguments.
	ErrArgs = errors.New("blockhelper: invalid arguments")
	// ErrDuplicateHelper is returned when declarative files define the same
	// helper twice.
	ErrDuplicateHelper = errors.New("blockhelper: duplicate helper")
)
