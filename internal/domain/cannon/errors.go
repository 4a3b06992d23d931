package cannon

import "errors"

var (
	// ErrCannonNotFound indicates the cannon doesn't exist.
	ErrCannonNotFound = errors.New("cannon not found")
	// ErrInvalidInput indicates invalid input for cannon operations.
	ErrInvalidInput = errors.New("invalid cannon input")
	// ErrInvalidImport indicates an import payload that is not a record list.
	ErrInvalidImport = errors.New("invalid import payload")
	// ErrDuplicateFilename indicates a catalog filename is already stored.
	ErrDuplicateFilename = errors.New("filename already stored")
)
