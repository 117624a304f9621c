package extract

import "errors"

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrUnpack       = errors.New("unpack failed")
	ErrCleanup      = errors.New("cleanup failed")
)
