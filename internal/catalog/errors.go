package catalog

import "errors"

var (
	ErrPackageNotFound     = errors.New("package not found")
	ErrDestinationNotFound = errors.New("destination not found")
	ErrInsufficientSlots   = errors.New("not enough slots available for this package")
)
