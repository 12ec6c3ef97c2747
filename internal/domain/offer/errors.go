package offer

import "errors"

var (
	ErrNotFound          = errors.New("offer: offer not found")
	ErrStatusConflict    = errors.New("offer: offer status changed concurrently")
	ErrInvalidTransition = errors.New("offer: invalid status transition")
	ErrNoLines           = errors.New("offer: offer has no lines")
	ErrLineNotFound      = errors.New("offer: line not found")
	ErrNotEditable       = errors.New("offer: offer is not editable in its current status")
)
