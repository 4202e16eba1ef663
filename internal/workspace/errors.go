package workspace

import (
	"errors"
	"fmt"
)

var (
	// ErrNoActiveSurface is returned by actions that need an active document.
	ErrNoActiveSurface = errors.New("no active document")

	ErrReadOnly = errors.New("document is read-only")
)

// SurfaceNotFoundError reports an unknown surface ID.
type SurfaceNotFoundError struct {
	ID string
}

func (e *SurfaceNotFoundError) Error() string {
	return fmt.Sprintf("surface %s not found", e.ID)
}
