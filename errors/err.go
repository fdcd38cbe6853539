package errors

import (
	"fmt"
)

var (
	ErrInvalidConfig = fmt.Errorf("archivist: invalid config")
	ErrNotFound      = fmt.Errorf("archivist: not found")
	ErrUnsupported   = fmt.Errorf("archivist: unsupported format")
	ErrDeniedHost    = fmt.Errorf("archivist: denied host")
	ErrInvalidParams = fmt.Errorf("archivist: invalid params")
	ErrInternal      = fmt.Errorf("archivist: internal error")
)
