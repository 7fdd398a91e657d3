package contract

import "errors"

var (
	ErrInvalidMessage     = errors.New("message is empty")
	ErrValidation         = errors.New("validation failed")
	ErrBackendUnavailable = errors.New("remote backend unavailable")
	ErrUnsupported        = errors.New("operation not supported")
	ErrUnsupportedDomain  = errors.New("unsupported domain")
	ErrReadOnly           = errors.New("store is read-only")
	ErrRemoteCall         = errors.New("remote call failed")
)
