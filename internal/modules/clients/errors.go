package clients

import "errors"

var (
	ErrNotFound     = errors.New("client not found")
	ErrValidation   = errors.New("validation error")
	ErrUpdateFailed = errors.New("update failed")
)
