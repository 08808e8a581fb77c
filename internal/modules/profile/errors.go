package profile

import "errors"

var ErrInvalidAmount = errors.New("invalid credit amount")
