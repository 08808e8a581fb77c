package workshop

import "errors"

var (
	ErrStaleReply       = errors.New("reply discarded, client no longer active")
	ErrAssistantOffline = errors.New("assistant offline")
	ErrUnavailable      = errors.New("assistant unavailable")
	ErrNoCredits        = errors.New("no credits left")
)
