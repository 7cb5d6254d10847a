package service

import "errors"

var (
	ErrPostNotFound = errors.New("post not found")
	ErrNotQueueable = errors.New("post cannot be queued")
	ErrInvalidNonce = errors.New("invalid or expired nonce")
	ErrForbidden    = errors.New("you are not allowed to do this")
)
