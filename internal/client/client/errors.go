package client

import "errors"

var (
	ErrUnavailable        = errors.New("server unavailable")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrTokenExpired       = errors.New("token expired")
	ErrInvalidCredentials = errors.New("invalid nickname or password")
	ErrAlreadyExists      = errors.New("nickname or email already taken")
	ErrInvalidInput       = errors.New("invalid input")
)
