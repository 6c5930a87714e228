package auth

import "errors"

var (
	ErrInvalidCredentials = errors.New("auth: incorrect username or password")
	ErrInactiveUser       = errors.New("auth: inactive user")
	ErrLocked             = errors.New("auth: too many failed login attempts")
)
