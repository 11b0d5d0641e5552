package services

import "errors"

// Sentinel errors handlers map to HTTP status codes with errors.Is.
var (
	ErrNotFound           = errors.New("not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUsernameTaken      = errors.New("username already in use")
	ErrEmailTaken         = errors.New("email already in use")
	ErrWrongPassword      = errors.New("current password is incorrect")
	ErrBadCategory        = errors.New("category not found")
	ErrInvalidImage       = errors.New("invalid image upload")
	ErrAlreadyReserved    = errors.New("item is already reserved")
	ErrNotReserver        = errors.New("caller did not reserve this item")
	ErrForbidden          = errors.New("operation not permitted")
)
