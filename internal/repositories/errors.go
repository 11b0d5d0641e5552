package repositories

import "errors"

// ErrNotFound is wrapped into every lookup miss so callers can branch with
// errors.Is instead of matching message text.
var ErrNotFound = errors.New("record not found")
