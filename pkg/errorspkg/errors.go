// Package errorspkg provides common app errors.
package errorspkg

import "errors"

var (
	// ErrInternal indicates internal server error.
	ErrInternal = errors.New("internal")
	// ErrConflict indicates that concurrent-update retries were exhausted.
	ErrConflict = errors.New("conflicting concurrent update")
)
