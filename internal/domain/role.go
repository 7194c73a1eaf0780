package domain

import "errors"

var (
	// ErrRoleNotFound indicates that the role is not found.
	ErrRoleNotFound = errors.New("role not found")
	// ErrAccessDenied indicates that the user lacks the required permission.
	ErrAccessDenied = errors.New("access denied")
)

// Role groups a set of permissions. A user has exactly one role.
type Role struct {
	ID   int32  `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// Permission is a single named capability identified by its slug.
type Permission struct {
	ID   int32  `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}
