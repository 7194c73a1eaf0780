// Package domain provides definitions of all entities.
package domain

import (
	"errors"
	"time"
)

var (
	// ErrEmailAlreadyExists indicates that the user with the given email already exists.
	ErrEmailAlreadyExists = errors.New("email already exists")
	// ErrUserNotFound indicates that the user is not found.
	ErrUserNotFound = errors.New("user not found")
	// ErrWrongPassword indicates the wrong password for the given user.
	ErrWrongPassword = errors.New("wrong password")
)

// User holds user data.
type User struct {
	ID             int64     `json:"id"`
	Name           string    `json:"name"`
	Email          string    `json:"email"`
	HashedPassword string    `json:"hashed_password"`
	RoleID         int32     `json:"role_id"`
	CreatedAt      time.Time `json:"created_at,omitempty"`
}

// CreateUserParams is the input data to create a user.
type CreateUserParams struct {
	Name           string `json:"name"`
	Email          string `json:"email"`
	HashedPassword string `json:"hashed_password"`
	RoleID         int32  `json:"role_id"`
}

// UserWithoutPassword is User data excluding password data.
type UserWithoutPassword struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}
