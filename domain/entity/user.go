package entity

import (
	"errors"
	"time"
)

const (
	RoleAdmin   = "admin"
	RoleManager = "manager"
)

var (
	ErrUserNotFound      = errors.New("user not found")
	ErrUserAlreadyExists = errors.New("user already exists")
)

// User is an actor of the console: managers submit change requests, admins resolve them
type User struct {
	ID        int64     `json:"id"`
	Email     string    `json:"email"`
	FullName  string    `json:"full_name"`
	Password  string    `json:"-"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func NewUser(email, fullName, password, role string) *User {
	now := time.Now()
	return &User{
		Email:     email,
		FullName:  fullName,
		Password:  password,
		Role:      role,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func IsValidRole(role string) bool {
	return role == RoleAdmin || role == RoleManager
}

func IsAdminRole(role string) bool {
	return role == RoleAdmin
}
