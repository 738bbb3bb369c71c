package model

import (
	"time"

	"github.com/google/uuid"
)

// UserRole separates learners from course educators.
type UserRole string

const (
	RoleStudent  UserRole = "student"
	RoleEducator UserRole = "educator"
)

// User is a marketplace account. Identity is owned by the auth surface; the
// engine only needs an opaque ID plus display fields for reporting.
type User struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         UserRole  `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// LoginRequest is the payload for authenticating a user.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6,max=128"`
}

// LoginResponse is returned after successful login.
type LoginResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}
