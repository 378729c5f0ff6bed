package entity

import (
	"time"

	"github.com/google/uuid"
)

// Role levels, lowest to highest. Higher roles inherit the permissions of
// every role below them.
const (
	RoleAgent    = "agent"
	RoleManager  = "manager"
	RoleDirector = "director"
	RoleAdmin    = "admin"
	RoleOwner    = "owner"
)

var roleRank = map[string]int{
	RoleAgent:    1,
	RoleManager:  2,
	RoleDirector: 3,
	RoleAdmin:    4,
	RoleOwner:    5,
}

// KnownRole reports whether the role name is part of the hierarchy.
func KnownRole(role string) bool {
	_, ok := roleRank[role]
	return ok
}

// HasMinRole reports whether role carries at least the privileges of required.
func HasMinRole(role, required string) bool {
	return roleRank[role] >= roleRank[required] && roleRank[role] > 0
}

// User is an account on the admin side of the CRM (executives, managers).
type User struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
