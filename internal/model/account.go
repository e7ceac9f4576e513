package model

import (
	"fmt"
	"strings"
	"time"
)

type Role string

const (
	RoleUser   Role = "USER"
	RoleSeller Role = "SELLER"
	RoleAdmin  Role = "ADMIN"
)

// ParseRole accepts the bare role name as well as the legacy ROLE_ prefixed form.
func ParseRole(s string) (Role, error) {
	r := Role(strings.TrimPrefix(strings.ToUpper(strings.TrimSpace(s)), "ROLE_"))
	switch r {
	case RoleUser, RoleSeller, RoleAdmin:
		return r, nil
	}
	return "", fmt.Errorf("unknown role %q", s)
}

type Account struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	IsVerified   bool      `json:"isVerified"`
	CreatedAt    time.Time `json:"createdAt"`
}
