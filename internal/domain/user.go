package domain

import (
	"fmt"
	"time"
)

// Role is the closed set of account roles. The zero value is not a valid role.
type Role uint8

const (
	RoleUnknown Role = iota
	RoleAdmin
	RoleUser
	RoleStoreOwner
)

// Roles lists every valid role in display order.
var Roles = []Role{RoleAdmin, RoleUser, RoleStoreOwner}

func (r Role) String() string {
	switch r {
	case RoleAdmin:
		return "admin"
	case RoleUser:
		return "user"
	case RoleStoreOwner:
		return "store_owner"
	default:
		return "unknown"
	}
}

// Valid reports whether r is one of the defined roles.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleUser, RoleStoreOwner:
		return true
	default:
		return false
	}
}

// ParseRole converts the wire/database representation into a Role.
func ParseRole(s string) (Role, error) {
	switch s {
	case "admin":
		return RoleAdmin, nil
	case "user":
		return RoleUser, nil
	case "store_owner":
		return RoleStoreOwner, nil
	default:
		return RoleUnknown, fmt.Errorf("unknown role %q", s)
	}
}

// MarshalText encodes the role as its string form; invalid roles fail.
func (r Role) MarshalText() ([]byte, error) {
	if !r.Valid() {
		return nil, fmt.Errorf("invalid role %d", r)
	}
	return []byte(r.String()), nil
}

// UnmarshalText decodes a role string.
func (r *Role) UnmarshalText(b []byte) error {
	parsed, err := ParseRole(string(b))
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

// User is a registered account. PasswordHash never leaves the service layer.
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Address      *string
	Role         Role
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Summary returns the minimal identity attached to joined records.
func (u User) Summary() UserSummary {
	return UserSummary{ID: u.ID, Name: u.Name, Email: u.Email, Address: u.Address}
}

// UserSummary is the owner/rater identity embedded in store and rating views.
type UserSummary struct {
	ID      string
	Name    string
	Email   string
	Address *string
}
