package models

import (
	"strings"

	"gorm.io/gorm"
)

// User represents an account that can authenticate with the platform. Users
// belong to exactly one bakery.
type User struct {
	gorm.Model
	BakeryID     uint   `gorm:"not null;index"`
	Email        string `gorm:"uniqueIndex;not null"`
	PasswordHash string `gorm:"not null"`
	Name         string
	Role         string `gorm:"type:varchar(32);default:staff"`
}

const (
	RoleOwner   = "owner"
	RoleManager = "manager"
	RoleStaff   = "staff"

	DefaultRole = RoleStaff
)

// ValidRole reports whether the value is a recognised account role.
func ValidRole(value string) bool {
	switch value {
	case RoleOwner, RoleManager, RoleStaff:
		return true
	default:
		return false
	}
}

// NormalizeRole trims and lowercases the value, falling back to DefaultRole
// when the result is not a recognised role.
func NormalizeRole(value string) string {
	normalized := strings.ToLower(strings.TrimSpace(value))
	if !ValidRole(normalized) {
		return DefaultRole
	}
	return normalized
}
