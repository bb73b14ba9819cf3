package models

import "time"

// Role is the access level of a user
type Role string

// Roles a user may hold
const (
	RoleAdmin        Role = "admin"
	RoleInvestigator Role = "investigator"
	RoleAnalyst      Role = "analyst"
	RoleViewer       Role = "viewer"
)

// Valid reports whether r is a known role
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleInvestigator, RoleAnalyst, RoleViewer:
		return true
	}
	return false
}

// MaxFailedLogins is the number of consecutive failed logins that locks an account
const MaxFailedLogins = 5

// LockDuration is how long an account stays locked after MaxFailedLogins
const LockDuration = 2 * time.Hour

// User holds the structure for the users collection
type User struct {
	ID                  string     `json:"_id" bson:"_id"`
	Email               string     `json:"email" bson:"email" validate:"required,email"`
	PasswordHash        string     `json:"-" bson:"passwordHash" validate:"required"`
	FirstName           string     `json:"firstName" bson:"firstName" validate:"required"`
	LastName            string     `json:"lastName" bson:"lastName" validate:"required"`
	Role                Role       `json:"role" bson:"role" validate:"enum"`
	IsActive            bool       `json:"isActive" bson:"isActive"`
	FailedLoginAttempts int        `json:"failedLoginAttempts" bson:"failedLoginAttempts" validate:"gte=0"`
	LockUntil           *time.Time `json:"lockUntil,omitempty" bson:"lockUntil,omitempty"`
	LastLogin           *time.Time `json:"lastLogin,omitempty" bson:"lastLogin,omitempty"`
	CreatedAt           time.Time  `json:"createdAt" bson:"createdAt"`
	UpdatedAt           time.Time  `json:"updatedAt" bson:"updatedAt"`
	Version             int32      `json:"__v" bson:"__v"`
}

// IsLocked reports whether the account is locked out at now
func (u User) IsLocked(now time.Time) bool {
	return u.LockUntil != nil && u.LockUntil.After(now)
}

// FullName joins first and last name
func (u User) FullName() string {
	return u.FirstName + " " + u.LastName
}
