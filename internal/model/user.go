package model

import (
	"encoding/json"
	"strings"
)

// Role decides which route-set and landing screen apply to a user
type Role string

const (
	RoleUser       Role = "USER"
	RoleAdmin      Role = "ADMIN"
	RoleSuperAdmin Role = "SUPERADMIN"
)

const (
	UserStatusActive   = "active"
	UserStatusBlocked  = "blocked"
	UserStatusInactive = "inactive"
)

// ParseRole maps a role name to a known Role, ignoring case.
// Unknown names are returned unchanged with ok=false.
func ParseRole(s string) (Role, bool) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case string(RoleUser):
		return RoleUser, true
	case string(RoleAdmin):
		return RoleAdmin, true
	case string(RoleSuperAdmin):
		return RoleSuperAdmin, true
	}
	return Role(s), false
}

// Valid reports whether r is one of the known roles
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleAdmin, RoleSuperAdmin:
		return true
	}
	return false
}

// UnmarshalJSON accepts role names in any case ("admin", "Admin", "ADMIN")
func (r *Role) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*r, _ = ParseRole(s)
	return nil
}

// UserProfile is the logged-in user as returned by the backend and persisted under "userData".
// Everything except ID and Role is carried through untouched.
type UserProfile struct {
	ID          string `json:"id"`
	Role        Role   `json:"role"`
	FirstName   string `json:"firstName,omitempty"`
	LastName    string `json:"lastName,omitempty"`
	Phone       string `json:"phone,omitempty"`
	Email       string `json:"email,omitempty"`
	DateOfBirth string `json:"dateOfBirth,omitempty"` // YYYY-MM-DD
	Gender      string `json:"gender,omitempty"`
	Avatar      string `json:"avatar,omitempty"`
	Status      string `json:"status,omitempty"`
}

// FullName joins the name parts, skipping empty ones
func (u UserProfile) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}
