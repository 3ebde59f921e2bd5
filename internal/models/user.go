package models

import "time"

// Roles understood by the API.
const (
	RoleAdmin     = "admin"
	RoleModerator = "moderator"
	RoleStudent   = "student"
)

// User is an account that can sign in. Students authenticate with their CNIC,
// staff (admins and moderators) with a username.
type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Name         string    `gorm:"size:255;not null" json:"name"`
	CNIC         *string   `gorm:"column:cnic;size:32;uniqueIndex" json:"cnic,omitempty"`
	Username     *string   `gorm:"size:64;uniqueIndex" json:"username,omitempty"`
	PasswordHash string    `gorm:"size:255;not null" json:"-"`
	Role         string    `gorm:"size:16;not null;index" json:"role"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// IsStudent reports whether the user takes exams.
func (u User) IsStudent() bool {
	return u.Role == RoleStudent
}

// IsStaff reports whether the user may manage questions, papers and assignments.
func (u User) IsStaff() bool {
	return IsStaffRole(u.Role)
}

// IsStaffRole reports whether role belongs to an admin or moderator.
func IsStaffRole(role string) bool {
	return role == RoleAdmin || role == RoleModerator
}
