package dto

import "github.com/noah-isme/nepses-go-api/internal/models"

// RegisterRequest creates a student account.
type RegisterRequest struct {
	Name     string `json:"name" validate:"required,min=2,max=255"`
	CNIC     string `json:"cnic" validate:"required,numeric,len=13"`
	Password string `json:"password" validate:"required,min=6"`
}

// StudentLoginRequest authenticates a student by CNIC.
type StudentLoginRequest struct {
	CNIC     string `json:"cnic" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// AdminLoginRequest authenticates an admin or moderator by username.
type AdminLoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// UserResponse is the public view of an account.
type UserResponse struct {
	ID       uint   `json:"id"`
	Name     string `json:"name"`
	CNIC     string `json:"cnic,omitempty"`
	Username string `json:"username,omitempty"`
	Role     string `json:"role"`
}

// AuthResponse is returned by every successful sign-in.
type AuthResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}

// NewUserResponse converts a user model into its public view.
func NewUserResponse(user models.User) UserResponse {
	resp := UserResponse{ID: user.ID, Name: user.Name, Role: user.Role}
	if user.CNIC != nil {
		resp.CNIC = *user.CNIC
	}
	if user.Username != nil {
		resp.Username = *user.Username
	}
	return resp
}
