package user

import "time"

type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	PasswordHash string    `json:"-"`
	IsActive     bool      `json:"is_active"`
	IsStaff      bool      `json:"is_staff"`
	DateJoined   time.Time `json:"date_joined"`
}

// RegisterRequest payload of registration.
// swagger:model RegisterRequest
type RegisterRequest struct {
	Email     string `json:"email"      binding:"required,email" example:"buyer@example.com"`
	FirstName string `json:"first_name" binding:"max=30"         example:"Ana"`
	LastName  string `json:"last_name"  binding:"max=30"         example:"Pérez"`
	Password  string `json:"password"   binding:"required"       example:"s3cret!pass"`
	Password2 string `json:"password2"  binding:"required"       example:"s3cret!pass"`
}

// UpdateProfileRequest payload of a profile update. Email is accepted only so
// that a changed value can be rejected.
// swagger:model UpdateProfileRequest
type UpdateProfileRequest struct {
	Email     *string `json:"email,omitempty"`
	FirstName *string `json:"first_name,omitempty" binding:"omitempty,max=30"`
	LastName  *string `json:"last_name,omitempty"  binding:"omitempty,max=30"`
}

// ChangePasswordRequest payload of a password change.
// swagger:model ChangePasswordRequest
type ChangePasswordRequest struct {
	OldPassword  string `json:"old_password"  binding:"required"`
	NewPassword  string `json:"new_password"  binding:"required"`
	NewPassword2 string `json:"new_password2" binding:"required"`
}
