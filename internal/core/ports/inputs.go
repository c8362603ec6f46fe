package ports

import (
	"io"
)

// Credentials carries the login form.
type Credentials struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// RegisterInput carries the registration form.
type RegisterInput struct {
	FirstName string `json:"firstName" validate:"required"`
	LastName  string `json:"lastName"  validate:"required"`
	Email     string `json:"email"     validate:"required,email"`
	Phone     string `json:"phone"`
	Password  string `json:"password"  validate:"required,min=6"`
	City      string `json:"city"`
	Address   string `json:"address"`
	Role      string `json:"role"      validate:"required,oneof=ADMIN CAREGIVER CARE_SEEKER"`
}

// AuthResult is what the backend returns for login and register. Name fields
// are optional in the backend contract and are nil when absent.
type AuthResult struct {
	Token     string
	UserID    string
	Email     string
	Role      string
	FirstName *string
	LastName  *string
}

// UploadFile is an avatar picked by the user.
type UploadFile struct {
	Name        string
	ContentType string
	Size        int64
	Data        io.Reader
}

// FeedbackQuery filters the admin feedback listing.
type FeedbackQuery struct {
	Query string
	Stars int // 0 = all ratings
	Page  int
}

// AccountQuery filters the admin careseeker listing.
type AccountQuery struct {
	Query string
	Page  int
}
