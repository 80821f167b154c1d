package models

// UserRole is the application role stored on a profile.
type UserRole string

const (
	RoleAdmin   UserRole = "admin"
	RoleStudent UserRole = "student"
)

// Profile is the application-side record of an auth-provider user.
type Profile struct {
	ID       string   `db:"id" json:"id"`
	FullName *string  `db:"full_name" json:"full_name,omitempty"`
	Role     UserRole `db:"role" json:"role"`
}

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}
