package domain

import "time"

// User is an account holder. PortfolioManagerID references another user by id;
// management relationships are always resolved through lookups, never pointers.
type User struct {
	ID                 int64
	Email              string
	PasswordHash       string
	FirstName          string
	LastName           string
	Role               string
	PortfolioManagerID *int64
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// ManagedBy reports whether managerID is the user's portfolio manager.
func (u *User) ManagedBy(managerID int64) bool {
	return u != nil && u.PortfolioManagerID != nil && *u.PortfolioManagerID == managerID
}
