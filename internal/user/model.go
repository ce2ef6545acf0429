package user

import "time"

// User represents a registered wallet owner.
type User struct {
	ID            int64
	Email         string
	FirstName     string
	LastName      string
	Phone         string
	IsBlacklisted bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// FullName returns the display name used to label the owner's wallet.
func (u User) FullName() string {
	return u.FirstName + " " + u.LastName
}

// RegisterInput captures data required to onboard a user.
type RegisterInput struct {
	Email     string
	FirstName string
	LastName  string
	Phone     string
}
