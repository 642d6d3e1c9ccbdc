package domain

import "time"

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

// Account is one row of the accounts table. Username is the primary key and
// never changes after creation.
type Account struct {
	Username     string
	PasswordHash string
	Role         Role
	Profile      Profile
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Profile holds the optional personal and payment fields captured at
// registration. They are stored verbatim.
type Profile struct {
	FirstName        string
	LastName         string
	IDNumber         string
	CreditCardNumber string
	ValidDate        string
	CVC              string
}
