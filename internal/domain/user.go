package domain

import "time"

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

func (r Role) Valid() bool { return r == RoleUser || r == RoleAdmin }

type User struct {
	ID           int64
	Name         string
	TelNo        string
	Email        string
	Role         Role
	PasswordHash []byte
	CreatedAt    time.Time
}

// Requester is the authenticated caller, supplied by the auth layer.
type Requester struct {
	ID   int64
	Role Role
}

func (r Requester) IsPrivileged() bool { return r.Role == RoleAdmin }
