package model

import (
	"time"

	"github.com/google/uuid"
)

type Role string

const (
	RoleCustomer Role = "CUSTOMER"
	RoleAgent    Role = "AGENT"
	RoleFinance  Role = "FINANCE"
	RoleMD       Role = "MD"
)

type User struct {
	ID        uuid.UUID `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Email     string    `db:"email" json:"email"`
	Active    bool      `db:"active" json:"active"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// Recipient is the resolved delivery profile of one stakeholder: identity
// plus the contact address the email channel delivers to. Push targets are
// resolved separately from the device token store at send time.
type Recipient struct {
	UserID uuid.UUID
	Name   string
	Email  string
}
