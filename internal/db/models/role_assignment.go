package models

import "time"

type Role string

const (
	RoleUser         Role = "user"
	RoleOrgVerifier  Role = "organization_verifier"
	RoleModerator    Role = "moderator"
	RoleAdmin        Role = "admin"
)

// roleRanks orders the hierarchy; a higher rank implies every permission
// of the ranks below it.
var roleRanks = map[Role]int{
	RoleUser:        0,
	RoleOrgVerifier: 1,
	RoleModerator:   2,
	RoleAdmin:       3,
}

// Rank returns the hierarchy position of r, or -1 for an unknown role.
func (r Role) Rank() int {
	rank, ok := roleRanks[r]
	if !ok {
		return -1
	}
	return rank
}

// AtLeast reports whether r carries every permission of required. An
// unknown role on either side never passes.
func (r Role) AtLeast(required Role) bool {
	requiredRank := required.Rank()
	return requiredRank >= 0 && r.Rank() >= requiredRank
}

// Valid reports whether r names one of the four hierarchy levels.
func (r Role) Valid() bool {
	_, ok := roleRanks[r]
	return ok
}

// RoleAssignment maps a wallet address to its role. Exactly one active
// assignment exists per wallet; the contract owner's admin role is a
// constant override and is never read from here.
type RoleAssignment struct {
	ID            string    `gorm:"primaryKey" json:"id"`
	WalletAddress string    `gorm:"uniqueIndex;not null" json:"wallet_address"`
	Role          Role      `gorm:"not null;default:'user'" json:"role"`
	AssignedBy    string    `json:"assigned_by"`
	AssignedAt    time.Time `json:"assigned_at"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

func (RoleAssignment) TableName() string {
	return "role_assignments"
}
