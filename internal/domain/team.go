package domain

import "time"

// Team is the tenant unit. Subscriptions and notifications are scoped to a
// team.
type Team struct {
	ID        string    `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	OwnerID   string    `json:"owner_id" db:"owner_id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// Team member roles.
const (
	TeamRoleOwner  = "owner"
	TeamRoleMember = "member"
)

// TeamMember is a user's membership in a team.
type TeamMember struct {
	TeamID    string    `json:"team_id" db:"team_id"`
	UserID    string    `json:"user_id" db:"user_id"`
	Role      string    `json:"role" db:"role"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
