package models

// Role is a member's permission level within a squad.
type Role string

const (
	RoleAdmin  Role = "ADMIN"
	RoleMember Role = "MEMBER"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleMember
}

// Member is a squad participant.
type Member struct {
	// ID is the stable external identity (the member's email).
	ID string `bson:"id"`

	// Name is the display name supplied by the identity provider.
	Name string `bson:"name"`

	// Avatar is an opaque image reference, possibly empty.
	Avatar string `bson:"avatar,omitempty"`

	Role Role `bson:"role"`

	// JoinedAt is the Unix timestamp when the member was added.
	JoinedAt int64 `bson:"joinedAt"`
}

// IsAdmin reports whether the member holds the ADMIN role.
func (m Member) IsAdmin() bool {
	return m.Role == RoleAdmin
}
