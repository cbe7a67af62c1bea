package models

// Squad is a group of members sharing expenses.
type Squad struct {
	// ID is the unique identifier for the squad (UUID format).
	ID string `bson:"_id"`

	// Name is the display name (e.g., "Roommates", "Ski Trip").
	Name string `bson:"name"`

	Members []Member `bson:"members"`

	// CreatedAt is the Unix timestamp when the squad was created.
	CreatedAt int64 `bson:"createdAt"`

	// UpdatedAt is the Unix timestamp of the last squad or ledger change.
	UpdatedAt int64 `bson:"updatedAt"`
}

// Member returns the member with the given identity.
func (s *Squad) Member(id string) (Member, bool) {
	for _, m := range s.Members {
		if m.ID == id {
			return m, true
		}
	}
	return Member{}, false
}

// HasMember reports whether id is a current member of the squad.
func (s *Squad) HasMember(id string) bool {
	_, ok := s.Member(id)
	return ok
}
