package models

// Group represents a reusable set of participants. Transactions tagged with
// a GroupID restrict group balance views to that group's history.
type Group struct {
	// ID is the unique identifier for the group (UUID format).
	ID string

	// Name is the display name of the group (e.g. "Flatmates", "Ski Trip").
	Name string

	// MemberIDs are the participant ids belonging to this group.
	MemberIDs []string

	// CreatedAt is the Unix timestamp when the group was created.
	CreatedAt int64
}

// HasMember reports whether the participant belongs to the group.
func (g *Group) HasMember(participantID string) bool {
	for _, id := range g.MemberIDs {
		if id == participantID {
			return true
		}
	}
	return false
}
