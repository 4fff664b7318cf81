package models

// Participant represents a person sharing expenses. The app's own user is an
// ordinary participant; every computation takes the viewer's id explicitly
// instead of consulting a global.
type Participant struct {
	// ID is the unique identifier for the participant (UUID format).
	ID string

	// DisplayName is the name shown in conversation and balance views.
	DisplayName string

	// CreatedAt is the Unix timestamp when the participant was created.
	CreatedAt int64
}
