package domain

import "time"

// ExperienceTag is a capability label attached to therapists, used for
// discovery search filtering. Tags are created ad hoc by admins or during
// therapist profile edits via get-or-create on a case-insensitive prefix.
type ExperienceTag struct {
	ID        string    `json:"id" bson:"_id,omitempty"`
	Name      string    `json:"name" bson:"name"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
}
