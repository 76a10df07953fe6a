package domain

import (
	"errors"
	"time"
)

// ConnectionStatus is the lifecycle state of a connection request.
type ConnectionStatus string

const (
	ConnectionPending  ConnectionStatus = "PENDING"
	ConnectionApproved ConnectionStatus = "APPROVED"
	ConnectionRejected ConnectionStatus = "REJECTED"
)

// validTransitions defines the allowed state machine transitions. APPROVED
// and REJECTED are terminal; removal is a hard delete, not a transition.
var validTransitions = map[ConnectionStatus][]ConnectionStatus{
	ConnectionPending: {ConnectionApproved, ConnectionRejected},
}

// CanTransitionTo reports whether a transition from s to next is valid.
func (s ConnectionStatus) CanTransitionTo(next ConnectionStatus) bool {
	for _, allowed := range validTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrUserExists         = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidRole        = errors.New("invalid user role")
	ErrForbidden          = errors.New("access forbidden")

	ErrConnectionNotFound = errors.New("connection not found")
	ErrConnectionExists   = errors.New("connection already exists")
	ErrInvalidReference   = errors.New("invalid reference")
	ErrInvalidTransition  = errors.New("invalid status transition")
	// ErrMembershipUpdate signals that the connection row was written but one
	// of the denormalized membership lists could not be updated.
	ErrMembershipUpdate = errors.New("could not update the users")

	ErrTagNotFound     = errors.New("experience tag not found")
	ErrArticleNotFound = errors.New("article not found")
	ErrReportNotFound  = errors.New("report not found")
)

// TagSummary is an experience tag as embedded in joined projections.
type TagSummary struct {
	ID   string `json:"id" bson:"_id,omitempty"`
	Name string `json:"name" bson:"name"`
}

// PartySummary is the joined projection of one side of a connection:
// enough to render a list entry without another user lookup. Tags is only
// populated for the therapist side.
type PartySummary struct {
	ID           string       `json:"id" bson:"_id,omitempty"`
	FirstName    string       `json:"firstname" bson:"firstname"`
	LastName     string       `json:"lastname" bson:"lastname"`
	Email        string       `json:"email" bson:"email"`
	Gender       string       `json:"gender,omitempty" bson:"gender,omitempty"`
	PrimaryPhone string       `json:"primary_phone,omitempty" bson:"primary_phone,omitempty"`
	PhotoURL     string       `json:"photo_url,omitempty" bson:"photo_url,omitempty"`
	Tags         []TagSummary `json:"tags,omitempty" bson:"tags,omitempty"`
}

// Connection is a directed relationship offer from a client to a therapist.
// Exactly one client and one therapist per connection; an active friendship
// exists only while Status is APPROVED.
type Connection struct {
	ID          string           `json:"id" bson:"_id,omitempty"`
	ClientID    string           `json:"client_id" bson:"client_id"`
	TherapistID string           `json:"therapist_id" bson:"therapist_id"`
	Status      ConnectionStatus `json:"status" bson:"status"`
	CreatedAt   time.Time        `json:"created_at" bson:"created_at"`

	// Joined projections, populated by repository reads.
	Client    *PartySummary `json:"client,omitempty" bson:"client,omitempty"`
	Therapist *PartySummary `json:"therapist,omitempty" bson:"therapist,omitempty"`
}
