package domain

import "time"

// Role identifies the kind of platform actor.
type Role string

const (
	RoleClient     Role = "CLIENT"
	RoleTherapist  Role = "THERAPIST"
	RoleSuperAdmin Role = "SUPER_ADMIN"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleClient, RoleTherapist, RoleSuperAdmin:
		return true
	}
	return false
}

// VerifiedStatus tracks account verification.
type VerifiedStatus string

const (
	VerifiedPending VerifiedStatus = "PENDING"
	Verified        VerifiedStatus = "VERIFIED"
)

// User models any platform actor: client, therapist or super-admin.
//
// FriendRequests is a denormalized cache of connection ids involving this
// user. The Connection record is authoritative for status; the list only
// exists so profile views avoid a join. It is maintained with atomic
// $push/$pull updates by the connection workflow.
type User struct {
	ID           string         `json:"id" bson:"_id,omitempty"`
	Role         Role           `json:"role" bson:"role"`
	FirstName    string         `json:"firstname" bson:"firstname"`
	LastName     string         `json:"lastname" bson:"lastname"`
	Email        string         `json:"email" bson:"email"`
	PasswordHash string         `json:"-" bson:"password_hash"`
	Gender       string         `json:"gender,omitempty" bson:"gender,omitempty"`
	PrimaryPhone string         `json:"primary_phone,omitempty" bson:"primary_phone,omitempty"`
	PhotoURL     string         `json:"photo_url,omitempty" bson:"photo_url,omitempty"`
	Description  string         `json:"description,omitempty" bson:"description,omitempty"`
	Verified     VerifiedStatus `json:"verified_status" bson:"verified_status"`

	// Moderation flags set by super-admins.
	AdminApproved  bool `json:"admin_approved" bson:"admin_approved"`
	BlockedByAdmin bool `json:"blocked_by_admin" bson:"blocked_by_admin"`

	FriendRequests []string `json:"friend_requests" bson:"friend_requests"`

	// Client-only fields.
	DislikedTherapists []string `json:"disliked_therapists,omitempty" bson:"disliked_therapists,omitempty"`

	// Therapist-only fields.
	ExperiencedIn     []string `json:"experienced_in,omitempty" bson:"experienced_in,omitempty"`
	YearsOfExperience int      `json:"years_of_experience,omitempty" bson:"years_of_experience,omitempty"`

	LastLogin time.Time `json:"last_login,omitempty" bson:"last_login,omitempty"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at"`
}

// FullName returns the display name used in notification emails.
func (u *User) FullName() string {
	switch {
	case u.FirstName == "":
		return u.LastName
	case u.LastName == "":
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}
