package ports

import (
	"context"
	"time"

	"github.com/lifeofpease/matchmaking-api/internal/core/domain"
)

// UserUpdate carries the partial fields a profile update may touch. Nil
// pointers mean "leave unchanged".
type UserUpdate struct {
	FirstName         *string
	LastName          *string
	Gender            *string
	PrimaryPhone      *string
	PhotoURL          *string
	Description       *string
	PasswordHash      *string
	Verified          *domain.VerifiedStatus
	AdminApproved     *bool
	BlockedByAdmin    *bool
	ExperiencedIn     *[]string
	YearsOfExperience *int
	LastLogin         *time.Time
}

// RoleListFilter selects users for admin moderation listings.
type RoleListFilter struct {
	Role     domain.Role
	Approved *bool // nil = any
	Limit    int64
	Offset   int64 // 1-based page index, skip = Limit*(Offset-1) clamped to 0
}

// TherapistSearchFilter carries all discovery-search parameters.
type TherapistSearchFilter struct {
	ClientID string // excludes therapists with any connection to this client
	Gender   string // optional exact match
	TagIDs   []string
	// Name matches a whitespace-stripped, case-insensitive prefix of
	// firstname, lastname or their concatenation.
	Name     string
	Excluded []string // the client's disliked-therapist set
	Limit    int64
	Offset   int64
}

// UserRepository is the user directory: durable storage and lookup for all
// platform actors.
type UserRepository interface {
	Create(ctx context.Context, u *domain.User) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByPhone(ctx context.Context, phone string) (*domain.User, error)
	Update(ctx context.Context, id string, upd UserUpdate) (*domain.User, error)
	Delete(ctx context.Context, id string) error

	// PushConnection / PullConnection atomically add or remove a connection
	// id on the denormalized membership list.
	PushConnection(ctx context.Context, userID, connectionID string) error
	PullConnection(ctx context.Context, userID, connectionID string) error

	ListByRole(ctx context.Context, f RoleListFilter) ([]*domain.User, error)
	CountByRole(ctx context.Context, role domain.Role, approved *bool) (int64, error)

	// SearchTherapists runs the discovery aggregation: filters, exclusions
	// and the random-sample stage. See ConnectionRepository for the matching
	// exclusion semantics.
	SearchTherapists(ctx context.Context, f TherapistSearchFilter) ([]*domain.User, error)
}
