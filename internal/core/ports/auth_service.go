package ports

import (
	"context"

	"github.com/lifeofpease/matchmaking-api/internal/core/domain"
)

// RegisterInput carries the sign-up fields common to clients and therapists.
type RegisterInput struct {
	FirstName    string
	LastName     string
	Email        string
	Password     string
	Gender       string
	PrimaryPhone string
	// TagNames are resolved via get-or-create for therapist registrations.
	TagNames []string
}

// ProfileUpdateInput is the subset of fields a user may edit on their own
// profile. Nil means unchanged.
type ProfileUpdateInput struct {
	FirstName         *string
	LastName          *string
	Gender            *string
	PrimaryPhone      *string
	PhotoURL          *string
	Description       *string
	TagNames          *[]string // therapists only
	YearsOfExperience *int
}

// AuthService implements registration, login and self-service profile edits.
type AuthService interface {
	RegisterClient(ctx context.Context, in RegisterInput) (*domain.User, error)
	RegisterTherapist(ctx context.Context, in RegisterInput) (*domain.User, error)
	// Login returns a signed JWT and the authenticated user. Admin-blocked
	// accounts fail with domain.ErrForbidden.
	Login(ctx context.Context, email, password string) (string, *domain.User, error)
	Me(ctx context.Context, userID string) (*domain.User, error)
	UpdateProfile(ctx context.Context, userID string, role domain.Role, in ProfileUpdateInput) (*domain.User, error)
	ChangePassword(ctx context.Context, userID, current, next string) error
}
