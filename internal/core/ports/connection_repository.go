package ports

import (
	"context"

	"github.com/lifeofpease/matchmaking-api/internal/core/domain"
)

// ConnectionPage selects a page of a role-scoped connection listing.
// Offset is 1-based: skip = Limit*(Offset-1), clamped to 0 for Offset <= 1.
type ConnectionPage struct {
	Limit  int64
	Offset int64
}

// ConnectionRepository stores connection records and serves the joined,
// role-scoped listings. All reads return domain.ErrConnectionNotFound for
// unknown ids; storage-layer failures are wrapped and propagate as-is.
type ConnectionRepository interface {
	// Create inserts a new PENDING connection. Duplicate (client, therapist)
	// pairs are the caller's responsibility to prevent.
	Create(ctx context.Context, clientID, therapistID string) (*domain.Connection, error)
	GetByID(ctx context.Context, id string) (*domain.Connection, error)
	// GetByIDForUser returns the connection only when userID is the party
	// matching role (client or therapist slot).
	GetByIDForUser(ctx context.Context, id, userID string, role domain.Role) (*domain.Connection, error)
	UpdateStatus(ctx context.Context, id string, status domain.ConnectionStatus) (*domain.Connection, error)
	// Delete removes and returns the deleted, joined record.
	Delete(ctx context.Context, id string) (*domain.Connection, error)

	// ListByTherapist excludes REJECTED connections and connections whose
	// client is admin-blocked; ordered by recency.
	ListByTherapist(ctx context.Context, therapistID string, page ConnectionPage) ([]*domain.Connection, error)
	// ListByClient is analogous with joined therapist tags and photo, and
	// applies a 99-record random-sample stage before the final slice, so
	// pagination beyond the sample window yields empty results.
	ListByClient(ctx context.Context, clientID string, page ConnectionPage) ([]*domain.Connection, error)
	// ListSentByClient returns all non-REJECTED connections the client initiated.
	ListSentByClient(ctx context.Context, clientID string) ([]*domain.Connection, error)
	// ListApprovedByTherapist returns the therapist's full approved list (admin use).
	ListApprovedByTherapist(ctx context.Context, therapistID string) ([]*domain.Connection, error)

	// FindApproved is the canonical "are these two connected" check.
	FindApproved(ctx context.Context, clientID, therapistID string) (*domain.Connection, error)
	// FindAny returns every connection between the pair regardless of status.
	FindAny(ctx context.Context, clientID, therapistID string) ([]*domain.Connection, error)

	DeleteAllForClient(ctx context.Context, clientID string) (int64, error)
	DeleteAllForTherapist(ctx context.Context, therapistID string) (int64, error)
}
