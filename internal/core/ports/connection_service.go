package ports

import (
	"context"

	"github.com/lifeofpease/matchmaking-api/internal/core/domain"
)

// ConnectionService enforces the request/approve/reject/unfriend protocol
// and keeps the denormalized membership lists on both parties consistent.
type ConnectionService interface {
	// Request creates a PENDING connection from a client to a therapist,
	// appends its id to both membership lists and notifies the therapist
	// best-effort. A pair with any existing connection record is rejected
	// with domain.ErrConnectionExists.
	Request(ctx context.Context, clientID, therapistID string) (*domain.Connection, error)

	// Respond sets the status of a PENDING request owned by therapistID to
	// APPROVED or REJECTED and notifies the client. Terminal states admit no
	// further transition.
	Respond(ctx context.Context, connectionID, therapistID string, status domain.ConnectionStatus) (*domain.Connection, error)

	// Remove hard-deletes the connection and trims its id from both
	// membership lists. The caller must be a party to the connection.
	Remove(ctx context.Context, connectionID, callerID string, role domain.Role) error

	// Unfriend is Remove plus a "removed from friend list" notification to
	// the other party.
	Unfriend(ctx context.Context, connectionID, callerID string, role domain.Role) (*domain.Connection, error)

	// IsConnected reports whether an APPROVED connection exists between the
	// caller and otherUserID, direction-normalized: the client role always
	// occupies the client slot regardless of which side is asking.
	IsConnected(ctx context.Context, callerID string, role domain.Role, otherUserID string) (bool, error)

	// ListForRole dispatches to the therapist or client listing by role.
	ListForRole(ctx context.Context, userID string, role domain.Role, page ConnectionPage) ([]*domain.Connection, error)

	// ListSent returns all non-rejected connections the client initiated.
	ListSent(ctx context.Context, clientID string) ([]*domain.Connection, error)

	// PairHistory returns every connection between the pair regardless of
	// status, for party or admin inspection.
	PairHistory(ctx context.Context, clientID, therapistID string) ([]*domain.Connection, error)

	// ApprovedForTherapist returns the therapist's full approved list (admin).
	ApprovedForTherapist(ctx context.Context, therapistID string) ([]*domain.Connection, error)
}

// PairGuard closes the concurrent-duplicate window on Request: Acquire
// succeeds at most once per (client, therapist) pair until Release.
type PairGuard interface {
	Acquire(ctx context.Context, clientID, therapistID string) (bool, error)
	Release(ctx context.Context, clientID, therapistID string) error
}
