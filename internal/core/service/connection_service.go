package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/lifeofpease/matchmaking-api/internal/api/metrics"
	"github.com/lifeofpease/matchmaking-api/internal/core/domain"
	"github.com/lifeofpease/matchmaking-api/internal/core/ports"
)

// ConnectionService orchestrates the connection state machine and keeps the
// denormalized membership lists on both parties in step with the
// authoritative connection records.
type ConnectionService struct {
	connections ports.ConnectionRepository
	users       ports.UserRepository
	guard       ports.PairGuard
	notify      ports.NotificationEnqueuer
	logger      zerolog.Logger
}

func NewConnectionService(
	connections ports.ConnectionRepository,
	users ports.UserRepository,
	guard ports.PairGuard,
	notify ports.NotificationEnqueuer,
	logger zerolog.Logger,
) *ConnectionService {
	return &ConnectionService{
		connections: connections,
		users:       users,
		guard:       guard,
		notify:      notify,
		logger:      logger,
	}
}

// Request creates a PENDING connection from clientID to therapistID.
//
// Any prior connection between the pair, regardless of status, rejects the
// request with domain.ErrConnectionExists. The pair guard additionally closes
// the window between two concurrent requests for the same pair.
func (s *ConnectionService) Request(ctx context.Context, clientID, therapistID string) (*domain.Connection, error) {
	therapist, err := s.users.FindByID(ctx, therapistID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrInvalidReference
		}
		return nil, fmt.Errorf("request connection: %w", err)
	}
	if therapist.Role != domain.RoleTherapist {
		return nil, domain.ErrInvalidReference
	}

	client, err := s.users.FindByID(ctx, clientID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrInvalidReference
		}
		return nil, fmt.Errorf("request connection: %w", err)
	}

	existing, err := s.connections.FindAny(ctx, clientID, therapistID)
	if err != nil {
		return nil, fmt.Errorf("request connection: %w", err)
	}
	if len(existing) > 0 {
		return nil, domain.ErrConnectionExists
	}

	acquired, err := s.guard.Acquire(ctx, clientID, therapistID)
	if err != nil {
		// Guard unavailable: fall through on the FindAny check alone.
		s.logger.Warn().Err(err).Str("client_id", clientID).Str("therapist_id", therapistID).
			Msg("pair guard unavailable, proceeding without it")
	} else if !acquired {
		return nil, domain.ErrConnectionExists
	}

	conn, err := s.connections.Create(ctx, clientID, therapistID)
	if err != nil {
		_ = s.guard.Release(ctx, clientID, therapistID)
		return nil, fmt.Errorf("request connection: %w", err)
	}

	// Two independent list updates. Not transactional: when one fails the
	// connection row already exists orphaned from that side's cache, which
	// the caller sees as ErrMembershipUpdate.
	pushErr := s.users.PushConnection(ctx, therapistID, conn.ID)
	if err := s.users.PushConnection(ctx, clientID, conn.ID); err != nil && pushErr == nil {
		pushErr = err
	}
	if pushErr != nil {
		s.logger.Error().Err(pushErr).Str("connection_id", conn.ID).Msg("membership list update failed")
		return nil, domain.ErrMembershipUpdate
	}

	metrics.ConnectionsRequestedTotal.Inc()
	s.logger.Info().Str("connection_id", conn.ID).
		Str("client_id", clientID).Str("therapist_id", therapistID).
		Msg("connection requested")

	s.notify.Enqueue(ports.Notification{
		To:      therapist.Email,
		Name:    therapist.FullName(),
		Subject: "You have received a new request!",
		Body:    "You have received a request from " + client.FullName() + ". Log in to connect with the client.",
	})

	return conn, nil
}

// Respond applies a PENDING -> APPROVED or PENDING -> REJECTED transition on
// a request owned by therapistID. Membership lists are untouched; they have
// carried the id since creation.
func (s *ConnectionService) Respond(ctx context.Context, connectionID, therapistID string, status domain.ConnectionStatus) (*domain.Connection, error) {
	if status != domain.ConnectionApproved && status != domain.ConnectionRejected {
		return nil, domain.ErrInvalidTransition
	}

	conn, err := s.connections.GetByIDForUser(ctx, connectionID, therapistID, domain.RoleTherapist)
	if err != nil {
		return nil, err
	}
	if !conn.Status.CanTransitionTo(status) {
		return nil, domain.ErrInvalidTransition
	}

	updated, err := s.connections.UpdateStatus(ctx, connectionID, status)
	if err != nil {
		return nil, fmt.Errorf("respond to connection: %w", err)
	}

	metrics.ConnectionsRespondedTotal.WithLabelValues(string(status)).Inc()
	s.logger.Info().Str("connection_id", connectionID).Str("status", string(status)).Msg("connection responded")

	if updated.Client != nil && updated.Therapist != nil {
		therapistName := updated.Therapist.FirstName + " " + updated.Therapist.LastName
		n := ports.Notification{
			To:   updated.Client.Email,
			Name: updated.Client.FirstName + " " + updated.Client.LastName,
		}
		if status == domain.ConnectionApproved {
			n.Subject = "Your request has been approved!"
			n.Body = "Your request has been approved by " + therapistName + ". Log in to connect with the therapist."
		} else {
			n.Subject = "Your request has been rejected!"
			n.Body = "Sorry to inform! Your request has been rejected by " + therapistName + ". Log in to view more information."
		}
		s.notify.Enqueue(n)
	}

	return updated, nil
}

// Remove hard-deletes the connection after trimming its id from both
// membership lists. The lookup aborts before any mutation when the caller is
// not a party; a list update failure does not stop the row delete.
func (s *ConnectionService) Remove(ctx context.Context, connectionID, callerID string, role domain.Role) error {
	_, err := s.remove(ctx, connectionID, callerID, role)
	return err
}

func (s *ConnectionService) remove(ctx context.Context, connectionID, callerID string, role domain.Role) (*domain.Connection, error) {
	if role != domain.RoleClient && role != domain.RoleTherapist {
		return nil, domain.ErrInvalidRole
	}

	conn, err := s.connections.GetByIDForUser(ctx, connectionID, callerID, role)
	if err != nil {
		if errors.Is(err, domain.ErrConnectionNotFound) {
			return nil, domain.ErrInvalidReference
		}
		return nil, err
	}

	if err := s.users.PullConnection(ctx, conn.ClientID, conn.ID); err != nil {
		s.logger.Error().Err(err).Str("connection_id", conn.ID).Str("user_id", conn.ClientID).
			Msg("failed to trim client membership list")
	}
	if err := s.users.PullConnection(ctx, conn.TherapistID, conn.ID); err != nil {
		s.logger.Error().Err(err).Str("connection_id", conn.ID).Str("user_id", conn.TherapistID).
			Msg("failed to trim therapist membership list")
	}

	deleted, err := s.connections.Delete(ctx, conn.ID)
	if err != nil {
		return nil, fmt.Errorf("remove connection: %w", err)
	}

	if err := s.guard.Release(ctx, conn.ClientID, conn.TherapistID); err != nil {
		s.logger.Warn().Err(err).Str("connection_id", conn.ID).Msg("pair guard release failed")
	}

	metrics.ConnectionsRemovedTotal.Inc()
	s.logger.Info().Str("connection_id", conn.ID).Msg("connection removed")
	return deleted, nil
}

// Unfriend removes the connection and notifies the other party.
func (s *ConnectionService) Unfriend(ctx context.Context, connectionID, callerID string, role domain.Role) (*domain.Connection, error) {
	deleted, err := s.remove(ctx, connectionID, callerID, role)
	if err != nil {
		return nil, err
	}

	if deleted.Client != nil && deleted.Therapist != nil {
		clientName := deleted.Client.FirstName + " " + deleted.Client.LastName
		therapistName := deleted.Therapist.FirstName + " " + deleted.Therapist.LastName
		if role == domain.RoleClient {
			s.notify.Enqueue(ports.Notification{
				To:      deleted.Therapist.Email,
				Name:    therapistName,
				Subject: "You were removed from a client's friend list",
				Body:    "You have been removed from the friend list by " + clientName + ".",
			})
		} else {
			s.notify.Enqueue(ports.Notification{
				To:      deleted.Client.Email,
				Name:    clientName,
				Subject: "You were removed from a therapist's friend list",
				Body:    "You have been removed from the friend list by " + therapistName + ".",
			})
		}
	}

	return deleted, nil
}

// IsConnected reports whether an APPROVED connection exists between the
// caller and otherUserID. Direction-normalized: the CLIENT role always fills
// the client slot.
func (s *ConnectionService) IsConnected(ctx context.Context, callerID string, role domain.Role, otherUserID string) (bool, error) {
	if _, err := s.users.FindByID(ctx, otherUserID); err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return false, domain.ErrInvalidReference
		}
		return false, err
	}

	clientID, therapistID := callerID, otherUserID
	if role == domain.RoleTherapist {
		clientID, therapistID = otherUserID, callerID
	}

	_, err := s.connections.FindApproved(ctx, clientID, therapistID)
	if err != nil {
		if errors.Is(err, domain.ErrConnectionNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// ListForRole dispatches to the therapist or client listing.
func (s *ConnectionService) ListForRole(ctx context.Context, userID string, role domain.Role, page ports.ConnectionPage) ([]*domain.Connection, error) {
	switch role {
	case domain.RoleTherapist:
		return s.connections.ListByTherapist(ctx, userID, page)
	case domain.RoleClient:
		return s.connections.ListByClient(ctx, userID, page)
	}
	return nil, domain.ErrInvalidRole
}

// ListSent returns all non-rejected connections the client initiated.
func (s *ConnectionService) ListSent(ctx context.Context, clientID string) ([]*domain.Connection, error) {
	return s.connections.ListSentByClient(ctx, clientID)
}

// PairHistory returns every connection between the pair regardless of status.
func (s *ConnectionService) PairHistory(ctx context.Context, clientID, therapistID string) ([]*domain.Connection, error) {
	if _, err := s.users.FindByID(ctx, clientID); err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrInvalidReference
		}
		return nil, err
	}
	if _, err := s.users.FindByID(ctx, therapistID); err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrInvalidReference
		}
		return nil, err
	}
	return s.connections.FindAny(ctx, clientID, therapistID)
}

// ApprovedForTherapist returns the therapist's full approved list.
func (s *ConnectionService) ApprovedForTherapist(ctx context.Context, therapistID string) ([]*domain.Connection, error) {
	return s.connections.ListApprovedByTherapist(ctx, therapistID)
}
