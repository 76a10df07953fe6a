package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/lifeofpease/matchmaking-api/internal/core/domain"
	"github.com/lifeofpease/matchmaking-api/internal/core/ports"
)

// AdminService covers super-admin moderation: approval, blocking, cascaded
// deletion, experience tags, reports and platform statistics.
type AdminService struct {
	users       ports.UserRepository
	connections ports.ConnectionRepository
	tags        ports.TagRepository
	reports     ports.ReportRepository
	notify      ports.NotificationEnqueuer
	logger      zerolog.Logger
}

func NewAdminService(
	users ports.UserRepository,
	connections ports.ConnectionRepository,
	tags ports.TagRepository,
	reports ports.ReportRepository,
	notify ports.NotificationEnqueuer,
	logger zerolog.Logger,
) *AdminService {
	return &AdminService{
		users:       users,
		connections: connections,
		tags:        tags,
		reports:     reports,
		notify:      notify,
		logger:      logger,
	}
}

// ApproveUser flips the moderation approval flag; approval also marks the
// account verified.
func (s *AdminService) ApproveUser(ctx context.Context, userID string, approved bool) (*domain.User, error) {
	upd := ports.UserUpdate{AdminApproved: &approved}
	if approved {
		v := domain.Verified
		upd.Verified = &v
	}

	user, err := s.users.Update(ctx, userID, upd)
	if err != nil {
		return nil, err
	}

	s.logger.Info().Str("user_id", userID).Bool("approved", approved).Msg("moderation decision applied")

	subject := "Your account has been approved!"
	body := "Hi " + user.FullName() + ", your account has been approved. Log in to get started."
	if !approved {
		subject = "Your account was not approved"
		body = "Hi " + user.FullName() + ", unfortunately your account did not pass review."
	}
	s.notify.Enqueue(ports.Notification{To: user.Email, Name: user.FullName(), Subject: subject, Body: body})

	return user, nil
}

// SetBlocked blocks or unblocks a user. Blocked users cannot log in and are
// filtered out of listings and discovery.
func (s *AdminService) SetBlocked(ctx context.Context, userID string, blocked bool) (*domain.User, error) {
	user, err := s.users.Update(ctx, userID, ports.UserUpdate{BlockedByAdmin: &blocked})
	if err != nil {
		return nil, err
	}
	s.logger.Info().Str("user_id", userID).Bool("blocked", blocked).Msg("block flag updated")
	return user, nil
}

// DeleteUser removes a user account with full connection cleanup: every
// connection the user is a party to is pulled from the other party's
// membership list and then bulk-deleted before the user record goes.
func (s *AdminService) DeleteUser(ctx context.Context, userID string) error {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return err
	}

	for _, connID := range user.FriendRequests {
		conn, err := s.connections.GetByID(ctx, connID)
		if err != nil {
			if errors.Is(err, domain.ErrConnectionNotFound) {
				continue // stale cache entry
			}
			return fmt.Errorf("delete user: %w", err)
		}
		other := conn.ClientID
		if other == userID {
			other = conn.TherapistID
		}
		if err := s.users.PullConnection(ctx, other, connID); err != nil {
			s.logger.Error().Err(err).Str("connection_id", connID).Str("user_id", other).
				Msg("failed to trim counterpart membership list")
		}
	}

	var count int64
	if user.Role == domain.RoleTherapist {
		count, err = s.connections.DeleteAllForTherapist(ctx, userID)
	} else {
		count, err = s.connections.DeleteAllForClient(ctx, userID)
	}
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}

	if err := s.users.Delete(ctx, userID); err != nil {
		return err
	}

	s.logger.Info().Str("user_id", userID).Int64("connections_deleted", count).Msg("user deleted")
	return nil
}

// ListUsers returns a moderation listing page.
func (s *AdminService) ListUsers(ctx context.Context, f ports.RoleListFilter) ([]*domain.User, error) {
	return s.users.ListByRole(ctx, f)
}

// Stats aggregates the admin dashboard counters.
func (s *AdminService) Stats(ctx context.Context) (*ports.PlatformStats, error) {
	approved, pending := true, false
	stats := &ports.PlatformStats{}

	var err error
	if stats.TotalClients, err = s.users.CountByRole(ctx, domain.RoleClient, nil); err != nil {
		return nil, err
	}
	if stats.PendingClients, err = s.users.CountByRole(ctx, domain.RoleClient, &pending); err != nil {
		return nil, err
	}
	if stats.ApprovedClients, err = s.users.CountByRole(ctx, domain.RoleClient, &approved); err != nil {
		return nil, err
	}
	if stats.TotalTherapists, err = s.users.CountByRole(ctx, domain.RoleTherapist, nil); err != nil {
		return nil, err
	}
	if stats.PendingTherapists, err = s.users.CountByRole(ctx, domain.RoleTherapist, &pending); err != nil {
		return nil, err
	}
	if stats.ApprovedTherapists, err = s.users.CountByRole(ctx, domain.RoleTherapist, &approved); err != nil {
		return nil, err
	}
	return stats, nil
}

// CreateTag is get-or-create: an existing tag matching the name by
// case-insensitive prefix is returned instead of creating a near-duplicate.
func (s *AdminService) CreateTag(ctx context.Context, name string) (*domain.ExperienceTag, error) {
	existing, err := s.tags.FindByPrefix(ctx, name)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, domain.ErrTagNotFound) {
		return nil, err
	}

	tag, err := s.tags.Create(ctx, name)
	if err != nil {
		return nil, err
	}
	s.logger.Info().Str("tag_id", tag.ID).Str("name", name).Msg("experience tag created")
	return tag, nil
}

func (s *AdminService) UpdateTag(ctx context.Context, id, name string) (*domain.ExperienceTag, error) {
	return s.tags.Update(ctx, id, name)
}

func (s *AdminService) DeleteTag(ctx context.Context, id string) error {
	return s.tags.Delete(ctx, id)
}

func (s *AdminService) ListTags(ctx context.Context, limit, offset int64) ([]*domain.ExperienceTag, error) {
	return s.tags.List(ctx, limit, offset)
}

// ReportUser files a moderation complaint against another user.
func (s *AdminService) ReportUser(ctx context.Context, reporterID, reportedID, reason string) (*domain.Report, error) {
	if _, err := s.users.FindByID(ctx, reportedID); err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrInvalidReference
		}
		return nil, err
	}

	report := &domain.Report{
		ReporterID: reporterID,
		ReportedID: reportedID,
		Reason:     reason,
		CreatedAt:  time.Now().UTC(),
	}
	created, err := s.reports.Create(ctx, report)
	if err != nil {
		return nil, err
	}
	s.logger.Info().Str("report_id", created.ID).Str("reported_id", reportedID).Msg("user reported")
	return created, nil
}

func (s *AdminService) ListReports(ctx context.Context, limit, offset int64) ([]*domain.Report, error) {
	return s.reports.List(ctx, limit, offset)
}

func (s *AdminService) ResolveReport(ctx context.Context, id string) (*domain.Report, error) {
	return s.reports.Resolve(ctx, id)
}
