package ports

import (
	"context"

	"github.com/lifeofpease/matchmaking-api/internal/core/domain"
)

// PlatformStats is the admin dashboard summary.
type PlatformStats struct {
	TotalClients       int64 `json:"total_clients"`
	PendingClients     int64 `json:"pending_clients"`
	ApprovedClients    int64 `json:"approved_clients"`
	TotalTherapists    int64 `json:"total_therapists"`
	PendingTherapists  int64 `json:"pending_therapists"`
	ApprovedTherapists int64 `json:"approved_therapists"`
}

// AdminService covers super-admin moderation: account approval, blocking,
// cascaded deletion, experience tags, reports and statistics.
type AdminService interface {
	ApproveUser(ctx context.Context, userID string, approved bool) (*domain.User, error)
	SetBlocked(ctx context.Context, userID string, blocked bool) (*domain.User, error)
	// DeleteUser cascades: every connection the user is a party to is
	// deleted and pulled from the other party's membership list before the
	// user record itself is removed.
	DeleteUser(ctx context.Context, userID string) error
	ListUsers(ctx context.Context, f RoleListFilter) ([]*domain.User, error)
	Stats(ctx context.Context) (*PlatformStats, error)

	CreateTag(ctx context.Context, name string) (*domain.ExperienceTag, error)
	UpdateTag(ctx context.Context, id, name string) (*domain.ExperienceTag, error)
	DeleteTag(ctx context.Context, id string) error
	ListTags(ctx context.Context, limit, offset int64) ([]*domain.ExperienceTag, error)

	ReportUser(ctx context.Context, reporterID, reportedID, reason string) (*domain.Report, error)
	ListReports(ctx context.Context, limit, offset int64) ([]*domain.Report, error)
	ResolveReport(ctx context.Context, id string) (*domain.Report, error)
}
