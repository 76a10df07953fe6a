package ports

import (
	"context"

	"github.com/lifeofpease/matchmaking-api/internal/core/domain"
)

// ReportRepository stores moderation reports.
type ReportRepository interface {
	Create(ctx context.Context, r *domain.Report) (*domain.Report, error)
	List(ctx context.Context, limit, offset int64) ([]*domain.Report, error)
	Resolve(ctx context.Context, id string) (*domain.Report, error)
}
