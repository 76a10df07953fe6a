package ports

import (
	"context"

	"github.com/lifeofpease/matchmaking-api/internal/core/domain"
)

// ArticleRepository stores therapist-authored articles.
type ArticleRepository interface {
	Create(ctx context.Context, a *domain.Article) (*domain.Article, error)
	GetByID(ctx context.Context, id string) (*domain.Article, error)
	// ListPublic returns published articles newest-first with the joined
	// author projection.
	ListPublic(ctx context.Context, limit, offset int64) ([]*domain.Article, error)
	Delete(ctx context.Context, id string) error
}

// ArticleService exposes the article use cases.
type ArticleService interface {
	// Create requires the author to be an admin-approved therapist.
	Create(ctx context.Context, authorID, title, content string) (*domain.Article, error)
	GetByID(ctx context.Context, id string) (*domain.Article, error)
	ListPublic(ctx context.Context, limit, offset int64) ([]*domain.Article, error)
	// Delete is allowed for the author or a super-admin.
	Delete(ctx context.Context, id, callerID string, role domain.Role) error
}
