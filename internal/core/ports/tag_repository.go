package ports

import (
	"context"

	"github.com/lifeofpease/matchmaking-api/internal/core/domain"
)

// TagRepository stores experience tags.
type TagRepository interface {
	Create(ctx context.Context, name string) (*domain.ExperienceTag, error)
	GetByID(ctx context.Context, id string) (*domain.ExperienceTag, error)
	// FindByPrefix matches a tag by case-insensitive name prefix; this is the
	// lookup half of get-or-create.
	FindByPrefix(ctx context.Context, prefix string) (*domain.ExperienceTag, error)
	Update(ctx context.Context, id, name string) (*domain.ExperienceTag, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, limit, offset int64) ([]*domain.ExperienceTag, error)
}
