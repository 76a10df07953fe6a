package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/lifeofpease/matchmaking-api/internal/core/domain"
	"github.com/lifeofpease/matchmaking-api/internal/core/ports"
)

// ArticleService exposes the blog use cases.
type ArticleService struct {
	articles ports.ArticleRepository
	users    ports.UserRepository
	logger   zerolog.Logger
}

func NewArticleService(articles ports.ArticleRepository, users ports.UserRepository, logger zerolog.Logger) *ArticleService {
	return &ArticleService{articles: articles, users: users, logger: logger}
}

// Create publishes an article. Only admin-approved therapists may publish.
func (s *ArticleService) Create(ctx context.Context, authorID, title, content string) (*domain.Article, error) {
	author, err := s.users.FindByID(ctx, authorID)
	if err != nil {
		return nil, err
	}
	if author.Role != domain.RoleTherapist || !author.AdminApproved {
		return nil, domain.ErrForbidden
	}

	article := &domain.Article{
		AuthorID:  authorID,
		Title:     title,
		Content:   content,
		CreatedAt: time.Now().UTC(),
	}
	created, err := s.articles.Create(ctx, article)
	if err != nil {
		return nil, err
	}
	s.logger.Info().Str("article_id", created.ID).Str("author_id", authorID).Msg("article published")
	return created, nil
}

func (s *ArticleService) GetByID(ctx context.Context, id string) (*domain.Article, error) {
	return s.articles.GetByID(ctx, id)
}

func (s *ArticleService) ListPublic(ctx context.Context, limit, offset int64) ([]*domain.Article, error) {
	return s.articles.ListPublic(ctx, limit, offset)
}

// Delete removes an article. Allowed for the author or a super-admin.
func (s *ArticleService) Delete(ctx context.Context, id, callerID string, role domain.Role) error {
	article, err := s.articles.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if role != domain.RoleSuperAdmin && article.AuthorID != callerID {
		return domain.ErrForbidden
	}
	return s.articles.Delete(ctx, id)
}
