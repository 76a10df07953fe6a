package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/lifeofpease/matchmaking-api/internal/core/domain"
)

const collectionArticles = "articles"

// ArticleRepository stores therapist-authored articles in MongoDB.
type ArticleRepository struct {
	col *mongo.Collection
}

func NewArticleRepository(db *mongo.Database) *ArticleRepository {
	return &ArticleRepository{col: db.Collection(collectionArticles)}
}

type articleDoc struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	AuthorID  primitive.ObjectID `bson:"author_id"`
	Title     string             `bson:"title"`
	Content   string             `bson:"content"`
	CreatedAt time.Time          `bson:"created_at"`
	Author    *partyDoc          `bson:"author,omitempty"`
}

func (r *ArticleRepository) Create(ctx context.Context, a *domain.Article) (*domain.Article, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	aid, err := primitive.ObjectIDFromHex(a.AuthorID)
	if err != nil {
		return nil, domain.ErrInvalidReference
	}

	doc := articleDoc{
		AuthorID:  aid,
		Title:     a.Title,
		Content:   a.Content,
		CreatedAt: a.CreatedAt,
	}
	res, err := r.col.InsertOne(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("insert article: %w", err)
	}
	doc.ID = res.InsertedID.(primitive.ObjectID)
	return toDomainArticle(&doc), nil
}

func (r *ArticleRepository) GetByID(ctx context.Context, id string) (*domain.Article, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrArticleNotFound
	}

	docs, err := r.aggregateJoined(ctx, bson.D{{Key: "_id", Value: oid}}, nil)
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, domain.ErrArticleNotFound
	}
	return toDomainArticle(&docs[0]), nil
}

// ListPublic returns articles newest-first with the joined author projection.
func (r *ArticleRepository) ListPublic(ctx context.Context, limit, offset int64) ([]*domain.Article, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if limit <= 0 {
		limit = sampleSize
	}
	if offset < 0 {
		offset = 0
	}

	tail := []bson.D{
		{{Key: "$sort", Value: bson.D{{Key: "created_at", Value: -1}}}},
		{{Key: "$skip", Value: offset}},
		{{Key: "$limit", Value: limit}},
	}
	docs, err := r.aggregateJoined(ctx, bson.D{}, tail)
	if err != nil {
		return nil, err
	}

	out := make([]*domain.Article, 0, len(docs))
	for i := range docs {
		out = append(out, toDomainArticle(&docs[i]))
	}
	return out, nil
}

func (r *ArticleRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrArticleNotFound
	}
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("delete article: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrArticleNotFound
	}
	return nil
}

func (r *ArticleRepository) aggregateJoined(ctx context.Context, match bson.D, tail []bson.D) ([]articleDoc, error) {
	pipeline := []bson.D{
		{{Key: "$match", Value: match}},
		{{Key: "$lookup", Value: bson.D{
			{Key: "from", Value: collectionUsers},
			{Key: "localField", Value: "author_id"},
			{Key: "foreignField", Value: "_id"},
			{Key: "as", Value: "author"},
		}}},
		{{Key: "$unwind", Value: bson.D{{Key: "path", Value: "$author"}, {Key: "preserveNullAndEmptyArrays", Value: true}}}},
	}
	pipeline = append(pipeline, tail...)

	cur, err := r.col.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("aggregate articles: %w", err)
	}
	defer cur.Close(ctx)

	var docs []articleDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode articles: %w", err)
	}
	return docs, nil
}

func toDomainArticle(doc *articleDoc) *domain.Article {
	a := &domain.Article{
		ID:        doc.ID.Hex(),
		AuthorID:  doc.AuthorID.Hex(),
		Title:     doc.Title,
		Content:   doc.Content,
		CreatedAt: doc.CreatedAt,
	}
	if doc.Author != nil {
		a.Author = toPartySummary(doc.Author, false)
	}
	return a
}

func (r *ArticleRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err := r.col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "author_id", Value: 1}, {Key: "created_at", Value: -1}},
	})
	return err
}
