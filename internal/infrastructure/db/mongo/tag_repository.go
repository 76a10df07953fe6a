package mongo

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/lifeofpease/matchmaking-api/internal/core/domain"
)

const collectionTags = "experience_tags"

// TagRepository stores experience tags in MongoDB.
type TagRepository struct {
	col *mongo.Collection
}

func NewTagRepository(db *mongo.Database) *TagRepository {
	return &TagRepository{col: db.Collection(collectionTags)}
}

type experienceTagDoc struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Name      string             `bson:"name"`
	CreatedAt time.Time          `bson:"created_at"`
}

func (r *TagRepository) Create(ctx context.Context, name string) (*domain.ExperienceTag, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := experienceTagDoc{Name: name, CreatedAt: time.Now().UTC()}
	res, err := r.col.InsertOne(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("insert tag: %w", err)
	}
	doc.ID = res.InsertedID.(primitive.ObjectID)
	return toDomainTag(&doc), nil
}

func (r *TagRepository) GetByID(ctx context.Context, id string) (*domain.ExperienceTag, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrTagNotFound
	}
	return r.findOne(ctx, bson.M{"_id": oid})
}

// FindByPrefix matches a tag by case-insensitive name prefix.
func (r *TagRepository) FindByPrefix(ctx context.Context, prefix string) (*domain.ExperienceTag, error) {
	pattern := primitive.Regex{Pattern: "^" + regexp.QuoteMeta(prefix), Options: "i"}
	return r.findOne(ctx, bson.M{"name": pattern})
}

func (r *TagRepository) findOne(ctx context.Context, filter bson.M) (*domain.ExperienceTag, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc experienceTagDoc
	if err := r.col.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrTagNotFound
		}
		return nil, fmt.Errorf("find tag: %w", err)
	}
	return toDomainTag(&doc), nil
}

func (r *TagRepository) Update(ctx context.Context, id, name string) (*domain.ExperienceTag, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrTagNotFound
	}

	res := r.col.FindOneAndUpdate(ctx,
		bson.M{"_id": oid},
		bson.M{"$set": bson.M{"name": name}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	)
	var doc experienceTagDoc
	if err := res.Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrTagNotFound
		}
		return nil, fmt.Errorf("update tag: %w", err)
	}
	return toDomainTag(&doc), nil
}

func (r *TagRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrTagNotFound
	}
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("delete tag: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrTagNotFound
	}
	return nil
}

func (r *TagRepository) List(ctx context.Context, limit, offset int64) ([]*domain.ExperienceTag, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if limit <= 0 {
		limit = sampleSize
	}
	if offset < 0 {
		offset = 0
	}

	cur, err := r.col.Find(ctx, bson.M{},
		options.Find().
			SetSort(bson.D{{Key: "created_at", Value: -1}}).
			SetSkip(offset).
			SetLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}
	defer cur.Close(ctx)

	var out []*domain.ExperienceTag
	for cur.Next(ctx) {
		var doc experienceTagDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode tag: %w", err)
		}
		out = append(out, toDomainTag(&doc))
	}
	return out, cur.Err()
}

func toDomainTag(doc *experienceTagDoc) *domain.ExperienceTag {
	return &domain.ExperienceTag{
		ID:        doc.ID.Hex(),
		Name:      doc.Name,
		CreatedAt: doc.CreatedAt,
	}
}
