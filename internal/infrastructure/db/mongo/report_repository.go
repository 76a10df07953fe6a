package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/lifeofpease/matchmaking-api/internal/core/domain"
)

const collectionReports = "reports"

// ReportRepository stores moderation reports in MongoDB.
type ReportRepository struct {
	col *mongo.Collection
}

func NewReportRepository(db *mongo.Database) *ReportRepository {
	return &ReportRepository{col: db.Collection(collectionReports)}
}

type reportDoc struct {
	ID         primitive.ObjectID `bson:"_id,omitempty"`
	ReporterID primitive.ObjectID `bson:"reporter_id"`
	ReportedID primitive.ObjectID `bson:"reported_id"`
	Reason     string             `bson:"reason"`
	Resolved   bool               `bson:"resolved"`
	CreatedAt  time.Time          `bson:"created_at"`
}

func (r *ReportRepository) Create(ctx context.Context, report *domain.Report) (*domain.Report, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	reporterID, err := primitive.ObjectIDFromHex(report.ReporterID)
	if err != nil {
		return nil, domain.ErrInvalidReference
	}
	reportedID, err := primitive.ObjectIDFromHex(report.ReportedID)
	if err != nil {
		return nil, domain.ErrInvalidReference
	}

	doc := reportDoc{
		ReporterID: reporterID,
		ReportedID: reportedID,
		Reason:     report.Reason,
		CreatedAt:  report.CreatedAt,
	}
	res, err := r.col.InsertOne(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("insert report: %w", err)
	}
	doc.ID = res.InsertedID.(primitive.ObjectID)
	return toDomainReport(&doc), nil
}

func (r *ReportRepository) List(ctx context.Context, limit, offset int64) ([]*domain.Report, error) {
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
		return nil, fmt.Errorf("list reports: %w", err)
	}
	defer cur.Close(ctx)

	var out []*domain.Report
	for cur.Next(ctx) {
		var doc reportDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode report: %w", err)
		}
		out = append(out, toDomainReport(&doc))
	}
	return out, cur.Err()
}

func (r *ReportRepository) Resolve(ctx context.Context, id string) (*domain.Report, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrReportNotFound
	}

	res := r.col.FindOneAndUpdate(ctx,
		bson.M{"_id": oid},
		bson.M{"$set": bson.M{"resolved": true}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	)
	var doc reportDoc
	if err := res.Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrReportNotFound
		}
		return nil, fmt.Errorf("resolve report: %w", err)
	}
	return toDomainReport(&doc), nil
}

func toDomainReport(doc *reportDoc) *domain.Report {
	return &domain.Report{
		ID:         doc.ID.Hex(),
		ReporterID: doc.ReporterID.Hex(),
		ReportedID: doc.ReportedID.Hex(),
		Reason:     doc.Reason,
		Resolved:   doc.Resolved,
		CreatedAt:  doc.CreatedAt,
	}
}
