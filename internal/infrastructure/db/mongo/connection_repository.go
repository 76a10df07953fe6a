package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/lifeofpease/matchmaking-api/internal/core/domain"
	"github.com/lifeofpease/matchmaking-api/internal/core/ports"
)

const collectionConnections = "connections"

// sampleSize caps client-side listings before the final limit/offset slice.
// Pagination beyond this window yields empty results; kept to match the
// documented listing behaviour.
const sampleSize = 99

// ConnectionRepository stores connection records in MongoDB and serves the
// joined listings through aggregation pipelines.
type ConnectionRepository struct {
	col *mongo.Collection
}

func NewConnectionRepository(db *mongo.Database) *ConnectionRepository {
	return &ConnectionRepository{col: db.Collection(collectionConnections)}
}

type connectionDoc struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	ClientID    primitive.ObjectID `bson:"client_id"`
	TherapistID primitive.ObjectID `bson:"therapist_id"`
	Status      string             `bson:"status"`
	CreatedAt   time.Time          `bson:"created_at"`
}

type tagDoc struct {
	ID   primitive.ObjectID `bson:"_id"`
	Name string             `bson:"name"`
}

type partyDoc struct {
	ID             primitive.ObjectID `bson:"_id"`
	FirstName      string             `bson:"firstname"`
	LastName       string             `bson:"lastname"`
	Email          string             `bson:"email"`
	Gender         string             `bson:"gender,omitempty"`
	PrimaryPhone   string             `bson:"primary_phone,omitempty"`
	PhotoURL       string             `bson:"photo_url,omitempty"`
	BlockedByAdmin bool               `bson:"blocked_by_admin"`
	Tags           []tagDoc           `bson:"tags,omitempty"`
}

type joinedConnectionDoc struct {
	ID          primitive.ObjectID `bson:"_id"`
	ClientID    primitive.ObjectID `bson:"client_id"`
	TherapistID primitive.ObjectID `bson:"therapist_id"`
	Status      string             `bson:"status"`
	CreatedAt   time.Time          `bson:"created_at"`
	Client      *partyDoc          `bson:"client,omitempty"`
	Therapist   *partyDoc          `bson:"therapist,omitempty"`
}

// Create inserts a new PENDING connection and returns it joined.
func (r *ConnectionRepository) Create(ctx context.Context, clientID, therapistID string) (*domain.Connection, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cid, err := primitive.ObjectIDFromHex(clientID)
	if err != nil {
		return nil, domain.ErrInvalidReference
	}
	tid, err := primitive.ObjectIDFromHex(therapistID)
	if err != nil {
		return nil, domain.ErrInvalidReference
	}

	doc := connectionDoc{
		ClientID:    cid,
		TherapistID: tid,
		Status:      string(domain.ConnectionPending),
		CreatedAt:   time.Now().UTC(),
	}

	res, err := r.col.InsertOne(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("insert connection: %w", err)
	}

	id := res.InsertedID.(primitive.ObjectID)
	return r.getByObjectID(ctx, id)
}

// GetByID fetches a connection with joined client/therapist summaries.
func (r *ConnectionRepository) GetByID(ctx context.Context, id string) (*domain.Connection, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrConnectionNotFound
	}
	return r.getByObjectID(ctx, oid)
}

func (r *ConnectionRepository) getByObjectID(ctx context.Context, oid primitive.ObjectID) (*domain.Connection, error) {
	docs, err := r.aggregateJoined(ctx, bson.D{{Key: "_id", Value: oid}}, nil)
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, domain.ErrConnectionNotFound
	}
	return toDomainConnection(&docs[0]), nil
}

// GetByIDForUser returns the connection only when userID occupies the slot
// matching role.
func (r *ConnectionRepository) GetByIDForUser(ctx context.Context, id, userID string, role domain.Role) (*domain.Connection, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrConnectionNotFound
	}
	uid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, domain.ErrConnectionNotFound
	}

	match := bson.D{{Key: "_id", Value: oid}}
	switch role {
	case domain.RoleTherapist:
		match = append(match, bson.E{Key: "therapist_id", Value: uid})
	case domain.RoleClient:
		match = append(match, bson.E{Key: "client_id", Value: uid})
	default:
		return nil, domain.ErrConnectionNotFound
	}

	docs, err := r.aggregateJoined(ctx, match, nil)
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, domain.ErrConnectionNotFound
	}
	return toDomainConnection(&docs[0]), nil
}

// UpdateStatus sets the status and returns the updated, re-joined record.
func (r *ConnectionRepository) UpdateStatus(ctx context.Context, id string, status domain.ConnectionStatus) (*domain.Connection, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrConnectionNotFound
	}

	res, err := r.col.UpdateOne(ctx,
		bson.M{"_id": oid},
		bson.M{"$set": bson.M{"status": string(status)}},
	)
	if err != nil {
		return nil, fmt.Errorf("update connection: %w", err)
	}
	if res.MatchedCount == 0 {
		return nil, domain.ErrConnectionNotFound
	}
	return r.getByObjectID(ctx, oid)
}

// Delete removes and returns the deleted record, joined.
func (r *ConnectionRepository) Delete(ctx context.Context, id string) (*domain.Connection, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrConnectionNotFound
	}

	conn, err := r.getByObjectID(ctx, oid)
	if err != nil {
		return nil, err
	}

	res, err := r.col.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return nil, fmt.Errorf("delete connection: %w", err)
	}
	if res.DeletedCount == 0 {
		return nil, domain.ErrConnectionNotFound
	}
	return conn, nil
}

// ListByTherapist returns the therapist's non-rejected requests, excluding
// connections whose client is admin-blocked, newest first.
func (r *ConnectionRepository) ListByTherapist(ctx context.Context, therapistID string, page ports.ConnectionPage) ([]*domain.Connection, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	tid, err := primitive.ObjectIDFromHex(therapistID)
	if err != nil {
		return nil, domain.ErrConnectionNotFound
	}

	match := bson.D{
		{Key: "therapist_id", Value: tid},
		{Key: "status", Value: bson.D{{Key: "$ne", Value: string(domain.ConnectionRejected)}}},
	}

	docs, err := r.aggregateJoined(ctx, match, therapistListingTail(page))
	if err != nil {
		return nil, err
	}
	return toDomainConnections(docs), nil
}

// ListByClient returns the client's non-rejected requests with joined
// therapist tags and photo. A 99-record $sample stage runs before the final
// sort/skip/limit slice, so pagination beyond the sample window is empty.
func (r *ConnectionRepository) ListByClient(ctx context.Context, clientID string, page ports.ConnectionPage) ([]*domain.Connection, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cid, err := primitive.ObjectIDFromHex(clientID)
	if err != nil {
		return nil, domain.ErrConnectionNotFound
	}

	match := bson.D{
		{Key: "client_id", Value: cid},
		{Key: "status", Value: bson.D{{Key: "$ne", Value: string(domain.ConnectionRejected)}}},
	}

	docs, err := r.aggregateJoined(ctx, match, clientListingTail(page))
	if err != nil {
		return nil, err
	}
	return toDomainConnections(docs), nil
}

// ListSentByClient returns every non-rejected connection the client
// initiated, newest first, without pagination.
func (r *ConnectionRepository) ListSentByClient(ctx context.Context, clientID string) ([]*domain.Connection, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cid, err := primitive.ObjectIDFromHex(clientID)
	if err != nil {
		return nil, domain.ErrConnectionNotFound
	}

	match := bson.D{
		{Key: "client_id", Value: cid},
		{Key: "status", Value: bson.D{{Key: "$ne", Value: string(domain.ConnectionRejected)}}},
	}
	tail := []bson.D{
		{{Key: "$sort", Value: bson.D{{Key: "created_at", Value: -1}}}},
	}

	docs, err := r.aggregateJoined(ctx, match, tail)
	if err != nil {
		return nil, err
	}
	return toDomainConnections(docs), nil
}

// ListApprovedByTherapist returns the therapist's full approved list.
func (r *ConnectionRepository) ListApprovedByTherapist(ctx context.Context, therapistID string) ([]*domain.Connection, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	tid, err := primitive.ObjectIDFromHex(therapistID)
	if err != nil {
		return nil, domain.ErrConnectionNotFound
	}

	match := bson.D{
		{Key: "therapist_id", Value: tid},
		{Key: "status", Value: string(domain.ConnectionApproved)},
	}
	tail := []bson.D{
		{{Key: "$sort", Value: bson.D{{Key: "created_at", Value: -1}}}},
	}

	docs, err := r.aggregateJoined(ctx, match, tail)
	if err != nil {
		return nil, err
	}
	return toDomainConnections(docs), nil
}

// FindApproved is the canonical "are these two connected" check.
func (r *ConnectionRepository) FindApproved(ctx context.Context, clientID, therapistID string) (*domain.Connection, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cid, err := primitive.ObjectIDFromHex(clientID)
	if err != nil {
		return nil, domain.ErrConnectionNotFound
	}
	tid, err := primitive.ObjectIDFromHex(therapistID)
	if err != nil {
		return nil, domain.ErrConnectionNotFound
	}

	var doc connectionDoc
	err = r.col.FindOne(ctx, bson.M{
		"client_id":    cid,
		"therapist_id": tid,
		"status":       string(domain.ConnectionApproved),
	}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrConnectionNotFound
		}
		return nil, fmt.Errorf("find approved connection: %w", err)
	}
	return docToConnection(&doc), nil
}

// FindAny returns every connection between the pair regardless of status.
func (r *ConnectionRepository) FindAny(ctx context.Context, clientID, therapistID string) ([]*domain.Connection, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cid, err := primitive.ObjectIDFromHex(clientID)
	if err != nil {
		return nil, domain.ErrConnectionNotFound
	}
	tid, err := primitive.ObjectIDFromHex(therapistID)
	if err != nil {
		return nil, domain.ErrConnectionNotFound
	}

	cur, err := r.col.Find(ctx, bson.M{"client_id": cid, "therapist_id": tid})
	if err != nil {
		return nil, fmt.Errorf("find connections: %w", err)
	}
	defer cur.Close(ctx)

	var out []*domain.Connection
	for cur.Next(ctx) {
		var doc connectionDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode connection: %w", err)
		}
		out = append(out, docToConnection(&doc))
	}
	return out, cur.Err()
}

// DeleteAllForClient bulk-removes all connections where the user is the client.
func (r *ConnectionRepository) DeleteAllForClient(ctx context.Context, clientID string) (int64, error) {
	return r.deleteAllBy(ctx, "client_id", clientID)
}

// DeleteAllForTherapist bulk-removes all connections where the user is the therapist.
func (r *ConnectionRepository) DeleteAllForTherapist(ctx context.Context, therapistID string) (int64, error) {
	return r.deleteAllBy(ctx, "therapist_id", therapistID)
}

func (r *ConnectionRepository) deleteAllBy(ctx context.Context, field, id string) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return 0, domain.ErrInvalidReference
	}
	res, err := r.col.DeleteMany(ctx, bson.M{field: oid})
	if err != nil {
		return 0, fmt.Errorf("delete connections: %w", err)
	}
	return res.DeletedCount, nil
}

// EnsureIndexes creates the indexes backing pair lookups and listings.
func (r *ConnectionRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "client_id", Value: 1}, {Key: "therapist_id", Value: 1}}},
		{Keys: bson.D{{Key: "therapist_id", Value: 1}, {Key: "status", Value: 1}}},
		{Keys: bson.D{{Key: "created_at", Value: -1}}},
	}

	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}

// aggregateJoined runs the shared join pipeline: match, lookup both parties,
// attach the therapist's experience tags, then any trailing stages.
func (r *ConnectionRepository) aggregateJoined(ctx context.Context, match bson.D, tail []bson.D) ([]joinedConnectionDoc, error) {
	pipeline := []bson.D{
		{{Key: "$match", Value: match}},
		{{Key: "$lookup", Value: bson.D{
			{Key: "from", Value: collectionUsers},
			{Key: "localField", Value: "client_id"},
			{Key: "foreignField", Value: "_id"},
			{Key: "as", Value: "client"},
		}}},
		{{Key: "$unwind", Value: bson.D{{Key: "path", Value: "$client"}, {Key: "preserveNullAndEmptyArrays", Value: true}}}},
		{{Key: "$lookup", Value: bson.D{
			{Key: "from", Value: collectionUsers},
			{Key: "localField", Value: "therapist_id"},
			{Key: "foreignField", Value: "_id"},
			{Key: "as", Value: "therapist"},
		}}},
		{{Key: "$unwind", Value: bson.D{{Key: "path", Value: "$therapist"}, {Key: "preserveNullAndEmptyArrays", Value: true}}}},
		{{Key: "$lookup", Value: bson.D{
			{Key: "from", Value: collectionTags},
			{Key: "localField", Value: "therapist.experienced_in"},
			{Key: "foreignField", Value: "_id"},
			{Key: "as", Value: "therapist.tags"},
		}}},
	}
	pipeline = append(pipeline, tail...)

	cur, err := r.col.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("aggregate connections: %w", err)
	}
	defer cur.Close(ctx)

	var docs []joinedConnectionDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode connections: %w", err)
	}
	return docs, nil
}

// therapistListingTail builds the post-join stages for the therapist's
// listing: drop connections whose client is admin-blocked, then sort and
// paginate.
func therapistListingTail(page ports.ConnectionPage) []bson.D {
	return []bson.D{
		{{Key: "$match", Value: bson.D{{Key: "client.blocked_by_admin", Value: bson.D{{Key: "$ne", Value: true}}}}}},
		{{Key: "$sort", Value: bson.D{{Key: "created_at", Value: -1}}}},
		{{Key: "$skip", Value: pageSkip(page)}},
		{{Key: "$limit", Value: pageLimit(page)}},
	}
}

// clientListingTail mirrors therapistListingTail for the client side,
// with the sample stage that caps candidates before the final slice.
func clientListingTail(page ports.ConnectionPage) []bson.D {
	return []bson.D{
		{{Key: "$match", Value: bson.D{{Key: "therapist.blocked_by_admin", Value: bson.D{{Key: "$ne", Value: true}}}}}},
		{{Key: "$sample", Value: bson.D{{Key: "size", Value: sampleSize}}}},
		{{Key: "$sort", Value: bson.D{{Key: "created_at", Value: -1}}}},
		{{Key: "$skip", Value: pageSkip(page)}},
		{{Key: "$limit", Value: pageLimit(page)}},
	}
}

// pageSkip converts a 1-based page offset into a skip count, clamping the
// negative skip an offset of 0 would otherwise produce.
func pageSkip(page ports.ConnectionPage) int64 {
	skip := page.Limit * (page.Offset - 1)
	if skip < 0 {
		return 0
	}
	return skip
}

func pageLimit(page ports.ConnectionPage) int64 {
	if page.Limit <= 0 {
		return sampleSize
	}
	return page.Limit
}

func docToConnection(doc *connectionDoc) *domain.Connection {
	return &domain.Connection{
		ID:          doc.ID.Hex(),
		ClientID:    doc.ClientID.Hex(),
		TherapistID: doc.TherapistID.Hex(),
		Status:      domain.ConnectionStatus(doc.Status),
		CreatedAt:   doc.CreatedAt,
	}
}

func toDomainConnection(doc *joinedConnectionDoc) *domain.Connection {
	conn := &domain.Connection{
		ID:          doc.ID.Hex(),
		ClientID:    doc.ClientID.Hex(),
		TherapistID: doc.TherapistID.Hex(),
		Status:      domain.ConnectionStatus(doc.Status),
		CreatedAt:   doc.CreatedAt,
	}
	if doc.Client != nil {
		conn.Client = toPartySummary(doc.Client, false)
	}
	if doc.Therapist != nil {
		conn.Therapist = toPartySummary(doc.Therapist, true)
	}
	return conn
}

func toDomainConnections(docs []joinedConnectionDoc) []*domain.Connection {
	out := make([]*domain.Connection, 0, len(docs))
	for i := range docs {
		out = append(out, toDomainConnection(&docs[i]))
	}
	return out
}

func toPartySummary(doc *partyDoc, withTags bool) *domain.PartySummary {
	summary := &domain.PartySummary{
		ID:           doc.ID.Hex(),
		FirstName:    doc.FirstName,
		LastName:     doc.LastName,
		Email:        doc.Email,
		Gender:       doc.Gender,
		PrimaryPhone: doc.PrimaryPhone,
		PhotoURL:     doc.PhotoURL,
	}
	if withTags {
		for _, t := range doc.Tags {
			summary.Tags = append(summary.Tags, domain.TagSummary{ID: t.ID.Hex(), Name: t.Name})
		}
	}
	return summary
}
