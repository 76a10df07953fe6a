package mongo

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/lifeofpease/matchmaking-api/internal/core/domain"
	"github.com/lifeofpease/matchmaking-api/internal/core/ports"
)

const collectionUsers = "users"

// UserRepository is the MongoDB-backed user directory.
type UserRepository struct {
	col *mongo.Collection
}

func NewUserRepository(db *mongo.Database) *UserRepository {
	return &UserRepository{col: db.Collection(collectionUsers)}
}

type userDoc struct {
	ID                 primitive.ObjectID   `bson:"_id,omitempty"`
	Role               string               `bson:"role"`
	FirstName          string               `bson:"firstname"`
	LastName           string               `bson:"lastname"`
	Email              string               `bson:"email"`
	PasswordHash       string               `bson:"password_hash"`
	Gender             string               `bson:"gender,omitempty"`
	PrimaryPhone       string               `bson:"primary_phone,omitempty"`
	PhotoURL           string               `bson:"photo_url,omitempty"`
	Description        string               `bson:"description,omitempty"`
	Verified           string               `bson:"verified_status"`
	AdminApproved      bool                 `bson:"admin_approved"`
	BlockedByAdmin     bool                 `bson:"blocked_by_admin"`
	FriendRequests     []primitive.ObjectID `bson:"friend_requests"`
	DislikedTherapists []primitive.ObjectID `bson:"disliked_therapists,omitempty"`
	ExperiencedIn      []primitive.ObjectID `bson:"experienced_in,omitempty"`
	YearsOfExperience  int                  `bson:"years_of_experience,omitempty"`
	LastLogin          time.Time            `bson:"last_login,omitempty"`
	CreatedAt          time.Time            `bson:"created_at"`
	UpdatedAt          time.Time            `bson:"updated_at"`
}

// Create inserts a user and returns it with the generated id.
func (r *UserRepository) Create(ctx context.Context, u *domain.User) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc, err := toUserDoc(u)
	if err != nil {
		return nil, err
	}

	res, err := r.col.InsertOne(ctx, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, domain.ErrUserExists
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}

	doc.ID = res.InsertedID.(primitive.ObjectID)
	return toDomainUser(doc), nil
}

// FindByID fetches a user by id.
func (r *UserRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrUserNotFound
	}
	return r.findOne(ctx, bson.M{"_id": oid})
}

// FindByEmail fetches a user by email address.
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

// FindByPhone fetches a user by primary phone number.
func (r *UserRepository) FindByPhone(ctx context.Context, phone string) (*domain.User, error) {
	return r.findOne(ctx, bson.M{"primary_phone": phone})
}

func (r *UserRepository) findOne(ctx context.Context, filter bson.M) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc userDoc
	if err := r.col.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return toDomainUser(&doc), nil
}

// Update applies a partial field update and returns the updated record.
func (r *UserRepository) Update(ctx context.Context, id string, upd ports.UserUpdate) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrUserNotFound
	}

	set := bson.M{"updated_at": time.Now().UTC()}
	setIf := func(key string, v any) { set[key] = v }
	if upd.FirstName != nil {
		setIf("firstname", *upd.FirstName)
	}
	if upd.LastName != nil {
		setIf("lastname", *upd.LastName)
	}
	if upd.Gender != nil {
		setIf("gender", *upd.Gender)
	}
	if upd.PrimaryPhone != nil {
		setIf("primary_phone", *upd.PrimaryPhone)
	}
	if upd.PhotoURL != nil {
		setIf("photo_url", *upd.PhotoURL)
	}
	if upd.Description != nil {
		setIf("description", *upd.Description)
	}
	if upd.PasswordHash != nil {
		setIf("password_hash", *upd.PasswordHash)
	}
	if upd.Verified != nil {
		setIf("verified_status", string(*upd.Verified))
	}
	if upd.AdminApproved != nil {
		setIf("admin_approved", *upd.AdminApproved)
	}
	if upd.BlockedByAdmin != nil {
		setIf("blocked_by_admin", *upd.BlockedByAdmin)
	}
	if upd.YearsOfExperience != nil {
		setIf("years_of_experience", *upd.YearsOfExperience)
	}
	if upd.LastLogin != nil {
		setIf("last_login", *upd.LastLogin)
	}
	if upd.ExperiencedIn != nil {
		oids, err := toObjectIDs(*upd.ExperiencedIn)
		if err != nil {
			return nil, domain.ErrInvalidReference
		}
		setIf("experienced_in", oids)
	}

	res := r.col.FindOneAndUpdate(ctx,
		bson.M{"_id": oid},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	)
	var doc userDoc
	if err := res.Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("update user: %w", err)
	}
	return toDomainUser(&doc), nil
}

// Delete removes a user record.
func (r *UserRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrUserNotFound
	}
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

// PushConnection atomically appends a connection id to the membership list.
func (r *UserRepository) PushConnection(ctx context.Context, userID, connectionID string) error {
	return r.updateMembership(ctx, userID, connectionID, "$push")
}

// PullConnection atomically removes a connection id from the membership list.
func (r *UserRepository) PullConnection(ctx context.Context, userID, connectionID string) error {
	return r.updateMembership(ctx, userID, connectionID, "$pull")
}

func (r *UserRepository) updateMembership(ctx context.Context, userID, connectionID, op string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	uid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return domain.ErrUserNotFound
	}
	cid, err := primitive.ObjectIDFromHex(connectionID)
	if err != nil {
		return domain.ErrInvalidReference
	}

	res, err := r.col.UpdateOne(ctx,
		bson.M{"_id": uid},
		bson.M{op: bson.M{"friend_requests": cid}},
	)
	if err != nil {
		return fmt.Errorf("update membership list: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

// ListByRole returns a moderation listing page, newest first.
func (r *UserRepository) ListByRole(ctx context.Context, f ports.RoleListFilter) ([]*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{"role": string(f.Role)}
	if f.Approved != nil {
		filter["admin_approved"] = *f.Approved
	}

	skip := f.Limit * (f.Offset - 1)
	if skip < 0 {
		skip = 0
	}
	limit := f.Limit
	if limit <= 0 {
		limit = sampleSize
	}

	cur, err := r.col.Find(ctx, filter,
		options.Find().
			SetSort(bson.D{{Key: "created_at", Value: -1}}).
			SetSkip(skip).
			SetLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer cur.Close(ctx)

	var out []*domain.User
	for cur.Next(ctx) {
		var doc userDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode user: %w", err)
		}
		out = append(out, toDomainUser(&doc))
	}
	return out, cur.Err()
}

// CountByRole counts users of a role, optionally filtered on approval.
func (r *UserRepository) CountByRole(ctx context.Context, role domain.Role, approved *bool) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{"role": string(role)}
	if approved != nil {
		filter["admin_approved"] = *approved
	}
	n, err := r.col.CountDocuments(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	return n, nil
}

// SearchTherapists runs the discovery aggregation. Name search matches a
// case-insensitive prefix of firstname, lastname or their concatenation with
// whitespace stripped from the term; therapists with any connection record to
// the client are excluded, as are blocked, unapproved and disliked ones. A
// $sample stage caps candidates before the final slice.
func (r *UserRepository) SearchTherapists(ctx context.Context, f ports.TherapistSearchFilter) ([]*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cid, err := primitive.ObjectIDFromHex(f.ClientID)
	if err != nil {
		return nil, domain.ErrUserNotFound
	}

	pipeline, err := therapistSearchPipeline(cid, f)
	if err != nil {
		return nil, err
	}

	cur, err := r.col.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("search therapists: %w", err)
	}
	defer cur.Close(ctx)

	var docs []userDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode therapists: %w", err)
	}

	out := make([]*domain.User, 0, len(docs))
	for i := range docs {
		out = append(out, toDomainUser(&docs[i]))
	}
	return out, nil
}

// therapistSearchPipeline assembles the discovery aggregation for a client.
// The pair_connections lookup with its empty-array match removes every
// therapist that already has a connection record, of any status, to cid.
func therapistSearchPipeline(cid primitive.ObjectID, f ports.TherapistSearchFilter) ([]bson.D, error) {
	match := bson.D{
		{Key: "role", Value: string(domain.RoleTherapist)},
		{Key: "blocked_by_admin", Value: bson.D{{Key: "$ne", Value: true}}},
		{Key: "admin_approved", Value: bson.D{{Key: "$ne", Value: false}}},
	}
	if f.Gender != "" {
		match = append(match, bson.E{Key: "gender", Value: f.Gender})
	}
	if len(f.Excluded) > 0 {
		excluded, err := toObjectIDs(f.Excluded)
		if err != nil {
			return nil, domain.ErrInvalidReference
		}
		match = append(match, bson.E{Key: "_id", Value: bson.D{{Key: "$nin", Value: excluded}}})
	}
	if len(f.TagIDs) > 0 {
		tagIDs := make([]primitive.ObjectID, 0, len(f.TagIDs))
		for _, id := range f.TagIDs {
			// Non-id values are silently skipped, matching lenient input handling.
			if oid, err := primitive.ObjectIDFromHex(id); err == nil {
				tagIDs = append(tagIDs, oid)
			}
		}
		if len(tagIDs) > 0 {
			match = append(match, bson.E{Key: "experienced_in", Value: bson.D{{Key: "$in", Value: tagIDs}}})
		}
	}
	if f.Name != "" {
		term := regexp.QuoteMeta(strings.Join(strings.Fields(f.Name), ""))
		pattern := primitive.Regex{Pattern: "^" + term, Options: "i"}
		match = append(match, bson.E{Key: "$or", Value: bson.A{
			bson.D{{Key: "firstname", Value: pattern}},
			bson.D{{Key: "lastname", Value: pattern}},
			bson.D{{Key: "fullname", Value: pattern}},
		}})
	}

	skip := f.Limit * (f.Offset - 1)
	if skip < 0 {
		skip = 0
	}
	limit := f.Limit
	if limit <= 0 {
		limit = sampleSize
	}

	pipeline := []bson.D{
		{{Key: "$addFields", Value: bson.D{
			{Key: "fullname", Value: bson.D{{Key: "$concat", Value: bson.A{"$firstname", "$lastname"}}}},
		}}},
		{{Key: "$match", Value: match}},
		// Exclude therapists with any connection record, of any status, to
		// this client.
		{{Key: "$lookup", Value: bson.D{
			{Key: "from", Value: collectionConnections},
			{Key: "let", Value: bson.D{{Key: "tid", Value: "$_id"}}},
			{Key: "pipeline", Value: bson.A{
				bson.D{{Key: "$match", Value: bson.D{{Key: "$expr", Value: bson.D{
					{Key: "$and", Value: bson.A{
						bson.D{{Key: "$eq", Value: bson.A{"$therapist_id", "$$tid"}}},
						bson.D{{Key: "$eq", Value: bson.A{"$client_id", cid}}},
					}},
				}}}}},
			}},
			{Key: "as", Value: "pair_connections"},
		}}},
		{{Key: "$match", Value: bson.D{{Key: "pair_connections", Value: bson.D{{Key: "$size", Value: 0}}}}}},
		{{Key: "$sort", Value: bson.D{{Key: "created_at", Value: -1}}}},
		{{Key: "$skip", Value: skip}},
		{{Key: "$limit", Value: limit}},
		{{Key: "$sample", Value: bson.D{{Key: "size", Value: sampleSize}}}},
	}
	return pipeline, nil
}

// EnsureIndexes creates the unique and lookup indexes on the users collection.
func (r *UserRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "role", Value: 1}, {Key: "admin_approved", Value: 1}}},
		{Keys: bson.D{{Key: "role", Value: 1}, {Key: "gender", Value: 1}}},
	}

	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}

func toUserDoc(u *domain.User) (*userDoc, error) {
	friendRequests, err := toObjectIDs(u.FriendRequests)
	if err != nil {
		return nil, domain.ErrInvalidReference
	}
	disliked, err := toObjectIDs(u.DislikedTherapists)
	if err != nil {
		return nil, domain.ErrInvalidReference
	}
	experienced, err := toObjectIDs(u.ExperiencedIn)
	if err != nil {
		return nil, domain.ErrInvalidReference
	}

	doc := &userDoc{
		Role:               string(u.Role),
		FirstName:          u.FirstName,
		LastName:           u.LastName,
		Email:              u.Email,
		PasswordHash:       u.PasswordHash,
		Gender:             u.Gender,
		PrimaryPhone:       u.PrimaryPhone,
		PhotoURL:           u.PhotoURL,
		Description:        u.Description,
		Verified:           string(u.Verified),
		AdminApproved:      u.AdminApproved,
		BlockedByAdmin:     u.BlockedByAdmin,
		FriendRequests:     friendRequests,
		DislikedTherapists: disliked,
		ExperiencedIn:      experienced,
		YearsOfExperience:  u.YearsOfExperience,
		LastLogin:          u.LastLogin,
		CreatedAt:          u.CreatedAt,
		UpdatedAt:          u.UpdatedAt,
	}
	if u.ID != "" {
		oid, err := primitive.ObjectIDFromHex(u.ID)
		if err != nil {
			return nil, domain.ErrInvalidReference
		}
		doc.ID = oid
	}
	return doc, nil
}

func toDomainUser(doc *userDoc) *domain.User {
	return &domain.User{
		ID:                 doc.ID.Hex(),
		Role:               domain.Role(doc.Role),
		FirstName:          doc.FirstName,
		LastName:           doc.LastName,
		Email:              doc.Email,
		PasswordHash:       doc.PasswordHash,
		Gender:             doc.Gender,
		PrimaryPhone:       doc.PrimaryPhone,
		PhotoURL:           doc.PhotoURL,
		Description:        doc.Description,
		Verified:           domain.VerifiedStatus(doc.Verified),
		AdminApproved:      doc.AdminApproved,
		BlockedByAdmin:     doc.BlockedByAdmin,
		FriendRequests:     fromObjectIDs(doc.FriendRequests),
		DislikedTherapists: fromObjectIDs(doc.DislikedTherapists),
		ExperiencedIn:      fromObjectIDs(doc.ExperiencedIn),
		YearsOfExperience:  doc.YearsOfExperience,
		LastLogin:          doc.LastLogin,
		CreatedAt:          doc.CreatedAt,
		UpdatedAt:          doc.UpdatedAt,
	}
}

func toObjectIDs(ids []string) ([]primitive.ObjectID, error) {
	out := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		oid, err := primitive.ObjectIDFromHex(id)
		if err != nil {
			return nil, err
		}
		out = append(out, oid)
	}
	return out, nil
}

func fromObjectIDs(ids []primitive.ObjectID) []string {
	if ids == nil {
		return nil
	}
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		out = append(out, id.Hex())
	}
	return out
}
