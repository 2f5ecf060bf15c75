package repository

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"profilehub/internal/domain/entity"
	"profilehub/internal/domain/repository"
)

const usersCollection = "users"

type MongoUserRepository struct {
	db *mongo.Database
	c  *mongo.Collection
}

// NewMongoUserRepository returns a UserRepository over the users collection
// of db. Call EnsureIndexes once at startup.
func NewMongoUserRepository(db *mongo.Database) *MongoUserRepository {
	return &MongoUserRepository{db: db, c: db.Collection(usersCollection)}
}

// EnsureIndexes creates the uniqueness and listing indexes for users.
func (r *MongoUserRepository) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "mobile", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("idx_user_mobile"),
		},
		// email and secondaryMobile are optional, so uniqueness only applies when set.
		{
			Keys: bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("idx_user_email").
				SetPartialFilterExpression(bson.M{"email": bson.M{"$type": "string"}}),
		},
		{
			Keys: bson.D{{Key: "secondaryMobile", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("idx_user_secondary_mobile").
				SetPartialFilterExpression(bson.M{"secondaryMobile": bson.M{"$type": "string"}}),
		},
		{
			Keys:    bson.D{{Key: "createdAt", Value: 1}},
			Options: options.Index().SetName("idx_user_created_at"),
		},
		{
			Keys:    bson.D{{Key: "name", Value: 1}, {Key: "role", Value: 1}},
			Options: options.Index().SetName("idx_user_name_role"),
		},
	}
	_, err := r.c.Indexes().CreateMany(ctx, indexes)
	return err
}

func (r *MongoUserRepository) Create(ctx context.Context, user *entity.User) error {
	if _, err := r.c.InsertOne(ctx, user); err != nil {
		if isDuplicateKey(err) {
			return repository.ErrDuplicate
		}
		return err
	}
	return nil
}

func (r *MongoUserRepository) GetByID(ctx context.Context, id string) (*entity.User, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *MongoUserRepository) GetByMobile(ctx context.Context, mobile string) (*entity.User, error) {
	return r.findOne(ctx, bson.M{"mobile": mobile})
}

func (r *MongoUserRepository) findOne(ctx context.Context, filter bson.M) (*entity.User, error) {
	var user entity.User
	if err := r.c.FindOne(ctx, filter).Decode(&user); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (r *MongoUserRepository) IsTaken(ctx context.Context, field, value, excludeID string) (bool, error) {
	filter := bson.M{field: value}
	if excludeID != "" {
		filter["_id"] = bson.M{"$ne": excludeID}
	}
	n, err := r.c.CountDocuments(ctx, filter, options.Count().SetLimit(1))
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Update replaces the document only while its version still matches, so two
// writers that read the same version cannot both win.
func (r *MongoUserRepository) Update(ctx context.Context, user *entity.User, expectedVersion int64) error {
	next := *user
	next.Version = expectedVersion + 1

	res, err := r.c.ReplaceOne(ctx, bson.M{"_id": user.ID, "version": expectedVersion}, &next)
	if err != nil {
		if isDuplicateKey(err) {
			return repository.ErrDuplicate
		}
		return err
	}

	if res.MatchedCount == 0 {
		n, err := r.c.CountDocuments(ctx, bson.M{"_id": user.ID}, options.Count().SetLimit(1))
		if err != nil {
			return err
		}
		if n == 0 {
			return repository.ErrNotFound
		}
		return repository.ErrVersionConflict
	}

	user.Version = next.Version
	return nil
}

func (r *MongoUserRepository) Delete(ctx context.Context, id string) error {
	res, err := r.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *MongoUserRepository) List(ctx context.Context, filter repository.UserFilter, opts repository.ListOptions) ([]*entity.User, int64, error) {
	query := bson.M{}
	if filter.Name != "" {
		query["name"] = filter.Name
	}
	if filter.Role != "" {
		query["role"] = filter.Role
	}

	total, err := r.c.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, err
	}

	sort := bson.D{}
	for _, s := range opts.Sort {
		field, ok := repository.SortableFields[s.Field]
		if !ok {
			continue
		}
		dir := 1
		if s.Desc {
			dir = -1
		}
		sort = append(sort, bson.E{Key: field, Value: dir})
	}
	// _id keeps pages stable when the sort keys tie.
	sort = append(sort, bson.E{Key: "_id", Value: 1})

	find := options.Find().
		SetSort(sort).
		SetSkip(int64(opts.Offset)).
		SetLimit(int64(opts.Limit))

	cur, err := r.c.Find(ctx, query, find)
	if err != nil {
		return nil, 0, err
	}
	defer cur.Close(ctx)

	var users []*entity.User
	if err := cur.All(ctx, &users); err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

func (r *MongoUserRepository) Ping(ctx context.Context) error {
	return r.db.Client().Ping(ctx, readpref.Primary())
}

func isDuplicateKey(err error) bool {
	if mongo.IsDuplicateKeyError(err) {
		return true
	}
	var we mongo.WriteException
	if errors.As(err, &we) {
		for _, e := range we.WriteErrors {
			if e.Code == 11000 {
				return true
			}
		}
	}
	return false
}
