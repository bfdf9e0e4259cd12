package dao

import (
	"context"
	"errors"
	"fmt"
	"time"

	"account-service/pkg/core/account/model"
	"account-service/pkg/core/account/repository/dao"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// accountDocument users 集合中的文档结构
type accountDocument struct {
	ID        bson.ObjectID `bson:"_id,omitempty"`
	Email     string        `bson:"email"`
	Username  string        `bson:"username"`
	Password  string        `bson:"password,omitempty"`
	Field     string        `bson:"field"`
	CreatedAt time.Time     `bson:"createdAt"`
}

func (d accountDocument) toModel() model.Account {
	return model.Account{
		ID:           d.ID.Hex(),
		Email:        d.Email,
		Username:     d.Username,
		PasswordHash: d.Password,
		Field:        d.Field,
		CreatedAt:    d.CreatedAt,
	}
}

var withoutPassword = bson.D{{Key: "password", Value: 0}}

type MongoAccountRepository struct {
	coll *mongo.Collection
}

var _ dao.AccountRepository = (*MongoAccountRepository)(nil)

// NewMongoAccountRepository 创建 email 与 username 唯一索引，唯一性以索引为准
func NewMongoAccountRepository(ctx context.Context, coll *mongo.Collection) (*MongoAccountRepository, error) {
	_, err := coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "username", Value: 1}}, Options: options.Index().SetUnique(true)},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: creating indexes: %v", dao.ErrDatabaseInternal, err)
	}
	return &MongoAccountRepository{coll: coll}, nil
}

func (r *MongoAccountRepository) FindByEmailOrUsername(ctx context.Context, email, username string) (model.Account, error) {
	filter := bson.D{{Key: "$or", Value: bson.A{
		bson.D{{Key: "email", Value: email}},
		bson.D{{Key: "username", Value: username}},
	}}}
	return r.findOne(ctx, filter, false)
}

func (r *MongoAccountRepository) FindByUsername(ctx context.Context, username string) (model.Account, error) {
	return r.findOne(ctx, bson.D{{Key: "username", Value: username}}, true)
}

func (r *MongoAccountRepository) FindByID(ctx context.Context, id string) (model.Account, error) {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return model.Account{}, dao.ErrAccountNotFound
	}
	return r.findOne(ctx, bson.D{{Key: "_id", Value: oid}}, false)
}

func (r *MongoAccountRepository) List(ctx context.Context) ([]model.Account, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: 1}, {Key: "_id", Value: 1}}).
		SetProjection(withoutPassword)

	cur, err := r.coll.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, fmt.Errorf("%w: account listing failed: %v", dao.ErrDatabaseInternal, err)
	}

	var docs []accountDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("%w: decoding accounts: %v", dao.ErrDatabaseInternal, err)
	}

	accs := make([]model.Account, 0, len(docs))
	for _, d := range docs {
		accs = append(accs, d.toModel())
	}
	return accs, nil
}

func (r *MongoAccountRepository) Create(ctx context.Context, acc *model.Account) error {
	doc := accountDocument{
		ID:        bson.NewObjectID(),
		Email:     acc.Email,
		Username:  acc.Username,
		Password:  acc.PasswordHash,
		Field:     acc.Field,
		CreatedAt: acc.CreatedAt,
	}

	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return dao.ErrDuplicateEntry
		}
		return fmt.Errorf("%w: account creation failed: %v", dao.ErrDatabaseInternal, err)
	}

	acc.ID = doc.ID.Hex()
	return nil
}

func (r *MongoAccountRepository) findOne(ctx context.Context, filter bson.D, withPassword bool) (model.Account, error) {
	opts := options.FindOne()
	if !withPassword {
		opts.SetProjection(withoutPassword)
	}

	var doc accountDocument
	err := r.coll.FindOne(ctx, filter, opts).Decode(&doc)
	switch {
	case errors.Is(err, mongo.ErrNoDocuments):
		return model.Account{}, dao.ErrAccountNotFound
	case err != nil:
		return model.Account{}, fmt.Errorf("%w: account query failed: %v", dao.ErrDatabaseInternal, err)
	default:
		return doc.toModel(), nil
	}
}
