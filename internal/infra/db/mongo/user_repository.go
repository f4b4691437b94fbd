package mongo

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domainuser "homestay/internal/domain/user"
)

type UserRepository struct {
	col *mongo.Collection
}

func NewUserRepository(db *mongo.Database) *UserRepository {
	return &UserRepository{col: db.Collection("agg_user")}
}

func (r *UserRepository) ByID(ctx context.Context, id string) (*domainuser.User, error) {
	var doc userDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domainuser.ErrNotFound
		}
		return nil, err
	}
	return &domainuser.User{ID: doc.ID, Username: doc.Username, DisplayName: doc.DisplayName}, nil
}

func (r *UserRepository) Save(ctx context.Context, u *domainuser.User) error {
	doc := userDocument{ID: u.ID, Username: u.Username, DisplayName: u.DisplayName}
	_, err := r.col.UpdateByID(ctx, doc.ID, bson.M{"$set": doc}, options.Update().SetUpsert(true))
	return err
}

type userDocument struct {
	ID          string `bson:"_id"`
	Username    string `bson:"username"`
	DisplayName string `bson:"display_name"`
}
