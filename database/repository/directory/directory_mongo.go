package directoryRepo

import (
	"context"
	"time"

	"lexbook/database"
	"lexbook/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// MongoDirectoryRepo reads the users and cases collections maintained by the
// external account and case-management subsystems.
type MongoDirectoryRepo struct {
	userColl *mongo.Collection
	caseColl *mongo.Collection
}

func NewMongoDirectoryRepo() *MongoDirectoryRepo {
	db := database.Database()
	return &MongoDirectoryRepo{
		userColl: db.Collection("users"),
		caseColl: db.Collection("cases"),
	}
}

func (r *MongoDirectoryRepo) ResolveUser(ctx context.Context, id string) (*models.DirectoryUser, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var usr models.DirectoryUser
	if err := r.userColl.FindOne(ctx, bson.M{"id": id}).Decode(&usr); err != nil {
		return nil, err
	}
	return &usr, nil
}

func (r *MongoDirectoryRepo) ResolveCase(ctx context.Context, id string) (*models.CaseRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var cs models.CaseRecord
	if err := r.caseColl.FindOne(ctx, bson.M{"id": id}).Decode(&cs); err != nil {
		return nil, err
	}
	return &cs, nil
}
