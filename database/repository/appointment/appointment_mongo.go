package appointmentRepo

import (
	"lexbook/database"

	"go.mongodb.org/mongo-driver/mongo"
)

// MongoCalendarRepo is the MongoDB-backed CalendarRepository.
type MongoCalendarRepo struct {
	coll *mongo.Collection
}

// NewMongoCalendarRepo returns a repo over the "appointments" collection.
func NewMongoCalendarRepo() *MongoCalendarRepo {
	return &MongoCalendarRepo{
		coll: database.Database().Collection("appointments"),
	}
}

// NewMongoCalendarRepoWithCollection allows injecting a collection (tests, migrations).
func NewMongoCalendarRepoWithCollection(coll *mongo.Collection) *MongoCalendarRepo {
	return &MongoCalendarRepo{coll: coll}
}
