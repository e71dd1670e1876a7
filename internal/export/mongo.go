package export

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoSink keeps one document per email in the registrations collection.
type MongoSink struct {
	collection *mongo.Collection
}

func NewMongoSink(db *mongo.Database) *MongoSink {
	return &MongoSink{collection: db.Collection("registrations")}
}

func (s *MongoSink) Append(ctx context.Context, row Row) error {
	opts := options.Replace().SetUpsert(true)
	_, err := s.collection.ReplaceOne(ctx, bson.M{"email": row.Email}, row, opts)
	return err
}
