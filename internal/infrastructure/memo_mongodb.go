package infrastructure

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type memoDocument struct {
	MovieID int    `bson:"_id"`
	URL     string `bson:"url"`
}

// MongoMemo is an image memo stored in a MongoDB collection
type MongoMemo struct {
	client   *mongo.Client
	memoColl *mongo.Collection
}

// NewMongoMemo connects to MongoDB and uses the collection of dbName
func NewMongoMemo(ctx context.Context, dbUser, dbPassword, dbURL, dbPort, dbName, collection string) (*MongoMemo, error) {
	mongoClient, err := mongo.Connect(ctx, options.Client().ApplyURI(fmt.Sprintf("mongodb://%s:%s@%s:%s", dbUser, dbPassword, dbURL, dbPort)))
	if err != nil {
		return nil, fmt.Errorf("connect to mongodb: %w", err)
	}
	if err := mongoClient.Ping(ctx, nil); err != nil {
		_ = mongoClient.Disconnect(ctx)
		return nil, fmt.Errorf("ping mongodb: %w", err)
	}
	log.Info().Str("host", dbURL).Str("db", dbName).Str("collection", collection).Msg("Using MongoDB image memo")

	return &MongoMemo{
		client:   mongoClient,
		memoColl: mongoClient.Database(dbName).Collection(collection),
	}, nil
}

// Collection returns a memo sharing the same connection, stored in another collection
// of the same database
func (mm *MongoMemo) Collection(collection string) *MongoMemo {
	return &MongoMemo{
		client:   mm.client,
		memoColl: mm.memoColl.Database().Collection(collection),
	}
}

// Close closes the MongoDB connection
func (mm *MongoMemo) Close(ctx context.Context) error {
	return mm.client.Disconnect(ctx)
}

func (mm *MongoMemo) Get(ctx context.Context, id int) (string, bool, error) {
	var doc memoDocument
	err := mm.memoColl.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("memo get: %w", err)
	}
	return doc.URL, true, nil
}

func (mm *MongoMemo) SetIfAbsent(ctx context.Context, id int, url string) (string, error) {
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)
	var doc memoDocument
	err := mm.memoColl.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$setOnInsert": bson.M{"url": url}},
		opts,
	).Decode(&doc)
	if err != nil {
		return "", fmt.Errorf("memo set: %w", err)
	}
	return doc.URL, nil
}
