// Package mongodb stores every collection in MongoDB, with the collection
// and field names the web front end already uses.
package mongodb

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/cpgs-hub/backend/core"
)

// collection names
const (
	identitiesColl    = "users"
	resourcesColl     = "resources"
	examsColl         = "exams"
	routinesColl      = "routines"
	announcementsColl = "announcements"
	configsColl       = "systemconfigs"
)

// DB wraps the shared client. It is created once at startup and closed at shutdown.
type DB struct {
	client *mongo.Client
	db     *mongo.Database
}

// Open connects, waits for the server and ensures the unique indexes.
func Open(ctx context.Context, uri, name string, timeout time.Duration) (*DB, error) {
	opts := options.Client().ApplyURI(uri).SetConnectTimeout(timeout).SetServerSelectionTimeout(timeout)
	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, errors.Wrap(err, "connecting to mongodb")
	}

	db := &DB{client: client, db: client.Database(name)}
	if err = db.ping(ctx); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}
	if err = db.ensureIndexes(ctx); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}
	return db, nil
}

func (db *DB) ping(ctx context.Context) error {
	return core.WaitForDB(ctx, func(ctx context.Context) error {
		return db.client.Ping(ctx, readpref.Primary())
	}, 10)
}

func (db *DB) ensureIndexes(ctx context.Context) error {
	unique := options.Index().SetUnique(true)
	indexes := map[string]mongo.IndexModel{
		identitiesColl: {Keys: bson.D{{Key: "email", Value: 1}}, Options: unique},
		configsColl:    {Keys: bson.D{{Key: "key", Value: 1}}, Options: unique},
		routinesColl:   {Keys: bson.D{{Key: "section", Value: 1}, {Key: "semester", Value: 1}}},
		examsColl:      {Keys: bson.D{{Key: "semester", Value: 1}, {Key: "date", Value: 1}}},
	}
	for coll, idx := range indexes {
		if _, err := db.db.Collection(coll).Indexes().CreateOne(ctx, idx); err != nil {
			return errors.Wrapf(err, "creating %s index", coll)
		}
	}
	return nil
}

func (db *DB) Close(ctx context.Context) error {
	return db.client.Disconnect(ctx)
}

func (db *DB) collection(name string) *mongo.Collection {
	return db.db.Collection(name)
}

// objectID parses a hex id. Malformed ids can never match a document.
func objectID(id string) (primitive.ObjectID, bool) {
	oid, err := primitive.ObjectIDFromHex(id)
	return oid, err == nil
}

// optionalObjectID is used for references that may be absent.
func optionalObjectID(id string) *primitive.ObjectID {
	if oid, ok := objectID(id); ok {
		return &oid
	}
	return nil
}

func hexOrEmpty(oid *primitive.ObjectID) string {
	if oid == nil {
		return ""
	}
	return oid.Hex()
}

func byID(oid primitive.ObjectID) bson.M {
	return bson.M{"_id": oid}
}

// deleteByID deletes one document, returning notFound when nothing matched.
func deleteByID(ctx context.Context, coll *mongo.Collection, id string, notFound error) error {
	oid, ok := objectID(id)
	if !ok {
		return notFound
	}
	res, err := coll.DeleteOne(ctx, byID(oid))
	if err != nil {
		return errors.Wrapf(err, "deleting from %s", coll.Name())
	}
	if res.DeletedCount == 0 {
		return notFound
	}
	return nil
}

func sortBy(ords ...core.Ordering) bson.D {
	sort := make(bson.D, 0, len(ords))
	for _, ord := range ords {
		sort = append(sort, bson.E{Key: ord.Field, Value: ord.Direction()})
	}
	return sort
}
