package mongodb

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/cpgs-hub/backend/core"
	"github.com/cpgs-hub/backend/core/sysconfig"
)

type configDoc struct {
	Key       string              `bson:"key"`
	Value     string              `bson:"value"`
	UpdatedBy *primitive.ObjectID `bson:"updatedBy,omitempty"`
	UpdatedAt time.Time           `bson:"updatedAt"`
}

func (doc configDoc) entry() sysconfig.Entry {
	return sysconfig.Entry{
		Key:       doc.Key,
		Value:     doc.Value,
		UpdatedBy: hexOrEmpty(doc.UpdatedBy),
		UpdatedAt: doc.UpdatedAt,
	}
}

type configRepository struct {
	coll *mongo.Collection
}

var _ sysconfig.Repository = (*configRepository)(nil) // interface compliance check

func NewConfigRepository(db *DB) sysconfig.Repository {
	return &configRepository{coll: db.collection(configsColl)}
}

func (repo *configRepository) GetConfig(ctx context.Context, key string) (sysconfig.Entry, error) {
	var doc configDoc
	if err := repo.coll.FindOne(ctx, bson.M{"key": key}).Decode(&doc); err != nil {
		if err == mongo.ErrNoDocuments {
			return sysconfig.Entry{}, sysconfig.ErrNotFound
		}
		return sysconfig.Entry{}, errors.Wrap(err, "finding config")
	}
	return doc.entry(), nil
}

func (repo *configRepository) QueryConfigs(ctx context.Context) ([]sysconfig.Entry, error) {
	cur, err := repo.coll.Find(ctx, bson.M{}, options.Find().SetSort(sortBy(core.Ordering{Field: "key"})))
	if err != nil {
		return nil, errors.Wrap(err, "querying configs")
	}
	var docs []configDoc
	if err = cur.All(ctx, &docs); err != nil {
		return nil, errors.Wrap(err, "decoding configs")
	}

	entries := make([]sysconfig.Entry, 0, len(docs))
	for _, doc := range docs {
		entries = append(entries, doc.entry())
	}
	return entries, nil
}

func (repo *configRepository) UpsertConfig(ctx context.Context, e sysconfig.Entry) (sysconfig.Entry, error) {
	doc := configDoc{
		Key:       e.Key,
		Value:     e.Value,
		UpdatedBy: optionalObjectID(e.UpdatedBy),
		UpdatedAt: e.UpdatedAt.UTC(),
	}
	update := bson.M{"$set": doc}
	if _, err := repo.coll.UpdateOne(ctx, bson.M{"key": e.Key}, update, options.Update().SetUpsert(true)); err != nil {
		return sysconfig.Entry{}, errors.Wrap(err, "upserting config")
	}
	return doc.entry(), nil
}
