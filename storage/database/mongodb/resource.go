package mongodb

import (
	"context"
	"encoding/base64"
	"time"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/cpgs-hub/backend/core"
	"github.com/cpgs-hub/backend/core/resource"
)

// resourceDoc keeps file_data base64 encoded, as the web front end wrote it.
type resourceDoc struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	Type        string             `bson:"type"`
	Branch      string             `bson:"branch"`
	Semester    int                `bson:"semester"`
	SubjectName string             `bson:"subject_name"`
	FileName    string             `bson:"file_name"`
	FileData    string             `bson:"file_data,omitempty"`
	UploadedBy  string             `bson:"uploaded_by"`
	IsApproved  bool               `bson:"is_approved"`
	CreatedAt   time.Time          `bson:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt"`
}

var withoutFileData = bson.M{"file_data": 0}

func (doc resourceDoc) resource() (resource.Resource, error) {
	res := resource.Resource{
		ID:          doc.ID.Hex(),
		Type:        resource.Type(doc.Type),
		Branch:      doc.Branch,
		Semester:    doc.Semester,
		SubjectName: doc.SubjectName,
		FileName:    doc.FileName,
		UploadedBy:  doc.UploadedBy,
		IsApproved:  doc.IsApproved,
		CreatedAt:   doc.CreatedAt,
		UpdatedAt:   doc.UpdatedAt,
	}
	if doc.FileData != "" {
		data, err := base64.StdEncoding.DecodeString(doc.FileData)
		if err != nil {
			return resource.Resource{}, errors.Wrap(err, "decoding file data")
		}
		res.FileData = data
	}
	return res, nil
}

type resourceRepository struct {
	coll *mongo.Collection
}

var _ resource.Repository = (*resourceRepository)(nil) // interface compliance check

func NewResourceRepository(db *DB) resource.Repository {
	return &resourceRepository{coll: db.collection(resourcesColl)}
}

func (repo *resourceRepository) CreateResource(ctx context.Context, res resource.Resource) (resource.Resource, error) {
	doc := resourceDoc{
		ID:          primitive.NewObjectID(),
		Type:        string(res.Type),
		Branch:      res.Branch,
		Semester:    res.Semester,
		SubjectName: res.SubjectName,
		FileName:    res.FileName,
		FileData:    base64.StdEncoding.EncodeToString(res.FileData),
		UploadedBy:  res.UploadedBy,
		IsApproved:  res.IsApproved,
		CreatedAt:   res.CreatedAt.UTC(),
		UpdatedAt:   res.UpdatedAt.UTC(),
	}
	if _, err := repo.coll.InsertOne(ctx, doc); err != nil {
		return resource.Resource{}, errors.Wrap(err, "inserting resource")
	}
	doc.FileData = ""
	return doc.resource()
}

func (repo *resourceRepository) GetResource(ctx context.Context, id string, withData bool) (resource.Resource, error) {
	oid, ok := objectID(id)
	if !ok {
		return resource.Resource{}, resource.ErrNotFound
	}
	opts := options.FindOne()
	if !withData {
		opts.SetProjection(withoutFileData)
	}

	var doc resourceDoc
	if err := repo.coll.FindOne(ctx, byID(oid), opts).Decode(&doc); err != nil {
		if err == mongo.ErrNoDocuments {
			return resource.Resource{}, resource.ErrNotFound
		}
		return resource.Resource{}, errors.Wrap(err, "finding resource")
	}
	return doc.resource()
}

func (repo *resourceRepository) QueryResources(ctx context.Context, filter resource.QueryFilter, limit int) ([]resource.Resource, error) {
	q := bson.M{}
	if filter.Branch != "" {
		q["branch"] = filter.Branch
	}
	if filter.Semester != 0 {
		q["semester"] = filter.Semester
	}
	if filter.Type != "" {
		q["type"] = filter.Type
	}
	if filter.Approved != nil {
		q["is_approved"] = *filter.Approved
	}

	opts := options.Find().
		SetProjection(withoutFileData).
		SetSort(sortBy(core.Ordering{Field: "createdAt", Desc: true}))
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}

	cur, err := repo.coll.Find(ctx, q, opts)
	if err != nil {
		return nil, errors.Wrap(err, "querying resources")
	}
	var docs []resourceDoc
	if err = cur.All(ctx, &docs); err != nil {
		return nil, errors.Wrap(err, "decoding resources")
	}

	resources := make([]resource.Resource, 0, len(docs))
	for _, doc := range docs {
		res, err := doc.resource()
		if err != nil {
			return nil, err
		}
		resources = append(resources, res)
	}
	return resources, nil
}

func (repo *resourceRepository) SetResourceApproval(ctx context.Context, id string, approved bool, at time.Time) (resource.Resource, error) {
	oid, ok := objectID(id)
	if !ok {
		return resource.Resource{}, resource.ErrNotFound
	}
	opts := options.FindOneAndUpdate().
		SetProjection(withoutFileData).
		SetReturnDocument(options.After)
	update := bson.M{"$set": bson.M{"is_approved": approved, "updatedAt": at.UTC()}}

	var doc resourceDoc
	if err := repo.coll.FindOneAndUpdate(ctx, byID(oid), update, opts).Decode(&doc); err != nil {
		if err == mongo.ErrNoDocuments {
			return resource.Resource{}, resource.ErrNotFound
		}
		return resource.Resource{}, errors.Wrap(err, "updating resource approval")
	}
	return doc.resource()
}

func (repo *resourceRepository) DeleteResource(ctx context.Context, id string) error {
	return deleteByID(ctx, repo.coll, id, resource.ErrNotFound)
}
