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
	"github.com/cpgs-hub/backend/core/exam"
)

type examDoc struct {
	ID        primitive.ObjectID  `bson:"_id,omitempty"`
	Semester  int                 `bson:"semester"`
	Subject   string              `bson:"subject"`
	Date      time.Time           `bson:"date"`
	Type      string              `bson:"type"`
	Branch    string              `bson:"branch"`
	Time      string              `bson:"time,omitempty"`
	Venue     string              `bson:"venue,omitempty"`
	IsNotice  bool                `bson:"isNotice"`
	ImageURL  string              `bson:"imageUrl,omitempty"`
	CreatedBy *primitive.ObjectID `bson:"createdBy,omitempty"`
	CreatedAt time.Time           `bson:"createdAt"`
	UpdatedAt time.Time           `bson:"updatedAt"`
}

func toExamDoc(ex exam.Exam) examDoc {
	doc := examDoc{
		Semester:  ex.Semester,
		Subject:   ex.Subject,
		Date:      ex.Date.UTC(),
		Type:      string(ex.Type),
		Branch:    ex.Branch,
		Time:      ex.Time,
		Venue:     ex.Venue,
		IsNotice:  ex.IsNotice,
		ImageURL:  ex.ImageURL,
		CreatedBy: optionalObjectID(ex.CreatedBy),
		CreatedAt: ex.CreatedAt.UTC(),
		UpdatedAt: ex.UpdatedAt.UTC(),
	}
	if oid, ok := objectID(ex.ID); ok {
		doc.ID = oid
	}
	return doc
}

func (doc examDoc) exam() exam.Exam {
	return exam.Exam{
		ID:        doc.ID.Hex(),
		Semester:  doc.Semester,
		Subject:   doc.Subject,
		Date:      doc.Date,
		Type:      exam.Type(doc.Type),
		Branch:    doc.Branch,
		Time:      doc.Time,
		Venue:     doc.Venue,
		IsNotice:  doc.IsNotice,
		ImageURL:  doc.ImageURL,
		CreatedBy: hexOrEmpty(doc.CreatedBy),
		CreatedAt: doc.CreatedAt,
		UpdatedAt: doc.UpdatedAt,
	}
}

type examRepository struct {
	coll *mongo.Collection
}

var _ exam.Repository = (*examRepository)(nil) // interface compliance check

func NewExamRepository(db *DB) exam.Repository {
	return &examRepository{coll: db.collection(examsColl)}
}

func (repo *examRepository) CreateExam(ctx context.Context, ex exam.Exam) (exam.Exam, error) {
	doc := toExamDoc(ex)
	doc.ID = primitive.NewObjectID()
	if _, err := repo.coll.InsertOne(ctx, doc); err != nil {
		return exam.Exam{}, errors.Wrap(err, "inserting exam")
	}
	return doc.exam(), nil
}

func (repo *examRepository) GetExam(ctx context.Context, id string) (exam.Exam, error) {
	oid, ok := objectID(id)
	if !ok {
		return exam.Exam{}, exam.ErrNotFound
	}
	var doc examDoc
	if err := repo.coll.FindOne(ctx, byID(oid)).Decode(&doc); err != nil {
		if err == mongo.ErrNoDocuments {
			return exam.Exam{}, exam.ErrNotFound
		}
		return exam.Exam{}, errors.Wrap(err, "finding exam")
	}
	return doc.exam(), nil
}

func (repo *examRepository) QueryExams(ctx context.Context, filter exam.QueryFilter) ([]exam.Exam, error) {
	q := bson.M{}
	if filter.Semester != 0 {
		q["semester"] = filter.Semester
	}
	if filter.Branch != "" {
		q["branch"] = filter.Branch
	}

	cur, err := repo.coll.Find(ctx, q, options.Find().SetSort(sortBy(core.Ordering{Field: "date"})))
	if err != nil {
		return nil, errors.Wrap(err, "querying exams")
	}
	var docs []examDoc
	if err = cur.All(ctx, &docs); err != nil {
		return nil, errors.Wrap(err, "decoding exams")
	}

	exams := make([]exam.Exam, 0, len(docs))
	for _, doc := range docs {
		exams = append(exams, doc.exam())
	}
	return exams, nil
}

func (repo *examRepository) UpdateExam(ctx context.Context, ex exam.Exam) (exam.Exam, error) {
	oid, ok := objectID(ex.ID)
	if !ok {
		return exam.Exam{}, exam.ErrNotFound
	}
	doc := toExamDoc(ex)
	res, err := repo.coll.ReplaceOne(ctx, byID(oid), doc)
	if err != nil {
		return exam.Exam{}, errors.Wrap(err, "updating exam")
	}
	if res.MatchedCount == 0 {
		return exam.Exam{}, exam.ErrNotFound
	}
	return doc.exam(), nil
}

func (repo *examRepository) DeleteExam(ctx context.Context, id string) error {
	return deleteByID(ctx, repo.coll, id, exam.ErrNotFound)
}
