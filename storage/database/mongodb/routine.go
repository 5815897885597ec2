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
	"github.com/cpgs-hub/backend/core/routine"
)

type classDoc struct {
	Time    string `bson:"time"`
	Subject string `bson:"subject"`
	Room    string `bson:"room"`
}

type dayDoc struct {
	Day     string     `bson:"day"`
	Classes []classDoc `bson:"classes"`
}

type routineDoc struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Section   string             `bson:"section"`
	Semester  int                `bson:"semester"`
	Schedule  []dayDoc           `bson:"schedule"`
	CreatedAt time.Time          `bson:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt"`
}

func toRoutineDoc(r routine.Routine) routineDoc {
	days := make([]dayDoc, 0, len(r.Schedule))
	for _, d := range r.Schedule {
		classes := make([]classDoc, 0, len(d.Classes))
		for _, c := range d.Classes {
			classes = append(classes, classDoc(c))
		}
		days = append(days, dayDoc{Day: d.Day, Classes: classes})
	}
	return routineDoc{
		Section:   r.Section,
		Semester:  r.Semester,
		Schedule:  days,
		CreatedAt: r.CreatedAt.UTC(),
		UpdatedAt: r.UpdatedAt.UTC(),
	}
}

func (doc routineDoc) routine() routine.Routine {
	days := make([]routine.Day, 0, len(doc.Schedule))
	for _, d := range doc.Schedule {
		classes := make([]routine.Class, 0, len(d.Classes))
		for _, c := range d.Classes {
			classes = append(classes, routine.Class(c))
		}
		days = append(days, routine.Day{Day: d.Day, Classes: classes})
	}
	return routine.Routine{
		ID:        doc.ID.Hex(),
		Section:   doc.Section,
		Semester:  doc.Semester,
		Schedule:  days,
		CreatedAt: doc.CreatedAt,
		UpdatedAt: doc.UpdatedAt,
	}
}

type routineRepository struct {
	coll *mongo.Collection
}

var _ routine.Repository = (*routineRepository)(nil) // interface compliance check

func NewRoutineRepository(db *DB) routine.Repository {
	return &routineRepository{coll: db.collection(routinesColl)}
}

func (repo *routineRepository) CreateRoutine(ctx context.Context, r routine.Routine) (routine.Routine, error) {
	doc := toRoutineDoc(r)
	doc.ID = primitive.NewObjectID()
	if _, err := repo.coll.InsertOne(ctx, doc); err != nil {
		return routine.Routine{}, errors.Wrap(err, "inserting routine")
	}
	return doc.routine(), nil
}

func (repo *routineRepository) QueryRoutines(ctx context.Context, filter routine.QueryFilter) ([]routine.Routine, error) {
	q := bson.M{}
	if filter.Section != "" {
		q["section"] = filter.Section
	}
	if filter.Semester != 0 {
		q["semester"] = filter.Semester
	}

	sort := sortBy(core.Ordering{Field: "semester"}, core.Ordering{Field: "section"})
	cur, err := repo.coll.Find(ctx, q, options.Find().SetSort(sort))
	if err != nil {
		return nil, errors.Wrap(err, "querying routines")
	}
	var docs []routineDoc
	if err = cur.All(ctx, &docs); err != nil {
		return nil, errors.Wrap(err, "decoding routines")
	}

	routines := make([]routine.Routine, 0, len(docs))
	for _, doc := range docs {
		routines = append(routines, doc.routine())
	}
	return routines, nil
}

func (repo *routineRepository) DeleteRoutine(ctx context.Context, id string) error {
	return deleteByID(ctx, repo.coll, id, routine.ErrNotFound)
}
