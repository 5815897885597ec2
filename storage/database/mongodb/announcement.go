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
	"github.com/cpgs-hub/backend/core/announcement"
)

type attachmentDoc struct {
	Type string `bson:"type"`
	URL  string `bson:"url"`
	Name string `bson:"name"`
}

type announcementDoc struct {
	ID          primitive.ObjectID  `bson:"_id,omitempty"`
	Title       string              `bson:"title"`
	Content     string              `bson:"content"`
	Attachments []attachmentDoc     `bson:"attachments"`
	Author      string              `bson:"author"`
	AuthorID    *primitive.ObjectID `bson:"authorId,omitempty"`
	CreatedAt   time.Time           `bson:"createdAt"`
	UpdatedAt   time.Time           `bson:"updatedAt"`
}

func toAnnouncementDoc(a announcement.Announcement) announcementDoc {
	attachments := make([]attachmentDoc, 0, len(a.Attachments))
	for _, att := range a.Attachments {
		attachments = append(attachments, attachmentDoc(att))
	}
	doc := announcementDoc{
		Title:       a.Title,
		Content:     a.Content,
		Attachments: attachments,
		Author:      a.Author,
		AuthorID:    optionalObjectID(a.AuthorID),
		CreatedAt:   a.CreatedAt.UTC(),
		UpdatedAt:   a.UpdatedAt.UTC(),
	}
	if oid, ok := objectID(a.ID); ok {
		doc.ID = oid
	}
	return doc
}

func (doc announcementDoc) announcement() announcement.Announcement {
	attachments := make([]announcement.Attachment, 0, len(doc.Attachments))
	for _, att := range doc.Attachments {
		attachments = append(attachments, announcement.Attachment(att))
	}
	return announcement.Announcement{
		ID:          doc.ID.Hex(),
		Title:       doc.Title,
		Content:     doc.Content,
		Attachments: attachments,
		Author:      doc.Author,
		AuthorID:    hexOrEmpty(doc.AuthorID),
		CreatedAt:   doc.CreatedAt,
		UpdatedAt:   doc.UpdatedAt,
	}
}

type announcementRepository struct {
	coll *mongo.Collection
}

var _ announcement.Repository = (*announcementRepository)(nil) // interface compliance check

func NewAnnouncementRepository(db *DB) announcement.Repository {
	return &announcementRepository{coll: db.collection(announcementsColl)}
}

func (repo *announcementRepository) CreateAnnouncement(ctx context.Context, a announcement.Announcement) (announcement.Announcement, error) {
	doc := toAnnouncementDoc(a)
	doc.ID = primitive.NewObjectID()
	if _, err := repo.coll.InsertOne(ctx, doc); err != nil {
		return announcement.Announcement{}, errors.Wrap(err, "inserting announcement")
	}
	return doc.announcement(), nil
}

func (repo *announcementRepository) GetAnnouncement(ctx context.Context, id string) (announcement.Announcement, error) {
	oid, ok := objectID(id)
	if !ok {
		return announcement.Announcement{}, announcement.ErrNotFound
	}
	var doc announcementDoc
	if err := repo.coll.FindOne(ctx, byID(oid)).Decode(&doc); err != nil {
		if err == mongo.ErrNoDocuments {
			return announcement.Announcement{}, announcement.ErrNotFound
		}
		return announcement.Announcement{}, errors.Wrap(err, "finding announcement")
	}
	return doc.announcement(), nil
}

func (repo *announcementRepository) QueryAnnouncements(ctx context.Context) ([]announcement.Announcement, error) {
	opts := options.Find().SetSort(sortBy(core.Ordering{Field: "createdAt", Desc: true}))
	cur, err := repo.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, errors.Wrap(err, "querying announcements")
	}
	var docs []announcementDoc
	if err = cur.All(ctx, &docs); err != nil {
		return nil, errors.Wrap(err, "decoding announcements")
	}

	list := make([]announcement.Announcement, 0, len(docs))
	for _, doc := range docs {
		list = append(list, doc.announcement())
	}
	return list, nil
}

func (repo *announcementRepository) UpdateAnnouncement(ctx context.Context, a announcement.Announcement) (announcement.Announcement, error) {
	oid, ok := objectID(a.ID)
	if !ok {
		return announcement.Announcement{}, announcement.ErrNotFound
	}
	doc := toAnnouncementDoc(a)
	res, err := repo.coll.ReplaceOne(ctx, byID(oid), doc)
	if err != nil {
		return announcement.Announcement{}, errors.Wrap(err, "updating announcement")
	}
	if res.MatchedCount == 0 {
		return announcement.Announcement{}, announcement.ErrNotFound
	}
	return doc.announcement(), nil
}

func (repo *announcementRepository) DeleteAnnouncement(ctx context.Context, id string) error {
	return deleteByID(ctx, repo.coll, id, announcement.ErrNotFound)
}
