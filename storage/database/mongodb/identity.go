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
	"github.com/cpgs-hub/backend/core/identity"
)

type identityDoc struct {
	ID             primitive.ObjectID `bson:"_id,omitempty"`
	Name           string             `bson:"name"`
	Email          string             `bson:"email"`
	Password       string             `bson:"password,omitempty"` // bcrypt hash
	Role           string             `bson:"role"`
	RollNumber     string             `bson:"rollNumber,omitempty"`
	ProfilePicture string             `bson:"profilePicture,omitempty"`
	CreatedAt      time.Time          `bson:"createdAt"`
	UpdatedAt      time.Time          `bson:"updatedAt"`
}

func toIdentityDoc(usr identity.Identity) identityDoc {
	doc := identityDoc{
		Name:           usr.Name,
		Email:          usr.Email,
		Password:       string(usr.PasswordHash),
		Role:           string(usr.Role),
		RollNumber:     usr.RollNumber,
		ProfilePicture: usr.ProfilePicture,
		CreatedAt:      usr.CreatedAt.UTC(),
		UpdatedAt:      usr.UpdatedAt.UTC(),
	}
	if oid, ok := objectID(usr.ID); ok {
		doc.ID = oid
	}
	return doc
}

func (doc identityDoc) identity() identity.Identity {
	role := identity.Role(doc.Role)
	if role == "" {
		role = identity.RoleUser
	}
	usr := identity.Identity{
		ID:             doc.ID.Hex(),
		Name:           doc.Name,
		Email:          doc.Email,
		Role:           role,
		RollNumber:     doc.RollNumber,
		ProfilePicture: doc.ProfilePicture,
		CreatedAt:      doc.CreatedAt,
		UpdatedAt:      doc.UpdatedAt,
	}
	if doc.Password != "" {
		usr.PasswordHash = []byte(doc.Password)
	}
	return usr
}

type identityRepository struct {
	coll *mongo.Collection
}

var _ identity.Repository = (*identityRepository)(nil) // interface compliance check

func NewIdentityRepository(db *DB) identity.Repository {
	return &identityRepository{coll: db.collection(identitiesColl)}
}

func (repo *identityRepository) findOne(ctx context.Context, filter bson.M) (identity.Identity, error) {
	var doc identityDoc
	if err := repo.coll.FindOne(ctx, filter).Decode(&doc); err != nil {
		if err == mongo.ErrNoDocuments {
			return identity.Identity{}, identity.ErrNotFound
		}
		return identity.Identity{}, errors.Wrap(err, "finding identity")
	}
	return doc.identity(), nil
}

func (repo *identityRepository) CreateIdentity(ctx context.Context, usr identity.Identity) (identity.Identity, error) {
	doc := toIdentityDoc(usr)
	doc.ID = primitive.NewObjectID()
	if _, err := repo.coll.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return identity.Identity{}, identity.ErrEmailExists
		}
		return identity.Identity{}, errors.Wrap(err, "inserting identity")
	}
	return doc.identity(), nil
}

func (repo *identityRepository) GetIdentityByID(ctx context.Context, id string) (identity.Identity, error) {
	oid, ok := objectID(id)
	if !ok {
		return identity.Identity{}, identity.ErrNotFound
	}
	return repo.findOne(ctx, byID(oid))
}

func (repo *identityRepository) GetIdentityByEmail(ctx context.Context, email string) (identity.Identity, error) {
	return repo.findOne(ctx, bson.M{"email": email})
}

func (repo *identityRepository) QueryIdentities(ctx context.Context) ([]identity.Identity, error) {
	opts := options.Find().SetSort(sortBy(core.Ordering{Field: "createdAt", Desc: true}))
	cur, err := repo.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, errors.Wrap(err, "querying identities")
	}
	var docs []identityDoc
	if err = cur.All(ctx, &docs); err != nil {
		return nil, errors.Wrap(err, "decoding identities")
	}

	users := make([]identity.Identity, 0, len(docs))
	for _, doc := range docs {
		users = append(users, doc.identity())
	}
	return users, nil
}

func (repo *identityRepository) UpdateIdentity(ctx context.Context, usr identity.Identity) (identity.Identity, error) {
	oid, ok := objectID(usr.ID)
	if !ok {
		return identity.Identity{}, identity.ErrNotFound
	}
	doc := toIdentityDoc(usr)
	res, err := repo.coll.ReplaceOne(ctx, byID(oid), doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return identity.Identity{}, identity.ErrEmailExists
		}
		return identity.Identity{}, errors.Wrap(err, "updating identity")
	}
	if res.MatchedCount == 0 {
		return identity.Identity{}, identity.ErrNotFound
	}
	return doc.identity(), nil
}

func (repo *identityRepository) DeleteIdentity(ctx context.Context, id string) error {
	return deleteByID(ctx, repo.coll, id, identity.ErrNotFound)
}
