// Package database opens the configured storage engine and exposes its repositories.
package database

import (
	"context"

	"github.com/pkg/errors"

	"github.com/cpgs-hub/backend/core"
	"github.com/cpgs-hub/backend/core/announcement"
	"github.com/cpgs-hub/backend/core/exam"
	"github.com/cpgs-hub/backend/core/identity"
	"github.com/cpgs-hub/backend/core/resource"
	"github.com/cpgs-hub/backend/core/routine"
	"github.com/cpgs-hub/backend/core/sysconfig"
	inmemdb "github.com/cpgs-hub/backend/storage/database/inmem"
	"github.com/cpgs-hub/backend/storage/database/mongodb"
	"github.com/cpgs-hub/backend/storage/database/postgres"
)

var ErrNoMigrations = errors.New("migrations only apply to the postgres engine")

// Store is the process wide storage handle. Open it once at startup and Close it at shutdown.
type Store struct {
	Engine core.DBEngine

	Identities    identity.Repository
	Resources     resource.Repository
	Exams         exam.Repository
	Routines      routine.Repository
	Announcements announcement.Repository
	Configs       sysconfig.Repository

	pg    *postgres.DB
	close func(ctx context.Context) error
}

// Open connects to conf.Database.Engine and builds every repository on the shared pool.
func Open(ctx context.Context, conf *core.Config) (*Store, error) {
	dbConf := conf.Database
	if err := dbConf.Engine.Validate(); err != nil {
		return nil, err
	}

	switch dbConf.Engine {
	case core.EngineMongo:
		db, err := mongodb.Open(ctx, dbConf.URL, dbConf.Name, dbConf.ConnectTimeout)
		if err != nil {
			return nil, errors.Wrap(err, "opening mongodb")
		}
		return &Store{
			Engine:        dbConf.Engine,
			Identities:    mongodb.NewIdentityRepository(db),
			Resources:     mongodb.NewResourceRepository(db),
			Exams:         mongodb.NewExamRepository(db),
			Routines:      mongodb.NewRoutineRepository(db),
			Announcements: mongodb.NewAnnouncementRepository(db),
			Configs:       mongodb.NewConfigRepository(db),
			close:         db.Close,
		}, nil

	case core.EnginePostgres:
		db, err := postgres.Open(ctx, dbConf.URL, dbConf.ConnectTimeout)
		if err != nil {
			return nil, errors.Wrap(err, "opening postgres")
		}
		if dbConf.Migrate {
			if err = postgres.Migrate(ctx, db, "up"); err != nil {
				_ = db.Close(ctx)
				return nil, err
			}
		}
		return &Store{
			Engine:        dbConf.Engine,
			Identities:    postgres.NewIdentityRepository(db),
			Resources:     postgres.NewResourceRepository(db),
			Exams:         postgres.NewExamRepository(db),
			Routines:      postgres.NewRoutineRepository(db),
			Announcements: postgres.NewAnnouncementRepository(db),
			Configs:       postgres.NewConfigRepository(db),
			pg:            db,
			close:         db.Close,
		}, nil
	}
	return NewInMemStore(), nil
}

// NewInMemStore returns a Store kept in process memory.
func NewInMemStore() *Store {
	db := inmemdb.Open()
	return &Store{
		Engine:        core.EngineInMem,
		Identities:    inmemdb.NewIdentityRepository(db),
		Resources:     inmemdb.NewResourceRepository(db),
		Exams:         inmemdb.NewExamRepository(db),
		Routines:      inmemdb.NewRoutineRepository(db),
		Announcements: inmemdb.NewAnnouncementRepository(db),
		Configs:       inmemdb.NewConfigRepository(db),
		close:         func(context.Context) error { return db.Close() },
	}
}

// Migrate runs a schema migration command. Only postgres has a managed schema.
func (s *Store) Migrate(ctx context.Context, command string, args ...string) error {
	if s.pg == nil {
		return ErrNoMigrations
	}
	return postgres.Migrate(ctx, s.pg, command, args...)
}

func (s *Store) Close(ctx context.Context) error {
	if s.close == nil {
		return nil
	}
	err := s.close(ctx)
	s.close = nil
	return errors.Wrap(err, "closing database")
}
