package core

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/pkg/errors"
)

// DBPingInterval is the first wait between two pings in WaitForDB.
var DBPingInterval = 100 * time.Millisecond // mockable

// DBEngine names a storage backend.
type DBEngine string

const (
	EngineMongo    DBEngine = "mongodb"
	EnginePostgres DBEngine = "postgres"
	EngineInMem    DBEngine = "inmem"
)

func (e DBEngine) Validate() error {
	switch e {
	case EngineMongo, EnginePostgres, EngineInMem:
		return nil
	}
	return fmt.Errorf("unknown database engine %q", string(e))
}

// Ordering is a sort key shared by the repositories: Field ascending unless Desc.
type Ordering struct {
	Field string
	Desc  bool
}

func (ord Ordering) String() string {
	direction := "ASC"
	if ord.Desc {
		direction = "DESC"
	}
	return ord.Field + " " + direction
}

// Direction is the mongo sort direction of the ordering.
func (ord Ordering) Direction() int {
	if ord.Desc {
		return -1
	}
	return 1
}

// WaitForDB pings until the database answers, backing off exponentially, for at most maxTries
// attempts or until ctx is done. The error carries the last ping failure.
func WaitForDB(ctx context.Context, ping func(ctx context.Context) error, maxTries uint) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = DBPingInterval
	b.MaxInterval = 20 * DBPingInterval

	var lastErr error
	_, err := backoff.Retry(ctx, func() (struct{}, error) {
		lastErr = ping(ctx)
		return struct{}{}, lastErr
	}, backoff.WithBackOff(b), backoff.WithMaxTries(maxTries))
	if err == nil {
		return nil
	}
	if lastErr != nil {
		err = lastErr
	}
	return errors.Wrap(err, "DB ping timeout")
}
