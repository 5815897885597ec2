package database

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cpgs-hub/backend/core"
)

func TestOpen_InMem(t *testing.T) {
	conf := &core.Config{Database: core.DatabaseConfig{Engine: core.EngineInMem}}
	store, err := Open(context.Background(), conf)
	require.NoError(t, err)

	assert.Equal(t, core.EngineInMem, store.Engine)
	assert.NotNil(t, store.Identities)
	assert.NotNil(t, store.Resources)
	assert.NotNil(t, store.Exams)
	assert.NotNil(t, store.Routines)
	assert.NotNil(t, store.Announcements)
	assert.NotNil(t, store.Configs)

	assert.Equal(t, ErrNoMigrations, store.Migrate(context.Background(), "up"))
	assert.NoError(t, store.Close(context.Background()))
	assert.NoError(t, store.Close(context.Background()), "closing twice is a no-op")
}

func TestOpen_UnknownEngine(t *testing.T) {
	conf := &core.Config{Database: core.DatabaseConfig{Engine: "sqlite"}}
	_, err := Open(context.Background(), conf)
	assert.EqualError(t, err, `unknown database engine "sqlite"`)
}
