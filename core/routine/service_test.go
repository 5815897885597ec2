package routine_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	. "github.com/cpgs-hub/backend/core/routine"
	"github.com/cpgs-hub/backend/storage/database"
	"github.com/cpgs-hub/backend/testutil"
)

func schedule() []Day {
	return []Day{{Day: "Monday", Classes: []Class{{Time: "9:00", Subject: "DBMS", Room: "101"}}}}
}

func TestService(t *testing.T) {
	validate, _ := testutil.NewValidator()
	store := database.NewInMemStore()
	t.Cleanup(func() { _ = store.Close(context.Background()) })
	svc := NewService(store.Routines, validate)
	ctx := context.Background()

	tests := []struct {
		name    string
		nr      NewRoutine
		wantErr bool
	}{
		{name: "bad section", nr: NewRoutine{Section: "C-1", Semester: 5, Schedule: schedule()}, wantErr: true},
		{name: "no schedule", nr: NewRoutine{Section: "CSA-1", Semester: 5}, wantErr: true},
		{name: "class without room", nr: NewRoutine{Section: "CSA-1", Semester: 5, Schedule: []Day{
			{Day: "Monday", Classes: []Class{{Time: "9:00", Subject: "DBMS"}}},
		}}, wantErr: true},
		{name: "lower case section", nr: NewRoutine{Section: " csa-2 ", Semester: 5, Schedule: schedule()}},
		{name: "ok", nr: NewRoutine{Section: "CSA-1", Semester: 5, Schedule: schedule()}},
		{name: "other semester", nr: NewRoutine{Section: "CSA-1", Semester: 3, Schedule: schedule()}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(ctx, tt.nr)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
		})
	}

	sem5, err := svc.List(ctx, QueryFilter{Semester: 5})
	require.NoError(t, err)
	require.Len(t, sem5, 2)
	assert.Equal(t, "CSA-1", sem5[0].Section)
	assert.Equal(t, "CSA-2", sem5[1].Section)

	bySection, err := svc.List(ctx, QueryFilter{Section: "csa-1"})
	require.NoError(t, err)
	require.Len(t, bySection, 2)
	assert.Equal(t, 3, bySection[0].Semester)

	require.NoError(t, svc.Delete(ctx, bySection[0].ID))
	assert.Equal(t, ErrNotFound, svc.Delete(ctx, bySection[0].ID))
}
