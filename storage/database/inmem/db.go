// Package inmemdb keeps every collection in process memory. Used by tests and local runs without a database.
package inmemdb

import (
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/cpgs-hub/backend/core/announcement"
	"github.com/cpgs-hub/backend/core/exam"
	"github.com/cpgs-hub/backend/core/identity"
	"github.com/cpgs-hub/backend/core/resource"
	"github.com/cpgs-hub/backend/core/routine"
	"github.com/cpgs-hub/backend/core/sysconfig"
)

// table is a mutex guarded map of rows keyed by ID.
type table[T any] struct {
	mutex sync.RWMutex
	rows  map[string]T
}

func newTable[T any]() *table[T] {
	return &table[T]{rows: make(map[string]T)}
}

func (t *table[T]) get(id string) (T, bool) {
	t.mutex.RLock()
	defer t.mutex.RUnlock()
	row, ok := t.rows[id]
	return row, ok
}

// filter returns the matching rows sorted with less.
func (t *table[T]) filter(match func(T) bool, less func(a, b T) bool) []T {
	t.mutex.RLock()
	defer t.mutex.RUnlock()

	rows := make([]T, 0, len(t.rows))
	for _, row := range t.rows {
		if match == nil || match(row) {
			rows = append(rows, row)
		}
	}
	if less != nil {
		sort.SliceStable(rows, func(i, j int) bool { return less(rows[i], rows[j]) })
	}
	return rows
}

func (t *table[T]) put(id string, row T) {
	t.mutex.Lock()
	defer t.mutex.Unlock()
	t.rows[id] = row
}

// replace stores row only if id exists.
func (t *table[T]) replace(id string, row T) bool {
	t.mutex.Lock()
	defer t.mutex.Unlock()
	if _, ok := t.rows[id]; !ok {
		return false
	}
	t.rows[id] = row
	return true
}

func (t *table[T]) delete(id string) bool {
	t.mutex.Lock()
	defer t.mutex.Unlock()
	if _, ok := t.rows[id]; !ok {
		return false
	}
	delete(t.rows, id)
	return true
}

func newID() string {
	return uuid.New().String()
}

// DB holds one table per collection.
type DB struct {
	identities    *table[identity.Identity]
	emailIndex    sync.Mutex // serializes identity writes to keep emails unique
	resources     *table[resource.Resource]
	exams         *table[exam.Exam]
	routines      *table[routine.Routine]
	announcements *table[announcement.Announcement]
	configs       *table[sysconfig.Entry] // keyed by Entry.Key
}

func Open() *DB {
	return &DB{
		identities:    newTable[identity.Identity](),
		resources:     newTable[resource.Resource](),
		exams:         newTable[exam.Exam](),
		routines:      newTable[routine.Routine](),
		announcements: newTable[announcement.Announcement](),
		configs:       newTable[sysconfig.Entry](),
	}
}

func (db *DB) Close() error { return nil }
