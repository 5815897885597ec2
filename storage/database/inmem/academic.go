package inmemdb

import (
	"context"

	"github.com/cpgs-hub/backend/core/announcement"
	"github.com/cpgs-hub/backend/core/exam"
	"github.com/cpgs-hub/backend/core/routine"
)

// Exams

type examRepository struct {
	db *DB
}

var _ exam.Repository = (*examRepository)(nil) // interface compliance check

func NewExamRepository(db *DB) exam.Repository {
	return &examRepository{db: db}
}

func (repo *examRepository) CreateExam(_ context.Context, ex exam.Exam) (exam.Exam, error) {
	ex.ID = newID()
	repo.db.exams.put(ex.ID, ex)
	return ex, nil
}

func (repo *examRepository) GetExam(_ context.Context, id string) (exam.Exam, error) {
	if ex, ok := repo.db.exams.get(id); ok {
		return ex, nil
	}
	return exam.Exam{}, exam.ErrNotFound
}

func (repo *examRepository) QueryExams(_ context.Context, filter exam.QueryFilter) ([]exam.Exam, error) {
	return repo.db.exams.filter(
		func(ex exam.Exam) bool {
			return (filter.Semester == 0 || ex.Semester == filter.Semester) &&
				(filter.Branch == "" || ex.Branch == filter.Branch)
		},
		func(a, b exam.Exam) bool { return a.Date.Before(b.Date) },
	), nil
}

func (repo *examRepository) UpdateExam(_ context.Context, ex exam.Exam) (exam.Exam, error) {
	if !repo.db.exams.replace(ex.ID, ex) {
		return exam.Exam{}, exam.ErrNotFound
	}
	return ex, nil
}

func (repo *examRepository) DeleteExam(_ context.Context, id string) error {
	if !repo.db.exams.delete(id) {
		return exam.ErrNotFound
	}
	return nil
}

// Routines

type routineRepository struct {
	db *DB
}

var _ routine.Repository = (*routineRepository)(nil) // interface compliance check

func NewRoutineRepository(db *DB) routine.Repository {
	return &routineRepository{db: db}
}

func (repo *routineRepository) CreateRoutine(_ context.Context, r routine.Routine) (routine.Routine, error) {
	r.ID = newID()
	repo.db.routines.put(r.ID, r)
	return r, nil
}

func (repo *routineRepository) QueryRoutines(_ context.Context, filter routine.QueryFilter) ([]routine.Routine, error) {
	return repo.db.routines.filter(
		func(r routine.Routine) bool {
			return (filter.Section == "" || r.Section == filter.Section) &&
				(filter.Semester == 0 || r.Semester == filter.Semester)
		},
		func(a, b routine.Routine) bool {
			if a.Semester != b.Semester {
				return a.Semester < b.Semester
			}
			return a.Section < b.Section
		},
	), nil
}

func (repo *routineRepository) DeleteRoutine(_ context.Context, id string) error {
	if !repo.db.routines.delete(id) {
		return routine.ErrNotFound
	}
	return nil
}

// Announcements

type announcementRepository struct {
	db *DB
}

var _ announcement.Repository = (*announcementRepository)(nil) // interface compliance check

func NewAnnouncementRepository(db *DB) announcement.Repository {
	return &announcementRepository{db: db}
}

func (repo *announcementRepository) CreateAnnouncement(_ context.Context, a announcement.Announcement) (announcement.Announcement, error) {
	a.ID = newID()
	repo.db.announcements.put(a.ID, a)
	return a, nil
}

func (repo *announcementRepository) GetAnnouncement(_ context.Context, id string) (announcement.Announcement, error) {
	if a, ok := repo.db.announcements.get(id); ok {
		return a, nil
	}
	return announcement.Announcement{}, announcement.ErrNotFound
}

func (repo *announcementRepository) QueryAnnouncements(_ context.Context) ([]announcement.Announcement, error) {
	return repo.db.announcements.filter(nil, func(a, b announcement.Announcement) bool {
		return a.CreatedAt.After(b.CreatedAt)
	}), nil
}

func (repo *announcementRepository) UpdateAnnouncement(_ context.Context, a announcement.Announcement) (announcement.Announcement, error) {
	if !repo.db.announcements.replace(a.ID, a) {
		return announcement.Announcement{}, announcement.ErrNotFound
	}
	return a, nil
}

func (repo *announcementRepository) DeleteAnnouncement(_ context.Context, id string) error {
	if !repo.db.announcements.delete(id) {
		return announcement.ErrNotFound
	}
	return nil
}
