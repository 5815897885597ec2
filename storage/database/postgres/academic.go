package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/pkg/errors"

	"github.com/cpgs-hub/backend/core"
	"github.com/cpgs-hub/backend/core/announcement"
	"github.com/cpgs-hub/backend/core/exam"
	"github.com/cpgs-hub/backend/core/routine"
)

// exams

const examColumns = "id, semester, subject, date, type, branch, time, venue, is_notice, image_url, created_by, created_at, updated_at"

type examRow struct {
	ID        string    `db:"id"`
	Semester  int       `db:"semester"`
	Subject   string    `db:"subject"`
	Date      time.Time `db:"date"`
	Type      string    `db:"type"`
	Branch    string    `db:"branch"`
	Time      string    `db:"time"`
	Venue     string    `db:"venue"`
	IsNotice  bool      `db:"is_notice"`
	ImageURL  string    `db:"image_url"`
	CreatedBy string    `db:"created_by"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

func toExamRow(ex exam.Exam) examRow {
	return examRow{
		ID:        ex.ID,
		Semester:  ex.Semester,
		Subject:   ex.Subject,
		Date:      ex.Date.UTC(),
		Type:      string(ex.Type),
		Branch:    ex.Branch,
		Time:      ex.Time,
		Venue:     ex.Venue,
		IsNotice:  ex.IsNotice,
		ImageURL:  ex.ImageURL,
		CreatedBy: ex.CreatedBy,
		CreatedAt: ex.CreatedAt.UTC(),
		UpdatedAt: ex.UpdatedAt.UTC(),
	}
}

func (row examRow) exam() exam.Exam {
	return exam.Exam{
		ID:        row.ID,
		Semester:  row.Semester,
		Subject:   row.Subject,
		Date:      row.Date.UTC(),
		Type:      exam.Type(row.Type),
		Branch:    row.Branch,
		Time:      row.Time,
		Venue:     row.Venue,
		IsNotice:  row.IsNotice,
		ImageURL:  row.ImageURL,
		CreatedBy: row.CreatedBy,
		CreatedAt: row.CreatedAt.UTC(),
		UpdatedAt: row.UpdatedAt.UTC(),
	}
}

type examRepository struct {
	db *DB
}

var _ exam.Repository = (*examRepository)(nil) // interface compliance check

func NewExamRepository(db *DB) exam.Repository {
	return &examRepository{db: db}
}

func (repo *examRepository) CreateExam(ctx context.Context, ex exam.Exam) (exam.Exam, error) {
	ex.ID = newID()
	q := "INSERT INTO exams (" + examColumns + ") VALUES (:id, :semester, :subject, :date, :type, :branch, " +
		":time, :venue, :is_notice, :image_url, :created_by, :created_at, :updated_at)"
	row := toExamRow(ex)
	if _, err := repo.db.NamedExecContext(ctx, q, row); err != nil {
		return exam.Exam{}, errors.Wrap(err, "inserting exam")
	}
	return row.exam(), nil
}

func (repo *examRepository) GetExam(ctx context.Context, id string) (exam.Exam, error) {
	var row examRow
	if err := repo.db.GetContext(ctx, &row, "SELECT "+examColumns+" FROM exams WHERE id = $1", id); err != nil {
		if err == sql.ErrNoRows {
			return exam.Exam{}, exam.ErrNotFound
		}
		return exam.Exam{}, errors.Wrap(err, "getting exam")
	}
	return row.exam(), nil
}

func (repo *examRepository) QueryExams(ctx context.Context, filter exam.QueryFilter) ([]exam.Exam, error) {
	var w where
	if filter.Semester != 0 {
		w.add("semester = ?", filter.Semester)
	}
	if filter.Branch != "" {
		w.add("branch = ?", filter.Branch)
	}

	var rows []examRow
	q := "SELECT " + examColumns + " FROM exams" + w.String() + orderBy(core.Ordering{Field: "date"})
	if err := repo.db.SelectContext(ctx, &rows, q, w.args...); err != nil {
		return nil, errors.Wrap(err, "querying exams")
	}
	exams := make([]exam.Exam, 0, len(rows))
	for _, row := range rows {
		exams = append(exams, row.exam())
	}
	return exams, nil
}

func (repo *examRepository) UpdateExam(ctx context.Context, ex exam.Exam) (exam.Exam, error) {
	q := "UPDATE exams SET semester = :semester, subject = :subject, date = :date, type = :type, branch = :branch, " +
		"time = :time, venue = :venue, is_notice = :is_notice, image_url = :image_url, updated_at = :updated_at WHERE id = :id"
	row := toExamRow(ex)
	res, err := repo.db.NamedExecContext(ctx, q, row)
	if err != nil {
		return exam.Exam{}, errors.Wrap(err, "updating exam")
	}
	if err = checkAffected(res.RowsAffected, exam.ErrNotFound); err != nil {
		return exam.Exam{}, err
	}
	return row.exam(), nil
}

func (repo *examRepository) DeleteExam(ctx context.Context, id string) error {
	return deleteByID(ctx, repo.db, "exams", id, exam.ErrNotFound)
}

// routines

const routineColumns = "id, section, semester, schedule, created_at, updated_at"

type routineRow struct {
	ID        string               `db:"id"`
	Section   string               `db:"section"`
	Semester  int                  `db:"semester"`
	Schedule  jsonb[[]routine.Day] `db:"schedule"`
	CreatedAt time.Time            `db:"created_at"`
	UpdatedAt time.Time            `db:"updated_at"`
}

func (row routineRow) routine() routine.Routine {
	schedule := row.Schedule.V
	if schedule == nil {
		schedule = []routine.Day{}
	}
	return routine.Routine{
		ID:        row.ID,
		Section:   row.Section,
		Semester:  row.Semester,
		Schedule:  schedule,
		CreatedAt: row.CreatedAt.UTC(),
		UpdatedAt: row.UpdatedAt.UTC(),
	}
}

type routineRepository struct {
	db *DB
}

var _ routine.Repository = (*routineRepository)(nil) // interface compliance check

func NewRoutineRepository(db *DB) routine.Repository {
	return &routineRepository{db: db}
}

func (repo *routineRepository) CreateRoutine(ctx context.Context, r routine.Routine) (routine.Routine, error) {
	row := routineRow{
		ID:        newID(),
		Section:   r.Section,
		Semester:  r.Semester,
		Schedule:  jsonb[[]routine.Day]{V: r.Schedule},
		CreatedAt: r.CreatedAt.UTC(),
		UpdatedAt: r.UpdatedAt.UTC(),
	}
	q := "INSERT INTO routines (" + routineColumns + ") VALUES (:id, :section, :semester, :schedule, :created_at, :updated_at)"
	if _, err := repo.db.NamedExecContext(ctx, q, row); err != nil {
		return routine.Routine{}, errors.Wrap(err, "inserting routine")
	}
	return row.routine(), nil
}

func (repo *routineRepository) QueryRoutines(ctx context.Context, filter routine.QueryFilter) ([]routine.Routine, error) {
	var w where
	if filter.Section != "" {
		w.add("section = ?", filter.Section)
	}
	if filter.Semester != 0 {
		w.add("semester = ?", filter.Semester)
	}

	var rows []routineRow
	q := "SELECT " + routineColumns + " FROM routines" + w.String() +
		orderBy(core.Ordering{Field: "semester"}, core.Ordering{Field: "section"})
	if err := repo.db.SelectContext(ctx, &rows, q, w.args...); err != nil {
		return nil, errors.Wrap(err, "querying routines")
	}
	routines := make([]routine.Routine, 0, len(rows))
	for _, row := range rows {
		routines = append(routines, row.routine())
	}
	return routines, nil
}

func (repo *routineRepository) DeleteRoutine(ctx context.Context, id string) error {
	return deleteByID(ctx, repo.db, "routines", id, routine.ErrNotFound)
}

// announcements

const announcementColumns = "id, title, content, attachments, author, author_id, created_at, updated_at"

type announcementRow struct {
	ID          string                           `db:"id"`
	Title       string                           `db:"title"`
	Content     string                           `db:"content"`
	Attachments jsonb[[]announcement.Attachment] `db:"attachments"`
	Author      string                           `db:"author"`
	AuthorID    string                           `db:"author_id"`
	CreatedAt   time.Time                        `db:"created_at"`
	UpdatedAt   time.Time                        `db:"updated_at"`
}

func toAnnouncementRow(a announcement.Announcement) announcementRow {
	return announcementRow{
		ID:          a.ID,
		Title:       a.Title,
		Content:     a.Content,
		Attachments: jsonb[[]announcement.Attachment]{V: a.Attachments},
		Author:      a.Author,
		AuthorID:    a.AuthorID,
		CreatedAt:   a.CreatedAt.UTC(),
		UpdatedAt:   a.UpdatedAt.UTC(),
	}
}

func (row announcementRow) announcement() announcement.Announcement {
	attachments := row.Attachments.V
	if attachments == nil {
		attachments = []announcement.Attachment{}
	}
	return announcement.Announcement{
		ID:          row.ID,
		Title:       row.Title,
		Content:     row.Content,
		Attachments: attachments,
		Author:      row.Author,
		AuthorID:    row.AuthorID,
		CreatedAt:   row.CreatedAt.UTC(),
		UpdatedAt:   row.UpdatedAt.UTC(),
	}
}

type announcementRepository struct {
	db *DB
}

var _ announcement.Repository = (*announcementRepository)(nil) // interface compliance check

func NewAnnouncementRepository(db *DB) announcement.Repository {
	return &announcementRepository{db: db}
}

func (repo *announcementRepository) CreateAnnouncement(ctx context.Context, a announcement.Announcement) (announcement.Announcement, error) {
	a.ID = newID()
	row := toAnnouncementRow(a)
	q := "INSERT INTO announcements (" + announcementColumns + ") VALUES " +
		"(:id, :title, :content, :attachments, :author, :author_id, :created_at, :updated_at)"
	if _, err := repo.db.NamedExecContext(ctx, q, row); err != nil {
		return announcement.Announcement{}, errors.Wrap(err, "inserting announcement")
	}
	return row.announcement(), nil
}

func (repo *announcementRepository) GetAnnouncement(ctx context.Context, id string) (announcement.Announcement, error) {
	var row announcementRow
	q := "SELECT " + announcementColumns + " FROM announcements WHERE id = $1"
	if err := repo.db.GetContext(ctx, &row, q, id); err != nil {
		if err == sql.ErrNoRows {
			return announcement.Announcement{}, announcement.ErrNotFound
		}
		return announcement.Announcement{}, errors.Wrap(err, "getting announcement")
	}
	return row.announcement(), nil
}

func (repo *announcementRepository) QueryAnnouncements(ctx context.Context) ([]announcement.Announcement, error) {
	var rows []announcementRow
	q := "SELECT " + announcementColumns + " FROM announcements" + orderBy(core.Ordering{Field: "created_at", Desc: true})
	if err := repo.db.SelectContext(ctx, &rows, q); err != nil {
		return nil, errors.Wrap(err, "querying announcements")
	}
	list := make([]announcement.Announcement, 0, len(rows))
	for _, row := range rows {
		list = append(list, row.announcement())
	}
	return list, nil
}

func (repo *announcementRepository) UpdateAnnouncement(ctx context.Context, a announcement.Announcement) (announcement.Announcement, error) {
	row := toAnnouncementRow(a)
	q := "UPDATE announcements SET title = :title, content = :content, attachments = :attachments, " +
		"author = :author, updated_at = :updated_at WHERE id = :id"
	res, err := repo.db.NamedExecContext(ctx, q, row)
	if err != nil {
		return announcement.Announcement{}, errors.Wrap(err, "updating announcement")
	}
	if err = checkAffected(res.RowsAffected, announcement.ErrNotFound); err != nil {
		return announcement.Announcement{}, err
	}
	return row.announcement(), nil
}

func (repo *announcementRepository) DeleteAnnouncement(ctx context.Context, id string) error {
	return deleteByID(ctx, repo.db, "announcements", id, announcement.ErrNotFound)
}
