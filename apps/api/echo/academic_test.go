package echoapi_test

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cpgs-hub/backend/core/announcement"
	"github.com/cpgs-hub/backend/core/exam"
	"github.com/cpgs-hub/backend/core/identity"
	"github.com/cpgs-hub/backend/core/routine"
)

func examBody(t *testing.T, subject string) []byte {
	return marchallObj(t, echo.Map{
		"semester": 5,
		"subject":  subject,
		"date":     "2026-11-20",
		"type":     "End-Sem",
		"branch":   "CSE",
	})
}

func Test_academicAPI_exams(t *testing.T) {
	f := setup(t, nil)
	owner := f.createIdentity(t, "Owner", "owner@example.com", identity.RoleUser)
	other := f.createIdentity(t, "Other", "other@example.com", identity.RoleUser)
	admin := f.createIdentity(t, "Admin", "admin@example.com", identity.RoleAdmin)
	ownerToken := f.token(t, owner)
	otherToken := f.token(t, other)

	// create
	rec := f.run(t, httpTest{method: http.MethodPost, path: "/api/exams", body: examBody(t, "Networks")})
	checkCodeAndData(t, httpTest{wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errNotAuthenticated)}, rec)

	rec = f.run(t, httpTest{method: http.MethodPost, path: "/api/exams", body: examBody(t, "Networks"), token: ownerToken})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var created struct {
		Exam exam.Exam `json:"exam"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.Equal(t, owner.ID, created.Exam.CreatedBy)
	assert.Equal(t, time.Date(2026, 11, 20, 0, 0, 0, 0, time.UTC), created.Exam.Date)

	orphan, err := f.store.Exams.CreateExam(context.Background(), exam.Exam{
		Semester: 5, Subject: "Compilers", Date: time.Date(2026, 11, 10, 0, 0, 0, 0, time.UTC), Type: exam.TypeMidSem, Branch: "CSE",
	})
	require.NoError(t, err)

	path := "/api/exams/" + created.Exam.ID
	tests := []httpTest{
		{
			name: "bad input", method: http.MethodPost, path: "/api/exams", token: ownerToken,
			body: marchallObj(t, echo.Map{"semester": 5, "subject": "X", "date": "soon", "type": "End-Sem", "branch": "CSE"}),
			wantCode: http.StatusBadRequest,
		},
		{
			name: "update by someone else", method: http.MethodPut, path: path, token: otherToken, body: examBody(t, "Hacked"),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, errForbidden),
		},
		{
			name: "delete by someone else", method: http.MethodDelete, path: path, token: otherToken,
			wantCode: http.StatusForbidden, wantData: marchallObj(t, errForbidden),
		},
		{name: "update by owner", method: http.MethodPut, path: path, token: ownerToken, body: examBody(t, "Computer Networks")},
		{
			name: "ownerless record is admin-only", method: http.MethodDelete, path: "/api/exams/" + orphan.ID, token: ownerToken,
			wantCode: http.StatusForbidden, wantData: marchallObj(t, errForbidden),
		},
		{
			name: "unknown", method: http.MethodDelete, path: "/api/exams/nope", token: ownerToken,
			wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "Exam not found"}),
		},
		{
			name: "delete by admin", method: http.MethodDelete, path: "/api/exams/" + orphan.ID, token: f.token(t, admin),
			wantData: marchallObj(t, echo.Map{"success": true}),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checkCodeAndData(t, tt, f.run(t, tt))
		})
	}

	got, err := f.store.Exams.GetExam(context.Background(), created.Exam.ID)
	require.NoError(t, err)
	assert.Equal(t, "Computer Networks", got.Subject)
	assert.Equal(t, owner.ID, got.CreatedBy)

	// list is public
	rec = f.run(t, httpTest{path: "/api/exams?semester=5&branch=CSE"})
	checkCodeAndData(t, httpTest{wantData: marchallObj(t, echo.Map{"success": true, "exams": []exam.Exam{got}})}, rec)
}

func Test_academicAPI_routines(t *testing.T) {
	f := setup(t, nil)
	usr := f.createIdentity(t, "Alice", "alice@example.com", identity.RoleUser)
	admin := f.createIdentity(t, "Rep", "cr@example.com", identity.RoleCR)
	adminToken := f.token(t, admin)

	body := marchallObj(t, echo.Map{
		"section":  "csa-1",
		"semester": 5,
		"schedule": []routine.Day{{Day: "Monday", Classes: []routine.Class{{Time: "09:00", Subject: "DBMS", Room: "101"}}}},
	})

	tests := []httpTest{
		{name: "no session", method: http.MethodPost, path: "/api/routines", body: body, wantCode: http.StatusUnauthorized},
		{name: "user session", method: http.MethodPost, path: "/api/routines", body: body, token: f.token(t, usr), wantCode: http.StatusForbidden},
		{
			name: "bad section", method: http.MethodPost, path: "/api/routines", token: adminToken,
			body:     marchallObj(t, echo.Map{"section": "A1", "semester": 5, "schedule": []routine.Day{{Day: "Monday"}}}),
			wantCode: http.StatusBadRequest,
		},
		{name: "ok", method: http.MethodPost, path: "/api/routines", body: body, token: adminToken, wantCode: http.StatusCreated},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checkCodeAndData(t, tt, f.run(t, tt))
		})
	}

	rec := f.run(t, httpTest{path: "/api/routines?section=CSA-1&semester=5"})
	require.Equal(t, http.StatusOK, rec.Code)
	var listed struct {
		Routines []routine.Routine `json:"routines"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &listed))
	require.Len(t, listed.Routines, 1)
	assert.Equal(t, "CSA-1", listed.Routines[0].Section)

	rec = f.run(t, httpTest{method: http.MethodDelete, path: "/api/routines/" + listed.Routines[0].ID, token: adminToken})
	checkCodeAndData(t, httpTest{wantData: marchallObj(t, echo.Map{"success": true})}, rec)
	rec = f.run(t, httpTest{method: http.MethodDelete, path: "/api/routines/" + listed.Routines[0].ID, token: adminToken})
	checkCodeAndData(t, httpTest{wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "Routine not found"})}, rec)
}

func Test_academicAPI_announcements(t *testing.T) {
	f := setup(t, nil)
	author := f.createIdentity(t, "Author", "author@example.com", identity.RoleUser)
	other := f.createIdentity(t, "Other", "other@example.com", identity.RoleUser)
	hod := f.createIdentity(t, "Head", "hod@example.com", identity.RoleHOD)

	body := marchallObj(t, echo.Map{
		"title":       "Holiday",
		"content":     "No classes on Friday",
		"attachments": []announcement.Attachment{{Type: "pdf", URL: "https://example.com/notice.pdf", Name: "notice.pdf"}},
	})
	rec := f.run(t, httpTest{method: http.MethodPost, path: "/api/announcements", body: body, token: f.token(t, author)})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var created announcement.Announcement
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.Equal(t, "Author", created.Author)
	assert.Equal(t, author.ID, created.AuthorID)

	path := "/api/announcements/" + created.ID
	tests := []httpTest{
		{
			name: "bad attachment", method: http.MethodPost, path: "/api/announcements", token: f.token(t, author),
			body:     marchallObj(t, echo.Map{"title": "T", "content": "C", "attachments": []echo.Map{{"type": "video", "url": "u", "name": "n"}}}),
			wantCode: http.StatusBadRequest,
		},
		{
			name: "edit by someone else", method: http.MethodPut, path: path, token: f.token(t, other),
			body:     marchallObj(t, echo.Map{"title": "Hacked", "content": "!"}),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, errForbidden),
		},
		{
			name: "edit by author", method: http.MethodPut, path: path, token: f.token(t, author),
			body: marchallObj(t, echo.Map{"title": "Holiday (updated)", "content": "No classes on Friday or Saturday"}),
		},
		{
			name: "unknown", method: http.MethodDelete, path: "/api/announcements/nope", token: f.token(t, hod),
			wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "Announcement not found"}),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checkCodeAndData(t, tt, f.run(t, tt))
		})
	}

	got, err := f.store.Announcements.GetAnnouncement(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Holiday (updated)", got.Title)
	assert.Empty(t, got.Attachments)

	rec = f.run(t, httpTest{path: "/api/announcements"})
	checkCodeAndData(t, httpTest{wantData: marchallObj(t, []announcement.Announcement{got})}, rec)

	rec = f.run(t, httpTest{method: http.MethodDelete, path: path, token: f.token(t, hod)})
	checkCodeAndData(t, httpTest{wantData: marchallObj(t, echo.Map{"success": true})}, rec)
}
