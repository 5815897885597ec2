package echoapi_test

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cpgs-hub/backend/core/identity"
	"github.com/cpgs-hub/backend/core/resource"
)

var samplePDF = []byte("%PDF-1.4\n1 0 obj <<>> endobj\ntrailer <<>>\n%%EOF\n")

// newUploadRequest builds a multipart upload; file is omitted when data is nil.
func newUploadRequest(t *testing.T, fields map[string]string, fileName, contentType string, data []byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	if data != nil {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", `form-data; name="file"; filename="`+fileName+`"`)
		h.Set("Content-Type", contentType)
		part, err := w.CreatePart(h)
		require.NoError(t, err)
		_, err = part.Write(data)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/upload", &body)
	req.Header.Set(echo.HeaderContentType, w.FormDataContentType())
	return req, httptest.NewRecorder()
}

func Test_resourceAPI_upload(t *testing.T) {
	f := setup(t, nil)
	fields := map[string]string{"type": "notes", "branch": "CSE", "semester": "5", "subject_name": "DBMS"}

	tests := []struct {
		name        string
		fields      map[string]string
		contentType string
		data        []byte
		wantCode    int
		wantData    []byte
	}{
		{name: "no file", fields: fields, wantCode: http.StatusBadRequest, wantData: marchallObj(t, httpErr{Error: "No file provided"})},
		{
			name: "declared as text", fields: fields, contentType: "text/plain", data: []byte("hello"),
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, httpErr{Error: "Only PDF files are allowed"}),
		},
		{
			name: "not really a PDF", fields: fields, contentType: resource.PDFContentType, data: []byte("hello"),
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, echo.Map{"file": "Only PDF files are allowed"}),
		},
		{
			name: "missing metadata", fields: map[string]string{"type": "slides"}, contentType: resource.PDFContentType, data: samplePDF,
			wantCode: http.StatusBadRequest,
		},
		{name: "ok", fields: fields, contentType: resource.PDFContentType, data: samplePDF, wantCode: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newUploadRequest(t, tt.fields, "dbms notes.pdf", tt.contentType, tt.data)
			f.app.ServeHTTP(rec, req)
			checkCodeAndData(t, httpTest{wantCode: tt.wantCode, wantData: tt.wantData}, rec)
		})
	}

	all, err := f.store.Resources.QueryResources(context.Background(), resource.QueryFilter{}, 0)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.False(t, all[0].IsApproved)
	assert.Equal(t, resource.Anonymous, all[0].UploadedBy)
	assert.Equal(t, "dbms notes.pdf", all[0].FileName)
}

func Test_resourceAPI_uploadBodyLimit(t *testing.T) {
	f := setup(t, nil)
	fields := map[string]string{"type": "notes", "branch": "CSE", "semester": "5", "subject_name": "DBMS"}
	wantData := marchallObj(t, httpErr{Error: http.StatusText(http.StatusRequestEntityTooLarge)})

	t.Run("declared length", func(t *testing.T) {
		req, rec := newUploadRequest(t, fields, "big.pdf", resource.PDFContentType, samplePDF)
		req.ContentLength = 64 << 20
		f.app.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{wantCode: http.StatusRequestEntityTooLarge, wantData: wantData}, rec)
	})

	t.Run("streamed body", func(t *testing.T) {
		big := append(append([]byte{}, samplePDF...), bytes.Repeat([]byte{'0'}, 12<<20)...)
		req, rec := newUploadRequest(t, fields, "big.pdf", resource.PDFContentType, big)
		req.ContentLength = -1
		f.app.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{wantCode: http.StatusRequestEntityTooLarge, wantData: wantData}, rec)
	})

	all, err := f.store.Resources.QueryResources(context.Background(), resource.QueryFilter{}, 0)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func Test_resourceAPI_moderation(t *testing.T) {
	f := setup(t, nil)
	admin := f.createIdentity(t, "Admin", "admin@example.com", identity.RoleAdmin)
	usr := f.createIdentity(t, "Alice", "alice@example.com", identity.RoleUser)
	adminToken := f.token(t, admin)

	now := time.Now().UTC().Truncate(time.Second)
	create := func(subject string, approved bool, age time.Duration) resource.Resource {
		res, err := f.store.Resources.CreateResource(context.Background(), resource.Resource{
			Type: resource.TypeNotes, Branch: "CSE", Semester: 5, SubjectName: subject,
			FileName: subject + ".pdf", FileData: samplePDF, UploadedBy: "Alice",
			IsApproved: approved, CreatedAt: now.Add(-age), UpdatedAt: now.Add(-age),
		})
		require.NoError(t, err)
		res.FileData = nil
		return res
	}
	pending := create("OS", false, time.Hour)
	approved := create("DBMS", true, 2*time.Hour)

	tests := []httpTest{
		{name: "no session", path: "/api/admin/resources", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errNotAuthenticated)},
		{name: "user session", path: "/api/admin/resources", token: f.token(t, usr), wantCode: http.StatusForbidden},
		{
			name: "all", path: "/api/admin/resources", token: adminToken,
			wantData: marchallObj(t, echo.Map{"success": true, "resources": []resource.Resource{pending, approved}}),
		},
		{
			name: "pending", path: "/api/admin/resources?status=pending", token: adminToken,
			wantData: marchallObj(t, echo.Map{"success": true, "resources": []resource.Resource{pending}}),
		},
		{
			name: "public listing shows approved only", path: "/api/resources?branch=CSE&semester=5",
			wantData: marchallObj(t, echo.Map{"success": true, "resources": []resource.Resource{approved}}),
		},
		{
			name: "approval needs a flag", method: http.MethodPatch, path: "/api/admin/resources", token: adminToken,
			body: marchallObj(t, echo.Map{"resourceId": pending.ID}), wantCode: http.StatusBadRequest,
		},
		{
			name: "approve unknown", method: http.MethodPatch, path: "/api/admin/resources", token: adminToken,
			body: marchallObj(t, echo.Map{"resourceId": "nope", "is_approved": true}), wantCode: http.StatusNotFound,
		},
		{
			name: "delete needs an id", method: http.MethodDelete, path: "/api/admin/resources", token: adminToken,
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, httpErr{Error: "Resource ID required"}),
		},
		{
			name: "delete", method: http.MethodDelete, path: "/api/admin/resources?id=" + approved.ID, token: adminToken,
			wantData: marchallObj(t, echo.Map{"success": true, "message": "Resource deleted"}),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checkCodeAndData(t, tt, f.run(t, tt))
		})
	}

	rec := f.run(t, httpTest{
		method: http.MethodPatch, path: "/api/admin/resources", token: adminToken,
		body: marchallObj(t, echo.Map{"resourceId": pending.ID, "is_approved": true}),
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var got struct {
		Resource resource.Resource `json:"resource"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.True(t, got.Resource.IsApproved)
	assert.NotContains(t, rec.Body.String(), "file_data")
}

func Test_resourceAPI_serveFile(t *testing.T) {
	f := setup(t, nil)
	res, err := f.store.Resources.CreateResource(context.Background(), resource.Resource{
		Type: resource.TypePYQ, Branch: "CSE", Semester: 3, SubjectName: "Maths",
		FileName: "maths 2024.pdf", FileData: samplePDF, UploadedBy: "Alice", CreatedAt: time.Now().UTC(),
	})
	require.NoError(t, err)

	req, rec := newRequest(http.MethodGet, "/api/file/"+res.ID)
	f.app.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, resource.PDFContentType, rec.Header().Get(echo.HeaderContentType))
	assert.Equal(t, `inline; filename="maths 2024.pdf"`, rec.Header().Get(echo.HeaderContentDisposition))
	assert.Equal(t, samplePDF, rec.Body.Bytes())

	req, rec = newRequest(http.MethodGet, "/api/file/nope")
	f.app.ServeHTTP(rec, req)
	checkCodeAndData(t, httpTest{wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "File not found"})}, rec)
}
