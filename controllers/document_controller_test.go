package controllers

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func multipartUpload(t *testing.T, filename, contentType string, data []byte) (*bytes.Buffer, string) {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition", `form-data; name="file"; filename="`+filename+`"`)
	header.Set("Content-Type", contentType)
	part, err := writer.CreatePart(header)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	return body, writer.FormDataContentType()
}

func TestUploadDocumentRejectsMissingFile(t *testing.T) {
	db, _ := newMockDB(t)
	router := newTestRouter(db, uuid.New())

	req := httptest.NewRequest(http.MethodPost, "/api/documents/upload", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	assert.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Contains(t, resp.Body.String(), "No file provided")
}

func TestUploadDocumentRejectsUnsupportedType(t *testing.T) {
	db, _ := newMockDB(t)
	router := newTestRouter(db, uuid.New())

	body, contentType := multipartUpload(t, "photo.png", "image/png", []byte{0x89, 0x50})
	req := httptest.NewRequest(http.MethodPost, "/api/documents/upload", body)
	req.Header.Set("Content-Type", contentType)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	assert.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Contains(t, resp.Body.String(), "Unsupported file type: image/png")
}

func TestGetDocumentsEmptyProjectShortCircuits(t *testing.T) {
	db, mock := newMockDB(t)
	router := newTestRouter(db, uuid.New())

	// No link rows means no document query at all.
	mock.ExpectQuery(`SELECT \* FROM "project_documents"`).
		WillReturnRows(sqlmock.NewRows([]string{"project_id", "document_id"}))

	req := httptest.NewRequest(http.MethodGet, "/api/documents?project_id="+uuid.NewString(), nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "[]", resp.Body.String())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetDocumentsFiltersByStatus(t *testing.T) {
	db, mock := newMockDB(t)
	userID := uuid.New()
	docID := uuid.New()
	router := newTestRouter(db, userID)

	mock.ExpectQuery(`SELECT \* FROM "documents"`).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "user_id", "filename", "original_name", "mime_type", "size",
			"storage_path", "status", "content", "created_at", "updated_at",
		}).AddRow(docID.String(), userID.String(), "u1/1-notes.txt", "notes.txt",
			"text/plain", 12, "documents/u1/1-notes.txt", "processed", "hello", time.Now(), time.Now()))

	req := httptest.NewRequest(http.MethodGet, "/api/documents?status=processed", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var docs []map[string]interface{}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &docs))
	require.Len(t, docs, 1)
	assert.Equal(t, docID.String(), docs[0]["id"])
	assert.Equal(t, "processed", docs[0]["status"])
	require.NoError(t, mock.ExpectationsWereMet())
}
