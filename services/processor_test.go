package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func documentRow(docID, userID uuid.UUID, storagePath, mimeType, status string) *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "user_id", "filename", "original_name", "mime_type",
		"size", "storage_path", "content", "status", "created_at", "updated_at",
	}).AddRow(
		docID.String(), userID.String(), "a/file.txt", "file.txt", mimeType,
		11, storagePath, nil, status, time.Now(), time.Now(),
	)
}

func TestProcessParsesAndPersistsContent(t *testing.T) {
	db, mock := newMockDB(t)
	storage := newFakeStorage()

	docID := uuid.New()
	userID := uuid.New()
	storage.objects["documents/a/file.txt"] = []byte("hello world")

	mock.ExpectQuery(`SELECT \* FROM "documents"`).
		WillReturnRows(documentRow(docID, userID, "documents/a/file.txt", MimeText, "uploaded"))
	mock.ExpectExec(`UPDATE "documents" SET`).
		WillReturnResult(sqlmock.NewResult(0, 1)) // -> processing
	mock.ExpectExec(`UPDATE "documents" SET`).
		WillReturnResult(sqlmock.NewResult(0, 1)) // -> processed + content

	processor := &DocumentProcessor{DB: db, Storage: storage}
	content, err := processor.Process(context.Background(), docID, userID)
	require.NoError(t, err)
	assert.Equal(t, "hello world", content)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestProcessDownloadFailureMarksError(t *testing.T) {
	db, mock := newMockDB(t)
	storage := newFakeStorage() // no object stored -> download fails

	docID := uuid.New()
	userID := uuid.New()

	mock.ExpectQuery(`SELECT \* FROM "documents"`).
		WillReturnRows(documentRow(docID, userID, "documents/gone.txt", MimeText, "uploaded"))
	mock.ExpectExec(`UPDATE "documents" SET`).
		WillReturnResult(sqlmock.NewResult(0, 1)) // -> processing
	mock.ExpectExec(`UPDATE "documents" SET`).
		WillReturnResult(sqlmock.NewResult(0, 1)) // -> error

	processor := &DocumentProcessor{DB: db, Storage: storage}
	content, err := processor.Process(context.Background(), docID, userID)
	assert.Empty(t, content)

	var downloadErr *DownloadError
	require.True(t, errors.As(err, &downloadErr))
	assert.Equal(t, "documents/gone.txt", downloadErr.Path)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestProcessParseFailureMarksError(t *testing.T) {
	db, mock := newMockDB(t)
	storage := newFakeStorage()

	docID := uuid.New()
	userID := uuid.New()
	storage.objects["documents/bad.pdf"] = []byte("not a pdf")

	mock.ExpectQuery(`SELECT \* FROM "documents"`).
		WillReturnRows(documentRow(docID, userID, "documents/bad.pdf", MimePDF, "uploaded"))
	mock.ExpectExec(`UPDATE "documents" SET`).
		WillReturnResult(sqlmock.NewResult(0, 1)) // -> processing
	mock.ExpectExec(`UPDATE "documents" SET`).
		WillReturnResult(sqlmock.NewResult(0, 1)) // -> error

	processor := &DocumentProcessor{DB: db, Storage: storage}
	_, err := processor.Process(context.Background(), docID, userID)

	var parseErr *ParseError
	require.True(t, errors.As(err, &parseErr))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestProcessDocumentNotFound(t *testing.T) {
	db, mock := newMockDB(t)
	storage := newFakeStorage()

	mock.ExpectQuery(`SELECT \* FROM "documents"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	processor := &DocumentProcessor{DB: db, Storage: storage}
	_, err := processor.Process(context.Background(), uuid.New(), uuid.New())
	assert.True(t, errors.Is(err, ErrDocumentNotFound))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestProcessStatusTransitionFailureDoesNotAbort(t *testing.T) {
	db, mock := newMockDB(t)
	storage := newFakeStorage()

	docID := uuid.New()
	userID := uuid.New()
	storage.objects["documents/a/file.txt"] = []byte("still parsed")

	mock.ExpectQuery(`SELECT \* FROM "documents"`).
		WillReturnRows(documentRow(docID, userID, "documents/a/file.txt", MimeText, "error"))
	mock.ExpectExec(`UPDATE "documents" SET`).
		WillReturnError(errors.New("connection reset")) // processing write lost
	mock.ExpectExec(`UPDATE "documents" SET`).
		WillReturnResult(sqlmock.NewResult(0, 1)) // final write still happens

	processor := &DocumentProcessor{DB: db, Storage: storage}
	content, err := processor.Process(context.Background(), docID, userID)
	require.NoError(t, err)
	assert.Equal(t, "still parsed", content)
	require.NoError(t, mock.ExpectationsWereMet())
}
