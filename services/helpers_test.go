package services

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{
		Conn:                 sqlDB,
		PreferSimpleProtocol: true,
	}), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	return db, mock
}

// fakeStorage is an in-memory ObjectStorage double.
type fakeStorage struct {
	objects map[string][]byte
	removed []string

	downloadErr error
	uploadErr   error
	removeErr   error
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{objects: map[string][]byte{}}
}

func (f *fakeStorage) Upload(path string, data []byte, contentType string) (string, error) {
	if f.uploadErr != nil {
		return "", f.uploadErr
	}
	f.objects[path] = data
	return f.PublicURL(path), nil
}

func (f *fakeStorage) Download(path string) ([]byte, error) {
	if f.downloadErr != nil {
		return nil, f.downloadErr
	}
	data, ok := f.objects[path]
	if !ok {
		return nil, errors.New("object not found")
	}
	return data, nil
}

func (f *fakeStorage) Remove(paths []string) error {
	if f.removeErr != nil {
		return f.removeErr
	}
	for _, path := range paths {
		delete(f.objects, path)
		f.removed = append(f.removed, path)
	}
	return nil
}

func (f *fakeStorage) PublicURL(path string) string {
	return "https://storage.test/object/public/uploads/" + path
}

// fakeWriter is a ScriptWriter double that records the prompts it was given.
type fakeWriter struct {
	transcript string
	err        error

	systemPrompt string
	userPrompt   string
}

func (f *fakeWriter) WriteScript(_ context.Context, systemPrompt, userPrompt string) (string, error) {
	f.systemPrompt = systemPrompt
	f.userPrompt = userPrompt
	if f.err != nil {
		return "", f.err
	}
	return f.transcript, nil
}
