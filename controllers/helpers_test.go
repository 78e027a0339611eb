package controllers

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
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

type stubStorage struct{}

func (stubStorage) Upload(path string, data []byte, contentType string) (string, error) {
	return "https://storage.test/object/public/uploads/" + path, nil
}
func (stubStorage) Download(path string) ([]byte, error) { return nil, errors.New("not stored") }
func (stubStorage) Remove(paths []string) error          { return nil }
func (stubStorage) PublicURL(path string) string {
	return "https://storage.test/object/public/uploads/" + path
}

type stubWriter struct{}

func (stubWriter) WriteScript(_ context.Context, _, _ string) (string, error) {
	return "Host 1: Hello. Host 2: Hi.", nil
}

// newTestRouter wires the handlers with mocked collaborators and a fixed
// authenticated user, skipping the real token middleware.
func newTestRouter(db *gorm.DB, userID uuid.UUID) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("db", db)
		c.Set("storage", stubStorage{})
		c.Set("script_writer", stubWriter{})
		c.Set("user_id", userID.String())
		c.Next()
	})

	r.POST("/api/projects", CreateProject)
	r.GET("/api/projects", GetProjects)
	r.POST("/api/projects/:id/documents", SetProjectDocuments)
	r.POST("/api/documents/upload", UploadDocument)
	r.GET("/api/documents", GetDocuments)
	r.POST("/api/podcasts/generate", GeneratePodcast)
	r.GET("/api/podcasts/:id/status", GetPodcastStatus)

	return r
}
