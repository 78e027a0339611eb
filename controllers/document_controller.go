package controllers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gosimple/slug"

	"github.com/doc2pod/doc2pod-backend/models"
	"github.com/doc2pod/doc2pod-backend/services"
)

// POST /api/documents/upload
// Stores the file, creates the document row in status "uploaded" and kicks
// off parsing in the background. The response returns before parsing ends;
// clients observe progress by polling the document list.
func UploadDocument(c *gin.Context) {
	db := requestDB(c)
	storage := requestStorage(c)

	uid, ok := currentUserID(c)
	if !ok {
		return
	}

	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No file provided"})
		return
	}

	mimeType := file.Header.Get("Content-Type")
	if !services.IsSupportedFileType(mimeType) {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("Unsupported file type: %s", mimeType)})
		return
	}
	if file.Size > services.MaxFileSize {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("File size exceeds maximum of %dMB", services.MaxFileSize/1024/1024)})
		return
	}

	src, err := file.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not read file"})
		return
	}
	data, err := io.ReadAll(src)
	src.Close()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not read file"})
		return
	}

	ext := filepath.Ext(file.Filename)
	base := slug.Make(strings.TrimSuffix(file.Filename, ext))
	filename := fmt.Sprintf("%s/%d-%s%s", uid, time.Now().UnixMilli(), base, ext)
	storagePath := "documents/" + filename

	publicURL, err := storage.Upload(storagePath, data, mimeType)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to upload file", "details": err.Error()})
		return
	}

	doc := models.Document{
		ID:           uuid.New(),
		UserID:       uid,
		Filename:     filename,
		OriginalName: file.Filename,
		MimeType:     mimeType,
		Size:         file.Size,
		StoragePath:  storagePath,
		Status:       models.DocumentStatusUploaded,
	}
	if err := db.Create(&doc).Error; err != nil {
		// The row is the source of truth; drop the orphaned object.
		if rmErr := storage.Remove([]string{storagePath}); rmErr != nil {
			log.Printf("could not remove orphaned upload %s: %v", storagePath, rmErr)
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create document record", "details": err.Error()})
		return
	}

	processor := &services.DocumentProcessor{DB: db, Storage: storage}
	go func() {
		if _, err := processor.Process(context.Background(), doc.ID, uid); err != nil {
			log.Printf("background document processing failed: %v", err)
		}
	}()

	c.JSON(http.StatusCreated, gin.H{
		"document":    doc,
		"storage_url": publicURL,
	})
}

// GET /api/documents?status=&project_id=
func GetDocuments(c *gin.Context) {
	db := requestDB(c)

	uid, ok := currentUserID(c)
	if !ok {
		return
	}

	query := db.Model(&models.Document{}).
		Where("user_id = ?", uid).
		Order("created_at DESC")

	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	if projectID := c.Query("project_id"); projectID != "" {
		var links []models.ProjectDocument
		if err := db.Where("project_id = ?", projectID).Find(&links).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch project documents"})
			return
		}
		if len(links) == 0 {
			c.JSON(http.StatusOK, []models.Document{})
			return
		}
		ids := make([]uuid.UUID, 0, len(links))
		for _, link := range links {
			ids = append(ids, link.DocumentID)
		}
		query = query.Where("id IN ?", ids)
	}

	var documents []models.Document
	if err := query.Find(&documents).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch documents"})
		return
	}

	c.JSON(http.StatusOK, documents)
}

// POST /api/documents/:id/reprocess
// Re-runs download + parse for a document, overwriting prior content. Used
// when a document shows status "error" or no content. Runs in-request so the
// response can carry the fresh content.
func ReprocessDocument(c *gin.Context) {
	db := requestDB(c)
	storage := requestStorage(c)

	uid, ok := currentUserID(c)
	if !ok {
		return
	}

	docID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Document not found"})
		return
	}

	processor := &services.DocumentProcessor{DB: db, Storage: storage}
	content, err := processor.Process(c.Request.Context(), docID, uid)
	if err != nil {
		if errors.Is(err, services.ErrDocumentNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Document not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"content": content,
		"message": "Document reprocessed successfully.",
	})
}

// DELETE /api/documents/:id
func DeleteDocument(c *gin.Context) {
	db := requestDB(c)
	storage := requestStorage(c)

	uid, ok := currentUserID(c)
	if !ok {
		return
	}

	docID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Document not found"})
		return
	}

	var doc models.Document
	if err := db.First(&doc, "id = ? AND user_id = ?", docID, uid).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Document not found"})
		return
	}

	// Best effort: a stale object is preferable to a dangling row.
	if err := storage.Remove([]string{doc.StoragePath}); err != nil {
		log.Printf("could not remove stored file %s: %v", doc.StoragePath, err)
	}

	if err := db.Delete(&models.ProjectDocument{}, "document_id = ?", docID).Error; err != nil {
		log.Printf("could not delete project links for document %s: %v", docID, err)
	}
	if err := db.Delete(&models.PodcastDocument{}, "document_id = ?", docID).Error; err != nil {
		log.Printf("could not delete podcast links for document %s: %v", docID, err)
	}

	if err := db.Delete(&doc).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete document"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}
