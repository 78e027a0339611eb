package services

import (
	"context"
	"errors"
	"log"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/doc2pod/doc2pod-backend/models"
)

// DocumentProcessor drives a single document through download and parsing,
// recording status transitions on the row as it goes.
type DocumentProcessor struct {
	DB      *gorm.DB
	Storage ObjectStorage
}

// Process downloads the document's stored bytes, parses them and persists
// the extracted content with status "processed". Any failure after the
// document is found persists status "error" (content untouched) before the
// error is returned.
//
// Safe to invoke repeatedly on the same document: each run fully
// re-downloads and re-parses, overwriting prior content. There is no
// locking; concurrent runs race on the final write and the last one wins.
func (p *DocumentProcessor) Process(ctx context.Context, documentID, userID uuid.UUID) (string, error) {
	db := p.DB.WithContext(ctx)

	var doc models.Document
	if err := db.First(&doc, "id = ? AND user_id = ?", documentID, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrDocumentNotFound
		}
		return "", err
	}

	// Best effort: the job proceeds even if this transition does not stick.
	if err := db.Model(&doc).Updates(map[string]interface{}{
		"status": models.DocumentStatusProcessing,
	}).Error; err != nil {
		log.Printf("document %s: could not mark processing: %v", documentID, err)
	}

	content, err := p.downloadAndParse(&doc)
	if err != nil {
		if dbErr := db.Model(&doc).Updates(map[string]interface{}{
			"status": models.DocumentStatusError,
		}).Error; dbErr != nil {
			log.Printf("document %s: could not mark error: %v", documentID, dbErr)
		}
		return "", err
	}

	if err := db.Model(&doc).Updates(map[string]interface{}{
		"content": content,
		"status":  models.DocumentStatusProcessed,
	}).Error; err != nil {
		if dbErr := db.Model(&doc).Updates(map[string]interface{}{
			"status": models.DocumentStatusError,
		}).Error; dbErr != nil {
			log.Printf("document %s: could not mark error: %v", documentID, dbErr)
		}
		return "", err
	}

	return content, nil
}

func (p *DocumentProcessor) downloadAndParse(doc *models.Document) (string, error) {
	data, err := p.Storage.Download(doc.StoragePath)
	if err != nil {
		return "", &DownloadError{Path: doc.StoragePath, Err: err}
	}

	parsed, err := ParseFile(data, doc.MimeType, doc.OriginalName)
	if err != nil {
		return "", err
	}
	return parsed.Text, nil
}
