package controllers

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/doc2pod/doc2pod-backend/models"
	"github.com/doc2pod/doc2pod-backend/services"
)

type GeneratePodcastInput struct {
	DocumentIDs []uuid.UUID `json:"document_ids"`
	ProjectID   *uuid.UUID  `json:"project_id"`
	Name        string      `json:"name"`
	Description *string     `json:"description"`
}

type SynthesizeAudioInput struct {
	Voice        string  `json:"voice"`
	SpeakingRate float64 `json:"speaking_rate"`
}

// POST /api/podcasts/generate
// Creates the podcast row in status "processing" and starts script
// generation in the background. The 202 response returns before the LLM is
// called; clients poll GET /api/podcasts/:id/status.
func GeneratePodcast(c *gin.Context) {
	db := requestDB(c)
	storage := requestStorage(c)
	writer := requestScriptWriter(c)

	uid, ok := currentUserID(c)
	if !ok {
		return
	}

	var input GeneratePodcastInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if len(input.DocumentIDs) == 0 && input.ProjectID == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Either document_ids or project_id must be provided"})
		return
	}

	targetDocumentIDs := input.DocumentIDs
	if input.ProjectID != nil {
		var project models.Project
		if err := db.First(&project, "id = ? AND user_id = ?", input.ProjectID, uid).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Project not found"})
			return
		}

		var links []models.ProjectDocument
		if err := db.Where("project_id = ?", project.ID).Find(&links).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch project documents"})
			return
		}
		targetDocumentIDs = make([]uuid.UUID, 0, len(links))
		for _, link := range links {
			targetDocumentIDs = append(targetDocumentIDs, link.DocumentID)
		}
	}

	if len(targetDocumentIDs) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No documents found to generate podcast from"})
		return
	}

	name := input.Name
	if name == "" {
		name = fmt.Sprintf("Podcast %s", time.Now().Format("2006-01-02"))
	}

	podcast := models.Podcast{
		ID:          uuid.New(),
		UserID:      uid,
		ProjectID:   input.ProjectID,
		Name:        name,
		Description: trimmedOrNil(input.Description),
		Status:      models.PodcastStatusProcessing,
	}
	if err := db.Create(&podcast).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create podcast", "details": err.Error()})
		return
	}

	// Best effort: a missing link row does not block generation.
	links := make([]models.PodcastDocument, 0, len(targetDocumentIDs))
	for _, docID := range targetDocumentIDs {
		links = append(links, models.PodcastDocument{PodcastID: podcast.ID, DocumentID: docID})
	}
	if err := db.Create(&links).Error; err != nil {
		log.Printf("could not link documents to podcast %s: %v", podcast.ID, err)
	}

	generator := &services.ScriptGenerator{DB: db, Storage: storage, Writer: writer}
	opts := services.GenerateOptions{Name: name}
	if podcast.Description != nil {
		opts.Description = *podcast.Description
	}
	go func() {
		err := generator.Generate(context.Background(), podcast.ID, uid, targetDocumentIDs, opts)
		if err == nil {
			return
		}
		log.Printf("background podcast generation failed: %v", err)
		var cleaned *services.CleanedUpError
		if !errors.As(err, &cleaned) {
			generator.CleanupFailed(podcast.ID)
		}
	}()

	c.JSON(http.StatusAccepted, gin.H{
		"podcast": podcast,
		"message": "Podcast generation started. Check status endpoint for updates.",
	})
}

// GET /api/podcasts?status=&project_id=
func GetPodcasts(c *gin.Context) {
	db := requestDB(c)

	uid, ok := currentUserID(c)
	if !ok {
		return
	}

	query := db.Model(&models.Podcast{}).
		Where("user_id = ?", uid).
		Order("created_at DESC")

	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	if projectID := c.Query("project_id"); projectID != "" {
		query = query.Where("project_id = ?", projectID)
	}

	var podcasts []models.Podcast
	if err := query.Find(&podcasts).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch podcasts"})
		return
	}

	c.JSON(http.StatusOK, podcasts)
}

// GET /api/podcasts/:id
func GetPodcastDetail(c *gin.Context) {
	db := requestDB(c)

	uid, ok := currentUserID(c)
	if !ok {
		return
	}

	var podcast models.Podcast
	if err := db.First(&podcast, "id = ? AND user_id = ?", c.Param("id"), uid).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Podcast not found"})
		return
	}

	c.JSON(http.StatusOK, podcast)
}

// GET /api/podcasts/:id/status
// Lightweight poll target: reports progress without shipping the transcript.
func GetPodcastStatus(c *gin.Context) {
	db := requestDB(c)

	uid, ok := currentUserID(c)
	if !ok {
		return
	}

	var podcast models.Podcast
	if err := db.First(&podcast, "id = ? AND user_id = ?", c.Param("id"), uid).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Podcast not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":            podcast.ID,
		"status":        podcast.Status,
		"hasTranscript": podcast.Transcript != nil,
		"hasAudio":      podcast.AudioURL != nil,
		"duration":      podcast.Duration,
		"name":          podcast.Name,
		"created_at":    podcast.CreatedAt,
		"updated_at":    podcast.UpdatedAt,
	})
}

// POST /api/podcasts/:id/audio
// Starts text-to-speech rendering of a completed podcast's transcript.
func SynthesizePodcastAudio(c *gin.Context) {
	db := requestDB(c)
	storage := requestStorage(c)

	uid, ok := currentUserID(c)
	if !ok {
		return
	}

	var podcast models.Podcast
	if err := db.First(&podcast, "id = ? AND user_id = ?", c.Param("id"), uid).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Podcast not found"})
		return
	}
	if podcast.Transcript == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "Podcast has no transcript yet"})
		return
	}

	var input SynthesizeAudioInput
	_ = c.ShouldBindJSON(&input) // both fields optional
	if input.Voice == "" {
		input.Voice = services.DefaultVoice
	}
	if input.SpeakingRate <= 0 {
		input.SpeakingRate = 1.0
	}

	synthesizer := &services.AudioSynthesizer{DB: db, Storage: storage}
	go func() {
		if err := synthesizer.Synthesize(context.Background(), podcast.ID, uid, input.Voice, input.SpeakingRate); err != nil {
			log.Printf("background audio synthesis failed: %v", err)
		}
	}()

	c.JSON(http.StatusAccepted, gin.H{
		"message": "Audio synthesis started. Check status endpoint for updates.",
	})
}

// DELETE /api/podcasts/:id
func DeletePodcast(c *gin.Context) {
	db := requestDB(c)
	storage := requestStorage(c)

	uid, ok := currentUserID(c)
	if !ok {
		return
	}

	var podcast models.Podcast
	if err := db.First(&podcast, "id = ? AND user_id = ?", c.Param("id"), uid).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Podcast not found"})
		return
	}

	// Best effort: leftover audio is logged, not fatal.
	if podcast.AudioURL != nil {
		if path := services.AudioObjectPath(*podcast.AudioURL); path != "" {
			if err := storage.Remove([]string{path}); err != nil {
				log.Printf("could not remove audio for podcast %s: %v", podcast.ID, err)
			}
		}
	}

	if err := db.Delete(&models.PodcastDocument{}, "podcast_id = ?", podcast.ID).Error; err != nil {
		log.Printf("could not delete document links for podcast %s: %v", podcast.ID, err)
	}

	if err := db.Delete(&podcast).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete podcast"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}
