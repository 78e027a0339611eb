package services

import (
	"context"
	"fmt"
	"log"
	"math"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/doc2pod/doc2pod-backend/models"
)

const (
	// MaxInputChars bounds the combined source text sent to the completion
	// service (roughly 100k tokens at ~4 chars per token).
	MaxInputChars = 400000

	// TruncationMarker is appended whenever the combined text is cut.
	TruncationMarker = "\n\n[Content truncated due to length]"

	// DocumentSeparator sits between the texts of consecutive documents.
	DocumentSeparator = "\n\n---\n\n"

	// WordsPerMinute is the speaking rate used to estimate duration.
	WordsPerMinute = 150
)

const scriptSystemPrompt = `You are a talented podcast script writer. Your job is to convert document content into an engaging, conversational podcast script that feels natural and easy to listen to.

Guidelines:
- Create a script suitable for a podcast conversation between two hosts
- Make it engaging, clear, and easy to follow
- Break down complex topics into digestible segments
- Use natural dialogue markers (e.g., "Host 1:", "Host 2:")
- Include transitions and natural flow
- Maintain accuracy to the original content
- Keep a conversational, friendly tone
- Structure the content logically with clear sections
- The script should be ready to be read aloud by text-to-speech

Format the output as a clean transcript with clear speaker labels and natural dialogue.`

// ScriptWriter is the completion-service surface the generator needs.
type ScriptWriter interface {
	WriteScript(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// ScriptGenerator turns the parsed text of one or more documents into a
// podcast transcript and records the result on the podcast row.
type ScriptGenerator struct {
	DB      *gorm.DB
	Storage ObjectStorage
	Writer  ScriptWriter
}

// GenerateOptions carries the optional podcast name and description that get
// embedded in the prompt.
type GenerateOptions struct {
	Name        string
	Description string
}

// Generate aggregates the processed documents among documentIDs, asks the
// completion service for a two-host script, estimates the spoken duration
// and persists transcript + duration + status "completed".
//
// On any failure the partial side effects are removed (audio object, links,
// podcast row — each best-effort) and the error comes back wrapped in
// CleanedUpError so the caller does not clean up a second time.
func (g *ScriptGenerator) Generate(ctx context.Context, podcastID, userID uuid.UUID, documentIDs []uuid.UUID, opts GenerateOptions) error {
	db := g.DB.WithContext(ctx)

	var docs []models.Document
	if err := db.
		Where("id IN ? AND user_id = ? AND status = ?", documentIDs, userID, models.DocumentStatusProcessed).
		Find(&docs).Error; err != nil {
		return g.failed(podcastID, fmt.Errorf("failed to fetch documents: %w", err))
	}
	if len(docs) == 0 {
		return g.failed(podcastID, ErrNoContent)
	}

	// Concatenate in the requested order so repeated runs over the same
	// documents produce the same prompt.
	docs = sortByRequestedOrder(docs, documentIDs)

	texts := make([]string, 0, len(docs))
	for _, doc := range docs {
		if doc.Content != nil {
			texts = append(texts, *doc.Content)
		}
	}
	combined := TruncateText(strings.TrimSpace(strings.Join(texts, DocumentSeparator)), MaxInputChars)

	userPrompt := buildUserPrompt(combined, len(docs), opts)

	transcript, err := g.Writer.WriteScript(ctx, scriptSystemPrompt, userPrompt)
	if err != nil {
		return g.failed(podcastID, fmt.Errorf("failed to generate podcast script: %w", err))
	}
	if strings.TrimSpace(transcript) == "" {
		return g.failed(podcastID, ErrEmptyCompletion)
	}

	duration := EstimateDuration(transcript)

	if err := db.Model(&models.Podcast{}).
		Where("id = ?", podcastID).
		Updates(map[string]interface{}{
			"transcript": transcript,
			"duration":   duration,
			"status":     models.PodcastStatusCompleted,
		}).Error; err != nil {
		return g.failed(podcastID, fmt.Errorf("failed to update podcast: %w", err))
	}

	log.Printf("podcast %s generated successfully", podcastID)
	return nil
}

func (g *ScriptGenerator) failed(podcastID uuid.UUID, err error) error {
	g.CleanupFailed(podcastID)
	return &CleanedUpError{Err: err}
}

// CleanupFailed removes everything a failed generation may have left behind:
// the stored audio object, the podcast_documents links and the podcast row
// itself. Each sub-step is independent; a failure in one is logged and does
// not block the next.
func (g *ScriptGenerator) CleanupFailed(podcastID uuid.UUID) {
	var podcast models.Podcast
	if err := g.DB.Select("audio_url").First(&podcast, "id = ?", podcastID).Error; err != nil {
		log.Printf("podcast %s cleanup: could not fetch audio url: %v", podcastID, err)
	} else if podcast.AudioURL != nil {
		if path := AudioObjectPath(*podcast.AudioURL); path != "" {
			if err := g.Storage.Remove([]string{path}); err != nil {
				log.Printf("podcast %s cleanup: could not remove audio: %v", podcastID, err)
			}
		}
	}

	if err := g.DB.Delete(&models.PodcastDocument{}, "podcast_id = ?", podcastID).Error; err != nil {
		log.Printf("podcast %s cleanup: could not delete document links: %v", podcastID, err)
	}

	if err := g.DB.Delete(&models.Podcast{}, "id = ?", podcastID).Error; err != nil {
		log.Printf("podcast %s cleanup: could not delete podcast: %v", podcastID, err)
	}
}

// AudioObjectPath maps a stored audio public URL back to its object path
// under the bucket ("podcasts/<filename>"). Returns "" when the URL has no
// usable filename.
func AudioObjectPath(audioURL string) string {
	parts := strings.Split(audioURL, "/")
	filename := parts[len(parts)-1]
	if idx := strings.Index(filename, "?"); idx != -1 {
		filename = filename[:idx]
	}
	if filename == "" {
		return ""
	}
	return "podcasts/" + filename
}

// TruncateText cuts text to at most max characters, appending the truncation
// marker when a cut happens.
func TruncateText(text string, max int) string {
	if len(text) <= max {
		return text
	}
	return text[:max] + TruncationMarker
}

// EstimateDuration estimates the spoken length of a transcript in seconds at
// the fixed speaking rate.
func EstimateDuration(transcript string) int {
	words := len(strings.Fields(transcript))
	return int(math.Ceil(float64(words) / WordsPerMinute * 60))
}

func buildUserPrompt(text string, docCount int, opts GenerateOptions) string {
	plural := ""
	if docCount > 1 {
		plural = "s"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Convert the following document%s into a podcast script:\n\n", plural)
	if opts.Name != "" {
		fmt.Fprintf(&b, "Title: %s\n", opts.Name)
	}
	if opts.Description != "" {
		fmt.Fprintf(&b, "Context: %s\n\n", opts.Description)
	}
	b.WriteString("\n")
	b.WriteString(text)
	b.WriteString("\n\nPlease create an engaging podcast script that captures the key points and makes them accessible and interesting for listeners.")
	return b.String()
}

func sortByRequestedOrder(docs []models.Document, order []uuid.UUID) []models.Document {
	byID := make(map[uuid.UUID]models.Document, len(docs))
	for _, doc := range docs {
		byID[doc.ID] = doc
	}
	sorted := make([]models.Document, 0, len(docs))
	for _, id := range order {
		if doc, ok := byID[id]; ok {
			sorted = append(sorted, doc)
		}
	}
	return sorted
}
