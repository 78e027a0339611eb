package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"os"
	"strings"

	texttospeech "cloud.google.com/go/texttospeech/apiv1"
	texttospeechpb "cloud.google.com/go/texttospeech/apiv1/texttospeechpb"
	"github.com/google/uuid"
	"google.golang.org/api/option"
	"gorm.io/gorm"

	"github.com/doc2pod/doc2pod-backend/models"
)

const DefaultVoice = "en-US-Chirp3-HD-Puck"

// AudioSynthesizer renders a completed podcast's transcript to MP3 audio,
// uploads it and records the audio URL plus the measured duration.
type AudioSynthesizer struct {
	DB      *gorm.DB
	Storage ObjectStorage
}

// Synthesize runs the audio job for one podcast. The podcast keeps its
// "completed" status throughout; audio is an optional add-on, so failures
// here leave the row intact.
func (a *AudioSynthesizer) Synthesize(ctx context.Context, podcastID, userID uuid.UUID, voice string, rate float64) error {
	db := a.DB.WithContext(ctx)

	var podcast models.Podcast
	if err := db.First(&podcast, "id = ? AND user_id = ?", podcastID, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrPodcastNotFound
		}
		return err
	}
	if podcast.Transcript == nil || strings.TrimSpace(*podcast.Transcript) == "" {
		return ErrNoTranscript
	}

	audio, err := SynthesizeText(ctx, *podcast.Transcript, voice, rate)
	if err != nil {
		return fmt.Errorf("failed to synthesize audio: %w", err)
	}

	seconds, err := MP3Duration(audio)
	if err != nil {
		log.Printf("podcast %s: could not measure audio duration: %v", podcastID, err)
		seconds = 0
	}

	objectPath := fmt.Sprintf("podcasts/%s.mp3", podcastID)
	audioURL, err := a.Storage.Upload(objectPath, audio, "audio/mpeg")
	if err != nil {
		return fmt.Errorf("failed to upload audio: %w", err)
	}

	updates := map[string]interface{}{"audio_url": audioURL}
	if seconds > 0 {
		updates["duration"] = int(math.Ceil(seconds))
	}
	if err := db.Model(&models.Podcast{}).Where("id = ?", podcastID).Updates(updates).Error; err != nil {
		return fmt.Errorf("failed to update podcast audio: %w", err)
	}

	log.Printf("podcast %s audio synthesized (%.0fs)", podcastID, seconds)
	return nil
}

// SynthesizeText converts text to MP3 bytes with Google Cloud TTS. The API
// caps each request at 5000 bytes of input, so the text is split on sentence
// boundaries and the audio chunks are concatenated.
func SynthesizeText(ctx context.Context, text string, voice string, rate float64) ([]byte, error) {
	if len(text) == 0 {
		return nil, errors.New("text is empty")
	}
	if voice == "" {
		voice = DefaultVoice
	}
	if rate <= 0 {
		rate = 1.0
	}

	credPath := os.Getenv("GOOGLE_CREDENTIALS_JSON")
	if credPath == "" {
		return nil, errors.New("GOOGLE_CREDENTIALS_JSON environment variable is not set")
	}

	client, err := texttospeech.NewClient(ctx, option.WithCredentialsFile(credPath))
	if err != nil {
		return nil, err
	}
	defer client.Close()

	chunks := splitTextToChunksByByte(text, 4500)
	var allAudio []byte

	for idx, chunk := range chunks {
		log.Printf("synthesizing chunk %d/%d: %d bytes", idx+1, len(chunks), len(chunk))

		req := &texttospeechpb.SynthesizeSpeechRequest{
			Input: &texttospeechpb.SynthesisInput{
				InputSource: &texttospeechpb.SynthesisInput_Text{
					Text: chunk,
				},
			},
			Voice: &texttospeechpb.VoiceSelectionParams{
				LanguageCode: languageCodeForVoice(voice),
				Name:         voice,
			},
			AudioConfig: &texttospeechpb.AudioConfig{
				AudioEncoding: texttospeechpb.AudioEncoding_MP3,
				SpeakingRate:  rate,
			},
		}

		resp, err := client.SynthesizeSpeech(ctx, req)
		if err != nil {
			return nil, err
		}
		allAudio = append(allAudio, resp.AudioContent...)
	}

	return allAudio, nil
}

// languageCodeForVoice derives the language code from a voice name like
// "en-US-Chirp3-HD-Puck".
func languageCodeForVoice(voice string) string {
	parts := strings.SplitN(voice, "-", 3)
	if len(parts) >= 2 {
		return parts[0] + "-" + parts[1]
	}
	return "en-US"
}

// splitTextToChunksByByte splits text under a byte limit, preferring to cut
// after sentence punctuation and never splitting a UTF-8 sequence.
func splitTextToChunksByByte(text string, maxBytes int) []string {
	var chunks []string
	remaining := text

	for len(remaining) > 0 {
		if len(remaining) <= maxBytes {
			chunks = append(chunks, remaining)
			break
		}

		cutPos := maxBytes
		for i := cutPos; i > 0; i-- {
			if remaining[i-1] == '.' || remaining[i-1] == '!' || remaining[i-1] == '?' || remaining[i-1] == '\n' {
				cutPos = i
				break
			}
		}

		for cutPos < len(remaining) && (remaining[cutPos]&0xC0) == 0x80 {
			cutPos++
		}

		chunks = append(chunks, remaining[:cutPos])
		remaining = remaining[cutPos:]
	}

	return chunks
}
