package utils

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"

	storage "github.com/supabase-community/storage-go"
)

// SupabaseStorage talks to one Supabase Storage bucket. Object paths are
// relative to the bucket, e.g. "documents/<id>.pdf".
type SupabaseStorage struct {
	URL    string
	Key    string
	Bucket string
}

// NewSupabaseStorageFromEnv reads SUPABASE_URL, SUPABASE_KEY and
// SUPABASE_BUCKET (default "uploads").
func NewSupabaseStorageFromEnv() *SupabaseStorage {
	bucket := os.Getenv("SUPABASE_BUCKET")
	if bucket == "" {
		bucket = "uploads"
	}
	return &SupabaseStorage{
		URL:    strings.TrimRight(os.Getenv("SUPABASE_URL"), "/"),
		Key:    os.Getenv("SUPABASE_KEY"),
		Bucket: bucket,
	}
}

// Upload stores data at the given path and returns the public URL.
func (s *SupabaseStorage) Upload(path string, data []byte, contentType string) (string, error) {
	client := storage.NewClient(s.URL+"/storage/v1", s.Key, nil)

	options := storage.FileOptions{
		ContentType: &contentType,
	}

	if _, err := client.UploadFile(s.Bucket, path, bytes.NewBuffer(data), options); err != nil {
		return "", err
	}

	return s.PublicURL(path), nil
}

// Download fetches the raw bytes of an object.
func (s *SupabaseStorage) Download(path string) ([]byte, error) {
	downloadURL := fmt.Sprintf("%s/storage/v1/object/%s/%s", s.URL, s.Bucket, path)

	req, err := http.NewRequest(http.MethodGet, downloadURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+s.Key)
	req.Header.Set("apikey", s.Key)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download failed: status=%d body=%s", resp.StatusCode, string(body))
	}
	return body, nil
}

// Remove deletes objects by path. Supabase answers 200 or 204 on success.
func (s *SupabaseStorage) Remove(paths []string) error {
	for _, path := range paths {
		deleteURL := fmt.Sprintf("%s/storage/v1/object/%s/%s", s.URL, s.Bucket, path)

		req, err := http.NewRequest(http.MethodDelete, deleteURL, nil)
		if err != nil {
			return err
		}
		req.Header.Set("Authorization", "Bearer "+s.Key)
		req.Header.Set("apikey", s.Key)

		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			return err
		}
		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()

		if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
			return fmt.Errorf("delete failed for %s: status=%d body=%s", path, resp.StatusCode, string(body))
		}
	}
	return nil
}

// PublicURL returns the public object URL for a path.
func (s *SupabaseStorage) PublicURL(path string) string {
	return fmt.Sprintf("%s/storage/v1/object/public/%s/%s", s.URL, s.Bucket, path)
}

// ObjectPathFromURL maps a public URL (or any URL containing
// "/storage/v1/object/") back to the object path under its bucket.
func ObjectPathFromURL(publicURL string) (string, error) {
	idx := strings.Index(publicURL, "/storage/v1/object/")
	if idx == -1 {
		return "", fmt.Errorf("no object path in URL: %s", publicURL)
	}

	rest := publicURL[idx+len("/storage/v1/object/"):]
	rest = strings.TrimPrefix(rest, "public/")

	// rest => "<bucket>/<path/to/object...>"
	parts := strings.SplitN(rest, "/", 2)
	if len(parts) < 2 {
		return "", fmt.Errorf("cannot parse bucket/object from URL: %s", publicURL)
	}
	object := parts[1]
	if qIdx := strings.Index(object, "?"); qIdx != -1 {
		object = object[:qIdx]
	}
	if u, err := url.PathUnescape(object); err == nil {
		object = u
	}
	return object, nil
}
