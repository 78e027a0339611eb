package services

// ObjectStorage is the blob-store surface the jobs need. Paths are relative
// to the storage bucket, e.g. "documents/<id>.pdf" or "podcasts/<id>.mp3".
type ObjectStorage interface {
	Upload(path string, data []byte, contentType string) (string, error)
	Download(path string) ([]byte, error)
	Remove(paths []string) error
	PublicURL(path string) string
}
