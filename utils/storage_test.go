package utils

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObjectPathFromURL(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		want    string
		wantErr bool
	}{
		{
			name: "public url",
			url:  "https://x.supabase.co/storage/v1/object/public/uploads/documents/u1/file.pdf",
			want: "documents/u1/file.pdf",
		},
		{
			name: "query params stripped",
			url:  "https://x.supabase.co/storage/v1/object/public/uploads/podcasts/a.mp3?download=1",
			want: "podcasts/a.mp3",
		},
		{
			name: "escaped path",
			url:  "https://x.supabase.co/storage/v1/object/public/uploads/documents/my%20file.txt",
			want: "documents/my file.txt",
		},
		{
			name:    "not a storage url",
			url:     "https://example.com/some/file.pdf",
			wantErr: true,
		},
		{
			name:    "bucket without object",
			url:     "https://x.supabase.co/storage/v1/object/public/uploads",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ObjectPathFromURL(tt.url)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPublicURL(t *testing.T) {
	s := &SupabaseStorage{URL: "https://x.supabase.co", Bucket: "uploads"}
	assert.Equal(t,
		"https://x.supabase.co/storage/v1/object/public/uploads/documents/a.txt",
		s.PublicURL("documents/a.txt"))
}

func TestDownloadSendsAuthHeaders(t *testing.T) {
	var gotPath, gotAuth, gotAPIKey string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		gotAPIKey = r.Header.Get("apikey")
		w.Write([]byte("file contents"))
	}))
	defer server.Close()

	s := &SupabaseStorage{URL: server.URL, Key: "service-key", Bucket: "uploads"}
	data, err := s.Download("documents/a.txt")
	require.NoError(t, err)

	assert.Equal(t, "file contents", string(data))
	assert.Equal(t, "/storage/v1/object/uploads/documents/a.txt", gotPath)
	assert.Equal(t, "Bearer service-key", gotAuth)
	assert.Equal(t, "service-key", gotAPIKey)
}

func TestDownloadNonOKStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"not found"}`, http.StatusNotFound)
	}))
	defer server.Close()

	s := &SupabaseStorage{URL: server.URL, Key: "k", Bucket: "uploads"}
	_, err := s.Download("documents/missing.txt")
	assert.Error(t, err)
}

func TestRemoveDeletesEachPath(t *testing.T) {
	var deleted []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		deleted = append(deleted, r.URL.Path)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	s := &SupabaseStorage{URL: server.URL, Key: "k", Bucket: "uploads"}
	err := s.Remove([]string{"documents/a.txt", "podcasts/b.mp3"})
	require.NoError(t, err)

	assert.Equal(t, []string{
		"/storage/v1/object/uploads/documents/a.txt",
		"/storage/v1/object/uploads/podcasts/b.mp3",
	}, deleted)
}
