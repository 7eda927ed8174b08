package putio

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddOAuthToken(t *testing.T) {
	tests := []struct {
		url      string
		expected string
	}{
		{"https://api.put.io/v2/files/1/download/putcast.mp3", "https://api.put.io/v2/files/1/download/putcast.mp3?oauth_token=tok"},
		{"https://api.put.io/v2/files/list?parent_id=0", "https://api.put.io/v2/files/list?parent_id=0&oauth_token=tok"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, AddOAuthToken(tt.url, "tok"))
	}
}

func TestDownloadURLs(t *testing.T) {
	client := NewClient("https://api.put.io/v2/", nil)

	mkv := File{ID: 99, Name: "Some.Movie.2019.mkv"}
	assert.Equal(t, "https://api.put.io/v2/files/99/download/putcast.mkv?oauth_token=tok", client.DownloadURL(mkv, "tok"))
	assert.Equal(t, "https://api.put.io/v2/files/99/mp4/download/putcast.mp4?oauth_token=tok", client.MP4DownloadURL(mkv, "tok"))

	bare := File{ID: 5, Name: "README"}
	assert.Equal(t, "https://api.put.io/v2/files/5/download/putcast?oauth_token=tok", client.DownloadURL(bare, "tok"))

	hidden := File{ID: 6, Name: ".mp3"}
	assert.Equal(t, "https://api.put.io/v2/files/6/download/putcast?oauth_token=tok", client.DownloadURL(hidden, "tok"))
}

func TestFileCreatedTime(t *testing.T) {
	expected := time.Date(2013, 4, 30, 22, 5, 14, 0, time.UTC)

	for _, value := range []string{"2013-04-30T22:05:14", "2013-04-30T22:05:14Z", "2013-04-30T22:05:14.123"} {
		got, err := File{CreatedAt: value}.CreatedTime()
		require.NoError(t, err, value)
		assert.True(t, expected.Equal(got), "%s parsed as %s", value, got)
	}

	_, err := File{CreatedAt: "yesterday"}.CreatedTime()
	assert.Error(t, err)
}

func TestFileIsDir(t *testing.T) {
	assert.True(t, File{ContentType: "application/x-directory"}.IsDir())
	assert.True(t, File{FileType: "FOLDER"}.IsDir())
	assert.False(t, File{ContentType: "audio/mpeg", FileType: "AUDIO"}.IsDir())
}

func TestListFolder(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/files/list" {
			t.Errorf("Expected path /files/list, got %s", r.URL.Path)
		}
		if r.URL.Query().Get("parent_id") != "123" {
			t.Errorf("Expected parent_id 123, got %s", r.URL.Query().Get("parent_id"))
		}
		if r.URL.Query().Get("oauth_token") != "secret" {
			t.Errorf("Expected oauth_token secret, got %s", r.URL.Query().Get("oauth_token"))
		}
		if r.Header.Get("User-Agent") != "Test Agent" {
			t.Errorf("Expected user agent 'Test Agent', got %s", r.Header.Get("User-Agent"))
		}

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"OK","parent":{"id":123,"name":"Music","content_type":"application/x-directory"},"files":[
			{"id":1,"parent_id":123,"name":"Albums","content_type":"application/x-directory","file_type":"FOLDER","size":0,"created_at":"2014-01-01T00:00:00"},
			{"id":2,"parent_id":123,"name":"track.mp3","content_type":"audio/mpeg","file_type":"AUDIO","size":4096,"created_at":"2014-01-02T03:04:05","is_mp4_available":false}
		]}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, server.Client(), WithUserAgent("Test Agent"))
	files, err := client.ListFolder(context.Background(), "123", "secret")
	require.NoError(t, err)
	require.Len(t, files, 2)

	assert.True(t, files[0].IsDir())
	assert.Equal(t, "1", files[0].FolderID())
	assert.Equal(t, "track.mp3", files[1].Name)
	assert.Equal(t, int64(4096), files[1].Size)
	assert.Equal(t, "audio/mpeg", files[1].ContentType)
}

func TestListFolderWithoutToken(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
	}))
	defer server.Close()

	client := NewClient(server.URL, server.Client())
	_, err := client.ListFolder(context.Background(), "0", "")
	assert.ErrorIs(t, err, ErrUnauthorized)
	assert.Zero(t, atomic.LoadInt32(&calls), "no request should be made without a token")
}

func TestListFolderErrorMapping(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		expected error
	}{
		{"unauthorized", http.StatusUnauthorized, `{"error_type":"invalid_grant","status":"ERROR"}`, ErrUnauthorized},
		{"forbidden", http.StatusForbidden, `{}`, ErrUnauthorized},
		{"not found", http.StatusNotFound, `{"error_type":"NotFound","error_message":"File not found","status_code":404,"status":"ERROR"}`, ErrNotFound},
		{"bad request", http.StatusBadRequest, `{"error_type":"BadRequest"}`, ErrUpstream},
		{"server error", http.StatusBadGateway, `<html>bad gateway</html>`, ErrUpstream},
		{"malformed json", http.StatusOK, `{"files": [`, ErrUpstream},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			client := NewClient(server.URL, server.Client())
			_, err := client.ListFolder(context.Background(), "1", "tok")
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.expected), "expected %v, got %v", tt.expected, err)
			assert.NotContains(t, err.Error(), "tok&", "errors must not leak the access token")
		})
	}
}

func TestListFolderRetriesTransientFailures(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(`{"status":"OK","files":[]}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, server.Client(), WithMaxRetries(2))
	files, err := client.ListFolder(context.Background(), "1", "tok")
	require.NoError(t, err)
	assert.Empty(t, files)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestNegativeMaxRetriesMeansNoRetry(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := NewClient(server.URL, server.Client(), WithMaxRetries(-1))
	if client.maxRetries != 0 {
		t.Errorf("Expected max retries 0, got %d", client.maxRetries)
	}

	_, err := client.ListFolder(context.Background(), "1", "tok")
	assert.ErrorIs(t, err, ErrUpstream)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestListFolderDoesNotRetryPermanentFailures(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := NewClient(server.URL, server.Client(), WithMaxRetries(3))
	_, err := client.ListFolder(context.Background(), "1", "tok")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestListFolderTimeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	client := NewClient(server.URL, server.Client(), WithTimeout(50*time.Millisecond))
	_, err := client.ListFolder(context.Background(), "1", "tok")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUpstream)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestAccountInfo(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/account/info") {
			t.Errorf("Unexpected path %s", r.URL.Path)
		}
		w.Write([]byte(`{"status":"OK","info":{"username":"listener","mail":"l@example.com","user_id":7}}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, server.Client())
	info, err := client.AccountInfo(context.Background(), "tok")
	require.NoError(t, err)
	assert.Equal(t, "listener", info.Username)
	assert.Equal(t, int64(7), info.UserID)
}

func TestOAuthConfig(t *testing.T) {
	conf := OAuthConfig("https://api.put.io/v2/", "42", "shh", "https://putcast.example.com/register")

	assert.Equal(t, "https://api.put.io/v2/oauth2/authenticate", conf.Endpoint.AuthURL)
	assert.Equal(t, "https://api.put.io/v2/oauth2/access_token", conf.Endpoint.TokenURL)

	authURL := conf.AuthCodeURL("state-value")
	assert.Contains(t, authURL, "client_id=42")
	assert.Contains(t, authURL, "response_type=code")
	assert.Contains(t, authURL, "state=state-value")
}
