package putio

import (
	"strconv"
	"strings"
	"time"
)

const (
	DirectoryContentType = "application/x-directory"
	folderFileType       = "FOLDER"

	createdAtLayout = "2006-01-02T15:04:05"
)

// File is a file or folder as reported by the put.io files API.
type File struct {
	ID             int64  `json:"id"`
	ParentID       int64  `json:"parent_id"`
	Name           string `json:"name"`
	ContentType    string `json:"content_type"`
	FileType       string `json:"file_type"`
	Size           int64  `json:"size"`
	CreatedAt      string `json:"created_at"`
	IsMP4Available bool   `json:"is_mp4_available"`
}

func (f File) IsDir() bool {
	return f.ContentType == DirectoryContentType || f.FileType == folderFileType
}

// FolderID returns the id in the form accepted by ListFolder.
func (f File) FolderID() string {
	return strconv.FormatInt(f.ID, 10)
}

// CreatedTime parses CreatedAt. put.io reports creation time in UTC without a
// zone designator; a trailing "Z" or fractional seconds are tolerated.
func (f File) CreatedTime() (time.Time, error) {
	value := strings.TrimSuffix(f.CreatedAt, "Z")
	if i := strings.IndexByte(value, '.'); i >= 0 {
		value = value[:i]
	}
	return time.ParseInLocation(createdAtLayout, value, time.UTC)
}

type listResponse struct {
	Files  []File `json:"files"`
	Parent *File  `json:"parent"`
	Status string `json:"status"`
}

// AccountInfo is the subset of /account/info used by the web UI.
type AccountInfo struct {
	Username string `json:"username"`
	Mail     string `json:"mail"`
	UserID   int64  `json:"user_id"`
}

type accountResponse struct {
	Info   AccountInfo `json:"info"`
	Status string      `json:"status"`
}

type errorResponse struct {
	ErrorType    string `json:"error_type"`
	ErrorMessage string `json:"error_message"`
	StatusCode   int    `json:"status_code"`
	Status       string `json:"status"`
}
