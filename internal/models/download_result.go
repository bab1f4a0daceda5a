package models

import (
	"encoding/json"
	"fmt"
)

// DownloadStatus is the outcome of a download request
type DownloadStatus string

const (
	DownloadStatusSuccess DownloadStatus = "success"
	DownloadStatusFailure DownloadStatus = "failure"
)

// UnknownTitle is used when the toolchain reports no title for the media.
const UnknownTitle = "unknown title"

// DownloadResult represents the result of an audio download
type DownloadResult struct {
	Status  DownloadStatus `json:"status"`
	Message string         `json:"message"`
	Title   string         `json:"title"` // Only encoded on success
}

// MarshalJSON encodes the title on success only, even when it is empty.
func (r DownloadResult) MarshalJSON() ([]byte, error) {
	type result DownloadResult
	if r.Status == DownloadStatusSuccess {
		return json.Marshal(result(r))
	}
	return json.Marshal(struct {
		Status  DownloadStatus `json:"status"`
		Message string         `json:"message"`
	}{r.Status, r.Message})
}

// NewSuccessResult builds the result returned when title was downloaded.
func NewSuccessResult(title string) *DownloadResult {
	return &DownloadResult{
		Status:  DownloadStatusSuccess,
		Message: fmt.Sprintf("Downloaded %s", title),
		Title:   title,
	}
}

// NewFailureResult builds a result describing a failed download.
func NewFailureResult(err error) *DownloadResult {
	return &DownloadResult{
		Status:  DownloadStatusFailure,
		Message: err.Error(),
	}
}

// ErrorResponse is the JSON body of every error response.
type ErrorResponse struct {
	Detail string `json:"detail"`
}
