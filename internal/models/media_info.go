package models

// MediaInfo holds the metadata yt-dlp reports for a single video
type MediaInfo struct {
	ID         string  `json:"id"`
	Title      string  `json:"title"`
	Uploader   string  `json:"uploader,omitempty"`
	Duration   float64 `json:"duration,omitempty"` // Seconds
	WebpageURL string  `json:"webpage_url,omitempty"`
	Filename   string  `json:"filename,omitempty"` // Final path on disk, only set after a download
}

// InfoResponse is the body returned by the metadata endpoint.
type InfoResponse struct {
	Status DownloadStatus `json:"status"`
	MediaInfo
}
