package models

import "github.com/Belphemur/YoutubeAudio/internal/apperrors"

// URLSubmission is the body of a download or info request.
type URLSubmission struct {
	URL *string `json:"url"`
}

// Validate checks that the url field is present and non-empty. It runs on the
// raw text, before any percent-decoding; whitespace-only text is left to the
// URL checks.
func (s URLSubmission) Validate() error {
	if s.URL == nil || *s.URL == "" {
		return apperrors.NewMissingFieldError("url")
	}
	return nil
}

// Value returns the submitted URL text, or an empty string when absent.
func (s URLSubmission) Value() string {
	if s.URL == nil {
		return ""
	}
	return *s.URL
}
