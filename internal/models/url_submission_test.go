package models

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/Belphemur/YoutubeAudio/internal/apperrors"
)

func TestURLSubmission_Validate(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		body    string
		wantErr bool
		want    string
	}{
		{name: "valid", body: `{"url":"https://youtu.be/abc"}`, want: "https://youtu.be/abc"},
		{name: "non-http is still a valid submission", body: `{"url":"ftp://example.com"}`, want: "ftp://example.com"},
		{name: "percent-encoded text is kept raw", body: `{"url":"https%3A%2F%2Fyoutu.be%2Fabc"}`, want: "https%3A%2F%2Fyoutu.be%2Fabc"},
		{name: "missing field", body: `{}`, wantErr: true},
		{name: "null field", body: `{"url":null}`, wantErr: true},
		{name: "empty field", body: `{"url":""}`, wantErr: true},
		{name: "blank field is left to the URL checks", body: `{"url":"   "}`, want: "   "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			var s URLSubmission
			if err := json.Unmarshal([]byte(tt.body), &s); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}

			err := s.Validate()
			if tt.wantErr {
				if !errors.Is(err, &apperrors.ErrInvalidSubmission{}) {
					t.Fatalf("Validate() = %v, want ErrInvalidSubmission", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Validate() unexpected error: %v", err)
			}
			if s.Value() != tt.want {
				t.Errorf("Value() = %q, want %q", s.Value(), tt.want)
			}
		})
	}
}
