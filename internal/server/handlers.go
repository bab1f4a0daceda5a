package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/Belphemur/YoutubeAudio/internal/apperrors"
	"github.com/Belphemur/YoutubeAudio/internal/config"
	"github.com/Belphemur/YoutubeAudio/internal/models"
	"github.com/Belphemur/YoutubeAudio/internal/services"
	"github.com/Belphemur/YoutubeAudio/internal/validation"
	"github.com/rs/zerolog"
)

// maxBodyBytes bounds the JSON submission; a URL never needs more.
const maxBodyBytes = 64 << 10

// downloadHandler serves POST /download/.
type downloadHandler struct {
	extractor services.AudioExtractor
}

func (h *downloadHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	url, err := submittedURL(w, r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	logger := zerolog.Ctx(r.Context())
	logger.Debug().Str("url", url).Str("video_id", validation.VideoID(url)).Msg("Download requested")

	// A client disconnect does not abort a running download.
	result, err := h.extractor.Extract(context.WithoutCancel(r.Context()), url)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, result)
}

// infoHandler serves POST /info/.
type infoHandler struct {
	prober services.MetadataProber
}

func (h *infoHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	url, err := submittedURL(w, r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	info, err := h.prober.Probe(r.Context(), url)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, models.InfoResponse{
		Status:    models.DownloadStatusSuccess,
		MediaInfo: *info,
	})
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": config.Version,
	})
}

// submittedURL decodes and validates the body, then returns the
// percent-decoded URL once it passed the scheme and pattern checks.
func submittedURL(w http.ResponseWriter, r *http.Request) (string, error) {
	var submission models.URLSubmission
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(&submission); err != nil {
		if errors.Is(err, io.EOF) {
			return "", apperrors.NewMissingFieldError("url")
		}
		return "", apperrors.NewInvalidBodyError(err)
	}
	if err := submission.Validate(); err != nil {
		return "", err
	}
	return validation.ValidateURL(submission.Value())
}
