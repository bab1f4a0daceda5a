package server

import (
	"encoding/json"
	"net/http"

	"github.com/Belphemur/YoutubeAudio/internal/apperrors"
	"github.com/Belphemur/YoutubeAudio/internal/models"
	"github.com/getsentry/sentry-go"
	"github.com/rs/zerolog"
)

func writeJSON(w http.ResponseWriter, r *http.Request, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger := zerolog.Ctx(r.Context())
		logger.Warn().Err(err).Msg("Failed to write response body")
	}
}

// writeError translates err into {"detail": ...}. Client rejections keep their
// own text; everything else becomes an internal server error and is reported
// to Sentry when a hub is attached to the request.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := apperrors.StatusCode(err)
	logger := zerolog.Ctx(r.Context())

	if status >= http.StatusInternalServerError {
		logger.Error().Err(err).Int("status", status).Msg("Request failed")
		if hub := sentry.GetHubFromContext(r.Context()); hub != nil {
			hub.CaptureException(err)
		}
	} else {
		logger.Debug().Err(err).Int("status", status).Msg("Request rejected")
	}

	writeJSON(w, r, status, models.ErrorResponse{Detail: apperrors.Detail(err)})
}
