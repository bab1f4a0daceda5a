package server

import (
	"net/http"

	"github.com/Belphemur/YoutubeAudio/internal/config"
	"github.com/Belphemur/YoutubeAudio/internal/services"
	sentryhttp "github.com/getsentry/sentry-go/http"
	"golang.org/x/time/rate"
)

// Dependencies are the collaborators wired into the route table.
type Dependencies struct {
	Extractor services.AudioExtractor
	Prober    services.MetadataProber

	// Limiter throttles all routes when non-nil.
	Limiter *rate.Limiter

	// Sentry attaches a Sentry hub to every request. sentry.Init must have run.
	Sentry bool
}

// NewRouter builds the route table and wraps it with the middleware chain.
func NewRouter(deps Dependencies) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("POST /download/{$}", instrument("/download/", &downloadHandler{extractor: deps.Extractor}))
	if deps.Prober != nil {
		mux.Handle("POST /info/{$}", instrument("/info/", &infoHandler{prober: deps.Prober}))
	}
	mux.Handle("GET /health", instrument("/health", http.HandlerFunc(healthHandler)))

	chain := []middleware{
		requestID(config.GetLogger()),
		accessLog,
		recoverPanics,
	}
	if deps.Sentry {
		chain = append(chain, sentryhttp.New(sentryhttp.Options{Repanic: true}).Handle)
	}
	if deps.Limiter != nil {
		chain = append(chain, rateLimit(deps.Limiter))
	}
	chain = append(chain, compressResponses)

	var h http.Handler = mux
	for i := len(chain) - 1; i >= 0; i-- {
		h = chain[i](h)
	}
	return h
}

// NewLimiter returns a token bucket for rps requests per second, or nil when
// rps is not positive.
func NewLimiter(rps float64, burst int) *rate.Limiter {
	if rps <= 0 {
		return nil
	}
	if burst <= 0 {
		burst = 1
	}
	return rate.NewLimiter(rate.Limit(rps), burst)
}
