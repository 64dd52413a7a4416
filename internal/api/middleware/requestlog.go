package middleware

import (
	"net/http"
	"time"

	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type statusRecorder struct {
	http.ResponseWriter
	status int
	bytes  int64
}

func (w *statusRecorder) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusRecorder) Write(p []byte) (int, error) {
	if w.status == 0 {
		w.status = http.StatusOK
	}
	n, err := w.ResponseWriter.Write(p)
	w.bytes += int64(n)
	return n, err
}

// RequestLog writes one structured line per request.
func RequestLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sr := &statusRecorder{ResponseWriter: w}
		next.ServeHTTP(sr, r)

		if sr.status == 0 {
			sr.status = http.StatusOK
		}
		log.WithLevel(levelForStatus(sr.status)).
			Str("request_id", chiMiddleware.GetReqID(r.Context())).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", sr.status).
			Int64("bytes", sr.bytes).
			Str("remote_ip", ClientIP(r)).
			Dur("duration", time.Since(start)).
			Msg("http request")
	})
}

func levelForStatus(code int) zerolog.Level {
	if code >= 500 {
		return zerolog.ErrorLevel
	}
	if code >= 400 {
		return zerolog.WarnLevel
	}
	return zerolog.InfoLevel
}
