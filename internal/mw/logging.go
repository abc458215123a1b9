package mw

import (
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ledgergate/ledgergate/internal/trace"
)

type LogOpts struct {
	SkipPaths    []string
	RedactParams []string // query parameters whose values are secrets, e.g. "key"
}

type statusRecorder struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	n, err := r.ResponseWriter.Write(b)
	r.bytes += n
	return n, err
}

func Logger(opts LogOpts) func(http.Handler) http.Handler {
	skip := make(map[string]bool, len(opts.SkipPaths))
	for _, p := range opts.SkipPaths {
		skip[p] = true
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodOptions || skip[r.URL.Path] {
				next.ServeHTTP(w, r)
				return
			}

			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w}
			next.ServeHTTP(rec, r)
			dur := time.Since(start)

			// one-liner summary
			slog.Info("req",
				"trace", trace.From(r.Context()),
				"m", r.Method,
				"path", redactedPath(r.URL, opts.RedactParams),
				"status", rec.status,
				"ms", dur.Milliseconds(),
				"bytes", rec.bytes,
			)
		})
	}
}

// redactedPath renders path?query with secret parameter values masked, so the
// shared API key never reaches the logs.
func redactedPath(u *url.URL, redact []string) string {
	if u.RawQuery == "" {
		return u.Path
	}
	q := u.Query()
	for _, p := range redact {
		if q.Has(p) {
			q.Set(p, "***")
		}
	}
	for k := range q {
		if strings.HasPrefix(strings.ToLower(k), "x-api") {
			q.Set(k, "***")
		}
	}
	return u.Path + "?" + q.Encode()
}
