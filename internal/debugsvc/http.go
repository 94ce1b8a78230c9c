package debugsvc

import (
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/AdguardTeam/AdGuardUserRules/internal/agdhttp"
	"github.com/AdguardTeam/golibs/httphdr"
	"github.com/AdguardTeam/golibs/logutil/slogutil"
)

// middleware wraps h so that every request gets a logger in its context and
// is logged at lvl with its response code and duration.
func (svc *Service) middleware(h http.Handler, lvl slog.Level) (wrapped http.Handler) {
	f := func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(httphdr.Server, agdhttp.UserAgent())

		l := svc.log.With(
			"raddr", r.RemoteAddr,
			"method", r.Method,
			"request_uri", r.RequestURI,
		)

		ctx := slogutil.ContextWithLogger(r.Context(), l)
		rw := &statusWriter{
			ResponseWriter: w,
		}

		start := time.Now()
		defer func() {
			l.Log(ctx, lvl, "handled", "code", rw.status(), "elapsed", time.Since(start))
		}()

		h.ServeHTTP(rw, r.WithContext(ctx))
	}

	return http.HandlerFunc(f)
}

// statusWriter is an [http.ResponseWriter] that remembers the response code.
type statusWriter struct {
	http.ResponseWriter

	code int
}

// type check
var _ http.ResponseWriter = (*statusWriter)(nil)

// WriteHeader implements the [http.ResponseWriter] interface for
// *statusWriter.
func (w *statusWriter) WriteHeader(code int) {
	if w.code == 0 {
		w.code = code
	}

	w.ResponseWriter.WriteHeader(code)
}

// status returns the response code.  A handler that never called WriteHeader
// has implicitly responded with 200 OK.
func (w *statusWriter) status() (code int) {
	if w.code == 0 {
		return http.StatusOK
	}

	return w.code
}

// serveHealthCheck handles the GET /health-check endpoint.  The lists are
// loaded before the service starts, so a running service is always healthy.
func serveHealthCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set(httphdr.ContentType, "text/plain")

	_, err := io.WriteString(w, "OK\n")
	if err != nil {
		ctx := r.Context()
		slogutil.MustLoggerFromContext(ctx).DebugContext(
			ctx,
			"writing health-check response",
			slogutil.KeyError, err,
		)
	}
}
