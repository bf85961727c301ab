package kit

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func Recoverer(next http.Handler) http.Handler {
	return middleware.Recoverer(next)
}

func Logging(log *zap.Logger) func(http.Handler) http.Handler {
	log = OrNop(log)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}

			lvl := zapcore.InfoLevel
			switch {
			case status >= http.StatusInternalServerError:
				lvl = zapcore.ErrorLevel
			case status >= http.StatusBadRequest:
				lvl = zapcore.WarnLevel
			case r.URL.Path == "/healthz" || r.URL.Path == "/readyz":
				lvl = zapcore.DebugLevel
			}

			if ce := log.Check(lvl, "request"); ce != nil {
				ce.Write(
					zap.String("request_id", middleware.GetReqID(r.Context())),
					zap.String("method", r.Method),
					zap.String("path", r.URL.Path),
					zap.Int("status", status),
					zap.Int("bytes", ww.BytesWritten()),
					zap.Duration("duration", time.Since(start)),
					zap.String("remote", r.RemoteAddr),
				)
			}
		})
	}
}
