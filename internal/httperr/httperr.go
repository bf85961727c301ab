// Package httperr turns pos error kinds into the JSON error envelope.
package httperr

import (
	"net/http"

	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"MiniPOS/internal/pos"
	"MiniPOS/pkg/kit"
)

// Write answers with the status of err's kind. Server-side failures are
// logged and their cause is not echoed back.
func Write(w http.ResponseWriter, r *http.Request, log *zap.Logger, err error) {
	status := pos.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		kit.OrNop(log).Error("request failed",
			zap.String("request_id", chimw.GetReqID(r.Context())),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
		kit.WriteError(w, r, status, "server error", nil)
		return
	}

	var details any
	if d := pos.Details(err); d != nil {
		details = d
	}
	kit.WriteError(w, r, status, err.Error(), details)
}

// DecodeJSON is kit.DecodeJSON with malformed bodies reported as
// pos.ErrInvalidInput.
func DecodeJSON(w http.ResponseWriter, r *http.Request, maxBytes int64, v any) error {
	if err := kit.DecodeJSON(w, r, maxBytes, v); err != nil {
		return pos.Invalid("%v", err)
	}
	return nil
}
