package billing

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"MiniPOS/internal/httperr"
	"MiniPOS/pkg/kit"
)

type Server struct {
	Archive *Archive
	Log     *zap.Logger
}

type listResp struct {
	Bills   []string `json:"bills"`
	Message string   `json:"message,omitempty"`
}

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Get("/", s.list)
	r.Get("/{name}", s.get)
	return r
}

func (s *Server) list(w http.ResponseWriter, r *http.Request) {
	names, err := s.Archive.ListBills()
	if errors.Is(err, ErrNoBills) {
		kit.WriteJSON(w, http.StatusOK, listResp{Bills: []string{}, Message: "No bills found."})
		return
	}
	if err != nil {
		httperr.Write(w, r, s.Log, err)
		return
	}
	kit.WriteJSON(w, http.StatusOK, listResp{Bills: names})
}

func (s *Server) get(w http.ResponseWriter, r *http.Request) {
	text, err := s.Archive.ReadBill(chi.URLParam(r, "name"))
	if err != nil {
		httperr.Write(w, r, s.Log, err)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(text))
}
