package catalog

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"MiniPOS/internal/httperr"
	"MiniPOS/internal/pos"
	"MiniPOS/pkg/kit"
)

const maxBodyBytes = 1 << 16

type Server struct {
	Store *Store
	Log   *zap.Logger
}

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Get("/", s.list)
	r.Post("/", s.add)
	r.Get("/{id}", s.get)
	r.Delete("/{id}", s.delete)
	r.Put("/{id}/quantity", s.updateQuantity)

	return r
}

func (s *Server) list(w http.ResponseWriter, _ *http.Request) {
	kit.WriteJSON(w, http.StatusOK, s.Store.GetAll())
}

func (s *Server) get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	p, ok := s.Store.Get(id)
	if !ok {
		kit.WriteError(w, r, http.StatusNotFound, "not found", map[string]any{"id": id})
		return
	}
	kit.WriteJSON(w, http.StatusOK, p)
}

func (s *Server) add(w http.ResponseWriter, r *http.Request) {
	var p Product
	if err := httperr.DecodeJSON(w, r, maxBodyBytes, &p); err != nil {
		httperr.Write(w, r, s.Log, err)
		return
	}

	if err := s.Store.Add(r.Context(), p); err != nil {
		httperr.Write(w, r, s.Log, err)
		return
	}
	kit.WriteJSON(w, http.StatusCreated, p)
}

type quantityReq struct {
	Quantity *int `json:"quantity"`
}

func (s *Server) updateQuantity(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req quantityReq
	if err := httperr.DecodeJSON(w, r, maxBodyBytes, &req); err != nil {
		httperr.Write(w, r, s.Log, err)
		return
	}
	if req.Quantity == nil {
		httperr.Write(w, r, s.Log, pos.Invalid("quantity required"))
		return
	}

	if err := s.Store.UpdateQuantity(r.Context(), id, *req.Quantity); err != nil {
		httperr.Write(w, r, s.Log, err)
		return
	}

	p, _ := s.Store.Get(id)
	kit.WriteJSON(w, http.StatusOK, p)
}

func (s *Server) delete(w http.ResponseWriter, r *http.Request) {
	if err := s.Store.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		httperr.Write(w, r, s.Log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
