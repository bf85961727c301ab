package sale

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"MiniPOS/internal/httperr"
	"MiniPOS/pkg/kit"
)

const maxBodyBytes = 1 << 16

type Server struct {
	Sales *Registry
	Log   *zap.Logger
}

type addItemReq struct {
	ProductID string `json:"product_id"`
	Qty       int    `json:"qty"`
}

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Post("/", s.open)
	r.Route("/{id}", func(rr chi.Router) {
		rr.Get("/", s.view)
		rr.Delete("/", s.abandon)
		rr.Post("/items", s.addItem)
		rr.Post("/complete", s.complete)
	})

	return r
}

func (s *Server) open(w http.ResponseWriter, _ *http.Request) {
	kit.WriteJSON(w, http.StatusCreated, s.Sales.Open().View())
}

func (s *Server) view(w http.ResponseWriter, r *http.Request) {
	sess, err := s.Sales.Get(chi.URLParam(r, "id"))
	if err != nil {
		httperr.Write(w, r, s.Log, err)
		return
	}
	kit.WriteJSON(w, http.StatusOK, sess.View())
}

func (s *Server) addItem(w http.ResponseWriter, r *http.Request) {
	sess, err := s.Sales.Get(chi.URLParam(r, "id"))
	if err != nil {
		httperr.Write(w, r, s.Log, err)
		return
	}

	var req addItemReq
	if err := httperr.DecodeJSON(w, r, maxBodyBytes, &req); err != nil {
		httperr.Write(w, r, s.Log, err)
		return
	}

	added, err := sess.AddItem(r.Context(), req.ProductID, req.Qty)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	kit.WriteJSON(w, http.StatusOK, added)
}

func (s *Server) complete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	sess, err := s.Sales.Get(id)
	if err != nil {
		httperr.Write(w, r, s.Log, err)
		return
	}

	bill, err := sess.Complete(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.Sales.Remove(id)
	kit.WriteJSON(w, http.StatusCreated, bill)
}

func (s *Server) abandon(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	sess, err := s.Sales.Get(id)
	if err != nil {
		httperr.Write(w, r, s.Log, err)
		return
	}

	sess.Abandon()
	s.Sales.Remove(id)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, ErrSessionClosed) {
		kit.WriteError(w, r, http.StatusConflict, err.Error(), nil)
		return
	}
	httperr.Write(w, r, s.Log, err)
}
