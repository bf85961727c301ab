package auth

import (
	"net/http"
	"time"

	"go.uber.org/zap"

	"MiniPOS/pkg/kit"
)

const maxBodyBytes = 1 << 12

type Server struct {
	Log      *zap.Logger
	Creds    *Credentials
	JWT      *TokenMaker
	TokenTTL time.Duration
}

type loginReq struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResp struct {
	AccessToken string    `json:"access_token"`
	ExpiresAt   time.Time `json:"expires_at"`
}

func (s *Server) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginReq
	if err := kit.DecodeJSON(w, r, maxBodyBytes, &req); err != nil {
		kit.WriteError(w, r, http.StatusBadRequest, "bad json", nil)
		return
	}

	if err := s.Creds.Verify(req.Username, req.Password); err != nil {
		kit.OrNop(s.Log).Warn("login rejected", zap.String("username", req.Username))
		kit.WriteError(w, r, http.StatusUnauthorized, "invalid credentials", nil)
		return
	}

	expires := time.Now().Add(s.TokenTTL).UTC()
	tok, err := s.JWT.New(s.Creds.Username(), RoleOperator, s.TokenTTL)
	if err != nil {
		kit.OrNop(s.Log).Error("token issue", zap.Error(err))
		kit.WriteError(w, r, http.StatusInternalServerError, "server error", nil)
		return
	}

	kit.WriteJSON(w, http.StatusOK, loginResp{AccessToken: tok, ExpiresAt: expires})
}

func (s *Server) HandleWhoAmI(w http.ResponseWriter, r *http.Request) {
	u, ok := UserFromContext(r.Context())
	if !ok {
		kit.WriteError(w, r, http.StatusUnauthorized, "no user", nil)
		return
	}

	kit.WriteJSON(w, http.StatusOK, map[string]any{
		"username": u.Username,
		"role":     u.Role,
	})
}
