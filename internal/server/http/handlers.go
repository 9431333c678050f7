package http

import (
	"encoding/json"
	"net/http"

	"github.com/dmitrijs2005/ebet/internal/server/auth"
	"github.com/dmitrijs2005/ebet/internal/server/services"
)

const maxBodyBytes = 1 << 16

type signInRequest struct {
	Nickname string `json:"nickname"`
	Password string `json:"password"`
}

// updateUserRequest may name the account being edited; it must be the
// caller's own.
type updateUserRequest struct {
	ID       string `json:"id"`
	Nickname string `json:"nickname"`
	Email    string `json:"email"`
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		writeFail(w, http.StatusBadRequest, codeBadRequest, "invalid JSON body")
		return false
	}
	return true
}

func (s *Server) handleSignUp(w http.ResponseWriter, r *http.Request) {
	var req services.SignUpInput
	if !decodeBody(w, r, &req) {
		return
	}

	session, err := s.auth.SignUp(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, envelope{
		Data: userData{User: newUserView(session.Account)},
		Meta: tokenMeta{Token: session.Token},
	})
}

func (s *Server) handleSignIn(w http.ResponseWriter, r *http.Request) {
	var req signInRequest
	if !decodeBody(w, r, &req) {
		return
	}

	session, err := s.auth.SignIn(r.Context(), req.Nickname, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, envelope{
		Data: userData{User: newUserView(session.Account)},
		Meta: tokenMeta{Token: session.Token},
	})
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	p, ok := auth.PrincipalFromContext(r.Context())
	if !ok {
		writeFail(w, http.StatusInternalServerError, codeInternal, "internal error")
		return
	}

	account, err := s.auth.Account(r.Context(), p.ID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, envelope{Data: userData{User: newUserView(account)}})
}

func (s *Server) handleUser(w http.ResponseWriter, r *http.Request) {
	account, err := s.auth.Account(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, envelope{Data: userData{User: newUserView(account)}})
}

func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request) {
	all, err := s.auth.ListAccounts(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	views := make([]userView, 0, len(all))
	for i := range all {
		views = append(views, newUserView(&all[i]))
	}
	writeJSON(w, http.StatusOK, envelope{Data: usersData{Users: views}})
}

func (s *Server) handleUpdateUser(w http.ResponseWriter, r *http.Request) {
	p, ok := auth.PrincipalFromContext(r.Context())
	if !ok {
		writeFail(w, http.StatusInternalServerError, codeInternal, "internal error")
		return
	}

	var req updateUserRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.ID != "" && req.ID != p.ID {
		writeFail(w, http.StatusForbidden, codeForbidden, "forbidden")
		return
	}

	account, err := s.auth.UpdateProfile(r.Context(), p.ID, services.ProfileInput{Nickname: req.Nickname, Email: req.Email})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, envelope{Data: userData{User: newUserView(account)}})
}

func (s *Server) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	p, ok := auth.PrincipalFromContext(r.Context())
	if !ok {
		writeFail(w, http.StatusInternalServerError, codeInternal, "internal error")
		return
	}

	account, err := s.auth.DeleteAccount(r.Context(), p.ID, r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, envelope{Data: userData{User: newUserView(account)}})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.db != nil {
		if err := s.db.PingContext(r.Context()); err != nil {
			s.logger.Warn(r.Context(), "health check failed", "error", err)
			writeFail(w, http.StatusServiceUnavailable, codeStoreUnavailable, "database unavailable")
			return
		}
	}
	writeJSON(w, http.StatusOK, envelope{Data: map[string]string{"status": "ok"}})
}
