package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/dmitrijs2005/ebet/internal/common"
	"github.com/dmitrijs2005/ebet/internal/server/models"
	"github.com/dmitrijs2005/ebet/internal/server/services"
)

// Outward error codes. Both signin rejection reasons share
// codeInvalidCredentials.
const (
	codeBadRequest         = "bad_request"
	codeValidation         = "validation_error"
	codeAlreadyExists      = "already_exists"
	codeInvalidCredentials = "invalid_credentials"
	codeUnauthenticated    = "unauthenticated"
	codeTokenExpired       = "token_expired"
	codeForbidden          = "forbidden"
	codeAccountGone        = "account_not_found_after_token_valid"
	codeStoreUnavailable   = "store_unavailable"
	codeNotFound           = "not_found"
	codeInternal           = "internal_error"
)

type envelope struct {
	Data  any       `json:"data,omitempty"`
	Meta  any       `json:"meta,omitempty"`
	Error *apiError `json:"error,omitempty"`
}

type apiError struct {
	Code    string                `json:"code"`
	Message string                `json:"message"`
	Fields  []services.FieldError `json:"fields,omitempty"`
}

type userView struct {
	ID        string    `json:"id"`
	Nickname  string    `json:"nickname"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at,omitzero"`
}

func newUserView(a *models.Account) userView {
	return userView{ID: a.ID, Nickname: a.Nickname, Email: a.Email, CreatedAt: a.CreatedAt}
}

type userData struct {
	User userView `json:"user"`
}

type usersData struct {
	Users []userView `json:"users"`
}

type tokenMeta struct {
	Token string `json:"token"`
}

func writeJSON(w http.ResponseWriter, status int, body envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeFail(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, envelope{Error: &apiError{Code: code, Message: message}})
}

// mapError picks the status and outward code for err.
func mapError(err error) (int, *apiError) {
	var ve *services.ValidationError
	switch {
	case errors.As(err, &ve):
		return http.StatusBadRequest, &apiError{Code: codeValidation, Message: "validation failed", Fields: ve.Fields}
	case errors.Is(err, common.ErrAlreadyExists):
		return http.StatusConflict, &apiError{Code: codeAlreadyExists, Message: "nickname or email already taken"}
	case errors.Is(err, common.ErrInvalidCredentials):
		return http.StatusUnauthorized, &apiError{Code: codeInvalidCredentials, Message: "invalid nickname or password"}
	case errors.Is(err, common.ErrTokenExpired):
		return http.StatusUnauthorized, &apiError{Code: codeTokenExpired, Message: "token expired"}
	case errors.Is(err, common.ErrMalformedHeader),
		errors.Is(err, common.ErrTokenMalformed),
		errors.Is(err, common.ErrTokenBadSignature):
		return http.StatusUnauthorized, &apiError{Code: codeUnauthenticated, Message: "unauthenticated"}
	case errors.Is(err, common.ErrForbidden):
		return http.StatusForbidden, &apiError{Code: codeForbidden, Message: "forbidden"}
	case errors.Is(err, common.ErrAccountNotFoundAfterTokenValid):
		return http.StatusInternalServerError, &apiError{Code: codeAccountGone, Message: "internal error"}
	case errors.Is(err, common.ErrStoreUnavailable):
		return http.StatusInternalServerError, &apiError{Code: codeStoreUnavailable, Message: "internal error"}
	case errors.Is(err, common.ErrorNotFound):
		return http.StatusNotFound, &apiError{Code: codeNotFound, Message: "not found"}
	default:
		return http.StatusInternalServerError, &apiError{Code: codeInternal, Message: "internal error"}
	}
}

func writeError(w http.ResponseWriter, err error) {
	status, apiErr := mapError(err)
	if status == http.StatusUnauthorized && apiErr.Code != codeInvalidCredentials {
		w.Header().Set("WWW-Authenticate", `Bearer error="invalid_token"`)
	}
	writeJSON(w, status, envelope{Error: apiErr})
}
