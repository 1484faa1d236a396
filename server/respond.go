package server

import (
	"net/http"

	"github.com/goccy/go-json"

	"github.com/rushteam/homerec/core"
	"github.com/rushteam/homerec/logging"
)

// APIError 是错误响应体。
type APIError struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
}

type errorResponse struct {
	Error *APIError `json:"error"`
}

func respondJSON(w http.ResponseWriter, status int, body any) {
	data, err := json.Marshal(body)
	if err != nil {
		logging.Error().Err(err).Msg("marshal response failed")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}

func respondError(w http.ResponseWriter, r *http.Request, status int, code, message string, err error) {
	if err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Str("code", code).Msg("api error")
	}
	respondJSON(w, status, errorResponse{Error: &APIError{
		Code:      code,
		Message:   message,
		RequestID: logging.RequestID(r.Context()),
	}})
}

// respondDomainError 按领域错误码映射 HTTP 状态。
func respondDomainError(w http.ResponseWriter, r *http.Request, err error) {
	de := core.GetDomainError(err)
	if de == nil {
		respondError(w, r, http.StatusInternalServerError, core.ErrorCodeInternalError, "internal error", err)
		return
	}
	status := http.StatusInternalServerError
	switch de.Code {
	case core.ErrorCodeInvalidInput:
		status = http.StatusBadRequest
	case core.ErrorCodeNotFound:
		status = http.StatusNotFound
	case core.ErrorCodeUnavailable:
		status = http.StatusServiceUnavailable
	case core.ErrorCodeNotSupported:
		status = http.StatusNotImplemented
	}
	if status >= http.StatusInternalServerError {
		respondError(w, r, status, de.Code, de.Message, err)
		return
	}
	respondError(w, r, status, de.Code, de.Message, nil)
}
