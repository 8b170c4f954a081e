package server

import (
	"encoding/json"
	"net/http"

	errs "github.com/matzehuels/tipscan/pkg/errors"
)

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps an error code onto an HTTP status.
func writeError(w http.ResponseWriter, err error) {
	code := errs.GetCode(err)
	if code == "" {
		code = errs.ErrCodeInternal
	}
	writeJSON(w, statusFor(code), errorBody{Code: string(code), Message: err.Error()})
}

func statusFor(code errs.Code) int {
	switch code {
	case errs.ErrCodeInvalidConfig, errs.ErrCodeInvalidInput, errs.ErrCodeMissingParameter:
		return http.StatusBadRequest
	case errs.ErrCodeUnknownSite, errs.ErrCodeLeadMismatch, errs.ErrCodeIncompleteModel, errs.ErrCodeSolverFailure:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
