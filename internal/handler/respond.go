package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/warcamp/platform/internal/domain"
)

// maxJSONBody caps request bodies read by DecodeJSON.
const maxJSONBody = 1 << 20

// RespondJSON writes a JSON response with the given status code.
func RespondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// RespondError writes a JSON error response, detecting domain.AppError for
// status codes. Server errors are logged and carry the cause in "detail".
func RespondError(w http.ResponseWriter, err error) {
	appErr, ok := domain.AsAppError(err)
	if !ok {
		appErr = domain.ErrInternal("internal server error", err)
	}

	body := map[string]string{
		"code":    appErr.Code,
		"message": appErr.Message,
	}
	if appErr.Status >= http.StatusInternalServerError {
		slog.Error("request failed", "code", appErr.Code, "message", appErr.Message, "error", appErr.Cause)
		if appErr.Cause != nil {
			body["detail"] = appErr.Cause.Error()
		}
	}
	RespondJSON(w, appErr.Status, body)
}

// DecodeJSON reads and decodes a JSON request body into dst.
func DecodeJSON(r *http.Request, dst interface{}) error {
	return json.NewDecoder(http.MaxBytesReader(nil, r.Body, maxJSONBody)).Decode(dst)
}

// DecodeBody decodes the request body and writes a 400 on failure.
func DecodeBody(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := DecodeJSON(r, dst); err != nil {
		RespondError(w, domain.ErrValidation("invalid request body"))
		return false
	}
	return true
}
