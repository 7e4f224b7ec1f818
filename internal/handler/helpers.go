package handler

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/lumeo-dev/lumeo/internal/apperr"
	"github.com/lumeo-dev/lumeo/internal/domain"
	"github.com/lumeo-dev/lumeo/internal/logger"
)

// errorResponse is the wire shape of every error. Code is empty for
// errors clients have no reason to branch on.
type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func writeErrorAndStatusCode(w http.ResponseWriter, err error) {
	resp := errorResponse{Error: "Internal server error"}
	status := http.StatusInternalServerError
	if e, ok := err.(*apperr.Error); ok {
		resp.Error = e.Message
		resp.Code = e.Code
		status = e.StatusCode
	} else {
		logger.Log.Error("unhandled error", "error", err)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(resp)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Log.Error("failed to encode response", "error", err)
	}
}

func decodeValidate(r io.ReadCloser, body any) error {
	if err := json.NewDecoder(r).Decode(body); err != nil {
		return &apperr.Error{Message: "Body is invalid json", StatusCode: http.StatusBadRequest}
	}
	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := validate.Struct(body); err != nil {
		return &apperr.Error{Message: "Required fields missing", StatusCode: http.StatusBadRequest}
	}
	return nil
}

func parseId(param string) (int64, error) {
	id, err := strconv.ParseInt(param, 10, 64)
	if err != nil || id <= 0 {
		return 0, &apperr.Error{Message: "Invalid id", StatusCode: http.StatusBadRequest}
	}
	return id, nil
}

// listFilterFromQuery reads the shared listing parameters; bounds are
// enforced by the service.
func listFilterFromQuery(r *http.Request) domain.ListFilter {
	q := r.URL.Query()
	limit, _ := strconv.Atoi(q.Get("limit"))
	offset, _ := strconv.Atoi(q.Get("offset"))
	return domain.ListFilter{
		Search: q.Get("search"),
		Limit:  limit,
		Offset: offset,
	}
}
