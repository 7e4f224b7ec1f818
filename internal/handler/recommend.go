package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/lumeo-dev/lumeo/internal/apperr"
)

func (h *Handler) Recommend(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Query string `validate:"required" json:"query"`
	}
	if err := decodeValidate(r.Body, &body); err != nil {
		writeErrorAndStatusCode(w, err)
		return
	}

	rec, err := h.recommend.Recommend(body.Query)
	if err != nil {
		writeErrorAndStatusCode(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (h *Handler) AdminListMovieQueries(w http.ResponseWriter, r *http.Request) {
	list, err := h.recommend.Queries(listFilterFromQuery(r))
	if err != nil {
		writeErrorAndStatusCode(w, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// AdminSyncMovies refreshes the catalog from the external source. The
// body is optional; pages defaults to one.
func (h *Handler) AdminSyncMovies(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Pages int `json:"pages"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil && !errors.Is(err, io.EOF) {
		writeErrorAndStatusCode(w, &apperr.Error{Message: "Body is invalid json", StatusCode: http.StatusBadRequest})
		return
	}

	fetched, err := h.recommend.SyncCatalog(r.Context(), body.Pages)
	if err != nil {
		writeErrorAndStatusCode(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"fetched": fetched})
}
