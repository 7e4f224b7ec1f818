package handler

import (
	"net/http"

	"github.com/lumeo-dev/lumeo/internal/domain"
)

func (h *Handler) chart(w http.ResponseWriter, fetch func() (domain.ChartData, error)) {
	chart, err := fetch()
	if err != nil {
		writeErrorAndStatusCode(w, err)
		return
	}
	writeJSON(w, http.StatusOK, chart)
}

func (h *Handler) StatsAccountsByRole(w http.ResponseWriter, r *http.Request) {
	h.chart(w, h.stats.AccountsByRole)
}

func (h *Handler) StatsAccountActivity(w http.ResponseWriter, r *http.Request) {
	h.chart(w, h.stats.AccountActivity)
}

func (h *Handler) StatsRegistrations(w http.ResponseWriter, r *http.Request) {
	h.chart(w, h.stats.Registrations)
}

func (h *Handler) StatsContent(w http.ResponseWriter, r *http.Request) {
	h.chart(w, h.stats.Content)
}
