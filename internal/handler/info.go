package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/lumeo-dev/lumeo/internal/domain"
)

// Public catalog endpoints. Inactive rows never leave these.

func (h *Handler) SiteInfo(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.siteInfo.Current())
}

func (h *Handler) ListFAQs(w http.ResponseWriter, r *http.Request) {
	list, err := h.info.FAQs(listFilterFromQuery(r), false)
	if err != nil {
		writeErrorAndStatusCode(w, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *Handler) ListTeamMembers(w http.ResponseWriter, r *http.Request) {
	list, err := h.info.TeamMembers(listFilterFromQuery(r), false)
	if err != nil {
		writeErrorAndStatusCode(w, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *Handler) ListNews(w http.ResponseWriter, r *http.Request) {
	list, err := h.info.News(listFilterFromQuery(r), false)
	if err != nil {
		writeErrorAndStatusCode(w, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *Handler) GetNews(w http.ResponseWriter, r *http.Request) {
	id, err := parseId(chi.URLParam(r, "id"))
	if err != nil {
		writeErrorAndStatusCode(w, err)
		return
	}
	n, err := h.info.NewsItem(id, false)
	if err != nil {
		writeErrorAndStatusCode(w, err)
		return
	}
	writeJSON(w, http.StatusOK, n)
}

func (h *Handler) ListPartners(w http.ResponseWriter, r *http.Request) {
	list, err := h.info.Partners(listFilterFromQuery(r), false)
	if err != nil {
		writeErrorAndStatusCode(w, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// Admin endpoints: full visibility, writes, and the site-info record.

func (h *Handler) AdminUpdateSiteInfo(w http.ResponseWriter, r *http.Request) {
	var body struct {
		ContactEmail string `validate:"required" json:"contact_email"`
		Facebook     string `json:"facebook"`
		Instagram    string `json:"instagram"`
		Twitter      string `json:"twitter"`
		Telegram     string `json:"telegram"`
		Whatsapp     string `json:"whatsapp"`
		WhyUs        string `json:"why_us"`
	}
	if err := decodeValidate(r.Body, &body); err != nil {
		writeErrorAndStatusCode(w, err)
		return
	}

	err := h.siteInfo.Update(domain.SiteInfo{
		ContactEmail: body.ContactEmail,
		Facebook:     body.Facebook,
		Instagram:    body.Instagram,
		Twitter:      body.Twitter,
		Telegram:     body.Telegram,
		Whatsapp:     body.Whatsapp,
		WhyUs:        body.WhyUs,
	})
	if err != nil {
		writeErrorAndStatusCode(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (h *Handler) AdminListFAQs(w http.ResponseWriter, r *http.Request) {
	list, err := h.info.FAQs(listFilterFromQuery(r), true)
	if err != nil {
		writeErrorAndStatusCode(w, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *Handler) AdminSaveFAQ(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Id     int64  `json:"id"`
		Quote  string `validate:"required" json:"quote"`
		Answer string `validate:"required" json:"answer"`
		Active bool   `json:"active"`
	}
	if err := decodeValidate(r.Body, &body); err != nil {
		writeErrorAndStatusCode(w, err)
		return
	}

	f, err := h.info.SaveFAQ(domain.FAQ{Id: body.Id, Quote: body.Quote, Answer: body.Answer, Active: body.Active})
	if err != nil {
		writeErrorAndStatusCode(w, err)
		return
	}
	writeJSON(w, statusForSave(body.Id), f)
}

func (h *Handler) AdminDeleteFAQ(w http.ResponseWriter, r *http.Request) {
	h.deleteById(w, r, h.info.DeleteFAQ)
}

func (h *Handler) AdminListTeamMembers(w http.ResponseWriter, r *http.Request) {
	list, err := h.info.TeamMembers(listFilterFromQuery(r), true)
	if err != nil {
		writeErrorAndStatusCode(w, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *Handler) AdminSaveTeamMember(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Id       int64  `json:"id"`
		Name     string `validate:"required" json:"name"`
		Position string `json:"position"`
		About    string `json:"about"`
		PhotoURL string `json:"photo_url"`
		Active   bool   `json:"active"`
	}
	if err := decodeValidate(r.Body, &body); err != nil {
		writeErrorAndStatusCode(w, err)
		return
	}

	m, err := h.info.SaveTeamMember(domain.TeamMember{
		Id: body.Id, Name: body.Name, Position: body.Position,
		About: body.About, PhotoURL: body.PhotoURL, Active: body.Active,
	})
	if err != nil {
		writeErrorAndStatusCode(w, err)
		return
	}
	writeJSON(w, statusForSave(body.Id), m)
}

func (h *Handler) AdminDeleteTeamMember(w http.ResponseWriter, r *http.Request) {
	h.deleteById(w, r, h.info.DeleteTeamMember)
}

func (h *Handler) AdminListNews(w http.ResponseWriter, r *http.Request) {
	list, err := h.info.News(listFilterFromQuery(r), true)
	if err != nil {
		writeErrorAndStatusCode(w, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *Handler) AdminSaveNews(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Id          int64     `json:"id"`
		Title       string    `validate:"required" json:"title"`
		Body        string    `json:"body"`
		Active      bool      `json:"active"`
		PublishedAt time.Time `json:"published_at"`
	}
	if err := decodeValidate(r.Body, &body); err != nil {
		writeErrorAndStatusCode(w, err)
		return
	}
	if body.PublishedAt.IsZero() {
		body.PublishedAt = time.Now().UTC()
	}

	n, err := h.info.SaveNews(domain.News{
		Id: body.Id, Title: body.Title, Body: body.Body,
		Active: body.Active, PublishedAt: body.PublishedAt,
	})
	if err != nil {
		writeErrorAndStatusCode(w, err)
		return
	}
	writeJSON(w, statusForSave(body.Id), n)
}

func (h *Handler) AdminGetNews(w http.ResponseWriter, r *http.Request) {
	id, err := parseId(chi.URLParam(r, "id"))
	if err != nil {
		writeErrorAndStatusCode(w, err)
		return
	}
	n, err := h.info.NewsItem(id, true)
	if err != nil {
		writeErrorAndStatusCode(w, err)
		return
	}
	writeJSON(w, http.StatusOK, n)
}

func (h *Handler) AdminDeleteNews(w http.ResponseWriter, r *http.Request) {
	h.deleteById(w, r, h.info.DeleteNews)
}

func (h *Handler) AdminListPartners(w http.ResponseWriter, r *http.Request) {
	list, err := h.info.Partners(listFilterFromQuery(r), true)
	if err != nil {
		writeErrorAndStatusCode(w, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *Handler) AdminSavePartner(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Id          int64  `json:"id"`
		Name        string `validate:"required" json:"name"`
		URL         string `json:"url"`
		LogoURL     string `json:"logo_url"`
		Description string `json:"description"`
		Active      bool   `json:"active"`
	}
	if err := decodeValidate(r.Body, &body); err != nil {
		writeErrorAndStatusCode(w, err)
		return
	}

	p, err := h.info.SavePartner(domain.Partner{
		Id: body.Id, Name: body.Name, URL: body.URL,
		LogoURL: body.LogoURL, Description: body.Description, Active: body.Active,
	})
	if err != nil {
		writeErrorAndStatusCode(w, err)
		return
	}
	writeJSON(w, statusForSave(body.Id), p)
}

func (h *Handler) AdminDeletePartner(w http.ResponseWriter, r *http.Request) {
	h.deleteById(w, r, h.info.DeletePartner)
}

func (h *Handler) deleteById(w http.ResponseWriter, r *http.Request, del func(id int64) error) {
	id, err := parseId(chi.URLParam(r, "id"))
	if err != nil {
		writeErrorAndStatusCode(w, err)
		return
	}
	if err := del(id); err != nil {
		writeErrorAndStatusCode(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func statusForSave(id int64) int {
	if id == 0 {
		return http.StatusCreated
	}
	return http.StatusOK
}
