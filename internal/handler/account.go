package handler

import (
	"net/http"

	"github.com/lumeo-dev/lumeo/internal/domain"
	"github.com/lumeo-dev/lumeo/internal/middleware"
)

type accountResponse struct {
	Id     domain.AccountId `json:"id"`
	Handle string           `json:"handle"`
	Email  string           `json:"email"`
	Role   string           `json:"role"`
	Active bool             `json:"active"`
}

func toAccountResponse(a domain.Account) accountResponse {
	return accountResponse{
		Id:     a.Id,
		Handle: a.Handle,
		Email:  a.Email,
		Role:   string(a.Role),
		Active: a.Active,
	}
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Handle   string `validate:"required" json:"handle"`
		Email    string `validate:"required" json:"email"`
		Password string `validate:"required" json:"password"`
		Role     string `json:"role"`
	}
	if err := decodeValidate(r.Body, &body); err != nil {
		writeErrorAndStatusCode(w, err)
		return
	}

	account, err := h.accounts.Register(body.Handle, body.Email, body.Password, domain.Role(body.Role))
	if err != nil {
		writeErrorAndStatusCode(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toAccountResponse(account))
}

func (h *Handler) Activate(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Token string `validate:"required" json:"token"`
	}
	if err := decodeValidate(r.Body, &body); err != nil {
		writeErrorAndStatusCode(w, err)
		return
	}

	account, err := h.accounts.Activate(body.Token)
	if err != nil {
		writeErrorAndStatusCode(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toAccountResponse(account))
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var creds struct {
		Email    string `validate:"required" json:"email"`
		Password string `validate:"required" json:"password"`
	}
	if err := decodeValidate(r.Body, &creds); err != nil {
		writeErrorAndStatusCode(w, err)
		return
	}

	accessToken, err := h.accounts.Login(creds.Email, creds.Password)
	if err != nil {
		writeErrorAndStatusCode(w, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Path:     "/",
		Name:     "accessToken",
		Value:    accessToken,
		MaxAge:   int(h.cfg.JwtTTL().Seconds()),
		HttpOnly: true,
		Secure:   h.cfg.Public.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	})
	writeJSON(w, http.StatusOK, map[string]string{"access_token": accessToken})
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Path:     "/",
		Name:     "accessToken",
		Value:    "",
		MaxAge:   -1,
		HttpOnly: true,
	})
	w.WriteHeader(http.StatusOK)
}

func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	account := middleware.AccountFromContext(r)
	profile, err := h.profiles.Get(account.Id)
	if err != nil {
		writeErrorAndStatusCode(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"id":      account.Id,
		"handle":  account.Handle,
		"admin":   account.Admin,
		"profile": profile,
	})
}

func (h *Handler) RequestEmailChange(w http.ResponseWriter, r *http.Request) {
	var body struct {
		NewEmail string `validate:"required" json:"new_email"`
	}
	if err := decodeValidate(r.Body, &body); err != nil {
		writeErrorAndStatusCode(w, err)
		return
	}

	account := middleware.AccountFromContext(r)
	if err := h.accounts.RequestEmailChange(account.Id, body.NewEmail); err != nil {
		writeErrorAndStatusCode(w, err)
		return
	}

	// The session is useless from here on: the account is deactivated
	// until the new address confirms.
	http.SetCookie(w, &http.Cookie{Path: "/", Name: "accessToken", Value: "", MaxAge: -1, HttpOnly: true})
	writeJSON(w, http.StatusAccepted, map[string]string{
		"status": "confirmation sent to the new address",
	})
}

// ConfirmEmailChange is unauthenticated: the account is deactivated
// while the change is pending, so the token is the only credential.
func (h *Handler) ConfirmEmailChange(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Token string `validate:"required" json:"token"`
	}
	if err := decodeValidate(r.Body, &body); err != nil {
		writeErrorAndStatusCode(w, err)
		return
	}

	account, err := h.accounts.ConfirmEmailChange(body.Token)
	if err != nil {
		writeErrorAndStatusCode(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toAccountResponse(account))
}

func (h *Handler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	var body struct {
		OldPassword string `validate:"required" json:"old_password"`
		NewPassword string `validate:"required" json:"new_password"`
	}
	if err := decodeValidate(r.Body, &body); err != nil {
		writeErrorAndStatusCode(w, err)
		return
	}

	account := middleware.AccountFromContext(r)
	if err := h.accounts.ChangePassword(account.Id, body.OldPassword, body.NewPassword); err != nil {
		writeErrorAndStatusCode(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (h *Handler) RequestPasswordReset(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email string `validate:"required" json:"email"`
	}
	if err := decodeValidate(r.Body, &body); err != nil {
		writeErrorAndStatusCode(w, err)
		return
	}

	if err := h.accounts.RequestPasswordReset(body.Email); err != nil {
		writeErrorAndStatusCode(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{
		"status": "if the address is registered, a reset code was sent",
	})
}

func (h *Handler) ConfirmPasswordReset(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Token       string `validate:"required" json:"token"`
		NewPassword string `validate:"required" json:"new_password"`
	}
	if err := decodeValidate(r.Body, &body); err != nil {
		writeErrorAndStatusCode(w, err)
		return
	}

	if err := h.accounts.ConfirmPasswordReset(body.Token, body.NewPassword); err != nil {
		writeErrorAndStatusCode(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (h *Handler) ChangeUsername(w http.ResponseWriter, r *http.Request) {
	var body struct {
		NewHandle string `validate:"required" json:"new_handle"`
	}
	if err := decodeValidate(r.Body, &body); err != nil {
		writeErrorAndStatusCode(w, err)
		return
	}

	account := middleware.AccountFromContext(r)
	if err := h.accounts.ChangeUsername(account.Id, body.NewHandle); err != nil {
		writeErrorAndStatusCode(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (h *Handler) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	account := middleware.AccountFromContext(r)
	if err := h.accounts.Delete(account.Id); err != nil {
		writeErrorAndStatusCode(w, err)
		return
	}

	http.SetCookie(w, &http.Cookie{Path: "/", Name: "accessToken", Value: "", MaxAge: -1, HttpOnly: true})
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) GetProfile(w http.ResponseWriter, r *http.Request) {
	account := middleware.AccountFromContext(r)
	profile, err := h.profiles.Get(account.Id)
	if err != nil {
		writeErrorAndStatusCode(w, err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var body struct {
		FirstName string `json:"first_name"`
		LastName  string `json:"last_name"`
		Phone     string `json:"phone"`
		About     string `json:"about"`
	}
	if err := decodeValidate(r.Body, &body); err != nil {
		writeErrorAndStatusCode(w, err)
		return
	}

	account := middleware.AccountFromContext(r)
	err := h.profiles.Update(domain.Profile{
		AccountId: account.Id,
		FirstName: body.FirstName,
		LastName:  body.LastName,
		Phone:     body.Phone,
		About:     body.About,
	})
	if err != nil {
		writeErrorAndStatusCode(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}
