package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/lumeo-dev/lumeo/internal/apperr"
	"github.com/lumeo-dev/lumeo/internal/config"
	"github.com/lumeo-dev/lumeo/internal/domain"
	"github.com/lumeo-dev/lumeo/internal/jwt"
	"github.com/lumeo-dev/lumeo/internal/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type MockAccountService struct {
	MockRegister             func(handle, email, password string, role domain.Role) (domain.Account, error)
	MockActivate             func(tokenValue string) (domain.Account, error)
	MockLogin                func(email, password string) (string, error)
	MockRequestEmailChange   func(accountId domain.AccountId, newEmail string) error
	MockConfirmEmailChange   func(tokenValue string) (domain.Account, error)
	MockChangePassword       func(accountId domain.AccountId, oldPassword, newPassword string) error
	MockRequestPasswordReset func(email string) error
	MockConfirmPasswordReset func(tokenValue, newPassword string) error
	MockChangeUsername       func(accountId domain.AccountId, newHandle string) error
	MockDelete               func(accountId domain.AccountId) error
}

func (m *MockAccountService) Register(handle domain.Handle, email domain.Email, password domain.Password, role domain.Role) (domain.Account, error) {
	if m.MockRegister != nil {
		return m.MockRegister(handle, email, password, role)
	}
	return domain.Account{}, nil
}

func (m *MockAccountService) Activate(tokenValue string) (domain.Account, error) {
	if m.MockActivate != nil {
		return m.MockActivate(tokenValue)
	}
	return domain.Account{}, nil
}

func (m *MockAccountService) Login(email domain.Email, password domain.Password) (string, error) {
	if m.MockLogin != nil {
		return m.MockLogin(email, password)
	}
	return "", nil
}

func (m *MockAccountService) RequestEmailChange(accountId domain.AccountId, newEmail domain.Email) error {
	if m.MockRequestEmailChange != nil {
		return m.MockRequestEmailChange(accountId, newEmail)
	}
	return nil
}

func (m *MockAccountService) ConfirmEmailChange(tokenValue string) (domain.Account, error) {
	if m.MockConfirmEmailChange != nil {
		return m.MockConfirmEmailChange(tokenValue)
	}
	return domain.Account{}, nil
}

func (m *MockAccountService) ChangePassword(accountId domain.AccountId, oldPassword, newPassword domain.Password) error {
	if m.MockChangePassword != nil {
		return m.MockChangePassword(accountId, oldPassword, newPassword)
	}
	return nil
}

func (m *MockAccountService) RequestPasswordReset(email domain.Email) error {
	if m.MockRequestPasswordReset != nil {
		return m.MockRequestPasswordReset(email)
	}
	return nil
}

func (m *MockAccountService) ConfirmPasswordReset(tokenValue string, newPassword domain.Password) error {
	if m.MockConfirmPasswordReset != nil {
		return m.MockConfirmPasswordReset(tokenValue, newPassword)
	}
	return nil
}

func (m *MockAccountService) ChangeUsername(accountId domain.AccountId, newHandle domain.Handle) error {
	if m.MockChangeUsername != nil {
		return m.MockChangeUsername(accountId, newHandle)
	}
	return nil
}

func (m *MockAccountService) Delete(accountId domain.AccountId) error {
	if m.MockDelete != nil {
		return m.MockDelete(accountId)
	}
	return nil
}

type MockProfileService struct {
	MockGet    func(accountId domain.AccountId) (domain.Profile, error)
	MockUpdate func(profile domain.Profile) error
}

func (m *MockProfileService) Get(accountId domain.AccountId) (domain.Profile, error) {
	if m.MockGet != nil {
		return m.MockGet(accountId)
	}
	return domain.Profile{AccountId: accountId}, nil
}

func (m *MockProfileService) Update(profile domain.Profile) error {
	if m.MockUpdate != nil {
		return m.MockUpdate(profile)
	}
	return nil
}

func testHandlerConfig() *config.Config {
	return &config.Config{Public: config.Public{JwtTTLSeconds: 900, DefaultPageSize: 20, MaxPageSize: 100}}
}

func createRequest(t *testing.T, method, target string, body []byte) *http.Request {
	t.Helper()
	return httptest.NewRequest(method, target, bytes.NewReader(body))
}

func TestRegisterHandler(t *testing.T) {
	h := &Handler{cfg: testHandlerConfig()}

	t.Run("created", func(t *testing.T) {
		h.accounts = &MockAccountService{
			MockRegister: func(handle, email, password string, role domain.Role) (domain.Account, error) {
				assert.Equal(t, "alice", handle)
				return domain.Account{Id: 1, Handle: handle, Email: email, Role: domain.RoleCustomer}, nil
			},
		}
		req := createRequest(t, http.MethodPost, "/v1/auth/register",
			[]byte(`{"handle":"alice","email":"alice@example.com","password":"secret-password"}`))
		rr := httptest.NewRecorder()
		h.Register(rr, req)

		assert.Equal(t, http.StatusCreated, rr.Code)
		var resp accountResponse
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		assert.Equal(t, domain.AccountId(1), resp.Id)
		assert.False(t, resp.Active)
	})

	t.Run("missing fields", func(t *testing.T) {
		req := createRequest(t, http.MethodPost, "/v1/auth/register", []byte(`{"handle":"alice"}`))
		rr := httptest.NewRecorder()
		h.Register(rr, req)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("duplicate surfaces code", func(t *testing.T) {
		h.accounts = &MockAccountService{
			MockRegister: func(handle, email, password string, role domain.Role) (domain.Account, error) {
				return domain.Account{}, apperr.DuplicateIdentity("email")
			},
		}
		req := createRequest(t, http.MethodPost, "/v1/auth/register",
			[]byte(`{"handle":"alice","email":"alice@example.com","password":"secret-password"}`))
		rr := httptest.NewRecorder()
		h.Register(rr, req)

		assert.Equal(t, http.StatusConflict, rr.Code)
		var resp errorResponse
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		assert.Equal(t, apperr.CodeDuplicateIdentity, resp.Code)
	})
}

func TestLoginHandler(t *testing.T) {
	h := &Handler{cfg: testHandlerConfig()}

	t.Run("sets cookie", func(t *testing.T) {
		h.accounts = &MockAccountService{
			MockLogin: func(email, password string) (string, error) { return "test_token", nil },
		}
		req := createRequest(t, http.MethodPost, "/v1/auth/login",
			[]byte(`{"email":"alice@example.com","password":"secret-password"}`))
		rr := httptest.NewRecorder()
		h.Login(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		cookies := rr.Result().Cookies()
		require.Len(t, cookies, 1)
		assert.Equal(t, "accessToken", cookies[0].Name)
		assert.Equal(t, "test_token", cookies[0].Value)
		assert.True(t, cookies[0].HttpOnly)
	})

	t.Run("invalid credentials", func(t *testing.T) {
		h.accounts = &MockAccountService{
			MockLogin: func(email, password string) (string, error) {
				return "", &apperr.Error{Message: "Invalid credentials", StatusCode: http.StatusUnauthorized}
			},
		}
		req := createRequest(t, http.MethodPost, "/v1/auth/login",
			[]byte(`{"email":"alice@example.com","password":"wrong"}`))
		rr := httptest.NewRecorder()
		h.Login(rr, req)
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
		assert.Empty(t, rr.Result().Cookies())
	})
}

func TestActivateHandler(t *testing.T) {
	h := &Handler{cfg: testHandlerConfig()}
	h.accounts = &MockAccountService{
		MockActivate: func(tokenValue string) (domain.Account, error) {
			if tokenValue != "good-token" {
				return domain.Account{}, apperr.InvalidToken()
			}
			return domain.Account{Id: 1, Active: true}, nil
		},
	}

	req := createRequest(t, http.MethodPost, "/v1/auth/activate", []byte(`{"token":"good-token"}`))
	rr := httptest.NewRecorder()
	h.Activate(rr, req)
	assert.Equal(t, http.StatusOK, rr.Code)

	req = createRequest(t, http.MethodPost, "/v1/auth/activate", []byte(`{"token":"bad-token"}`))
	rr = httptest.NewRecorder()
	h.Activate(rr, req)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	var resp errorResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, apperr.CodeInvalidToken, resp.Code)
}

// authed wraps a handler in the real auth middleware with a valid
// cookie for the given account.
func authed(t *testing.T, account domain.Account, handlerFn http.HandlerFunc) (http.Handler, *http.Cookie) {
	t.Helper()
	jwtService := jwt.New("test_secret", time.Hour)
	token, err := jwtService.NewToken(account)
	require.NoError(t, err)
	return middleware.NeedAuth(jwtService)(handlerFn), &http.Cookie{Name: "accessToken", Value: token}
}

func TestRequestEmailChangeHandler(t *testing.T) {
	var gotAccountId domain.AccountId
	var gotEmail string
	h := &Handler{cfg: testHandlerConfig(), accounts: &MockAccountService{
		MockRequestEmailChange: func(accountId domain.AccountId, newEmail string) error {
			gotAccountId = accountId
			gotEmail = newEmail
			return nil
		},
	}}

	wrapped, cookie := authed(t, domain.Account{Id: 7, Handle: "alice"}, h.RequestEmailChange)
	req := createRequest(t, http.MethodPost, "/v1/account/email-change",
		[]byte(`{"new_email":"alice2@example.com"}`))
	req.AddCookie(cookie)
	rr := httptest.NewRecorder()
	wrapped.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusAccepted, rr.Code)
	assert.Equal(t, domain.AccountId(7), gotAccountId)
	assert.Equal(t, "alice2@example.com", gotEmail)

	// The session cookie is invalidated: the account is now inactive.
	cookies := rr.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, -1, cookies[0].MaxAge)
}

func TestConfirmEmailChangeHandler_NoAuthRequired(t *testing.T) {
	h := &Handler{cfg: testHandlerConfig(), accounts: &MockAccountService{
		MockConfirmEmailChange: func(tokenValue string) (domain.Account, error) {
			return domain.Account{Id: 7, Email: "alice2@example.com", Active: true}, nil
		},
	}}

	req := createRequest(t, http.MethodPost, "/v1/account/email-change/confirm",
		[]byte(`{"token":"id.secret"}`))
	rr := httptest.NewRecorder()
	h.ConfirmEmailChange(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	var resp accountResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "alice2@example.com", resp.Email)
	assert.True(t, resp.Active)
}

func TestDeleteAccountHandler(t *testing.T) {
	deleted := domain.AccountId(0)
	h := &Handler{cfg: testHandlerConfig(), accounts: &MockAccountService{
		MockDelete: func(accountId domain.AccountId) error {
			deleted = accountId
			return nil
		},
	}}

	wrapped, cookie := authed(t, domain.Account{Id: 7, Handle: "alice"}, h.DeleteAccount)
	req := createRequest(t, http.MethodDelete, "/v1/account", nil)
	req.AddCookie(cookie)
	rr := httptest.NewRecorder()
	wrapped.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusNoContent, rr.Code)
	assert.Equal(t, domain.AccountId(7), deleted)
}

func TestUpdateProfileHandler(t *testing.T) {
	var saved domain.Profile
	h := &Handler{cfg: testHandlerConfig(), profiles: &MockProfileService{
		MockUpdate: func(profile domain.Profile) error {
			saved = profile
			return nil
		},
	}}

	wrapped, cookie := authed(t, domain.Account{Id: 7, Handle: "alice"}, h.UpdateProfile)
	req := createRequest(t, http.MethodPut, "/v1/account/profile",
		[]byte(`{"first_name":"Alice","phone":"+1 555"}`))
	req.AddCookie(cookie)
	rr := httptest.NewRecorder()
	wrapped.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, domain.AccountId(7), saved.AccountId, "profile is bound to the caller, not the body")
	assert.Equal(t, "Alice", saved.FirstName)
}
